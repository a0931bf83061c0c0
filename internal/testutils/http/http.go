// Package http builds echo contexts for handler tests.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
)

type RequestOption func(req *http.Request) *http.Request

func WithContext(ctx context.Context) RequestOption {
	return func(req *http.Request) *http.Request {
		return req.WithContext(ctx)
	}
}

func WithHeader(key string, value string, values ...string) RequestOption {
	return func(req *http.Request) *http.Request {
		req.Header.Add(key, value)
		for _, v := range values {
			req.Header.Add(key, v)
		}
		return req
	}
}

// = WithHeader("Content-Type", ctyp)
func ContentType(ctyp string) RequestOption {
	return WithHeader("Content-Type", ctyp)
}

// PathParams sets echo path parameters to c, as the router does.
func PathParams(c echo.Context, kv ...string) echo.Context {
	names := make([]string, 0, len(kv)/2)
	values := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func request(e *echo.Echo, method string, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, data)
	for _, opt := range reqopts {
		req = opt(req)
	}
	resp := httptest.NewRecorder()
	return e.NewContext(req, resp), resp
}

func Get(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodGet, target, nil, reqopts...)
}

func Post(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodPost, target, data, reqopts...)
}

func Put(e *echo.Echo, target string, data io.Reader, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodPut, target, data, reqopts...)
}

func Delete(e *echo.Echo, target string, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return request(e, http.MethodDelete, target, nil, reqopts...)
}

// PostJSON posts body encoded in JSON.
func PostJSON(e *echo.Echo, target string, body any, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Post(e, target, jsonReader(body), append([]RequestOption{ContentType(echo.MIMEApplicationJSON)}, reqopts...)...)
}

// PutJSON puts body encoded in JSON.
func PutJSON(e *echo.Echo, target string, body any, reqopts ...RequestOption) (echo.Context, *httptest.ResponseRecorder) {
	return Put(e, target, jsonReader(body), append([]RequestOption{ContentType(echo.MIMEApplicationJSON)}, reqopts...)...)
}

// PostFile posts a multipart form with a file in the field, and other fields.
func PostFile(
	e *echo.Echo, target string,
	field string, filename string, content []byte,
	fields map[string]string,
	reqopts ...RequestOption,
) (echo.Context, *httptest.ResponseRecorder) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		panic(err)
	}
	if _, err := fw.Write(content); err != nil {
		panic(err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return Post(e, target, buf, append([]RequestOption{ContentType(w.FormDataContentType())}, reqopts...)...)
}

func jsonReader(body any) io.Reader {
	if s, ok := body.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return bytes.NewBuffer(b)
}
