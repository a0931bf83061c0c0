package handlers

import (
	"errors"
	"net/http"
	"strings"

	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	"github.com/helixlab/helix/pkg/echoutil"
	"github.com/helixlab/helix/pkg/trainsvc"
	"github.com/labstack/echo/v4"
)

// ProxyFunc sends the request of c to url, and relays the response.
//
// echoutil.Proxy is the one used in the server.
type ProxyFunc func(c echo.Context, url string) error

const trainingService = "training service"

// TrainingProxyHandler relays requests to the training service verbatim.
//
// path is the path elements at the service. An element starting with ":" is
// replaced with the path parameter of the name, like
//
//	TrainingProxyHandler(client, echoutil.Proxy, "progress", ":jobId")
//
// Query of the request is passed through.
func TrainingProxyHandler(client trainsvc.Client, proxy ProxyFunc, path ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		elems := make([]string, len(path))
		for nth, p := range path {
			if name, ok := strings.CutPrefix(p, ":"); ok {
				elems[nth] = c.Param(name)
			} else {
				elems[nth] = p
			}
		}

		dest := client.Endpoint(elems...)
		if q := c.Request().URL.RawQuery; q != "" {
			dest += "?" + q
		}

		err := proxy(c, dest)
		if errors.Is(err, echoutil.ErrUpstreamUnavailable) {
			return apierr.BadGateway(trainingService, err)
		}
		return err
	}
}

// StartTrainingHandler translates the request into the one of the training service,
// and relays the response as it is.
func StartTrainingHandler(client trainsvc.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		req := trainsvc.StartRequest{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		resp, err := client.StartTraining(ctx, req)
		if errors.Is(err, trainsvc.ErrUnavailable) {
			return apierr.BadGateway(trainingService, err)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}

		ctype := resp.ContentType
		if ctype == "" {
			ctype = echo.MIMEApplicationJSON
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		return c.Blob(status, ctype, resp.Body)
	}
}
