package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/helixlab/helix/pkg/api/types/envelope"
	"github.com/labstack/echo/v4"
)

// statusOf returns the status code of error returned from handlers.
func statusOf(t *testing.T, err error) int {
	t.Helper()
	he := new(echo.HTTPError)
	if !errors.As(err, &he) {
		t.Fatalf("not an HTTPError: %v", err)
	}
	return he.Code
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) envelope.Envelope[T] {
	t.Helper()
	got := envelope.Envelope[T]{}
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("response is not JSON: %s (%s)", err, resp.Body.String())
	}
	if !got.Success {
		t.Errorf("success is false: %s", resp.Body.String())
	}
	return got
}
