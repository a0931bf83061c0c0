// Package errors builds error responses of the API.
//
// Handlers return *echo.HTTPError made here, and echo renders it as JSON like
//
//	{"reason": "bad request", "advice": "architecture should be ..."}
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	See    string `json:"see,omitempty"`
	Cause  error  `json:"-"`
}

func (em ErrorMessage) MarshalJSON() ([]byte, error) {
	type body ErrorMessage // drops methods, to avoid recursion
	return json.Marshal(body(em))
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Reason *string `json:"reason"`
		Advice string  `json:"advice"`
		See    string  `json:"see"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}
	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *f.Reason
	em.Advice = f.Advice
	em.See = f.See
	return nil
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by: ", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func WithSee(see string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if see != "" {
			in.See = see
		}
		return in
	}
}

// NewErrorMessage builds an error response.
//
// The cause given by WithError is kept as internal error of echo.HTTPError,
// to be logged but not to be sent to clients.
func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	he := echo.NewHTTPError(code, msg)
	if msg.Cause != nil {
		he = he.SetInternal(msg.Cause)
	}
	return he
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

// NotFound tells what is missing, like NotFound("dataset").
func NotFound(what string) *echo.HTTPError {
	reason := "not found"
	if what != "" {
		reason = what + " not found"
	}
	return NewErrorMessage(http.StatusNotFound, reason)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithAdvice("ask your system admin."),
		WithError(err),
	)
}

// BadGateway tells the service behind (like "training service") cannot be reached.
func BadGateway(service string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadGateway,
		service+" unavailable",
		WithAdvice("retry later. if it persists, ask your system admin."),
		WithError(err),
	)
}
