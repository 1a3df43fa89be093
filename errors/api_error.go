package errors

import (
	"fmt"
	"net/http"
)

// ApiError is an error that carries the HTTP status it should be rendered
// with. Data is the JSON payload sent to the client; the wrapped internal
// error is kept for logs only.
type ApiError struct {
	Code     int   `json:"code"`
	Data     any   `json:"data,omitempty"`
	internal error `json:"-"`
}

// NewApi creates an ApiError with the given code, data, and internal error
func NewApi(code int, data any, internal error) *ApiError {
	return &ApiError{
		Code:     code,
		Data:     data,
		internal: internal,
	}
}

// Error implements the error interface
func (e *ApiError) Error() string {
	if e.internal != nil {
		return e.internal.Error()
	}
	if e.Data == nil {
		return fmt.Sprintf("%d: %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%d: %v", e.Code, e.Data)
}

func (e *ApiError) Unwrap() error {
	return e.internal
}

// Internal returns the wrapped cause, if any.
func (e *ApiError) Internal() error {
	return e.internal
}

// WithData returns a copy of e whose Data defaults to the status text.
func (e *ApiError) WithData() *ApiError {
	if e.Data != nil {
		return e
	}
	out := *e
	out.Data = http.StatusText(e.Code)
	return &out
}
