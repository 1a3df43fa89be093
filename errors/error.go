// Package errors provides the error values handlers return and the
// router renders: ApiError for responses with a status code, plus thin
// wrappers over the standard errors package so callers need one import.
package errors

import (
	stderrors "errors"
	"fmt"
)

// New returns a plain error with the given message.
func New(message string) error {
	return stderrors.New(message)
}

// Errorf formats an error; %w wraps as with fmt.Errorf.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// AsApi returns err as an *ApiError when one is in its chain.
func AsApi(err error) (*ApiError, bool) {
	var apiErr *ApiError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
