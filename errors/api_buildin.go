package errors

import "net/http"

// Constructors for the statuses handlers and middleware commonly return.

// BadRequest creates a 400 Bad Request error
func BadRequest(data any, internal error) *ApiError {
	return NewApi(http.StatusBadRequest, data, internal)
}

// Unauthorized creates a 401 Unauthorized error
func Unauthorized(data any, internal error) *ApiError {
	return NewApi(http.StatusUnauthorized, data, internal)
}

// Forbidden creates a 403 Forbidden error
func Forbidden(data any, internal error) *ApiError {
	return NewApi(http.StatusForbidden, data, internal)
}

// NotFound creates a 404 Not Found error
func NotFound(data any, internal error) *ApiError {
	return NewApi(http.StatusNotFound, data, internal)
}

// MethodNotAllowed creates a 405 Method Not Allowed error
func MethodNotAllowed(data any, internal error) *ApiError {
	return NewApi(http.StatusMethodNotAllowed, data, internal)
}

// Conflict creates a 409 Conflict error
func Conflict(data any, internal error) *ApiError {
	return NewApi(http.StatusConflict, data, internal)
}

// Gone creates a 410 Gone error
func Gone(data any, internal error) *ApiError {
	return NewApi(http.StatusGone, data, internal)
}

// LengthRequired creates a 411 Length Required error
func LengthRequired(data any, internal error) *ApiError {
	return NewApi(http.StatusLengthRequired, data, internal)
}

// RequestEntityTooLarge creates a 413 Request Entity Too Large error
func RequestEntityTooLarge(data any, internal error) *ApiError {
	return NewApi(http.StatusRequestEntityTooLarge, data, internal)
}

// UnprocessableEntity creates a 422 Unprocessable Entity error
func UnprocessableEntity(data any, internal error) *ApiError {
	return NewApi(http.StatusUnprocessableEntity, data, internal)
}

// TooManyRequests creates a 429 Too Many Requests error
func TooManyRequests(data any, internal error) *ApiError {
	return NewApi(http.StatusTooManyRequests, data, internal)
}

// InternalServerError creates a 500 Internal Server Error
func InternalServerError(data any, internal error) *ApiError {
	return NewApi(http.StatusInternalServerError, data, internal)
}

// NotImplemented creates a 501 Not Implemented error
func NotImplemented(data any, internal error) *ApiError {
	return NewApi(http.StatusNotImplemented, data, internal)
}

// BadGateway creates a 502 Bad Gateway error
func BadGateway(data any, internal error) *ApiError {
	return NewApi(http.StatusBadGateway, data, internal)
}

// ServiceUnavailable creates a 503 Service Unavailable error
func ServiceUnavailable(data any, internal error) *ApiError {
	return NewApi(http.StatusServiceUnavailable, data, internal)
}

// GatewayTimeout creates a 504 Gateway Timeout error
func GatewayTimeout(data any, internal error) *ApiError {
	return NewApi(http.StatusGatewayTimeout, data, internal)
}
