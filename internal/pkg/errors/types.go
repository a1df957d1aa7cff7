// nolint:mnd
package errors

import "net/http"

// BadRequest builds the Validation error kind: malformed input -> 400.
func BadRequest(reason, message string) *ApplicationError {
	return New(http.StatusBadRequest, reason, message)
}

// IsBadRequest determines if err is an error which indicates a BadRequest error.
// It supports wrapped errors.
func IsBadRequest(err error) bool {
	return Code(err) == http.StatusBadRequest
}

// NotFound builds the Not-found error kind: referenced entity absent -> 404.
func NotFound(reason, message string) *ApplicationError {
	return New(http.StatusNotFound, reason, message)
}

// IsNotFound determines if err is an error which indicates an NotFound error.
// It supports wrapped errors.
func IsNotFound(err error) bool {
	return Code(err) == http.StatusNotFound
}

// Conflict builds the State-conflict error kind: an integrity rule refuses
// the operation -> 409.
func Conflict(reason, message string) *ApplicationError {
	return New(http.StatusConflict, reason, message)
}

// IsConflict determines if err is an error which indicates a Conflict error.
// It supports wrapped errors.
func IsConflict(err error) bool {
	return Code(err) == http.StatusConflict
}

// BadGateway builds the Downstream-failure error kind: a dependent service
// answered with an error that has no 1:1 status to propagate -> 502.
func BadGateway(reason, message string) *ApplicationError {
	return New(http.StatusBadGateway, reason, message)
}

// IsBadGateway determines if err is an error which indicates a BadGateway error.
// It supports wrapped errors.
func IsBadGateway(err error) bool {
	return Code(err) == http.StatusBadGateway
}

// InternalServer builds the Unexpected error kind -> 500.
func InternalServer(reason, message string) *ApplicationError {
	return New(http.StatusInternalServerError, reason, message)
}

// IsInternalServer determines if err is an error which indicates an Internal error.
// It supports wrapped errors.
func IsInternalServer(err error) bool {
	return Code(err) == http.StatusInternalServerError
}

// ServiceUnavailable builds the Downstream-unavailable error kind: network
// failure or timeout talking to a dependency -> 503.
func ServiceUnavailable(reason, message string) *ApplicationError {
	return New(http.StatusServiceUnavailable, reason, message)
}

// IsServiceUnavailable determines if err is an error which indicates an Unavailable error.
// It supports wrapped errors.
func IsServiceUnavailable(err error) bool {
	return Code(err) == http.StatusServiceUnavailable
}
