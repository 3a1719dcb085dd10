// Package ecode defines the business error codes carried by failed
// responses and their mapping to HTTP statuses.
//
// Numbering: 0 is success, -400..-499 request and
// resource errors, -500 and below server errors.
package ecode

import "net/http"

const (
	OK                 = 0
	RequestErr         = -400
	ParamErr           = -401
	NotFound           = -404
	ServerErr          = -500
	ServiceUnavailable = -503
)

var (
	messages = map[int]string{
		OK:                 "ok",
		RequestErr:         "Invalid request",
		ParamErr:           "Invalid parameters",
		NotFound:           "Resource not found",
		ServerErr:          "Internal server error",
		ServiceUnavailable: "Service unavailable",
	}
	statuses = map[int]int{
		OK:                 http.StatusOK,
		RequestErr:         http.StatusBadRequest,
		ParamErr:           http.StatusBadRequest,
		NotFound:           http.StatusNotFound,
		ServerErr:          http.StatusInternalServerError,
		ServiceUnavailable: http.StatusServiceUnavailable,
	}
)

// Text returns the default message of a code.
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}

// ToHTTPStatus maps a code to its HTTP status, 500 for unknown codes.
func ToHTTPStatus(code int) int {
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
