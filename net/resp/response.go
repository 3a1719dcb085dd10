// Package resp writes JSON API responses.
//
// Successful payloads are written verbatim; a bare string becomes
// {"message": "..."}. Failures are written as {"error": "..."} with the
// HTTP status derived from the exception.
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/ncobase/issues/ecode"
)

// Exception describes a failed request.
type Exception struct {
	Status  int    `json:"-"` // HTTP status
	Code    int    `json:"-"` // Business code
	Message string `json:"error"`
}

// Error implements error.
func (e *Exception) Error() string {
	return e.Message
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}

	var body any = map[string]string{"message": "ok"}
	if len(data) > 0 && data[0] != nil {
		if msg, ok := data[0].(string); ok {
			body = map[string]string{"message": msg}
		} else {
			body = data[0]
		}
	}
	writeJSON(w, statusCode, body)
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = InternalServer("")
	}

	status := r.Status
	if status == 0 {
		code := r.Code
		if code == 0 {
			code = ecode.RequestErr
		}
		status = ecode.ToHTTPStatus(code)
	}
	message := r.Message
	if message == "" {
		message = ecode.Text(r.Code)
	}

	writeJSON(w, status, &Exception{Message: message})
}

// BadRequest builds a 400 exception.
func BadRequest(message string) *Exception {
	return newException(ecode.ParamErr, message)
}

// NotFound builds a 404 exception.
func NotFound(message string) *Exception {
	return newException(ecode.NotFound, message)
}

// InternalServer builds a 500 exception.
func InternalServer(message string) *Exception {
	return newException(ecode.ServerErr, message)
}

// ServiceUnavailable builds a 503 exception.
func ServiceUnavailable(message string) *Exception {
	return newException(ecode.ServiceUnavailable, message)
}

func newException(code int, message string) *Exception {
	if message == "" {
		message = ecode.Text(code)
	}
	return &Exception{
		Status:  ecode.ToHTTPStatus(code),
		Code:    code,
		Message: message,
	}
}

// writeJSON sets the content type before the status line is sent.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
