// Package httpx holds the JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Stable machine-readable error codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// ErrorBody is the unified error payload {"error": {"code", "message"}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError sends the unified error payload.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// WriteValidation reports a request validation failure as 400. Field
// errors from ozzo-validation are listed by field name.
func WriteValidation(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		WriteError(w, http.StatusBadRequest, CodeValidation, verrs.Error())
		return
	}
	WriteError(w, http.StatusBadRequest, CodeValidation, "invalid request")
}

// DecodeJSON decodes the request body into v. Unknown fields are ignored.
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

// ClientIP returns the request's remote address without the port. Behind
// chi's RealIP middleware this is the forwarded client address.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
