package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a rejected request: the backend answered with a non-2xx status
// and (usually) a structured {code, message, details?} body. Anything else,
// such as a network failure or a non-JSON body, stays an ordinary error,
// which callers treat as a transport failure.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
}

// FieldError is one validation entry from the details array. Loc mixes path
// segments of several JSON types, so it is kept loosely typed.
type FieldError struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// Field returns the failing field name: the last string segment of the
// location path that is not the body marker.
func (f FieldError) Field() string {
	field := ""
	for _, seg := range f.Loc {
		if s, ok := seg.(string); ok && s != "body" {
			field = s
		}
	}
	return field
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s (%d): %s", e.Code, e.Status, e.Message)
}

// IsAuth reports whether the credential itself was rejected, which views
// translate into a redirect to login. A 403 is a business rejection (wrong
// role, someone else's request) and surfaces as an error banner instead.
func IsAuth(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Status == http.StatusUnauthorized
}

// AsAPIError unwraps a rejected-request error, nil for transport failures.
func AsAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// newAPIError normalizes a non-2xx response body. A body that is not the
// documented shape falls back to an http_<status> code so every rejection
// still surfaces as an APIError.
func newAPIError(status int, raw []byte) *APIError {
	ae := &APIError{Status: status, Code: fmt.Sprintf("http_%d", status), Message: ""}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Code != "" {
			ae.Code = body.Code
		}
		ae.Message = body.Message
		if len(body.Details) > 0 {
			var fields []FieldError
			if err := json.Unmarshal(body.Details, &fields); err == nil {
				ae.Details = fields
			}
		}
	}
	return ae
}
