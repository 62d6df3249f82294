// Package response writes the JSON bodies used by every API handler.
//
// Success responses carry the record (or list) directly; deletes answer
// {"success": true}; failures answer {"error": "...", "details": "..."}.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the failure shape shared by all endpoints.
type ErrorBody struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK writes a 200 with the record or list.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Null writes an explicit 200 "null" body. Used for single-record fetches
// where absence is a valid empty result, not an error.
func Null(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("null\n")) //nolint:errcheck
}

// Deleted writes the {"success": true} body returned by delete endpoints.
func Deleted(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// StoreError writes a 500 with the underlying store failure attached as
// details.
func StoreError(w http.ResponseWriter, message string, err error) {
	body := ErrorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}

// MethodNotAllowed writes the fixed 405 used by the disallowed user
// mutations.
func MethodNotAllowed(w http.ResponseWriter, message string) {
	Error(w, http.StatusMethodNotAllowed, message)
}

// ValidationError writes a 422 with the field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Error:  "Validation failed",
		Fields: errs,
	})
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
