package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Timestamp renders t in UTC using TimestampFormat
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// SuccessResponse is the envelope for every successful plugin path execution
type SuccessResponse struct {
	App       string      `json:"app"`
	Path      string      `json:"path"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the envelope for every non-2xx response
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	App        string `json:"app,omitempty"`
	Path       string `json:"path,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteErrorResponse writes an error envelope using its own status code
func WriteErrorResponse(w http.ResponseWriter, resp ErrorResponse) error {
	return WriteJSON(w, resp.StatusCode, resp)
}

// WriteErrorMessage writes an error envelope with no app/path context
func WriteErrorMessage(w http.ResponseWriter, status int, message string) error {
	return WriteErrorResponse(w, ErrorResponse{
		Error:      message,
		StatusCode: status,
		Timestamp:  Timestamp(time.Now()),
	})
}
