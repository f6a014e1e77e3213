package common

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RawJSON writes an already encoded JSON document unchanged.
func RawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteError renders err using its AppError metadata when available and falls
// back to fallbackStatus with a generic message otherwise.
func WriteError(w http.ResponseWriter, err error, fallbackStatus int) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := StatusOf(appErr, fallbackStatus)
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = http.StatusText(status)
		}
		JSONError(w, status, code, message, appErr.Details)
		return
	}
	if fallbackStatus == 0 {
		fallbackStatus = http.StatusInternalServerError
	}
	JSONError(w, fallbackStatus, "INTERNAL", "internal error", nil)
}
