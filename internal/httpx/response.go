// Package httpx writes JSON responses and the API error envelope.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the payload of an error response
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// JSON writes data as a JSON response with the given status code
func JSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// Error writes the error envelope with the given status code
func Error(w http.ResponseWriter, message string, status int) {
	JSON(w, ErrorResponse{Error: ErrorBody{Status: status, Message: message}}, status)
}
