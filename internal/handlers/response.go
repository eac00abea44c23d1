package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error categories returned in ErrorResponse.Category.
const (
	CategoryNotFound    = "not_found"
	CategoryConflict    = "conflict"
	CategoryBadRequest  = "bad_request"
	CategoryServerError = "server_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", "error", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, category, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message, Category: category})
}
