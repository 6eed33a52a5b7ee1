package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/blood-report-api/internal/middleware"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"detail": message}. Only an AppError's Message reaches
// the client; anything else is reported as a bare internal error.
func respondError(w http.ResponseWriter, r *http.Request, logger *utils.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	if appErr, ok := utils.AsAppError(err); ok {
		status = appErr.StatusCode
		message = appErr.Message
	}

	args := []any{
		"request_id", middleware.GetRequestID(r.Context()),
		"status", status,
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request error", args...)
	} else {
		logger.Warn("Request error", args...)
	}

	respondJSON(w, logger, status, map[string]string{"detail": message})
}
