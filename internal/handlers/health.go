package handlers

import (
	"net/http"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

type HealthHandler struct {
	logger *utils.Logger
}

func NewHealthHandler(logger *utils.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

func (h *HealthHandler) Home(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "Blood Report Analyzer API is running"})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "healthy"})
}
