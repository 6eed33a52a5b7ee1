package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/BerylCAtieno/blood-report-api/internal/middleware"
	"github.com/BerylCAtieno/blood-report-api/internal/models"
	"github.com/BerylCAtieno/blood-report-api/internal/services"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

const (
	DefaultMaxFileSize = 10 << 20 // 10MB

	// Room for multipart boundaries and part headers on top of the file itself.
	multipartOverhead = 1 << 20

	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type ReportHandler struct {
	service     services.ReportService
	maxFileSize int64
	logger      *utils.Logger
}

func NewReportHandler(service services.ReportService, maxFileSize int64, logger *utils.Logger) *ReportHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &ReportHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *ReportHandler) AnalyzeReport(w http.ResponseWriter, r *http.Request) {
	sizeErr := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %s limit", formatBytes(h.maxFileSize)))

	// Check Content-Length header first to reject oversized requests early
	if r.ContentLength > h.maxFileSize+multipartOverhead {
		respondError(w, r, h.logger, sizeErr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, r, h.logger, sizeErr)
			return
		}
		respondError(w, r, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, r, h.logger, utils.WrapInternalError("Failed to read file", err))
		return
	}

	if int64(len(data)) > h.maxFileSize {
		respondError(w, r, h.logger, sizeErr)
		return
	}

	if len(data) == 0 {
		respondError(w, r, h.logger, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	h.logger.Info("Received report",
		"request_id", middleware.GetRequestID(r.Context()),
		"filename", header.Filename,
		"content_type", header.Header.Get("Content-Type"),
		"file_size", len(data))

	req := &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	result, err := h.service.AnalyzeReport(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

func (h *ReportHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, r, h.logger, utils.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxAuditLimit)
	}

	entries, err := h.service.RecentAnalyses(r.Context(), limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, entries)
}

func formatBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
