package services

import (
	"context"
	"errors"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/analyzer"
	"github.com/BerylCAtieno/blood-report-api/internal/extractor"
	"github.com/BerylCAtieno/blood-report-api/internal/models"
	"github.com/BerylCAtieno/blood-report-api/internal/repository"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

const auditWriteTimeout = 5 * time.Second

type ReportService interface {
	AnalyzeReport(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error)
	RecentAnalyses(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*extractor.Result, error)
}

type reportService struct {
	extractor TextExtractor
	analyzer  analyzer.Analyzer
	audit     repository.AuditRepository
	logger    *utils.Logger
}

// NewReportService wires the pipeline. audit may be nil, which disables the
// audit trail.
func NewReportService(ext TextExtractor, an analyzer.Analyzer, audit repository.AuditRepository, logger *utils.Logger) ReportService {
	return &reportService{
		extractor: ext,
		analyzer:  an,
		audit:     audit,
		logger:    logger,
	}
}

func (s *reportService) AnalyzeReport(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	entry := &models.AuditEntry{
		ID:       utils.GenerateID(),
		Filename: req.Filename,
		FileSize: int64(len(req.File)),
	}
	if format, err := extractor.DetectFormat(req.Filename); err == nil {
		entry.Format = format
	}

	logger := s.logger.With("analysis_id", entry.ID, "filename", req.Filename)

	result, err := s.analyze(ctx, req, entry, logger)
	entry.DurationMs = time.Since(start).Milliseconds()
	entry.Success = err == nil
	if err != nil {
		msg := err.Error()
		if appErr, ok := utils.AsAppError(err); ok {
			msg = appErr.Message
		}
		entry.ErrorMessage = &msg
	}
	s.record(ctx, entry, logger)

	if err != nil {
		return nil, err
	}

	logger.Info("Report analyzed successfully",
		"abnormal_results", len(result.AbnormalResults),
		"all_results", len(result.AllResults),
		"duration_ms", entry.DurationMs)

	return result, nil
}

func (s *reportService) analyze(ctx context.Context, req *models.UploadRequest, entry *models.AuditEntry, logger *utils.Logger) (*models.AnalysisResult, error) {
	logger.Info("Starting report analysis", "file_size", len(req.File))

	extracted, err := s.extractor.Extract(ctx, req.File, req.Filename)
	if err != nil {
		kind := extractor.Kind(err)
		if kind == nil {
			entry.Stage = models.StageInternal
			logger.Error("Unexpected extraction error", "error", err)
			return nil, utils.WrapInternalError("Internal server error: "+err.Error(), err)
		}
		entry.Stage = models.StageExtraction
		logger.Error("Failed to extract text", "error", err)
		return nil, utils.WrapInternalError("Text extraction failed: "+kind.Error(), err)
	}

	entry.Format = extracted.Format
	entry.TextLength = len(extracted.Text)
	entry.Pages = extracted.Pages
	entry.OCRPages = len(extracted.OCRPages)

	logger.Info("Text extracted",
		"format", extracted.Format,
		"pages", extracted.Pages,
		"ocr_pages", len(extracted.OCRPages),
		"text_length", len(extracted.Text),
		"duration_ms", extracted.Duration.Milliseconds())

	result, err := s.analyzer.Analyze(ctx, extracted.Text)
	if err != nil {
		if errors.Is(err, analyzer.ErrAnalysisService) {
			entry.Stage = models.StageAnalysis
			logger.Error("Failed to analyze report", "error", err)
			return nil, utils.WrapInternalError(analyzer.ErrAnalysisService.Error(), err)
		}
		entry.Stage = models.StageInternal
		logger.Error("Unexpected analysis error", "error", err)
		return nil, utils.WrapInternalError("Internal server error: "+err.Error(), err)
	}

	entry.Stage = models.StageCompleted
	return result, nil
}

// record writes the audit entry even when the request context is already
// cancelled. Failures are logged only.
func (s *reportService) record(ctx context.Context, entry *models.AuditEntry, logger *utils.Logger) {
	if s.audit == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC()
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record audit entry", "error", err)
	}
}

func (s *reportService) RecentAnalyses(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if s.audit == nil {
		return nil, utils.NewNotFoundError("Audit trail is disabled")
	}

	entries, err := s.audit.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list audit entries", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve audit entries")
	}
	return entries, nil
}
