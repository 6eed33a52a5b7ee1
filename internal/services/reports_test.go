package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/blood-report-api/internal/analyzer"
	"github.com/BerylCAtieno/blood-report-api/internal/extractor"
	"github.com/BerylCAtieno/blood-report-api/internal/models"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

type fakeExtractor struct {
	result *extractor.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, filename string) (*extractor.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
	texts  []string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	f.texts = append(f.texts, text)
	return f.result, f.err
}

type fakeAudit struct {
	entries   []models.AuditEntry
	recordErr error
	recentErr error
}

func (f *fakeAudit) Record(ctx context.Context, entry *models.AuditEntry) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func pdfResult(text string) *extractor.Result {
	return &extractor.Result{Text: text, Format: extractor.FormatPDF, Pages: 2, OCRPages: []int{2}, Duration: time.Millisecond}
}

func upload(name string) *models.UploadRequest {
	return &models.UploadRequest{File: []byte("contents"), Filename: name}
}

func TestAnalyzeReport_Success(t *testing.T) {
	ext := &fakeExtractor{result: pdfResult("Hemoglobin 13.5")}
	want := models.EmptyAnalysis()
	want.Recommendations = []string{"Stay hydrated"}
	an := &fakeAnalyzer{result: want}
	audit := &fakeAudit{}

	svc := NewReportService(ext, an, audit, utils.NewNopLogger())
	got, err := svc.AnalyzeReport(context.Background(), upload("report.pdf"))
	require.NoError(t, err)

	assert.Same(t, want, got)
	assert.Equal(t, []string{"Hemoglobin 13.5"}, an.texts)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.True(t, entry.Success)
	assert.Equal(t, models.StageCompleted, entry.Stage)
	assert.Equal(t, "pdf", entry.Format)
	assert.Equal(t, 2, entry.Pages)
	assert.Equal(t, 1, entry.OCRPages)
	assert.Equal(t, len("Hemoglobin 13.5"), entry.TextLength)
	assert.Equal(t, int64(len("contents")), entry.FileSize)
	assert.Nil(t, entry.ErrorMessage)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAnalyzeReport_ExtractionErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "unsupported", err: fmt.Errorf("%w: %q", extractor.ErrUnsupportedFormat, ".docx"), message: "Text extraction failed: unsupported file format"},
		{name: "no text", err: extractor.ErrNoTextExtracted, message: "Text extraction failed: no text extracted"},
		{name: "pdf", err: fmt.Errorf("%w: %w", extractor.ErrPDFProcessing, errors.New("xref")), message: "Text extraction failed: PDF processing failed"},
		{name: "image", err: fmt.Errorf("%w: decode", extractor.ErrImageProcessing), message: "Text extraction failed: image processing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			an := &fakeAnalyzer{result: models.EmptyAnalysis()}
			audit := &fakeAudit{}
			svc := NewReportService(&fakeExtractor{err: tt.err}, an, audit, utils.NewNopLogger())

			_, err := svc.AnalyzeReport(context.Background(), upload("report.docx"))
			require.Error(t, err)

			appErr, ok := utils.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
			assert.Equal(t, tt.message, appErr.Message)
			assert.ErrorIs(t, err, extractor.Kind(tt.err))
			assert.Empty(t, an.texts)

			require.Len(t, audit.entries, 1)
			assert.Equal(t, models.StageExtraction, audit.entries[0].Stage)
			assert.False(t, audit.entries[0].Success)
			require.NotNil(t, audit.entries[0].ErrorMessage)
			assert.Equal(t, tt.message, *audit.entries[0].ErrorMessage)
		})
	}
}

func TestAnalyzeReport_AnalysisFailure(t *testing.T) {
	an := &fakeAnalyzer{err: fmt.Errorf("%w: %w", analyzer.ErrAnalysisService, context.DeadlineExceeded)}
	audit := &fakeAudit{}
	svc := NewReportService(&fakeExtractor{result: pdfResult("text")}, an, audit, utils.NewNopLogger())

	_, err := svc.AnalyzeReport(context.Background(), upload("report.pdf"))
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.Equal(t, "AI analysis failed", appErr.Message)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.StageAnalysis, audit.entries[0].Stage)
	assert.Equal(t, 4, audit.entries[0].TextLength)
}

func TestAnalyzeReport_UnexpectedErrorsAreInternal(t *testing.T) {
	t.Run("extractor", func(t *testing.T) {
		svc := NewReportService(&fakeExtractor{err: errors.New("disk on fire")}, &fakeAnalyzer{}, nil, utils.NewNopLogger())

		_, err := svc.AnalyzeReport(context.Background(), upload("report.pdf"))
		appErr, ok := utils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Internal server error: disk on fire", appErr.Message)
	})

	t.Run("analyzer", func(t *testing.T) {
		svc := NewReportService(&fakeExtractor{result: pdfResult("text")}, &fakeAnalyzer{err: errors.New("nil map")}, nil, utils.NewNopLogger())

		_, err := svc.AnalyzeReport(context.Background(), upload("report.pdf"))
		appErr, ok := utils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
		assert.Equal(t, "Internal server error: nil map", appErr.Message)
	})
}

func TestAnalyzeReport_AuditFailureDoesNotFailRequest(t *testing.T) {
	audit := &fakeAudit{recordErr: errors.New("database is locked")}
	svc := NewReportService(&fakeExtractor{result: pdfResult("text")}, &fakeAnalyzer{result: models.EmptyAnalysis()}, audit, utils.NewNopLogger())

	res, err := svc.AnalyzeReport(context.Background(), upload("report.pdf"))
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestAnalyzeReport_RecordsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	audit := &fakeAudit{}
	an := &fakeAnalyzer{err: fmt.Errorf("%w: %w", analyzer.ErrAnalysisService, context.Canceled)}
	svc := NewReportService(&fakeExtractor{result: pdfResult("text")}, an, audit, utils.NewNopLogger())

	_, err := svc.AnalyzeReport(ctx, upload("report.pdf"))
	require.Error(t, err)
	assert.Len(t, audit.entries, 1)
}

func TestRecentAnalyses(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		svc := NewReportService(&fakeExtractor{}, &fakeAnalyzer{}, nil, utils.NewNopLogger())

		_, err := svc.RecentAnalyses(context.Background(), 10)
		appErr, ok := utils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	})

	t.Run("lists entries", func(t *testing.T) {
		audit := &fakeAudit{entries: []models.AuditEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
		svc := NewReportService(&fakeExtractor{}, &fakeAnalyzer{}, audit, utils.NewNopLogger())

		entries, err := svc.RecentAnalyses(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("repository error", func(t *testing.T) {
		audit := &fakeAudit{recentErr: errors.New("no such table")}
		svc := NewReportService(&fakeExtractor{}, &fakeAnalyzer{}, audit, utils.NewNopLogger())

		_, err := svc.RecentAnalyses(context.Background(), 2)
		appErr, ok := utils.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	})
}
