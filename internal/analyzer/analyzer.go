package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/BerylCAtieno/blood-report-api/internal/models"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

var ErrAnalysisService = errors.New("AI analysis failed")

// Model is a generative model that answers a single prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

type Config struct {
	Timeout time.Duration
	// MaxTextChars caps the report text sent to the model; 0 disables the cap.
	MaxTextChars int
}

type reportAnalyzer struct {
	model  Model
	cfg    Config
	logger *utils.Logger
}

func NewReportAnalyzer(model Model, cfg Config, logger *utils.Logger) Analyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &reportAnalyzer{
		model:  model,
		cfg:    cfg,
		logger: logger,
	}
}

// Analyze asks the model to interpret the report text. Malformed model output
// never fails the call; it degrades to empty fields instead.
func (a *reportAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if a.cfg.MaxTextChars > 0 && utf8.RuneCountInString(text) > a.cfg.MaxTextChars {
		a.logger.Warn("analyze.text.truncated",
			"chars", utf8.RuneCountInString(text),
			"max_chars", a.cfg.MaxTextChars)
		text = truncateRunes(text, a.cfg.MaxTextChars)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	start := time.Now()
	response, err := a.model.Generate(ctx, buildPrompt(text))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w (%w)", err, ctxErr)
		}
		a.logger.Error("analyze.model.failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysisService, err)
	}

	a.logger.Debug("analyze.model.ok",
		"duration_ms", time.Since(start).Milliseconds(),
		"response_chars", len(response))

	payload, ok := locatePayload(response)
	if !ok {
		a.logger.Warn("analyze.parse.degraded",
			"reason", "no JSON object in model response",
			"response", truncateRunes(response, 500))
		return models.EmptyAnalysis(), nil
	}

	result, repairs := repairAnalysis(payload)
	if len(repairs) > 0 {
		a.logger.Warn("analyze.parse.repaired", "repairs", repairs)
	}

	return result, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
