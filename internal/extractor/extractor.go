package extractor

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

const (
	FormatPDF   = "pdf"
	FormatImage = "image"
)

// Recognizer turns a raster image into text. An image without text yields "".
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type Config struct {
	RenderDPI float64
}

type Result struct {
	Text     string
	Format   string
	Pages    int
	OCRPages []int
	Duration time.Duration
}

// Extractor pulls plain text out of uploaded reports. It keeps no state
// between calls.
type Extractor struct {
	ocr     Recognizer
	openPDF PDFOpener
	logger  *utils.Logger
}

func New(cfg Config, ocr Recognizer, logger *utils.Logger) *Extractor {
	dpi := cfg.RenderDPI
	if dpi <= 0 {
		dpi = 300
	}
	return NewWithOpener(func(data []byte) (PDFDocument, error) {
		return OpenPDF(data, dpi)
	}, ocr, logger)
}

func NewWithOpener(open PDFOpener, ocr Recognizer, logger *utils.Logger) *Extractor {
	return &Extractor{ocr: ocr, openPDF: open, logger: logger}
}

// DetectFormat maps a filename to the extraction path by its suffix.
func DetectFormat(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".png", ".jpg", ".jpeg":
		return FormatImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (*Result, error) {
	start := time.Now()

	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	result := &Result{Format: format}
	var raw string

	switch format {
	case FormatPDF:
		raw, err = e.extractPDF(ctx, data, result)
	case FormatImage:
		raw, err = e.extractImage(ctx, data, result)
	}
	if err != nil {
		return nil, err
	}

	result.Text = normalizeText(raw)
	result.Duration = time.Since(start)
	if result.Text == "" {
		return nil, fmt.Errorf("%w from %s", ErrNoTextExtracted, format)
	}

	e.logger.Debug("extract.done",
		"format", format,
		"pages", result.Pages,
		"ocr_pages", len(result.OCRPages),
		"chars", len(result.Text),
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

func (e *Extractor) recognize(ctx context.Context, img image.Image) (string, error) {
	if e.ocr == nil {
		return "", fmt.Errorf("no OCR engine configured")
	}
	return e.ocr.Recognize(ctx, img)
}
