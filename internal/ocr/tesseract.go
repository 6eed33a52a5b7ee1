package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // 0 leaves the engine default
	Timeout     time.Duration
}

// Engine recognizes text in raster images with the tesseract CLI.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	runner Runner
	logger *utils.Logger
}

func NewEngine(cfg Config, logger *utils.Logger) *Engine {
	return NewEngineWithRunner(cfg, NewCommandRunner(logger), logger)
}

func NewEngineWithRunner(cfg Config, runner Runner, logger *utils.Logger) *Engine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize returns the text tesseract finds in img. An image without text
// yields an empty string, not an error.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode image for ocr: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	// tesseract stdin stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, buf.Bytes(), e.cfg.Tesseract, e.args()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(clip(string(errb), 512)))
	}

	text := Normalize(string(out))
	e.logger.Debug("ocr.recognize.ok",
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy(),
		"chars", len(text))

	return text, nil
}

func (e *Engine) args() []string {
	args := []string{"stdin", "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

var (
	reCRLF     = regexp.MustCompile(`\r\n?`)
	reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-|=]{3,}\s*$`)
	reMulti    = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips tesseract's page-break form feeds and ruled-line noise and
// collapses runs of blank lines.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMulti.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
