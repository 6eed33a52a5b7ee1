// Command extract runs the report extraction chain on a local file and prints
// the text, or with -analyze the structured analysis as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/analyzer"
	"github.com/BerylCAtieno/blood-report-api/internal/config"
	"github.com/BerylCAtieno/blood-report-api/internal/extractor"
	"github.com/BerylCAtieno/blood-report-api/internal/ocr"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

func main() {
	analyze := flag.Bool("analyze", false, "send the extracted text to Gemini and print the analysis JSON")
	verbose := flag.Bool("v", false, "log pipeline events to stderr")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall deadline")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-analyze] [-v] <report.pdf|.png|.jpg>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	load := config.LoadForExtraction
	if *analyze {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := utils.NewNopLogger()
	if *verbose {
		logger = utils.NewStderrLogger(cfg.LogLevel, cfg.LogFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read file:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ocrEngine := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.TesseractPath,
		Lang:        cfg.TesseractLang,
		TessdataDir: cfg.TessdataDir,
		PSM:         cfg.TesseractPSM,
		Timeout:     cfg.OCRTimeout,
	}, logger)
	ext := extractor.New(extractor.Config{RenderDPI: cfg.PDFRenderDPI}, ocrEngine, logger)

	res, err := ext.Extract(ctx, data, filepath.Base(path))
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"format", res.Format,
		"pages", res.Pages,
		"ocr_pages", res.OCRPages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds())

	if !*analyze {
		fmt.Println(res.Text)
		return
	}

	model, err := analyzer.NewGeminiModel(ctx, analyzer.GeminiConfig{
		APIKey:      cfg.GoogleAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		JSONMode:    cfg.GeminiJSONMode,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "gemini:", err)
		os.Exit(1)
	}

	a := analyzer.NewReportAnalyzer(model, analyzer.Config{
		Timeout:      cfg.AnalysisTimeout,
		MaxTextChars: cfg.AnalysisMaxTextChars,
	}, logger)

	result, err := a.Analyze(ctx, res.Text)
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}
