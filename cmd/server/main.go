package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/blood-report-api/internal/analyzer"
	"github.com/BerylCAtieno/blood-report-api/internal/config"
	"github.com/BerylCAtieno/blood-report-api/internal/db"
	"github.com/BerylCAtieno/blood-report-api/internal/extractor"
	"github.com/BerylCAtieno/blood-report-api/internal/ocr"
	"github.com/BerylCAtieno/blood-report-api/internal/repository"
	"github.com/BerylCAtieno/blood-report-api/internal/router"
	"github.com/BerylCAtieno/blood-report-api/internal/services"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	// Audit trail is optional
	var auditRepo repository.AuditRepository
	if cfg.AuditDBPath != "" {
		database, err := db.Open(cfg.AuditDBPath)
		if err != nil {
			logger.Fatal("Failed to open audit database", "error", err, "path", cfg.AuditDBPath)
		}
		defer database.Close()
		auditRepo = repository.NewAuditRepository(database)
		logger.Info("Audit trail enabled", "path", cfg.AuditDBPath)
	}

	ocrEngine := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.TesseractPath,
		Lang:        cfg.TesseractLang,
		TessdataDir: cfg.TessdataDir,
		PSM:         cfg.TesseractPSM,
		Timeout:     cfg.OCRTimeout,
	}, logger)

	textExtractor := extractor.New(extractor.Config{RenderDPI: cfg.PDFRenderDPI}, ocrEngine, logger)

	model, err := analyzer.NewGeminiModel(context.Background(), analyzer.GeminiConfig{
		APIKey:      cfg.GoogleAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		JSONMode:    cfg.GeminiJSONMode,
	})
	if err != nil {
		logger.Fatal("Failed to initialize Gemini model", "error", err)
	}

	reportAnalyzer := analyzer.NewReportAnalyzer(model, analyzer.Config{
		Timeout:      cfg.AnalysisTimeout,
		MaxTextChars: cfg.AnalysisMaxTextChars,
	}, logger)

	reportService := services.NewReportService(textExtractor, reportAnalyzer, auditRepo, logger)

	// Setup HTTP router
	handler := router.NewRouter(reportService, router.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		MaxFileSize:   cfg.MaxFileSize,
		AuditEnabled:  auditRepo != nil,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.ServerWriteTimeout(),
		IdleTimeout:       120 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"model", cfg.GeminiModel,
			"allowed_origin", cfg.AllowedOrigin)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exited")
}
