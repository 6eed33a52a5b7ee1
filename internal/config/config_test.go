package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "http://localhost:3000", cfg.AllowedOrigin)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.True(t, cfg.GeminiJSONMode)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, "tesseract", cfg.TesseractPath)
	assert.Equal(t, "eng", cfg.TesseractLang)
	assert.Equal(t, float64(300), cfg.PDFRenderDPI)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Empty(t, cfg.AuditDBPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGIN", "https://reports.example.com")
	t.Setenv("ANALYSIS_TIMEOUT", "5s")
	t.Setenv("GEMINI_JSON_MODE", "false")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://reports.example.com", cfg.AllowedOrigin)
	assert.Equal(t, 5*time.Second, cfg.AnalysisTimeout)
	assert.False(t, cfg.GeminiJSONMode)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", value: "verbose"},
		{name: "origin is not a url", key: "ALLOWED_ORIGIN", value: "not a url"},
		{name: "render dpi too low", key: "PDF_RENDER_DPI", value: "10"},
		{name: "psm out of range", key: "TESSERACT_PSM", value: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadForExtraction_DoesNotNeedAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("TESSERACT_LANG", "eng+deu")

	cfg, err := LoadForExtraction()
	require.NoError(t, err)
	assert.Equal(t, "eng+deu", cfg.TesseractLang)

	t.Setenv("PDF_RENDER_DPI", "5000")
	_, err = LoadForExtraction()
	assert.Error(t, err)
}

func TestServerWriteTimeoutExceedsAnalysisTimeout(t *testing.T) {
	cfg := &Config{AnalysisTimeout: time.Minute, OCRTimeout: 30 * time.Second}
	assert.Greater(t, cfg.ServerWriteTimeout(), cfg.AnalysisTimeout)
}
