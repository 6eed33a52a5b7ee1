package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`

	// Only this origin may call the API from a browser.
	AllowedOrigin string `validate:"required,url"`

	// Gemini
	GoogleAPIKey      string  `validate:"required"`
	GeminiModel       string  `validate:"required"`
	GeminiTemperature float32 `validate:"gte=0,lte=2"`
	GeminiJSONMode    bool

	AnalysisTimeout      time.Duration `validate:"gt=0"`
	AnalysisMaxTextChars int           `validate:"gte=0"`

	// OCR
	TesseractPath string        `validate:"required"`
	TesseractLang string        `validate:"required"`
	TessdataDir   string
	TesseractPSM  int           `validate:"gte=0,lte=13"`
	OCRTimeout    time.Duration `validate:"gt=0"`
	PDFRenderDPI  float64       `validate:"gte=72,lte=600"`

	// Upload limits
	MaxFileSize int64 `validate:"gt=0"`

	// Empty disables the audit trail.
	AuditDBPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForExtraction is Load without the Gemini credentials, for tools that
// only run the extraction chain.
func LoadForExtraction() (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if err := validator.New().StructExcept(cfg, "GoogleAPIKey"); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func fromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8000"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		GoogleAPIKey:         getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTemperature:    getEnvAsFloat32("GEMINI_TEMPERATURE", 0.2),
		GeminiJSONMode:       getEnvAsBool("GEMINI_JSON_MODE", true),
		AnalysisTimeout:      getEnvAsDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		AnalysisMaxTextChars: getEnvAsInt("ANALYSIS_MAX_TEXT_CHARS", 30000),
		TesseractPath:        getEnv("TESSERACT_PATH", "tesseract"),
		TesseractLang:        getEnv("TESSERACT_LANG", "eng"),
		TessdataDir:          getEnv("TESSDATA_PREFIX", ""),
		TesseractPSM:         getEnvAsInt("TESSERACT_PSM", 0),
		OCRTimeout:           getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		PDFRenderDPI:         getEnvAsFloat64("PDF_RENDER_DPI", 300),
		MaxFileSize:          int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		AuditDBPath:          getEnv("AUDIT_DB_PATH", ""),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ServerWriteTimeout leaves room for the slowest analysis plus OCR of an upload.
func (c *Config) ServerWriteTimeout() time.Duration {
	return c.AnalysisTimeout + 2*c.OCRTimeout + 15*time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
