package models

import "time"

// Audit stages describe where a request finished.
const (
	StageCompleted  = "completed"
	StageExtraction = "extraction"
	StageAnalysis   = "analysis"
	StageInternal   = "internal"
)

// AuditEntry is the operational footprint of one analyze-report request.
// It never holds document text or analysis output.
type AuditEntry struct {
	ID           string    `json:"id" db:"id"`
	Filename     string    `json:"filename" db:"filename"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	Format       string    `json:"format" db:"format"`
	Stage        string    `json:"stage" db:"stage"`
	Success      bool      `json:"success" db:"success"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	TextLength   int       `json:"text_length" db:"text_length"`
	Pages        int       `json:"pages" db:"pages"`
	OCRPages     int       `json:"ocr_pages" db:"ocr_pages"`
	DurationMs   int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
