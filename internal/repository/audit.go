package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/blood-report-api/internal/models"
)

type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO analysis_audit (id, filename, file_size, format, stage, success, error_message,
		                            text_length, pages, ocr_pages, duration_ms, created_at)
		VALUES (:id, :filename, :file_size, :format, :stage, :success, :error_message,
		        :text_length, :pages, :ocr_pages, :duration_ms, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit entry %s: %w", entry.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *auditRepository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `
		SELECT id, filename, file_size, format, stage, success, error_message,
		       text_length, pages, ocr_pages, duration_ms, created_at
		FROM analysis_audit
		ORDER BY created_at DESC
		LIMIT ?
	`

	entries := []models.AuditEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
