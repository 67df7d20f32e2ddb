package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"mission-tracker/internal/constants"
	"mission-tracker/internal/domain"
)

type AuditRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAuditRepository(sqlDB *sql.DB, logger zerolog.Logger) *AuditRepository {
	return &AuditRepository{db: sqlDB, logger: logger}
}

// Append inserts one entry and trims the log to the cap inside the same
// transaction, so the table never grows past the most recent entries.
func (r *AuditRepository) Append(ctx context.Context, admin, action, details, severity string) (*domain.AuditLogEntry, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate log id: %w", err)
	}

	entry := &domain.AuditLogEntry{
		ID:        id,
		Admin:     admin,
		Action:    action,
		Details:   details,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, admin, action, details, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Admin, entry.Action, entry.Details, entry.Severity, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert audit log: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM audit_logs WHERE id NOT IN (
			SELECT id FROM audit_logs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, constants.AuditLogCap); err != nil {
		return nil, fmt.Errorf("failed to trim audit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit audit log: %w", err)
	}

	r.logger.Debug().Str("action", action).Str("severity", severity).Msg("audit log appended")
	return entry, nil
}

// List returns the log most-recent-first.
func (r *AuditRepository) List(ctx context.Context) ([]domain.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, admin, action, details, severity, created_at
		FROM audit_logs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, constants.AuditLogCap)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0)
	for rows.Next() {
		var e domain.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Admin, &e.Action, &e.Details, &e.Severity, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
