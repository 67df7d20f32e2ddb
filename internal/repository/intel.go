package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"mission-tracker/internal/domain"
)

// IntelRepository caches parsed mission briefings by message ID so each
// free-text briefing hits the LLM at most once.
type IntelRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewIntelRepository(sqlDB *sql.DB, logger zerolog.Logger) *IntelRepository {
	return &IntelRepository{db: sqlDB, logger: logger}
}

func (r *IntelRepository) Get(ctx context.Context, messageID string) (*domain.MissionIntel, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT message_id, title, faction, location, op_date, context, created_at
		FROM mission_intel
		WHERE message_id = ?`, messageID)

	var intel domain.MissionIntel
	err := row.Scan(&intel.MessageID, &intel.Title, &intel.Faction,
		&intel.Location, &intel.Date, &intel.Context, &intel.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get mission intel %q: %w", messageID, err)
	}
	return &intel, true, nil
}

func (r *IntelRepository) Put(ctx context.Context, intel *domain.MissionIntel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mission_intel (message_id, title, faction, location, op_date, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			title = excluded.title,
			faction = excluded.faction,
			location = excluded.location,
			op_date = excluded.op_date,
			context = excluded.context`,
		intel.MessageID, intel.Title, intel.Faction, intel.Location,
		intel.Date, intel.Context, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store mission intel %q: %w", intel.MessageID, err)
	}
	return nil
}
