package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"mission-tracker/internal/domain"
)

type MetadataRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMetadataRepository(sqlDB *sql.DB, logger zerolog.Logger) *MetadataRepository {
	return &MetadataRepository{db: sqlDB, logger: logger}
}

// GetAll loads the full overlay in insertion (rowid) order, so fuzzy
// resolution tie-breaks stay stable across restarts.
func (r *MetadataRepository) GetAll(ctx context.Context) (*domain.MetadataOverlay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mission_id, rating, difficulty, fluidity, tech_issues,
		       abandon_count, abandon_reason, tags, custom_date,
		       atmosphere, zeus_intensity, comments, last_updated
		FROM mission_metadata
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	overlay := domain.NewMetadataOverlay()
	for rows.Next() {
		var (
			missionID string
			frag      domain.MetadataFragment
			rating    float64
			abandons  int
			tags      string
		)
		if err := rows.Scan(&missionID, &rating, &frag.Difficulty, &frag.Fluidity,
			&frag.TechIssues, &abandons, &frag.AbandonReason, &tags,
			&frag.CustomDate, &frag.Atmosphere, &frag.ZeusIntensity,
			&frag.Comments, &frag.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		frag.Rating = domain.FlexNumber(rating)
		frag.AbandonCount = domain.FlexNumber(abandons)
		frag.Tags = splitTags(tags)
		overlay.Set(missionID, frag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata rows: %w", err)
	}
	return overlay, nil
}

func (r *MetadataRepository) Get(ctx context.Context, missionID string) (domain.MetadataFragment, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT rating, difficulty, fluidity, tech_issues,
		       abandon_count, abandon_reason, tags, custom_date,
		       atmosphere, zeus_intensity, comments, last_updated
		FROM mission_metadata
		WHERE mission_id = ?`, missionID)

	var (
		frag     domain.MetadataFragment
		rating   float64
		abandons int
		tags     string
	)
	err := row.Scan(&rating, &frag.Difficulty, &frag.Fluidity, &frag.TechIssues,
		&abandons, &frag.AbandonReason, &tags, &frag.CustomDate,
		&frag.Atmosphere, &frag.ZeusIntensity, &frag.Comments, &frag.LastUpdated)
	if err == sql.ErrNoRows {
		return domain.MetadataFragment{}, false, nil
	}
	if err != nil {
		return domain.MetadataFragment{}, false, fmt.Errorf("failed to get metadata for %q: %w", missionID, err)
	}
	frag.Rating = domain.FlexNumber(rating)
	frag.AbandonCount = domain.FlexNumber(abandons)
	frag.Tags = splitTags(tags)
	return frag, true, nil
}

// Upsert writes the full fragment for a mission, stamping last_updated.
// Callers merge deltas onto the stored fragment before calling, so a save is
// last-write-wins per field.
func (r *MetadataRepository) Upsert(ctx context.Context, missionID string, frag domain.MetadataFragment) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mission_metadata (
			mission_id, rating, difficulty, fluidity, tech_issues,
			abandon_count, abandon_reason, tags, custom_date,
			atmosphere, zeus_intensity, comments, last_updated, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mission_id) DO UPDATE SET
			rating = excluded.rating,
			difficulty = excluded.difficulty,
			fluidity = excluded.fluidity,
			tech_issues = excluded.tech_issues,
			abandon_count = excluded.abandon_count,
			abandon_reason = excluded.abandon_reason,
			tags = excluded.tags,
			custom_date = excluded.custom_date,
			atmosphere = excluded.atmosphere,
			zeus_intensity = excluded.zeus_intensity,
			comments = excluded.comments,
			last_updated = excluded.last_updated,
			updated_at = excluded.updated_at`,
		missionID, float64(frag.Rating), frag.Difficulty, frag.Fluidity,
		frag.TechIssues, frag.AbandonCount.Int(), frag.AbandonReason,
		joinTags(frag.Tags), frag.CustomDate, frag.Atmosphere,
		frag.ZeusIntensity, frag.Comments, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert metadata for %q: %w", missionID, err)
	}
	return nil
}

func (r *MetadataRepository) ListDeletedUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM deleted_users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deleted users: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan deleted user: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *MetadataRepository) AddDeletedUser(ctx context.Context, name, deletedBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deleted_users (name, deleted_by, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING`, name, deletedBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add deleted user %q: %w", name, err)
	}
	return nil
}

func (r *MetadataRepository) RemoveDeletedUser(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deleted_users WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to remove deleted user %q: %w", name, err)
	}
	return nil
}

// Tags are stored comma-separated; the official tag set contains no commas.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
