package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// GrantsRepository stores manually granted medals and achievements. Grants
// are the floor of the award ratchet: evaluation ORs them in and never
// removes them.
type GrantsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewGrantsRepository(sqlDB *sql.DB, logger zerolog.Logger) *GrantsRepository {
	return &GrantsRepository{db: sqlDB, logger: logger}
}

// GetAll returns granted award IDs keyed by guild member ID.
func (r *GrantsRepository) GetAll(ctx context.Context) (map[string]map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT member_id, award_id FROM medal_grants`)
	if err != nil {
		return nil, fmt.Errorf("failed to query medal grants: %w", err)
	}
	defer rows.Close()

	grants := make(map[string]map[string]struct{})
	for rows.Next() {
		var memberID, awardID string
		if err := rows.Scan(&memberID, &awardID); err != nil {
			return nil, fmt.Errorf("failed to scan medal grant: %w", err)
		}
		if grants[memberID] == nil {
			grants[memberID] = make(map[string]struct{})
		}
		grants[memberID][awardID] = struct{}{}
	}
	return grants, rows.Err()
}

func (r *GrantsRepository) Grant(ctx context.Context, memberID, awardID, grantedBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medal_grants (member_id, award_id, granted_by, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id, award_id) DO NOTHING`,
		memberID, awardID, grantedBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to grant %q to %q: %w", awardID, memberID, err)
	}
	return nil
}
