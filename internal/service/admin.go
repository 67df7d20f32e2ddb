package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"mission-tracker/internal/domain"
	"mission-tracker/internal/repository"
	"mission-tracker/internal/stats"
)

// AdminService is the write side of the tracker: debriefing fragments,
// deleted users, medal grants and the audit trail. Every successful write
// invalidates the derived caches so the next read sees it.
type AdminService struct {
	metadata  *repository.MetadataRepository
	audit     *repository.AuditRepository
	grants    *repository.GrantsRepository
	dashboard *DashboardService
	roster    *RosterService
	logger    zerolog.Logger
}

func NewAdminService(metadata *repository.MetadataRepository, audit *repository.AuditRepository, grants *repository.GrantsRepository, dashboard *DashboardService, roster *RosterService, logger zerolog.Logger) *AdminService {
	return &AdminService{
		metadata:  metadata,
		audit:     audit,
		grants:    grants,
		dashboard: dashboard,
		roster:    roster,
		logger:    logger,
	}
}

// SaveFragment merges a partial debriefing into the stored fragment for a
// mission. Only fields present in the delta overwrite; everything else
// survives, so two admins editing different fields don't clobber each other.
func (s *AdminService) SaveFragment(ctx context.Context, missionID string, delta domain.MetadataFragment, admin string) (domain.MetadataFragment, error) {
	missionID = strings.TrimSpace(missionID)
	if missionID == "" {
		return domain.MetadataFragment{}, fmt.Errorf("mission id is required")
	}

	current, _, err := s.metadata.Get(ctx, missionID)
	if err != nil {
		return domain.MetadataFragment{}, err
	}

	merged := current.Merge(delta)
	if err := s.metadata.Upsert(ctx, missionID, merged); err != nil {
		return domain.MetadataFragment{}, err
	}

	s.log(ctx, admin, "DEBRIEFING_GUARDADO", fmt.Sprintf("Misión: %s", missionID), domain.SeverityInfo)
	s.dashboard.Invalidate()
	s.roster.Invalidate()

	stored, _, err := s.metadata.Get(ctx, missionID)
	if err != nil {
		return merged, nil
	}
	return stored, nil
}

// LookupFragment finds the stored fragment for a mission name, using the
// same canonical-name resolution the dashboard applies.
func (s *AdminService) LookupFragment(ctx context.Context, name string) (domain.MetadataFragment, string, bool, error) {
	overlay, err := s.metadata.GetAll(ctx)
	if err != nil {
		return domain.MetadataFragment{}, "", false, err
	}
	frag, key, ok := stats.ResolveFragment(name, overlay)
	return frag, key, ok, nil
}

func (s *AdminService) DeletedUsers(ctx context.Context) ([]string, error) {
	return s.metadata.ListDeletedUsers(ctx)
}

// DeleteUser hides a player from every roster and aggregate. Kill totals at
// the mission level keep counting them.
func (s *AdminService) DeleteUser(ctx context.Context, name, admin string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("user name is required")
	}

	if err := s.metadata.AddDeletedUser(ctx, name, admin); err != nil {
		return err
	}

	s.log(ctx, admin, "USUARIO_ELIMINADO", fmt.Sprintf("Operador: %s", name), domain.SeverityDanger)
	s.dashboard.Invalidate()
	s.roster.Invalidate()
	return nil
}

func (s *AdminService) RestoreUser(ctx context.Context, name, admin string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("user name is required")
	}

	if err := s.metadata.RemoveDeletedUser(ctx, name); err != nil {
		return err
	}

	s.log(ctx, admin, "USUARIO_RESTAURADO", fmt.Sprintf("Operador: %s", name), domain.SeverityWarn)
	s.dashboard.Invalidate()
	s.roster.Invalidate()
	return nil
}

// GrantMedal records a manual award for a member. Grants are permanent.
func (s *AdminService) GrantMedal(ctx context.Context, memberID, awardID, admin string) error {
	if memberID == "" || awardID == "" {
		return fmt.Errorf("member id and award id are required")
	}
	if !knownAward(awardID) {
		return fmt.Errorf("unknown award %q", awardID)
	}

	if err := s.grants.Grant(ctx, memberID, awardID, admin); err != nil {
		return err
	}

	s.log(ctx, admin, "MEDALLA_OTORGADA", fmt.Sprintf("Miembro: %s, Condecoración: %s", memberID, awardID), domain.SeverityInfo)
	s.roster.Invalidate()
	return nil
}

func (s *AdminService) Logs(ctx context.Context) ([]domain.AuditLogEntry, error) {
	return s.audit.List(ctx)
}

// log appends to the audit trail. Audit failures never fail the operation
// they describe.
func (s *AdminService) log(ctx context.Context, admin, action, details, severity string) {
	if _, err := s.audit.Append(ctx, admin, action, details, severity); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to append audit log")
	}
}

func knownAward(id string) bool {
	for _, a := range stats.MedalCatalog() {
		if a.ID == id {
			return true
		}
	}
	for _, a := range stats.AchievementCatalog() {
		if a.ID == id {
			return true
		}
	}
	return false
}
