package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"mission-tracker/internal/constants"
	"mission-tracker/internal/discord"
	"mission-tracker/internal/domain"
	"mission-tracker/internal/repository"
	"mission-tracker/internal/stats"
)

// operatorMapping links Discord accounts to in-game names when the two
// drifted too far apart for fuzzy matching. Curated by staff.
var operatorMapping = map[string]string{
	"155365437895639040":  "Anakin_Machote",
	"253629694149132289":  "Antonio",
	"293455180479856641":  "Manuel2101",
	"486163046381912083":  "Opposed",
	"424210391535714304":  "andre",
	"1177709883529896056": "marti",
	"867052965931384903":  "DIDAC",
	"687883552083542059":  "Dear Vera",
	"330494281418539013":  "Foxtrot 7",
	"949864607760146512":  "Tomas",
	"978681614395645993":  "Migl",
	"753710299680604281":  "Rott",
	"1177627126120325130": "kiku",
	"1462167750683263120": "Sld. Calpe",
}

var clanTagPattern = regexp.MustCompile(`\[.*?\]`)

type rosterSnapshot struct {
	operators []domain.Operator
	fetchedAt time.Time
}

// RosterService merges three sources into one operator list: the Discord
// guild roster, the derived player profiles, and the manual medal grants.
type RosterService struct {
	discord   *discord.Client
	dashboard *DashboardService
	grants    *repository.GrantsRepository
	logger    zerolog.Logger
	ttl       time.Duration

	mu     sync.Mutex
	snap   *rosterSnapshot
	flight singleflight.Group
}

func NewRosterService(dc *discord.Client, dashboard *DashboardService, grants *repository.GrantsRepository, logger zerolog.Logger) *RosterService {
	return &RosterService{
		discord:   dc,
		dashboard: dashboard,
		grants:    grants,
		logger:    logger,
		ttl:       constants.RosterTTL,
	}
}

// Operators returns the full roster, cached with the same stale-read policy
// as the dashboard snapshot.
func (s *RosterService) Operators(ctx context.Context) ([]domain.Operator, error) {
	s.mu.Lock()
	cached := s.snap
	s.mu.Unlock()

	if cached != nil && time.Since(cached.fetchedAt) < s.ttl {
		return cached.operators, nil
	}

	ch := s.flight.DoChan("roster", func() (interface{}, error) {
		ops, err := s.rebuild(context.Background())
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snap = &rosterSnapshot{operators: ops, fetchedAt: time.Now()}
		s.mu.Unlock()
		return ops, nil
	})

	if cached != nil {
		return cached.operators, nil
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Operator), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Search matches operators by name, case-insensitive substring, capped.
func (s *RosterService) Search(ctx context.Context, query string) ([]domain.Operator, error) {
	ops, err := s.Operators(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}

	var matches []domain.Operator
	for _, op := range ops {
		if strings.Contains(strings.ToLower(op.Name), q) {
			matches = append(matches, op)
			if len(matches) >= constants.OperatorSearchLimit {
				break
			}
		}
	}
	return matches, nil
}

// Invalidate drops the roster cache. Called after a medal grant.
func (s *RosterService) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

func (s *RosterService) rebuild(ctx context.Context) ([]domain.Operator, error) {
	var (
		members []domain.GuildMember
		snap    *Snapshot
		granted map[string]map[string]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.discord.GuildMembers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.dashboard.Snapshot(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		granted, err = s.grants.GetAll(gctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to load medal grants, continuing without")
			granted = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	operators := make([]domain.Operator, 0, len(members))
	for _, m := range members {
		if !discord.IsOperator(m.RoleIDs) {
			continue
		}

		profile := linkProfile(m, snap.Profiles)
		awards := stats.EvaluateAwards(profile, len(snap.Missions), m.JoinedAt, now, granted[m.ID])

		operators = append(operators, domain.Operator{
			ID:             m.ID,
			Name:           m.DisplayName,
			Avatar:         m.AvatarURL,
			Rank:           discord.RankFor(m.RoleIDs),
			Specialty:      discord.SpecialtyFor(m.RoleIDs),
			IsAdmin:        discord.IsStaff(m.RoleIDs),
			JoinedAt:       m.JoinedAt,
			Stats:          profile,
			AttendancePct:  awards.AttendancePct,
			AttendanceBand: attendanceBand(awards.AttendancePct),
			Medals:         awards.Medals,
			Achievements:   awards.Achievements,
		})
	}

	sort.SliceStable(operators, func(i, j int) bool {
		return strings.ToLower(operators[i].Name) < strings.ToLower(operators[j].Name)
	})
	return operators, nil
}

// linkProfile resolves a guild member to a stats profile: manual mapping
// first, then exact name match, then substring either way. Clan tags in the
// display name never count against the match.
func linkProfile(m domain.GuildMember, profiles map[string]*domain.PlayerProfile) *domain.PlayerProfile {
	if mapped, ok := operatorMapping[m.ID]; ok {
		return profiles[mapped]
	}

	display := strings.ToLower(strings.TrimSpace(clanTagPattern.ReplaceAllString(m.DisplayName, "")))
	if display == "" {
		return nil
	}

	for name, p := range profiles {
		if strings.ToLower(name) == display {
			return p
		}
	}

	// Fallback: the in-game name contains the stripped display name. Pick
	// the lowest candidate so the result is stable across rebuilds.
	var bestName string
	var best *domain.PlayerProfile
	for name, p := range profiles {
		if strings.Contains(strings.ToLower(name), display) {
			if best == nil || name < bestName {
				bestName, best = name, p
			}
		}
	}
	return best
}

func attendanceBand(pct float64) string {
	switch {
	case pct >= 75:
		return "high"
	case pct >= 50:
		return "medium"
	case pct >= 25:
		return "low"
	default:
		return "inactive"
	}
}
