package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"mission-tracker/internal/api"
	"mission-tracker/internal/constants"
	"mission-tracker/internal/domain"
	"mission-tracker/internal/repository"
	"mission-tracker/internal/stats"
)

// Snapshot is one fully-derived view of the community: canonical missions
// plus every aggregate the dashboard renders. Built once, shared read-only.
type Snapshot struct {
	Missions        []domain.CanonicalMission        `json:"missions"`
	Profiles        map[string]*domain.PlayerProfile `json:"profiles"`
	Trend           []stats.TrendPoint               `json:"trend"`
	AvgAttendance   int                              `json:"avgAttendance"`
	ActivePlayers   int                              `json:"activePlayers"`
	AttendanceRate  int                              `json:"attendanceRate"`
	RedFlags        stats.RedFlagReport              `json:"redFlags"`
	Scored          []stats.ScoredMission            `json:"scored"`
	BestMission     *stats.ScoredMission             `json:"bestMission"`
	WorstMission    *stats.ScoredMission             `json:"worstMission"`
	TagPrefs        []stats.PreferenceGroup          `json:"tagPreferences"`
	DiffPrefs       []stats.PreferenceGroup          `json:"difficultyPreferences"`
	AbandonReasons  []stats.ReasonTotal              `json:"abandonReasons"`
	ZeusImpact      []stats.ZeusGroup                `json:"zeusImpact"`
	Scatter         []stats.ScatterPoint             `json:"scatter"`
	TotalRegistered int                              `json:"totalRegistered"`
	FetchedAt       time.Time                        `json:"fetchedAt"`
}

type DashboardService struct {
	client   *api.MissionClient
	metadata *repository.MetadataRepository
	logger   zerolog.Logger
	ttl      time.Duration

	mu     sync.Mutex
	snap   *Snapshot
	flight singleflight.Group
}

func NewDashboardService(client *api.MissionClient, metadata *repository.MetadataRepository, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		client:   client,
		metadata: metadata,
		logger:   logger,
		ttl:      constants.SnapshotTTL,
	}
}

// Snapshot returns the current derived view. A fresh cached snapshot is
// returned directly. When the cache is stale, a single rebuild is kicked
// off and the stale snapshot is served in the meantime; only the first
// caller ever (empty cache) blocks on the rebuild.
func (s *DashboardService) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	cached := s.snap
	s.mu.Unlock()

	if cached != nil && time.Since(cached.FetchedAt) < s.ttl {
		return cached, nil
	}

	ch := s.flight.DoChan("snapshot", func() (interface{}, error) {
		snap, err := s.rebuild(context.Background())
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snap = snap
		s.mu.Unlock()
		return snap, nil
	})

	if cached != nil {
		return cached, nil
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached snapshot so the next read recomputes. Called
// after every admin write so edits are visible immediately.
func (s *DashboardService) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

func (s *DashboardService) rebuild(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	raws, err := s.client.GetMissions(ctx)
	if err != nil {
		// The dashboard still works on admin data alone; degrade rather
		// than fail the whole snapshot.
		s.logger.Error().Err(err).Msg("failed to fetch mission history, building empty snapshot")
		raws = nil
	}

	overlay, err := s.metadata.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	deletedList, err := s.metadata.ListDeletedUsers(ctx)
	if err != nil {
		return nil, err
	}
	deleted := make(map[string]struct{}, len(deletedList))
	for _, name := range deletedList {
		deleted[name] = struct{}{}
	}

	now := time.Now()
	missions := stats.NormalizeAll(raws, overlay, deleted, now)
	profiles := stats.BuildHistory(missions)

	avg := stats.AverageAttendance(missions)
	active := stats.ActivePlayerCount(profiles, now, constants.InactivityWindow)
	scored := stats.ScoreMissions(missions)

	snap := &Snapshot{
		Missions:        missions,
		Profiles:        profiles,
		Trend:           stats.AttendanceTrend(missions, constants.DefaultTrendRange),
		AvgAttendance:   avg,
		ActivePlayers:   active,
		AttendanceRate:  stats.AttendanceRate(avg, active),
		RedFlags:        stats.RedFlags(profiles, now, constants.InactivityWindow),
		Scored:          scored,
		TagPrefs:        stats.TagPreferences(missions),
		DiffPrefs:       stats.DifficultyPreferences(missions),
		AbandonReasons:  stats.AbandonReasonTotals(missions),
		ZeusImpact:      stats.ZeusImpact(missions),
		Scatter:         stats.KillsAttendanceScatter(missions),
		TotalRegistered: len(profiles),
		FetchedAt:       now,
	}
	if len(scored) > 0 {
		snap.BestMission = &scored[0]
		snap.WorstMission = &scored[len(scored)-1]
	}

	s.logger.Info().
		Int("missions", len(missions)).
		Int("players", len(profiles)).
		Dur("took", time.Since(start)).
		Msg("dashboard snapshot rebuilt")
	return snap, nil
}
