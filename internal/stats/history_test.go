package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mission-tracker/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func historyFixture() []domain.CanonicalMission {
	return []domain.CanonicalMission{
		{
			CleanName:   "Op Alpha",
			Date:        day(1),
			DurationSec: 3600,
			Participants: []domain.Participant{
				{Name: "Bob", KillsTotal: 5, KillsInfantry: 4, KillsArmor: 1, Deaths: 1},
				{Name: "Ann", KillsTotal: 2, KillsInfantry: 2},
			},
		},
		{
			CleanName:   "Op Bravo",
			Date:        day(8),
			DurationSec: 5400,
			Participants: []domain.Participant{
				{Name: "Bob", KillsTotal: 12, KillsAir: 3, KillsInfantry: 9},
			},
		},
	}
}

func TestBuildHistoryFold(t *testing.T) {
	profiles := BuildHistory(historyFixture())
	require.Len(t, profiles, 2)

	bob := profiles["Bob"]
	require.NotNil(t, bob)
	assert.Equal(t, day(1), bob.FirstSeen)
	assert.Equal(t, day(8), bob.LastSeen)
	assert.Equal(t, 2, bob.MissionCount)
	assert.Equal(t, 17, bob.TotalKills)
	assert.Equal(t, 1, bob.TotalDeaths)
	assert.Equal(t, 9000, bob.PlaytimeSec)
	assert.Equal(t, domain.KillBreakdown{Infantry: 13, Armor: 1, Air: 3}, bob.Breakdown)
	require.Len(t, bob.History, 2)
	assert.Equal(t, "Op Alpha", bob.History[0].Mission)

	ann := profiles["Ann"]
	require.NotNil(t, ann)
	assert.Equal(t, 1, ann.MissionCount)
	assert.Equal(t, day(1), ann.FirstSeen)
	assert.Equal(t, day(1), ann.LastSeen)
}

func TestBuildHistoryBestAndWorst(t *testing.T) {
	profiles := BuildHistory(historyFixture())

	bob := profiles["Bob"]
	assert.Equal(t, domain.MissionMark{Name: "Op Bravo", Kills: 12}, bob.BestMission)
	assert.Equal(t, domain.MissionMark{Name: "Op Alpha", Deaths: 1}, bob.WorstMission)

	// Zero kills still beats the -1 sentinel, so a player with no kills
	// points at a real mission, not N/A.
	ann := profiles["Ann"]
	assert.Equal(t, "Op Alpha", ann.BestMission.Name)
	assert.Equal(t, 2, ann.BestMission.Kills)
	assert.Equal(t, "Op Alpha", ann.WorstMission.Name)
	assert.Equal(t, 0, ann.WorstMission.Deaths)
}

func TestBuildHistoryIdempotent(t *testing.T) {
	first := BuildHistory(historyFixture())
	second := BuildHistory(historyFixture())
	assert.Equal(t, first, second)
}

func TestBuildHistoryEmpty(t *testing.T) {
	assert.Empty(t, BuildHistory(nil))
}
