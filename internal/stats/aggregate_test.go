package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mission-tracker/internal/domain"
)

func TestAttendanceTrend(t *testing.T) {
	missions := []domain.CanonicalMission{
		{CleanName: "A", AttendeesCount: 10},
		{CleanName: "B", AttendeesCount: 12},
		{CleanName: "C", AttendeesCount: 8},
	}

	full := AttendanceTrend(missions, 0)
	require.Len(t, full, 3)
	assert.Equal(t, TrendPoint{Name: "A", Count: 10}, full[0])

	windowed := AttendanceTrend(missions, 2)
	require.Len(t, windowed, 2)
	assert.Equal(t, "B", windowed[0].Name)
	assert.Equal(t, "C", windowed[1].Name)
}

func TestAverageAttendance(t *testing.T) {
	assert.Zero(t, AverageAttendance(nil))

	missions := []domain.CanonicalMission{
		{AttendeesCount: 10},
		{AttendeesCount: 11},
	}
	assert.Equal(t, 11, AverageAttendance(missions), "10.5 rounds up")
}

func TestActivePlayerCountAndRate(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	window := 45 * 24 * time.Hour

	profiles := map[string]*domain.PlayerProfile{
		"fresh": {LastSeen: now.AddDate(0, 0, -10)},
		"edge":  {LastSeen: now.Add(-window)},
		"stale": {LastSeen: now.AddDate(0, 0, -100)},
	}

	assert.Equal(t, 1, ActivePlayerCount(profiles, now, window), "exactly-at-window counts as inactive")
	assert.Equal(t, 50, AttendanceRate(6, 12))
	assert.Zero(t, AttendanceRate(6, 0), "no active players means rate 0, not a division")
	assert.Zero(t, AttendanceRate(6, -1))
}

func TestRedFlagsPartition(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	window := 45 * 24 * time.Hour

	profiles := map[string]*domain.PlayerProfile{
		"ActiveVet":  {MissionCount: 20, LastSeen: now.AddDate(0, 0, -5)},
		"GoneVet":    {MissionCount: 8, LastSeen: now.AddDate(0, 0, -60)},
		"OlderVet":   {MissionCount: 5, LastSeen: now.AddDate(0, 0, -90)},
		"Bob":        {MissionCount: 1, LastSeen: now.AddDate(0, 0, -50)},
		"MiddleBand": {MissionCount: 3, LastSeen: now.AddDate(0, 0, -200)},
	}

	report := RedFlags(profiles, now, window)

	require.Len(t, report.Veterans, 2)
	assert.Equal(t, "OlderVet", report.Veterans[0].Name, "longest inactive first")
	assert.Equal(t, "GoneVet", report.Veterans[1].Name)

	require.Len(t, report.Newbies, 1)
	assert.Equal(t, "Bob", report.Newbies[0].Name)
	assert.Equal(t, 50, report.Newbies[0].DaysInactive)

	for _, v := range append(report.Veterans, report.Newbies...) {
		assert.NotEqual(t, "MiddleBand", v.Name, "3-4 mission profiles land in neither list")
		assert.NotEqual(t, "ActiveVet", v.Name)
	}
}

func TestScoreMissions(t *testing.T) {
	missions := []domain.CanonicalMission{
		{CleanName: "Mid", AttendeesCount: 12, Rating: 4, AbandonCount: 3},
		{CleanName: "Best", AttendeesCount: 20, Rating: 5},
		{CleanName: "Worst", AttendeesCount: 4, Rating: 1, AbandonCount: 4},
	}

	scored := ScoreMissions(missions)
	require.Len(t, scored, 3)

	assert.Equal(t, "Best", scored[0].CleanName)
	assert.Equal(t, 80.0, scored[0].Score)
	assert.Equal(t, "Mid", scored[1].CleanName)
	assert.Equal(t, 43.0, scored[1].Score, "12*1.5 + 4*10 - 3*5")
	assert.Equal(t, "Worst", scored[2].CleanName)
	assert.Equal(t, -4.0, scored[2].Score)
}

func TestScoreMissionsStableOnTies(t *testing.T) {
	missions := []domain.CanonicalMission{
		{CleanName: "First", AttendeesCount: 10},
		{CleanName: "Second", AttendeesCount: 10},
	}
	scored := ScoreMissions(missions)
	assert.Equal(t, "First", scored[0].CleanName)
	assert.Equal(t, "Second", scored[1].CleanName)
}

func TestTagPreferencesWhitelistOnly(t *testing.T) {
	missions := []domain.CanonicalMission{
		{AttendeesCount: 10, Tags: []string{"CQB", "CASERA"}},
		{AttendeesCount: 20, Tags: []string{"CQB", "SIGILO"}},
	}

	prefs := TagPreferences(missions)
	require.Len(t, prefs, 2, "unofficial tag is dropped")

	assert.Equal(t, PreferenceGroup{Name: "SIGILO", AvgAttendance: 20}, prefs[0])
	assert.Equal(t, PreferenceGroup{Name: "CQB", AvgAttendance: 15}, prefs[1])
}

func TestDifficultyPreferences(t *testing.T) {
	missions := []domain.CanonicalMission{
		{AttendeesCount: 10, Difficulty: "Normal"},
		{AttendeesCount: 14, Difficulty: "Normal"},
		{AttendeesCount: 20, Difficulty: "Alta"},
	}

	prefs := DifficultyPreferences(missions)
	require.Len(t, prefs, 2)
	assert.Equal(t, PreferenceGroup{Name: "Alta", AvgAttendance: 20}, prefs[0])
	assert.Equal(t, PreferenceGroup{Name: "Normal", AvgAttendance: 12}, prefs[1])
}

func TestAbandonReasonTotals(t *testing.T) {
	missions := []domain.CanonicalMission{
		{AbandonCount: 2, AbandonReason: "Bugs"},
		{AbandonCount: 0, AbandonReason: "Desconocido"},
		{AbandonCount: 3, AbandonReason: "Bugs"},
		{AbandonCount: 1, AbandonReason: "Lag"},
	}

	totals := AbandonReasonTotals(missions)
	require.Len(t, totals, 2, "zero-abandon missions contribute no reason")
	assert.Equal(t, ReasonTotal{Name: "Bugs", Total: 5}, totals[0])
	assert.Equal(t, ReasonTotal{Name: "Lag", Total: 1}, totals[1])
}

func TestZeusImpactGroupsByLeadingWord(t *testing.T) {
	missions := []domain.CanonicalMission{
		{ZeusIntensity: "Media (Reactiva)", AbandonCount: 2},
		{ZeusIntensity: "Media (Activa)", AbandonCount: 3},
		{ZeusIntensity: "Alta (Letal)", AbandonCount: 1},
	}

	groups := ZeusImpact(missions)
	require.Len(t, groups, 2, "variants of the same tier collapse")

	assert.Equal(t, ZeusGroup{Name: "Alta", AvgAbandons: 1}, groups[0])
	assert.Equal(t, ZeusGroup{Name: "Media", AvgAbandons: 2.5}, groups[1])
}

func TestKillsAttendanceScatter(t *testing.T) {
	missions := []domain.CanonicalMission{
		{CleanName: "Rated", Kills: 30, AttendeesCount: 12, Rating: 4},
		{CleanName: "Unrated", Kills: 10, AttendeesCount: 8},
		{CleanName: "Empty", Kills: 5, AttendeesCount: 0},
	}

	points := KillsAttendanceScatter(missions)
	require.Len(t, points, 2, "zero-attendee missions are skipped")

	assert.Equal(t, ScatterPoint{Name: "Rated", Kills: 30, Attendees: 12, Weight: 120, Rating: 4}, points[0])
	assert.Equal(t, ScatterPoint{Name: "Unrated", Kills: 10, Attendees: 8, Weight: 90, Rating: 0}, points[1])
}
