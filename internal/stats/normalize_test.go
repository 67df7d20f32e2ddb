package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mission-tracker/internal/domain"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func rawFromJSON(t *testing.T, s string) domain.RawMission {
	t.Helper()
	var raw domain.RawMission
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestNormalizeBasicMission(t *testing.T) {
	raw := rawFromJSON(t, `{
		"name": "Op_Alpha",
		"date": "2024-01-10",
		"duration_sec": 3600,
		"players": [
			{"name": "Bob", "killsTotal": 5},
			{"name": "Ann", "killsTotal": 3}
		]
	}`)

	m := Normalize(raw, 0, domain.MetadataFragment{}, nil, testNow)

	assert.Equal(t, "Op Alpha", m.CleanName)
	assert.Equal(t, 2, m.AttendeesCount)
	assert.Equal(t, 8, m.Kills)
	assert.Equal(t, 60, m.DurationMin)
	assert.Equal(t, DefaultDifficulty, m.Difficulty)
	assert.Equal(t, DefaultAbandonReason, m.AbandonReason)
	assert.Equal(t, DefaultZeusIntensity, m.ZeusIntensity)
	assert.Zero(t, m.Rating)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), m.Date)
}

func TestNormalizeDeletedUsersKeepKills(t *testing.T) {
	raw := rawFromJSON(t, `{
		"name": "Op_Bravo",
		"players": [
			{"name": "Bob", "killsTotal": 5},
			{"name": "Ghost", "killsTotal": 7}
		]
	}`)

	deleted := map[string]struct{}{"Ghost": {}}
	m := Normalize(raw, 0, domain.MetadataFragment{}, deleted, testNow)

	assert.Equal(t, []string{"Bob"}, m.Attendees)
	assert.Equal(t, 1, m.AttendeesCount)
	assert.Equal(t, 12, m.Kills, "deleted players still count toward mission kills")
}

func TestNormalizeAttendeesTrimmedAndDeduped(t *testing.T) {
	raw := domain.RawMission{
		Name: "Op_Charlie",
		Players: []domain.Participant{
			{Name: " Bob "},
			{Name: "Bob"},
			{Name: ""},
			{Name: "Ann"},
		},
	}

	m := Normalize(raw, 0, domain.MetadataFragment{}, nil, testNow)
	assert.Equal(t, []string{"Bob", "Ann"}, m.Attendees)
}

func TestNormalizeAttendeesFallback(t *testing.T) {
	raw := rawFromJSON(t, `{"name": "Op_Delta", "attendees": ["Bob", "Ann"]}`)

	m := Normalize(raw, 0, domain.MetadataFragment{}, nil, testNow)
	assert.Equal(t, []string{"Bob", "Ann"}, m.Attendees)
	assert.Zero(t, m.Kills, "bare-name attendees carry no kill data")
}

func TestNormalizeFragmentOverrides(t *testing.T) {
	raw := rawFromJSON(t, `{"name": "Op_Echo", "date": "2024-02-01", "tags": ["asalto"]}`)
	frag := domain.MetadataFragment{
		Rating:        4,
		Difficulty:    "Alta",
		AbandonCount:  2,
		AbandonReason: "Bugs",
		Tags:          []string{"cqb", "CQB", " sigilo "},
		CustomDate:    "2024-03-05",
	}

	m := Normalize(raw, 0, frag, nil, testNow)

	assert.Equal(t, 4.0, m.Rating)
	assert.Equal(t, "Alta", m.Difficulty)
	assert.Equal(t, 2, m.AbandonCount)
	assert.Equal(t, "Bugs", m.AbandonReason)
	assert.Equal(t, []string{"CQB", "SIGILO"}, m.Tags, "fragment tags replace raw tags, uppercased and deduped")
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), m.Date, "custom date beats raw date")
}

func TestNormalizeInvalidDateFallsBackToNow(t *testing.T) {
	for _, bad := range []string{"", "n/a", "10 de enero", "2024-13-45"} {
		m := Normalize(domain.RawMission{Name: "Op", Date: bad}, 0, domain.MetadataFragment{}, nil, testNow)
		assert.Equal(t, testNow, m.Date, "date %q", bad)
	}
}

func TestNormalizeDurationFallback(t *testing.T) {
	raw := rawFromJSON(t, `{"name": "Op", "duration": "5400"}`)
	m := Normalize(raw, 0, domain.MetadataFragment{}, nil, testNow)
	assert.Equal(t, 5400, m.DurationSec)
	assert.Equal(t, 90, m.DurationMin)
}

func TestNormalizeAllSortsByDateStable(t *testing.T) {
	raws := []domain.RawMission{
		{Name: "Later", Date: "2024-03-01"},
		{Name: "Early", Date: "2024-01-01"},
		{Name: "SameDay_B", Date: "2024-02-01"},
		{Name: "SameDay_A", Date: "2024-02-01"},
	}

	missions := NormalizeAll(raws, nil, nil, testNow)

	require.Len(t, missions, 4)
	assert.Equal(t, "Early", missions[0].CleanName)
	assert.Equal(t, "SameDay B", missions[1].CleanName, "equal dates keep dataset order")
	assert.Equal(t, "SameDay A", missions[2].CleanName)
	assert.Equal(t, "Later", missions[3].CleanName)
}

func TestNormalizeAllResolvesOverlayFuzzily(t *testing.T) {
	raws := []domain.RawMission{{Mission: "co@12_Op_Foxtrot.pbo", Date: "2024-01-01"}}
	overlay := domain.NewMetadataOverlay()
	overlay.Set("Op Foxtrot", domain.MetadataFragment{Rating: 5, Difficulty: "Extrema"})

	missions := NormalizeAll(raws, overlay, nil, testNow)

	require.Len(t, missions, 1)
	assert.Equal(t, 5.0, missions[0].Rating)
	assert.Equal(t, "Extrema", missions[0].Difficulty)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeAll(nil, nil, nil, testNow))
}
