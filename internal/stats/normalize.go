package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"mission-tracker/internal/domain"
)

// Defaults applied when a metadata field is absent.
const (
	DefaultDifficulty    = "Normal"
	DefaultAbandonReason = "Desconocido"
	DefaultZeusIntensity = "Media (Reactiva)"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseDate tries the known upstream layouts; anything unparseable falls back
// to now so a bad date never propagates.
func parseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// Normalize merges one raw mission with its resolved metadata fragment into a
// canonical view. Total function: malformed input degrades to defaults and no
// error path exists. The deletion list is applied to attendees before any
// count is taken; now substitutes for missing or invalid dates.
func Normalize(raw domain.RawMission, idx int, frag domain.MetadataFragment, deleted map[string]struct{}, now time.Time) domain.CanonicalMission {
	rawPlayers := raw.Players
	if len(rawPlayers) == 0 {
		rawPlayers = raw.Attendees
	}

	// Kills sum over every raw entry; bare-name entries contribute zero.
	kills := 0
	for _, p := range rawPlayers {
		kills += p.KillsTotal
	}

	seen := make(map[string]struct{}, len(rawPlayers))
	var attendees []string
	var participants []domain.Participant
	for _, p := range rawPlayers {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, gone := deleted[name]; gone {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		attendees = append(attendees, name)
		p.Name = name
		participants = append(participants, p)
	}

	dateSource := frag.CustomDate
	if dateSource == "" {
		dateSource = raw.Date
	}

	durationSec := raw.DurationSec.Int()
	if durationSec == 0 {
		durationSec = raw.Duration.Int()
	}

	tagSource := frag.Tags
	if tagSource == nil {
		tagSource = raw.Tags
	}
	tagSeen := make(map[string]struct{}, len(tagSource))
	var tags []string
	for _, t := range tagSource {
		tag := strings.ToUpper(strings.TrimSpace(t))
		if tag == "" {
			continue
		}
		if _, dup := tagSeen[tag]; dup {
			continue
		}
		tagSeen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	difficulty := frag.Difficulty
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	abandonReason := frag.AbandonReason
	if abandonReason == "" {
		abandonReason = DefaultAbandonReason
	}
	zeus := frag.ZeusIntensity
	if zeus == "" {
		zeus = DefaultZeusIntensity
	}

	return domain.CanonicalMission{
		ID:             MissionKey(raw, idx),
		CleanName:      strings.ReplaceAll(DisplayName(raw, idx), "_", " "),
		Date:           parseDate(dateSource, now),
		DurationSec:    durationSec,
		DurationMin:    int(math.Round(float64(durationSec) / 60)),
		Attendees:      attendees,
		AttendeesCount: len(attendees),
		Participants:   participants,
		Kills:          kills,
		Rating:         float64(frag.Rating),
		Tags:           tags,
		Difficulty:     difficulty,
		AbandonCount:   frag.AbandonCount.Int(),
		AbandonReason:  abandonReason,
		ZeusIntensity:  zeus,
		Fluidity:       frag.Fluidity,
		TechIssues:     frag.TechIssues,
		Atmosphere:     frag.Atmosphere,
		Comments:       frag.Comments,
	}
}

// NormalizeAll resolves and normalizes every raw mission and returns the
// canonical list sorted by date ascending (stable, so same-date missions keep
// dataset order). This ordering is the precondition BuildHistory relies on.
func NormalizeAll(raws []domain.RawMission, overlay *domain.MetadataOverlay, deleted map[string]struct{}, now time.Time) []domain.CanonicalMission {
	missions := make([]domain.CanonicalMission, 0, len(raws))
	for idx, raw := range raws {
		frag, _, _ := ResolveFragment(MissionKey(raw, idx), overlay)
		missions = append(missions, Normalize(raw, idx, frag, deleted, now))
	}
	sort.SliceStable(missions, func(i, j int) bool {
		return missions[i].Date.Before(missions[j].Date)
	})
	return missions
}
