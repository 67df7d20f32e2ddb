package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"mission-tracker/internal/domain"
)

// Red-flag engagement thresholds: five or more missions makes a veteran, two
// or fewer a newbie. Inactive profiles in between land in neither list.
const (
	veteranMissionFloor = 5
	newbieMissionCeil   = 2
)

// OfficialTags is the fixed whitelist tag preferences group over.
var OfficialTags = []string{
	"OFICIAL", "ENTRENAMIENTO", "SIGILO", "CQB", "AEREA", "HARDCORE",
	"ROLEPLAY", "DEFENSA", "CHECKPOINT", "ARCADE", "VEHICULOS", "ASALTO",
}

type TrendPoint struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type RedFlagPlayer struct {
	Name         string    `json:"name"`
	MissionCount int       `json:"missionCount"`
	LastSeen     time.Time `json:"lastSeen"`
	DaysInactive int       `json:"daysInactive"`
}

type RedFlagReport struct {
	Veterans []RedFlagPlayer `json:"veterans"`
	Newbies  []RedFlagPlayer `json:"newbies"`
}

type ScoredMission struct {
	domain.CanonicalMission
	Score float64 `json:"score"`
}

type PreferenceGroup struct {
	Name          string `json:"name"`
	AvgAttendance int    `json:"avg"`
}

type ReasonTotal struct {
	Name  string `json:"name"`
	Total int    `json:"value"`
}

type ZeusGroup struct {
	Name        string  `json:"name"`
	AvgAbandons float64 `json:"avgAbandon"`
}

type ScatterPoint struct {
	Name      string  `json:"name"`
	Kills     int     `json:"x"`
	Attendees int     `json:"y"`
	Weight    float64 `json:"z"`
	Rating    float64 `json:"rating"`
}

// AttendanceTrend returns (name, attendee count) points in chronological
// order. lastN == 0 means full history, otherwise the trailing window.
func AttendanceTrend(missions []domain.CanonicalMission, lastN int) []TrendPoint {
	points := make([]TrendPoint, 0, len(missions))
	for _, m := range missions {
		points = append(points, TrendPoint{Name: m.CleanName, Count: m.AttendeesCount})
	}
	if lastN > 0 && len(points) > lastN {
		points = points[len(points)-lastN:]
	}
	return points
}

// AverageAttendance is the rounded mean attendee count, 0 for an empty list.
func AverageAttendance(missions []domain.CanonicalMission) int {
	if len(missions) == 0 {
		return 0
	}
	sum := 0
	for _, m := range missions {
		sum += m.AttendeesCount
	}
	return int(math.Round(float64(sum) / float64(len(missions))))
}

// ActivePlayerCount counts profiles last seen within the window of now.
func ActivePlayerCount(profiles map[string]*domain.PlayerProfile, now time.Time, window time.Duration) int {
	active := 0
	for _, p := range profiles {
		if now.Sub(p.LastSeen) < window {
			active++
		}
	}
	return active
}

// AttendanceRate is round(avg/active*100), defined as 0 when nobody is
// active.
func AttendanceRate(avgAttendance, activePlayers int) int {
	if activePlayers <= 0 {
		return 0
	}
	return int(math.Round(float64(avgAttendance) / float64(activePlayers) * 100))
}

// RedFlags partitions inactive profiles into veteran and newbie at-risk
// lists, ordered by days inactive descending (name breaks ties). Profiles
// with 3 or 4 missions are deliberately excluded from both lists; that is the
// documented behavior, not an oversight.
func RedFlags(profiles map[string]*domain.PlayerProfile, now time.Time, window time.Duration) RedFlagReport {
	var report RedFlagReport
	for name, p := range profiles {
		inactive := now.Sub(p.LastSeen)
		if inactive <= window {
			continue
		}
		flagged := RedFlagPlayer{
			Name:         name,
			MissionCount: p.MissionCount,
			LastSeen:     p.LastSeen,
			DaysInactive: int(inactive.Hours() / 24),
		}
		switch {
		case p.MissionCount >= veteranMissionFloor:
			report.Veterans = append(report.Veterans, flagged)
		case p.MissionCount <= newbieMissionCeil:
			report.Newbies = append(report.Newbies, flagged)
		}
	}
	sortFlags(report.Veterans)
	sortFlags(report.Newbies)
	return report
}

func sortFlags(flags []RedFlagPlayer) {
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].DaysInactive != flags[j].DaysInactive {
			return flags[i].DaysInactive > flags[j].DaysInactive
		}
		return flags[i].Name < flags[j].Name
	})
}

// ScoreMissions ranks missions by attendance*1.5 + rating*10 - abandons*5,
// descending. The sort is stable so tied scores keep input order; best is the
// first element, worst the last.
func ScoreMissions(missions []domain.CanonicalMission) []ScoredMission {
	scored := make([]ScoredMission, 0, len(missions))
	for _, m := range missions {
		scored = append(scored, ScoredMission{
			CanonicalMission: m,
			Score:            float64(m.AttendeesCount)*1.5 + m.Rating*10 - float64(m.AbandonCount)*5,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// groupAccumulator tracks a group-by in first-appearance order.
type groupAccumulator struct {
	order  []string
	totals map[string]*struct{ pax, count, abandons int }
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{totals: make(map[string]*struct{ pax, count, abandons int })}
}

func (g *groupAccumulator) add(key string, pax, abandons int) {
	entry, ok := g.totals[key]
	if !ok {
		entry = &struct{ pax, count, abandons int }{}
		g.totals[key] = entry
		g.order = append(g.order, key)
	}
	entry.pax += pax
	entry.count++
	entry.abandons += abandons
}

// TagPreferences averages attendee count per official tag, sorted by average
// descending. Tags outside the whitelist are ignored.
func TagPreferences(missions []domain.CanonicalMission) []PreferenceGroup {
	official := make(map[string]struct{}, len(OfficialTags))
	for _, t := range OfficialTags {
		official[t] = struct{}{}
	}

	acc := newGroupAccumulator()
	for _, m := range missions {
		for _, tag := range m.Tags {
			if _, ok := official[tag]; ok {
				acc.add(tag, m.AttendeesCount, 0)
			}
		}
	}
	return acc.preferences()
}

// DifficultyPreferences averages attendee count per difficulty label, sorted
// by average descending.
func DifficultyPreferences(missions []domain.CanonicalMission) []PreferenceGroup {
	acc := newGroupAccumulator()
	for _, m := range missions {
		acc.add(m.Difficulty, m.AttendeesCount, 0)
	}
	return acc.preferences()
}

func (g *groupAccumulator) preferences() []PreferenceGroup {
	groups := make([]PreferenceGroup, 0, len(g.order))
	for _, name := range g.order {
		entry := g.totals[name]
		groups = append(groups, PreferenceGroup{
			Name:          name,
			AvgAttendance: int(math.Round(float64(entry.pax) / float64(entry.count))),
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].AvgAttendance > groups[j].AvgAttendance
	})
	return groups
}

// AbandonReasonTotals sums abandon counts per reason. Missions without
// abandons contribute nothing here (they still count in every other
// aggregate). Order is first appearance.
func AbandonReasonTotals(missions []domain.CanonicalMission) []ReasonTotal {
	acc := newGroupAccumulator()
	for _, m := range missions {
		if m.AbandonCount > 0 {
			acc.add(m.AbandonReason, 0, m.AbandonCount)
		}
	}
	totals := make([]ReasonTotal, 0, len(acc.order))
	for _, name := range acc.order {
		totals = append(totals, ReasonTotal{Name: name, Total: acc.totals[name].abandons})
	}
	return totals
}

// ZeusImpact groups missions by the leading word of the Zeus-intensity label
// and averages abandons per mission in each group, ascending (gentlest game
// mastering first). Averages are kept to one decimal.
func ZeusImpact(missions []domain.CanonicalMission) []ZeusGroup {
	acc := newGroupAccumulator()
	for _, m := range missions {
		fields := strings.Fields(m.ZeusIntensity)
		if len(fields) == 0 {
			continue
		}
		acc.add(fields[0], 0, m.AbandonCount)
	}

	groups := make([]ZeusGroup, 0, len(acc.order))
	for _, name := range acc.order {
		entry := acc.totals[name]
		avg := float64(entry.abandons) / float64(entry.count)
		groups = append(groups, ZeusGroup{
			Name:        name,
			AvgAbandons: math.Round(avg*10) / 10,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].AvgAbandons < groups[j].AvgAbandons
	})
	return groups
}

// KillsAttendanceScatter yields one point per attended mission: kills on x,
// attendees on y, radius weighted by rating (unrated missions weigh as a 3).
func KillsAttendanceScatter(missions []domain.CanonicalMission) []ScatterPoint {
	var points []ScatterPoint
	for _, m := range missions {
		if m.AttendeesCount == 0 {
			continue
		}
		rating := m.Rating
		if rating == 0 {
			rating = 3
		}
		points = append(points, ScatterPoint{
			Name:      m.CleanName,
			Kills:     m.Kills,
			Attendees: m.AttendeesCount,
			Weight:    rating * 30,
			Rating:    m.Rating,
		})
	}
	return points
}
