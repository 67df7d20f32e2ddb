package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexNumber decodes a JSON number, a numeric string, or null. Anything that
// cannot be parsed becomes zero; upstream datasets mix all three forms and a
// bad value must never poison an aggregate.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = FlexNumber(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*n = FlexNumber(v)
	}
	return nil
}

func (n FlexNumber) Int() int { return int(n) }

// Participant is one attendee entry inside a raw mission. The upstream
// dataset encodes these either as a bare name string or as an object with
// per-weapon-class kill counts and a death flag.
type Participant struct {
	Name          string `json:"name"`
	KillsTotal    int    `json:"killsTotal"`
	KillsInfantry int    `json:"killsInfantry"`
	KillsArmor    int    `json:"killsArmor"`
	KillsAir      int    `json:"killsAir"`
	KillsSoft     int    `json:"killsSoft"`
	Deaths        int    `json:"killed"`

	// BareName marks string-form entries, whose kill counts are unknown.
	BareName bool `json:"-"`
}

func (p *Participant) UnmarshalJSON(b []byte) error {
	*p = Participant{}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		p.Name = s
		p.BareName = true
		return nil
	}

	var obj struct {
		Name          string     `json:"name"`
		KillsTotal    FlexNumber `json:"killsTotal"`
		KillsInfantry FlexNumber `json:"killsInfantry"`
		KillsArmor    FlexNumber `json:"killsArmor"`
		KillsAir      FlexNumber `json:"killsAir"`
		KillsSoft     FlexNumber `json:"killsSoft"`
		Deaths        FlexNumber `json:"killed"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		p.Name = "Unknown"
		return nil
	}

	p.Name = obj.Name
	if p.Name == "" {
		p.Name = "Unknown"
	}
	p.KillsTotal = obj.KillsTotal.Int()
	p.KillsInfantry = obj.KillsInfantry.Int()
	p.KillsArmor = obj.KillsArmor.Int()
	p.KillsAir = obj.KillsAir.Int()
	p.KillsSoft = obj.KillsSoft.Int()
	p.Deaths = obj.Deaths.Int()
	return nil
}

// RawMission is an immutable record from the upstream dataset. Field presence
// varies by exporter version, so every identifier and numeric field is a
// candidate, not a guarantee.
type RawMission struct {
	ID          string        `json:"id"`
	Mission     string        `json:"mission"`
	Name        string        `json:"name"`
	Date        string        `json:"date"`
	DurationSec FlexNumber    `json:"duration_sec"`
	Duration    FlexNumber    `json:"duration"`
	Players     []Participant `json:"players"`
	Attendees   []Participant `json:"attendees"`
	Tags        []string      `json:"tags"`
	Type        string        `json:"type"`
}

// MetadataFragment is one admin-curated overlay entry. Every field may be
// absent; zero values mean "not set" and normalization applies defaults.
type MetadataFragment struct {
	Rating        FlexNumber `json:"rating,omitempty"`
	Difficulty    string     `json:"difficulty,omitempty"`
	Fluidity      string     `json:"fluidity,omitempty"`
	TechIssues    string     `json:"techIssues,omitempty"`
	AbandonCount  FlexNumber `json:"abandonCount,omitempty"`
	AbandonReason string     `json:"abandonReason,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	CustomDate    string     `json:"customDate,omitempty"`
	Atmosphere    string     `json:"atmosphere,omitempty"`
	ZeusIntensity string     `json:"zeusIntensity,omitempty"`
	Comments      string     `json:"comments,omitempty"`
	LastUpdated   time.Time  `json:"lastUpdated,omitzero"`
}

// IsZero reports whether no field of the fragment is set.
func (f MetadataFragment) IsZero() bool {
	return f.Rating == 0 && f.Difficulty == "" && f.Fluidity == "" &&
		f.TechIssues == "" && f.AbandonCount == 0 && f.AbandonReason == "" &&
		f.Tags == nil && f.CustomDate == "" && f.Atmosphere == "" &&
		f.ZeusIntensity == "" && f.Comments == "" && f.LastUpdated.IsZero()
}

// Merge overlays the set fields of delta onto f, last write wins per field.
func (f MetadataFragment) Merge(delta MetadataFragment) MetadataFragment {
	out := f
	if delta.Rating != 0 {
		out.Rating = delta.Rating
	}
	if delta.Difficulty != "" {
		out.Difficulty = delta.Difficulty
	}
	if delta.Fluidity != "" {
		out.Fluidity = delta.Fluidity
	}
	if delta.TechIssues != "" {
		out.TechIssues = delta.TechIssues
	}
	if delta.AbandonCount != 0 {
		out.AbandonCount = delta.AbandonCount
	}
	if delta.AbandonReason != "" {
		out.AbandonReason = delta.AbandonReason
	}
	if delta.Tags != nil {
		out.Tags = delta.Tags
	}
	if delta.CustomDate != "" {
		out.CustomDate = delta.CustomDate
	}
	if delta.Atmosphere != "" {
		out.Atmosphere = delta.Atmosphere
	}
	if delta.ZeusIntensity != "" {
		out.ZeusIntensity = delta.ZeusIntensity
	}
	if delta.Comments != "" {
		out.Comments = delta.Comments
	}
	if !delta.LastUpdated.IsZero() {
		out.LastUpdated = delta.LastUpdated
	}
	return out
}

// MetadataOverlay is the full overlay keyed by mission identifier. Keys keep
// insertion order so fuzzy resolution ties break deterministically.
type MetadataOverlay struct {
	keys      []string
	fragments map[string]MetadataFragment
}

func NewMetadataOverlay() *MetadataOverlay {
	return &MetadataOverlay{fragments: make(map[string]MetadataFragment)}
}

func (o *MetadataOverlay) Set(key string, frag MetadataFragment) {
	if _, ok := o.fragments[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fragments[key] = frag
}

func (o *MetadataOverlay) Get(key string) (MetadataFragment, bool) {
	if o == nil {
		return MetadataFragment{}, false
	}
	frag, ok := o.fragments[key]
	return frag, ok
}

// Keys returns overlay keys in insertion order.
func (o *MetadataOverlay) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

func (o *MetadataOverlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// CanonicalMission is the merged view of one raw mission and its resolved
// metadata fragment. Immutable once built; reproducible purely from its
// inputs and the deletion list.
type CanonicalMission struct {
	ID             string        `json:"id"`
	CleanName      string        `json:"cleanName"`
	Date           time.Time     `json:"date"`
	DurationSec    int           `json:"durationSec"`
	DurationMin    int           `json:"durationMin"`
	Attendees      []string      `json:"attendees"`
	AttendeesCount int           `json:"attendeesCount"`
	Participants   []Participant `json:"participants"`
	Kills          int           `json:"kills"`
	Rating         float64       `json:"rating"`
	Tags           []string      `json:"tags"`
	Difficulty     string        `json:"difficulty"`
	AbandonCount   int           `json:"abandonCount"`
	AbandonReason  string        `json:"abandonReason"`
	ZeusIntensity  string        `json:"zeusIntensity"`
	Fluidity       string        `json:"fluidity,omitempty"`
	TechIssues     string        `json:"techIssues,omitempty"`
	Atmosphere     string        `json:"atmosphere,omitempty"`
	Comments       string        `json:"comments,omitempty"`
}

// KillBreakdown accumulates kills per weapon class.
type KillBreakdown struct {
	Infantry int `json:"inf"`
	Armor    int `json:"armor"`
	Air      int `json:"air"`
	Soft     int `json:"soft"`
}

// MissionMark points at a single standout mission in a profile.
type MissionMark struct {
	Name   string `json:"name"`
	Kills  int    `json:"kills,omitempty"`
	Deaths int    `json:"deaths,omitempty"`
}

// HistoryEntry is one mission occurrence inside a player profile.
type HistoryEntry struct {
	Mission     string    `json:"mission"`
	Date        time.Time `json:"date"`
	DurationSec int       `json:"durationSec"`
	Kills       int       `json:"kills"`
	Deaths      int       `json:"deaths"`
}

// PlayerProfile is the per-operator historical aggregate, rebuilt from
// scratch on every pass.
type PlayerProfile struct {
	Name         string         `json:"name"`
	FirstSeen    time.Time      `json:"firstSeen"`
	LastSeen     time.Time      `json:"lastSeen"`
	MissionCount int            `json:"missionCount"`
	TotalKills   int            `json:"totalKills"`
	TotalDeaths  int            `json:"totalDeaths"`
	PlaytimeSec  int            `json:"playtimeSec"`
	Breakdown    KillBreakdown  `json:"breakdown"`
	BestMission  MissionMark    `json:"bestMission"`
	WorstMission MissionMark    `json:"worstMission"`
	History      []HistoryEntry `json:"history"`
}

// Audit log severity tiers.
const (
	SeverityInfo   = "INFO"
	SeverityWarn   = "WARN"
	SeverityDanger = "DANGER"
)

// AuditLogEntry is one append-only admin action record.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Admin     string    `json:"admin"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

// GuildMember is the slice of a Discord member the roster needs.
type GuildMember struct {
	ID          string
	DisplayName string
	AvatarURL   string
	JoinedAt    time.Time
	RoleIDs     []string
}

// Operator is one roster entry: a guild member with rank, specialty and the
// linked player profile, if any.
type Operator struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Avatar         string         `json:"avatar"`
	Rank           string         `json:"rank"`
	Specialty      string         `json:"specialty"`
	IsAdmin        bool           `json:"isAdmin"`
	JoinedAt       time.Time      `json:"joinedAt"`
	Stats          *PlayerProfile `json:"stats,omitempty"`
	AttendancePct  float64        `json:"attendancePct"`
	AttendanceBand string         `json:"attendanceBand"`
	Medals         []Award        `json:"medals"`
	Achievements   []Award        `json:"achievements"`
}

// Award is a medal or achievement state for one operator.
type Award struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Desc     string `json:"desc,omitempty"`
	Icon     string `json:"icon"`
	Achieved bool   `json:"achieved"`
}

// MissionIntel is the structured result of parsing a free-text briefing.
type MissionIntel struct {
	MessageID string    `json:"messageId"`
	Title     string    `json:"title"`
	Faction   string    `json:"faction"`
	Location  string    `json:"location"`
	Date      string    `json:"date"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
}
