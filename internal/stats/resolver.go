// Package stats is the pure computation core: identifier resolution, mission
// normalization, player history folding, cross-cutting aggregates and award
// evaluation. Nothing here touches the clock, the network or the store; every
// function is deterministic given its inputs and tolerates empty ones.
package stats

import (
	"fmt"
	"regexp"
	"strings"

	"mission-tracker/internal/domain"
)

// sessionPrefixPattern strips exporter prefixes like "co@12_" from mission
// file names before matching.
var sessionPrefixPattern = regexp.MustCompile(`co@\d+_?`)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]`)

// CanonicalKey reduces a mission identifier to a comparable form: lowercase,
// session prefixes and the .pbo suffix removed, separators collapsed, and
// everything outside [a-z0-9] dropped.
func CanonicalKey(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(name)
	s = sessionPrefixPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.TrimSuffix(s, ".pbo")
	s = strings.ReplaceAll(s, ".", " ")
	return nonAlnumPattern.ReplaceAllString(s, "")
}

// MissionKey derives the stable identifier for a raw mission: explicit id,
// else mission file name, else display name, else a positional fallback.
func MissionKey(raw domain.RawMission, idx int) string {
	switch {
	case raw.ID != "":
		return raw.ID
	case raw.Mission != "":
		return raw.Mission
	case raw.Name != "":
		return raw.Name
	default:
		return fmt.Sprintf("mission-%d", idx)
	}
}

// DisplayName picks the human-facing name candidate for a raw mission.
func DisplayName(raw domain.RawMission, idx int) string {
	switch {
	case raw.Name != "":
		return raw.Name
	case raw.Mission != "":
		return raw.Mission
	default:
		return fmt.Sprintf("Op. %d", idx)
	}
}

// ResolveFragment finds the overlay fragment for a mission identifier: exact
// key lookup first, then the first overlay key (insertion order) whose
// canonical form equals or contains the canonical target. A miss returns an
// empty fragment, never an error. This is the single matching implementation
// shared by normalization and the lookup surface.
func ResolveFragment(target string, overlay *domain.MetadataOverlay) (domain.MetadataFragment, string, bool) {
	if overlay == nil || overlay.Len() == 0 {
		return domain.MetadataFragment{}, "", false
	}

	if frag, ok := overlay.Get(target); ok {
		return frag, target, true
	}

	canonical := CanonicalKey(target)
	if canonical == "" {
		return domain.MetadataFragment{}, "", false
	}
	for _, key := range overlay.Keys() {
		ck := CanonicalKey(key)
		if ck == canonical || strings.Contains(ck, canonical) {
			frag, _ := overlay.Get(key)
			return frag, key, true
		}
	}
	return domain.MetadataFragment{}, "", false
}
