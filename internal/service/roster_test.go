package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"mission-tracker/internal/domain"
)

func TestLinkProfileManualMapping(t *testing.T) {
	profiles := map[string]*domain.PlayerProfile{
		"Antonio": {Name: "Antonio"},
	}
	m := domain.GuildMember{ID: "253629694149132289", DisplayName: "[CBO] Toni"}

	assert.Same(t, profiles["Antonio"], linkProfile(m, profiles))
}

func TestLinkProfileExactNameIgnoresClanTag(t *testing.T) {
	profiles := map[string]*domain.PlayerProfile{
		"Viper": {Name: "Viper"},
	}
	m := domain.GuildMember{ID: "1", DisplayName: "[SGT] viper"}

	assert.Same(t, profiles["Viper"], linkProfile(m, profiles))
}

func TestLinkProfileSubstringFallbackIsStable(t *testing.T) {
	profiles := map[string]*domain.PlayerProfile{
		"Maverick_B": {Name: "Maverick_B"},
		"Maverick_A": {Name: "Maverick_A"},
	}
	m := domain.GuildMember{ID: "1", DisplayName: "maverick"}

	assert.Same(t, profiles["Maverick_A"], linkProfile(m, profiles), "lowest candidate name wins")
}

func TestLinkProfileNoMatch(t *testing.T) {
	profiles := map[string]*domain.PlayerProfile{"Viper": {Name: "Viper"}}

	assert.Nil(t, linkProfile(domain.GuildMember{ID: "1", DisplayName: "Ghost"}, profiles))
	assert.Nil(t, linkProfile(domain.GuildMember{ID: "1", DisplayName: "[TAG]"}, profiles), "empty after tag strip")
}

func TestAttendanceBand(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{90, "high"},
		{75, "high"},
		{74.9, "medium"},
		{50, "medium"},
		{25, "low"},
		{10, "inactive"},
		{0, "inactive"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, attendanceBand(tt.pct), "pct %.1f", tt.pct)
	}
}
