package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mission-tracker/internal/domain"
)

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"session prefix and map suffix", "co@12_Operacion_Test.altis", "operaciontestaltis"},
		{"pbo suffix stripped", "co@45_Op_Tormenta.pbo", "optormenta"},
		{"plain display name", "Operacion Tormenta", "operaciontormenta"},
		{"accents and punctuation dropped", "Op: Bosque-Negro (v2)", "opbosquenegrov2"},
		{"already canonical", "opalpha", "opalpha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalKey(tt.in))
		})
	}
}

func TestMissionKeyPrecedence(t *testing.T) {
	assert.Equal(t, "id-1", MissionKey(domain.RawMission{ID: "id-1", Mission: "m.pbo", Name: "Op"}, 0))
	assert.Equal(t, "m.pbo", MissionKey(domain.RawMission{Mission: "m.pbo", Name: "Op"}, 0))
	assert.Equal(t, "Op", MissionKey(domain.RawMission{Name: "Op"}, 0))
	assert.Equal(t, "mission-7", MissionKey(domain.RawMission{}, 7))
}

func TestDisplayNamePrecedence(t *testing.T) {
	assert.Equal(t, "Op Uno", DisplayName(domain.RawMission{Name: "Op Uno", Mission: "file.pbo"}, 0))
	assert.Equal(t, "file.pbo", DisplayName(domain.RawMission{Mission: "file.pbo"}, 0))
	assert.Equal(t, "Op. 3", DisplayName(domain.RawMission{}, 3))
}

func TestResolveFragmentExactMatchWinsOverFuzzy(t *testing.T) {
	o := domain.NewMetadataOverlay()
	o.Set("co@12_op_alpha", domain.MetadataFragment{Difficulty: "Alta"})
	o.Set("op alpha", domain.MetadataFragment{Difficulty: "Baja"})

	frag, key, ok := ResolveFragment("op alpha", o)
	require.True(t, ok)
	assert.Equal(t, "op alpha", key)
	assert.Equal(t, "Baja", frag.Difficulty)
}

func TestResolveFragmentFuzzy(t *testing.T) {
	o := domain.NewMetadataOverlay()
	o.Set("co@30_Op_Bravo.pbo", domain.MetadataFragment{Rating: 4})

	frag, key, ok := ResolveFragment("Op Bravo", o)
	require.True(t, ok)
	assert.Equal(t, "co@30_Op_Bravo.pbo", key)
	assert.Equal(t, domain.FlexNumber(4), frag.Rating)
}

func TestResolveFragmentContainment(t *testing.T) {
	// Overlay key canonicalizes to a superstring of the target.
	o := domain.NewMetadataOverlay()
	o.Set("Op_Bravo_Final_v3", domain.MetadataFragment{Comments: "final"})

	frag, _, ok := ResolveFragment("op bravo", o)
	require.True(t, ok)
	assert.Equal(t, "final", frag.Comments)
}

func TestResolveFragmentInsertionOrderTieBreak(t *testing.T) {
	o := domain.NewMetadataOverlay()
	o.Set("Op_Delta_v1", domain.MetadataFragment{Comments: "first"})
	o.Set("Op_Delta_v2", domain.MetadataFragment{Comments: "second"})

	frag, key, ok := ResolveFragment("op delta", o)
	require.True(t, ok)
	assert.Equal(t, "Op_Delta_v1", key, "first inserted candidate wins")
	assert.Equal(t, "first", frag.Comments)
}

func TestResolveFragmentMiss(t *testing.T) {
	o := domain.NewMetadataOverlay()
	o.Set("op alpha", domain.MetadataFragment{Rating: 5})

	frag, key, ok := ResolveFragment("something else entirely", o)
	assert.False(t, ok)
	assert.Empty(t, key)
	assert.True(t, frag.IsZero())
}

func TestResolveFragmentEmptyOverlay(t *testing.T) {
	_, _, ok := ResolveFragment("op alpha", nil)
	assert.False(t, ok)

	_, _, ok = ResolveFragment("op alpha", domain.NewMetadataOverlay())
	assert.False(t, ok)
}
