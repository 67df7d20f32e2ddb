package stats

import (
	"math"
	"time"

	"mission-tracker/internal/domain"
)

// MedalCatalog returns the medal definitions, all unachieved.
func MedalCatalog() []domain.Award {
	return []domain.Award{
		{ID: "participation", Name: "Deber Cumplido (+90% Asistencia)", Icon: "Activity"},
		{ID: "kills_500", Name: "Exterminador (+500 Bajas)", Icon: "Skull"},
		{ID: "survival", Name: "Superviviente (+90% Supervivencia)", Icon: "ShieldCheck"},
		{ID: "hours_100", Name: "Veterano de Combate (+100 Horas)", Icon: "Clock"},
		{ID: "years_3", Name: "Vieja Guardia (+3 Años)", Icon: "Crown"},
	}
}

// AchievementCatalog returns the achievement definitions, all unachieved.
func AchievementCatalog() []domain.Award {
	return []domain.Award{
		{ID: "a_first", Name: "Primer Paso", Desc: "5 Misiones Completadas", Icon: "Footprints"},
		{ID: "a_ten", Name: "Regular", Desc: "15 Misiones Completadas", Icon: "Users"},
		{ID: "a_kill", Name: "Primeros Contactos", Desc: "50 Bajas confirmadas", Icon: "Crosshair"},
		{ID: "a_time", Name: "Recluta", Desc: "20h de servicio", Icon: "Clock"},
		{ID: "a_inf", Name: "Grunt", Desc: "50 Bajas Infantería", Icon: "Sword"},
		{ID: "a_at", Name: "Abrelatas", Desc: "10 Bajas Blindados", Icon: "Shield"},
		{ID: "a_aa", Name: "No Fly Zone", Desc: "10 Bajas Aéreas", Icon: "Plane"},
		{ID: "a_demo", Name: "Demolición", Desc: "15 Bajas Soft/Edificios", Icon: "Bomb"},
		{ID: "a_vet", Name: "Soldado", Desc: "50h de servicio", Icon: "Star"},
		{ID: "a_life", Name: "Experimentado", Desc: "100h de servicio", Icon: "Hourglass"},
		{ID: "a_surv", Name: "Inmortal", Desc: "0 Muertes en 5 Misiones seguidas", Icon: "Ghost"},
		{ID: "a_term", Name: "Terminator", Desc: "+20 Kills en una misión", Icon: "Zap"},
		{ID: "a_1k", Name: "La Parca", Desc: "+1000 Bajas Totales", Icon: "Skull"},
		{ID: "a_kd", Name: "Sharpshooter", Desc: "K/D Ratio > 2.0", Icon: "Target"},
		{ID: "a_hero", Name: "Héroe", Desc: "Supervivencia Global > 75%", Icon: "Heart"},
		{ID: "a_top", Name: "Leyenda", Desc: "Top 10% Asistencia", Icon: "Trophy"},
	}
}

// AwardResult is the evaluated award state for one operator.
type AwardResult struct {
	Medals        []domain.Award
	Achievements  []domain.Award
	AttendancePct float64
}

// EvaluateAwards applies the threshold rule table to a profile and OR-merges
// the manually granted set. Grants are a ratchet: a granted award stays
// achieved even when its automatic predicate no longer matches. A nil profile
// skips every predicate and pins attendance at 0; grants still apply.
func EvaluateAwards(profile *domain.PlayerProfile, totalMissions int, joinedAt, now time.Time, granted map[string]struct{}) AwardResult {
	result := AwardResult{
		Medals:       MedalCatalog(),
		Achievements: AchievementCatalog(),
	}

	if profile != nil && totalMissions > 0 {
		pct := float64(profile.MissionCount) / float64(totalMissions) * 100
		result.AttendancePct = math.Round(pct*10) / 10

		survival := 0.0
		if profile.MissionCount > 0 {
			survival = 1 - float64(profile.TotalDeaths)/float64(profile.MissionCount)
		}
		hours := profile.PlaytimeSec / 3600
		years := 0.0
		if !joinedAt.IsZero() {
			years = now.Sub(joinedAt).Hours() / (24 * 365.25)
		}
		kd := float64(profile.TotalKills)
		if profile.TotalDeaths > 0 {
			kd = float64(profile.TotalKills) / float64(profile.TotalDeaths)
		}

		fired := map[string]bool{
			"participation": pct >= 90,
			"kills_500":     profile.TotalKills >= 500,
			"survival":      survival >= 0.9 && profile.MissionCount > 10,
			"hours_100":     hours >= 100,
			"years_3":       years >= 3,

			"a_first": profile.MissionCount >= 5,
			"a_ten":   profile.MissionCount >= 15,
			"a_kill":  profile.TotalKills >= 50,
			"a_time":  hours >= 20,
			"a_inf":   profile.Breakdown.Infantry >= 50,
			"a_at":    profile.Breakdown.Armor >= 10,
			"a_aa":    profile.Breakdown.Air >= 10,
			"a_demo":  profile.Breakdown.Soft >= 15,
			"a_vet":   hours >= 50,
			"a_life":  hours >= 100,
			"a_surv":  survival >= 0.8 && profile.MissionCount > 5,
			"a_term":  profile.BestMission.Kills >= 20,
			"a_1k":    profile.TotalKills >= 1000,
			"a_kd":    kd >= 2.0 && profile.TotalKills > 50,
			"a_hero":  survival >= 0.75 && profile.MissionCount > 20,
			"a_top":   pct >= 80,
		}
		applyFired(result.Medals, fired)
		applyFired(result.Achievements, fired)
	}

	applyGrants(result.Medals, granted)
	applyGrants(result.Achievements, granted)
	return result
}

func applyFired(awards []domain.Award, fired map[string]bool) {
	for i := range awards {
		if fired[awards[i].ID] {
			awards[i].Achieved = true
		}
	}
}

func applyGrants(awards []domain.Award, granted map[string]struct{}) {
	if len(granted) == 0 {
		return
	}
	for i := range awards {
		if _, ok := granted[awards[i].ID]; ok {
			awards[i].Achieved = true
		}
	}
}
