package stats

import "mission-tracker/internal/domain"

// BuildHistory folds the canonical mission list into per-operator profiles.
// Missions must already be sorted by date ascending; the fold relies on that
// order for first/last seen and does not re-derive it. Idempotent: the same
// input always yields structurally identical profiles.
func BuildHistory(missions []domain.CanonicalMission) map[string]*domain.PlayerProfile {
	profiles := make(map[string]*domain.PlayerProfile)

	for _, m := range missions {
		for _, p := range m.Participants {
			profile, ok := profiles[p.Name]
			if !ok {
				profile = &domain.PlayerProfile{
					Name:         p.Name,
					FirstSeen:    m.Date,
					LastSeen:     m.Date,
					BestMission:  domain.MissionMark{Name: "N/A", Kills: -1},
					WorstMission: domain.MissionMark{Name: "N/A", Deaths: -1},
				}
				profiles[p.Name] = profile
			}

			profile.LastSeen = m.Date
			profile.MissionCount++
			profile.PlaytimeSec += m.DurationSec
			profile.TotalKills += p.KillsTotal
			profile.TotalDeaths += p.Deaths
			profile.Breakdown.Infantry += p.KillsInfantry
			profile.Breakdown.Armor += p.KillsArmor
			profile.Breakdown.Air += p.KillsAir
			profile.Breakdown.Soft += p.KillsSoft
			profile.History = append(profile.History, domain.HistoryEntry{
				Mission:     m.CleanName,
				Date:        m.Date,
				DurationSec: m.DurationSec,
				Kills:       p.KillsTotal,
				Deaths:      p.Deaths,
			})

			if p.KillsTotal > profile.BestMission.Kills {
				profile.BestMission = domain.MissionMark{Name: m.CleanName, Kills: p.KillsTotal}
			}
			if p.Deaths > profile.WorstMission.Deaths {
				profile.WorstMission = domain.MissionMark{Name: m.CleanName, Deaths: p.Deaths}
			}
		}
	}

	return profiles
}
