// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"sort"

	"github.com/danielhkuo/hacknight/models"
)

// ComputeStandings aggregates pitch and challenge votes per team and ranks
// the teams.
func ComputeStandings(pitch []models.PitchVote, challenge []models.ChallengeVote) []models.TeamStanding {
	totals := make(map[string][]float64)
	positions := make(map[string][]float64)
	challengeCounts := make(map[string]int)

	for _, v := range pitch {
		totals[v.TeamID] = append(totals[v.TeamID], float64(v.Total))
	}
	for _, v := range challenge {
		challengeCounts[v.TeamID]++
		if v.OrderPosition != nil {
			positions[v.TeamID] = append(positions[v.TeamID], float64(*v.OrderPosition))
		}
	}

	teams := make(map[string]struct{})
	for id := range totals {
		teams[id] = struct{}{}
	}
	for id := range challengeCounts {
		teams[id] = struct{}{}
	}

	standings := make([]models.TeamStanding, 0, len(teams))
	for id := range teams {
		scores := totals[id]
		sort.Float64s(scores)

		standings = append(standings, models.TeamStanding{
			TeamID:                id,
			PitchVotes:            len(scores),
			PitchMean:             mean(scores),
			PitchMedian:           percentile(scores, 0.5),
			PitchP10:              percentile(scores, 0.1),
			PitchP90:              percentile(scores, 0.9),
			ChallengeVotes:        challengeCounts[id],
			ChallengeMeanPosition: mean(positions[id]),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]

		// 1. Higher mean pitch total wins
		if a.PitchMean != b.PitchMean {
			return a.PitchMean > b.PitchMean
		}

		// 2. Higher median wins
		if a.PitchMedian != b.PitchMedian {
			return a.PitchMedian > b.PitchMedian
		}

		// 3. Better (lower) challenge position wins; unranked teams go last
		ap, bp := a.ChallengeMeanPosition, b.ChallengeMeanPosition
		if ap != bp {
			if ap == 0 {
				return false
			}
			if bp == 0 {
				return true
			}
			return ap < bp
		}

		// 4. Stable tie-breaking by team ID (ascending)
		return a.TeamID < b.TeamID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// percentile calculates the p-th percentile of sorted data
// p should be in range [0, 1]
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(len(sorted)-1)
	lower := int(rank)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
