// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"math"
	"sort"

	"github.com/danielhkuo/hacknight/models"
)

// TallyDecision counts decision-stage votes.
func TallyDecision(votes []models.XadowVote) models.DecisionResults {
	var r models.DecisionResults
	for _, v := range votes {
		switch v.Value {
		case models.DecisionYes:
			r.Yes++
		case models.DecisionNo:
			r.No++
		}
	}
	r.Total = r.Yes + r.No

	switch {
	case r.Yes > r.No:
		r.Majority = models.MajorityYes
	case r.No > r.Yes:
		r.Majority = models.MajorityNo
	default:
		r.Majority = models.MajorityTie
	}
	return r
}

// RequiredVotes is the guess-stage quorum: max(1, floor(eligible*ratio)),
// or 0 when nobody is checked in.
func RequiredVotes(eligible int, ratio float64) int {
	if eligible <= 0 {
		return 0
	}
	// epsilon absorbs binary representation error, e.g. 10*0.7
	required := int(math.Floor(float64(eligible)*ratio + 1e-9))
	if required < 1 {
		required = 1
	}
	return required
}

// TallyGuess counts guess-stage votes per team and evaluates the quorum and
// outcome. The leading team has the most votes; ties go to the
// lexicographically smallest team id.
func TallyGuess(votes []models.XadowVote, eligible int, target string, ratio float64) models.GuessResults {
	r := models.GuessResults{
		Tally:      make(map[string]int),
		Eligible:   eligible,
		Required:   RequiredVotes(eligible, ratio),
		TargetTeam: target,
	}

	for _, v := range votes {
		team := v.Value
		if v.TeamID != nil {
			team = *v.TeamID
		}
		if team == "" {
			continue
		}
		r.Tally[team]++
		r.VotesCast++
	}

	teams := make([]string, 0, len(r.Tally))
	for team := range r.Tally {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	for _, team := range teams {
		if r.Tally[team] > r.LeadingVotes {
			r.LeadingTeam = team
			r.LeadingVotes = r.Tally[team]
		}
	}

	r.HasEnoughVotes = eligible > 0 && r.VotesCast >= r.Required
	r.Success = r.HasEnoughVotes && r.LeadingTeam != "" && r.LeadingTeam == target
	return r
}
