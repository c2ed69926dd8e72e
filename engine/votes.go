// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"

	"github.com/danielhkuo/hacknight/ledger"
	"github.com/danielhkuo/hacknight/models"
	"github.com/danielhkuo/hacknight/votestate"
)

// BatchResult reports how many entries of a vote batch were stored and how
// many were dropped for targeting the voter's own team.
type BatchResult struct {
	Stored  int
	Skipped int
}

// CheckIn records the member's team for the event while check-ins are open.
func (e *Engine) CheckIn(ctx context.Context, eventDate, memberID, teamID string) (*models.CheckIn, error) {
	if memberID == "" {
		return nil, validation("member-required")
	}
	if teamID == "" {
		return nil, validation("team-required")
	}

	var out *models.CheckIn
	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		if !s.state.CheckinsOpen {
			return locked("checkins-closed")
		}
		c := models.CheckIn{EventDate: eventDate, MemberID: memberID, TeamID: teamID, CheckedInAt: e.now().UTC()}
		if err := ledger.New(e.db).UpsertCheckIn(ctx, c); err != nil {
			return err
		}
		out = &c
		e.metrics.AddVotes("checkin", 1)
		s.publish("checkin-updated", c)
		return nil
	})
	return out, err
}

// TogglePreCheckIn flips the member's intent to attend and returns it.
func (e *Engine) TogglePreCheckIn(ctx context.Context, eventDate, memberID string) (bool, error) {
	if memberID == "" {
		return false, validation("member-required")
	}

	var attending bool
	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		var err error
		attending, err = ledger.New(e.db).TogglePreCheckIn(ctx, models.PreCheckIn{
			EventDate: eventDate,
			MemberID:  memberID,
			CreatedAt: e.now().UTC(),
		})
		if err != nil {
			return err
		}
		s.publish("precheckin-updated", models.PreCheckInResponse{MemberID: memberID, Attending: attending})
		return nil
	})
	return attending, err
}

// SubmitPitch stores a pitch ballot. Entries for the voter's own team are
// dropped; a ballot with nothing else is rejected.
func (e *Engine) SubmitPitch(ctx context.Context, eventDate, voterID string, entries []models.PitchEntry) (BatchResult, error) {
	if voterID == "" {
		return BatchResult{}, validation("voter-required")
	}
	if len(entries) == 0 {
		return BatchResult{}, validation("votes-required")
	}
	for _, v := range entries {
		if v.TeamID == "" {
			return BatchResult{}, validation("team-required")
		}
	}

	var res BatchResult
	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		if s.state.PitchLocked {
			return locked("pitch-locked")
		}
		now := e.now().UTC()
		err := e.inTx(ctx, func(votes *ledger.Store, _ *votestate.Store) error {
			own, err := votes.TeamOf(ctx, eventDate, voterID)
			if err != nil {
				return err
			}
			res = BatchResult{}
			for _, v := range entries {
				if own != "" && v.TeamID == own {
					res.Skipped++
					continue
				}
				err := votes.UpsertPitchVote(ctx, models.PitchVote{
					EventDate: eventDate,
					TeamID:    v.TeamID,
					VoterID:   voterID,
					Appeal:    v.Appeal.Value(),
					Surprise:  v.Surprise.Value(),
					Time:      v.Time.Value(),
					Content:   v.Content.Value(),
					Effort:    v.Effort.Value(),
					UpdatedAt: now,
				})
				if err != nil {
					return err
				}
				res.Stored++
			}
			if res.Stored == 0 {
				return validation("self-vote-only")
			}
			return nil
		})
		if err != nil {
			return err
		}
		e.metrics.AddVotes("pitch", res.Stored)
		s.publish("vote-pitch", map[string]any{"voterId": voterID, "stored": res.Stored})
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

// SubmitChallenge stores a challenge ranking with the same self-vote rules
// as SubmitPitch.
func (e *Engine) SubmitChallenge(ctx context.Context, eventDate, voterID string, entries []models.ChallengeEntry) (BatchResult, error) {
	if voterID == "" {
		return BatchResult{}, validation("voter-required")
	}
	if len(entries) == 0 {
		return BatchResult{}, validation("votes-required")
	}
	for _, v := range entries {
		if v.TeamID == "" {
			return BatchResult{}, validation("team-required")
		}
	}

	var res BatchResult
	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		if s.state.ChallengeLocked {
			return locked("challenge-locked")
		}
		now := e.now().UTC()
		err := e.inTx(ctx, func(votes *ledger.Store, _ *votestate.Store) error {
			own, err := votes.TeamOf(ctx, eventDate, voterID)
			if err != nil {
				return err
			}
			res = BatchResult{}
			for _, v := range entries {
				if own != "" && v.TeamID == own {
					res.Skipped++
					continue
				}
				err := votes.UpsertChallengeVote(ctx, models.ChallengeVote{
					EventDate:     eventDate,
					TeamID:        v.TeamID,
					VoterID:       voterID,
					OrderPosition: v.OrderPosition,
					UpdatedAt:     now,
				})
				if err != nil {
					return err
				}
				res.Stored++
			}
			if res.Stored == 0 {
				return validation("self-vote-only")
			}
			return nil
		})
		if err != nil {
			return err
		}
		e.metrics.AddVotes("challenge", res.Stored)
		s.publish("vote-challenge", map[string]any{"voterId": voterID, "stored": res.Stored})
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

// SubmitDecisionVote records whether the voter wants to play. It is only
// accepted during the decision stage.
func (e *Engine) SubmitDecisionVote(ctx context.Context, eventDate, voterID string, participate bool) error {
	if voterID == "" {
		return validation("voter-required")
	}

	value := models.DecisionNo
	if participate {
		value = models.DecisionYes
	}

	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		// Past the deadline the stage only lingers while the target is unset
		if s.state.XadowStage != models.StageDecision || expired(s.state.DecisionDeadline, e.now()) {
			return locked("decision-closed")
		}
		err := e.inTx(ctx, func(votes *ledger.Store, _ *votestate.Store) error {
			own, err := votes.TeamOf(ctx, eventDate, voterID)
			if err != nil {
				return err
			}
			var team *string
			if own != "" {
				team = &own
			}
			return votes.UpsertXadowVote(ctx, models.XadowVote{
				EventDate: eventDate,
				Stage:     models.StageDecision,
				VoterID:   voterID,
				TeamID:    team,
				Value:     value,
				UpdatedAt: e.now().UTC(),
			})
		})
		if err != nil {
			return err
		}
		e.metrics.AddVotes("xadow-decision", 1)
		s.publish("xadow-vote", map[string]string{"stage": models.StageDecision, "voterId": voterID})
		return nil
	})
	return err
}

// SubmitGuessVote records the voter's guess of the secret team. Only
// checked-in members may guess, and never their own team.
func (e *Engine) SubmitGuessVote(ctx context.Context, eventDate, voterID, teamID string) error {
	if voterID == "" {
		return validation("voter-required")
	}
	if teamID == "" {
		return validation("team-required")
	}

	_, err := e.withEvent(ctx, eventDate, true, func(s *session) error {
		if s.state.XadowStage != models.StageGuess {
			return locked("guess-closed")
		}
		err := e.inTx(ctx, func(votes *ledger.Store, _ *votestate.Store) error {
			own, err := votes.TeamOf(ctx, eventDate, voterID)
			if err != nil {
				return err
			}
			if own == "" {
				return validation("not-checked-in")
			}
			if own == teamID {
				return validation("self-vote")
			}
			guess := teamID
			return votes.UpsertXadowVote(ctx, models.XadowVote{
				EventDate: eventDate,
				Stage:     models.StageGuess,
				VoterID:   voterID,
				TeamID:    &guess,
				Value:     teamID,
				UpdatedAt: e.now().UTC(),
			})
		})
		if err != nil {
			return err
		}
		e.metrics.AddVotes("xadow-guess", 1)
		s.publish("xadow-vote", map[string]string{"stage": models.StageGuess, "voterId": voterID})
		return nil
	})
	return err
}
