// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

All JSON uses camelCase field names.

# Request Types

  - CheckInRequest, PreCheckInRequest
  - PitchVoteRequest, ChallengeVoteRequest
  - DecisionVoteRequest, GuessVoteRequest
  - TriggerRequest, SetTargetRequest, StateCommandRequest
  - ResetRequest, RetryPenaltyRequest

# Domain Types

  - CheckIn, PreCheckIn, PitchVote, ChallengeVote, XadowVote
  - XadowDecision: the outcome of a game
  - VotingState: gates, stage, deadlines, target and results
  - DecisionResults, GuessResults, PenaltySummary
  - TeamStanding
  - Message: real-time push

VotingState.Redacted hides the target team until the game is complete.

# Scores

Score decodes permissively: numbers are rounded and clamped into 1-5,
anything else becomes 5.

# Stages

	StageIdle → StageDecision → StageGuess → StageComplete
*/
package models
