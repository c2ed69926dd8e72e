package models

import "time"

// xad0w.b1ts stage constants
const (
	StageIdle     = "idle"
	StageDecision = "decision"
	StageGuess    = "guess"
	StageComplete = "complete"
)

// Decision majority constants
const (
	MajorityYes = "yes"
	MajorityNo  = "no"
	MajorityTie = "tie"
)

// Decision vote values
const (
	DecisionYes = "yes"
	DecisionNo  = "no"
)

// Request types

type CheckInRequest struct {
	EventDate string `json:"eventDate"`
	TeamID    string `json:"teamId"`
	MemberID  string `json:"memberId"`
}

type PreCheckInRequest struct {
	EventDate string `json:"eventDate"`
	MemberID  string `json:"memberId"`
}

type PitchEntry struct {
	TeamID   string `json:"teamId"`
	Appeal   Score  `json:"appeal"`
	Surprise Score  `json:"surprise"`
	Time     Score  `json:"time"`
	Content  Score  `json:"content"`
	Effort   Score  `json:"effort"`
}

type PitchVoteRequest struct {
	EventDate string       `json:"eventDate"`
	VoterID   string       `json:"voterId"`
	Votes     []PitchEntry `json:"votes"`
}

type ChallengeEntry struct {
	TeamID        string `json:"teamId"`
	OrderPosition *int   `json:"orderPosition"`
}

type ChallengeVoteRequest struct {
	EventDate string           `json:"eventDate"`
	VoterID   string           `json:"voterId"`
	Orderings []ChallengeEntry `json:"orderings"`
}

type DecisionVoteRequest struct {
	EventDate   string `json:"eventDate"`
	VoterID     string `json:"voterId"`
	Participate *bool  `json:"participate"`
}

type GuessVoteRequest struct {
	EventDate string `json:"eventDate"`
	VoterID   string `json:"voterId"`
	TeamID    string `json:"teamId"`
}

type TriggerRequest struct {
	EventDate       string  `json:"eventDate"`
	Stage           string  `json:"stage"`
	DurationMinutes float64 `json:"durationMinutes"`
	ResetVotes      bool    `json:"resetVotes"`
	AdminID         string  `json:"adminId"`
}

type SetTargetRequest struct {
	EventDate string `json:"eventDate"`
	TeamID    string `json:"teamId"`
}

type StateCommandRequest struct {
	EventDate string `json:"eventDate"`
	Command   string `json:"command"`
}

type ResetRequest struct {
	EventDate     string `json:"eventDate"`
	NextEventDate string `json:"nextEventDate"`
}

type RetryPenaltyRequest struct {
	EventDate string `json:"eventDate"`
}

// Response types

type PreCheckInResponse struct {
	MemberID  string `json:"memberId"`
	Attending bool   `json:"attending"`
}

type VoteBatchResponse struct {
	Stored  int    `json:"stored"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

type Status struct {
	EventDate      string          `json:"eventDate"`
	CheckIns       []CheckIn       `json:"checkins"`
	PreCheckIns    []PreCheckIn    `json:"preCheckins"`
	PitchVotes     []PitchVote     `json:"pitchVotes"`
	ChallengeVotes []ChallengeVote `json:"challengeVotes"`
	XadowVotes     []XadowVote     `json:"xadowVotes"`
	XadowDecision  *XadowDecision  `json:"xadowDecision"`
	State          VotingState     `json:"state"`
	BlockedTeamID  string          `json:"blockedTeamId,omitempty"`
}

type ResultsResponse struct {
	EventDate string         `json:"eventDate"`
	Standings []TeamStanding `json:"standings"`
}

// Domain types

type CheckIn struct {
	EventDate   string    `json:"eventDate"`
	MemberID    string    `json:"memberId"`
	TeamID      string    `json:"teamId"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

type PreCheckIn struct {
	EventDate string    `json:"eventDate"`
	MemberID  string    `json:"memberId"`
	CreatedAt time.Time `json:"createdAt"`
}

type PitchVote struct {
	EventDate string    `json:"eventDate"`
	TeamID    string    `json:"teamId"`
	VoterID   string    `json:"voterId"`
	Appeal    int       `json:"appeal"`
	Surprise  int       `json:"surprise"`
	Time      int       `json:"time"`
	Content   int       `json:"content"`
	Effort    int       `json:"effort"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ChallengeVote struct {
	EventDate     string    `json:"eventDate"`
	TeamID        string    `json:"teamId"`
	VoterID       string    `json:"voterId"`
	OrderPosition *int      `json:"orderPosition"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type XadowVote struct {
	EventDate string    `json:"eventDate"`
	Stage     string    `json:"stage"`
	VoterID   string    `json:"voterId"`
	TeamID    *string   `json:"teamId"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type XadowDecision struct {
	EventDate   string    `json:"eventDate"`
	TeamID      string    `json:"teamId"`
	AdminID     string    `json:"adminId"`
	IsXadowTeam bool      `json:"isXadowTeam"`
	DecidedAt   time.Time `json:"decidedAt"`
}

type VotingState struct {
	EventDate        string           `json:"eventDate"`
	Version          int64            `json:"version"`
	CheckinsOpen     bool             `json:"checkinsOpen"`
	PitchLocked      bool             `json:"pitchLocked"`
	ChallengeLocked  bool             `json:"challengeLocked"`
	XadowStage       string           `json:"xadowStage"`
	DecisionDeadline *time.Time       `json:"decisionDeadline"`
	GuessDeadline    *time.Time       `json:"guessDeadline"`
	XadowTargetTeam  string           `json:"xadowTargetTeam,omitempty"`
	TargetSet        bool             `json:"targetSet"`
	DecisionResults  *DecisionResults `json:"decisionResults"`
	GuessResults     *GuessResults    `json:"guessResults"`
	LastResetAt      *time.Time       `json:"lastResetAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Redacted returns a copy that is safe to show to participants: the target
// team stays secret until the game is complete.
func (s VotingState) Redacted() VotingState {
	s.TargetSet = s.XadowTargetTeam != ""
	if s.XadowStage != StageComplete {
		s.XadowTargetTeam = ""
	}
	return s
}

type DecisionResults struct {
	Yes      int    `json:"yes"`
	No       int    `json:"no"`
	Total    int    `json:"total"`
	Majority string `json:"majority"`
}

type GuessResults struct {
	Tally          map[string]int  `json:"tally"`
	LeadingTeam    string          `json:"leadingTeam"`
	LeadingVotes   int             `json:"leadingVotes"`
	VotesCast      int             `json:"votesCast"`
	Eligible       int             `json:"eligible"`
	Required       int             `json:"required"`
	HasEnoughVotes bool            `json:"hasEnoughVotes"`
	TargetTeam     string          `json:"targetTeam"`
	Success        bool            `json:"success"`
	PenaltyApplied bool            `json:"penaltyApplied"`
	PenaltyError   string          `json:"penaltyError,omitempty"`
	Penalty        *PenaltySummary `json:"penalty,omitempty"`
	ComputedAt     time.Time       `json:"computedAt"`
}

// PenaltyDue reports whether the community lost with a valid quorum.
func (g *GuessResults) PenaltyDue() bool {
	return g != nil && g.HasEnoughVotes && !g.Success
}

type PenaltySummary struct {
	Points                  int      `json:"points"`
	Category                string   `json:"category"`
	Description             string   `json:"description"`
	Applied                 int      `json:"applied"`
	Skipped                 int      `json:"skipped"`
	SkippedNoParticipation  int      `json:"skippedNoParticipation"`
	SkippedAlreadyPenalized int      `json:"skippedAlreadyPenalized"`
	AppliedSample           []string `json:"appliedSample"`
	SkippedSample           []string `json:"skippedSample"`
}

type TeamStanding struct {
	TeamID                string  `json:"teamId"`
	PitchVotes            int     `json:"pitchVotes"`
	PitchMean             float64 `json:"pitchMean"`
	PitchMedian           float64 `json:"pitchMedian"`
	PitchP10              float64 `json:"pitchP10"`
	PitchP90              float64 `json:"pitchP90"`
	ChallengeVotes        int     `json:"challengeVotes"`
	ChallengeMeanPosition float64 `json:"challengeMeanPosition"`
	Rank                  int     `json:"rank"` // 1-indexed ranking
}

// Message is a real-time push to observers.
type Message struct {
	Type      string `json:"type"`
	EventDate string `json:"eventDate"`
	Payload   any    `json:"payload,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
