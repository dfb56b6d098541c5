package entities

import "time"

// Ballot is an accepted vote record. It is immutable once accepted; only the
// external transaction reference may be attached later for reconciliation.
type Ballot struct {
	BallotID    string
	ElectionID  string
	PositionID  string
	CandidateID string
	VoterKey    string
	CastAt      time.Time
	TxRef       string
}

// EligibilityEntry whitelists one voter for one election. Absence of an entry
// means not eligible.
type EligibilityEntry struct {
	ElectionID  string
	VoterKey    string
	Whitelisted bool
	GrantedAt   time.Time
}

// RollEntry is a pre-registered electoral roll record, checked before an
// eligibility grant. Roll membership and whitelisting are separate concerns:
// the roll says who may register, the whitelist says who may vote.
type RollEntry struct {
	ElectionID string
	RollKey    string
	Name       string
	MemberID   string
	CreatedAt  time.Time
}

type CandidateTally struct {
	Candidate Candidate
	Votes     int
}

type PositionResult struct {
	Position   Position
	Candidates []CandidateTally
}

type ElectionResults struct {
	Election  Election
	Positions []PositionResult
	TalliedAt time.Time
}
