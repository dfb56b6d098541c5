package entities

import "time"

type Phase string

const (
	PhaseInit   Phase = "init"
	PhaseVoting Phase = "voting"
	PhaseClosed Phase = "closed"
)

// NextPhase returns the only legal successor of a phase. Closed is terminal.
func (p Phase) NextPhase() (Phase, bool) {
	switch p {
	case PhaseInit:
		return PhaseVoting, true
	case PhaseVoting:
		return PhaseClosed, true
	default:
		return "", false
	}
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseInit, PhaseVoting, PhaseClosed:
		return true
	default:
		return false
	}
}

type Election struct {
	ElectionID      string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	Phase           Phase
	ContractAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WindowOpen reports whether the configured voting window [StartTime, EndTime)
// contains the given instant. Phase is administrator-driven and may lag real
// time, so ballot admission checks this independently of Phase.
func (e Election) WindowOpen(now time.Time) bool {
	now = now.UTC()
	return !now.Before(e.StartTime.UTC()) && now.Before(e.EndTime.UTC())
}

type Position struct {
	PositionID string
	ElectionID string
	Title      string
	// Handle is the numeric identifier shared with the on-chain contract.
	Handle    int64
	CreatedAt time.Time
}

type Party struct {
	PartyID   string
	Name      string
	LogoURL   string
	CreatedAt time.Time
}

type Candidate struct {
	CandidateID string
	ElectionID  string
	PositionID  string
	PartyID     string
	Name        string
	Bio         string
	Manifesto   string
	PhotoURL    string
	Handle      int64
	CreatedAt   time.Time
}
