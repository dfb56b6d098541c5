package queries

import (
	"context"
	"strings"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

// VoterStatus summarizes one voter's standing in one election.
type VoterStatus struct {
	ElectionID   string
	VoterKey     string
	Whitelisted  bool
	RollVerified bool
	HasVoted     bool
}

// StatusUseCase serves eligibility and ledger reads.
type StatusUseCase struct {
	Elections   ports.ElectionRepository
	Eligibility ports.EligibilityRepository
	Ballots     ports.BallotRepository
}

// IsEligible reports whether the voter is whitelisted for the election.
// A missing election is an error, not "false", so callers can tell the two
// apart; a missing entry is simply not eligible.
func (uc StatusUseCase) IsEligible(ctx context.Context, electionID string, voterKey string) (bool, error) {
	electionID = strings.TrimSpace(electionID)
	voterKey = strings.TrimSpace(voterKey)
	if electionID == "" || voterKey == "" {
		return false, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return false, err
	}
	entry, found, err := uc.Eligibility.GetEligibility(ctx, electionID, voterKey)
	if err != nil {
		return false, err
	}
	return found && entry.Whitelisted, nil
}

// VerifyRollMembership checks the pre-registered electoral roll. This is the
// "may register" gate, independent of the whitelist's "may vote" gate.
func (uc StatusUseCase) VerifyRollMembership(ctx context.Context, electionID string, rollKey string) (bool, error) {
	electionID = strings.TrimSpace(electionID)
	rollKey = strings.TrimSpace(rollKey)
	if electionID == "" || rollKey == "" {
		return false, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return false, err
	}
	_, found, err := uc.Eligibility.GetRollEntry(ctx, electionID, rollKey)
	if err != nil {
		return false, err
	}
	return found, nil
}

// ListBallots reads the ledger with optional position/candidate narrowing.
// Ordering is stable for a fixed ledger snapshot.
func (uc StatusUseCase) ListBallots(ctx context.Context, electionID string, filter ports.BallotFilter) ([]entities.Ballot, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return nil, err
	}
	return uc.Ballots.ListBallots(ctx, electionID, ports.BallotFilter{
		PositionID:  strings.TrimSpace(filter.PositionID),
		CandidateID: strings.TrimSpace(filter.CandidateID),
	})
}

// GetVoterStatus aggregates whitelist, roll and ballot standing for voter
// dashboards.
func (uc StatusUseCase) GetVoterStatus(ctx context.Context, electionID string, voterKey string) (VoterStatus, error) {
	electionID = strings.TrimSpace(electionID)
	voterKey = strings.TrimSpace(voterKey)
	if electionID == "" || voterKey == "" {
		return VoterStatus{}, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return VoterStatus{}, err
	}

	status := VoterStatus{ElectionID: electionID, VoterKey: voterKey}
	entry, found, err := uc.Eligibility.GetEligibility(ctx, electionID, voterKey)
	if err != nil {
		return VoterStatus{}, err
	}
	status.Whitelisted = found && entry.Whitelisted

	_, onRoll, err := uc.Eligibility.GetRollEntry(ctx, electionID, voterKey)
	if err != nil {
		return VoterStatus{}, err
	}
	status.RollVerified = onRoll

	positions, err := uc.Elections.ListPositionsByElection(ctx, electionID)
	if err != nil {
		return VoterStatus{}, err
	}
	for _, position := range positions {
		_, voted, err := uc.Ballots.GetBallotByIdentity(ctx, electionID, position.PositionID, voterKey)
		if err != nil {
			return VoterStatus{}, err
		}
		if voted {
			status.HasVoted = true
			break
		}
	}
	return status, nil
}
