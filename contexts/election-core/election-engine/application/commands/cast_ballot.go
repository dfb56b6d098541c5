package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	contractsv1 "trustvote/contracts/gen/events/v1"

	application "trustvote/contexts/election-core/election-engine/application"
	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

// CastBallotCommand is the write-model input for ballot acceptance.
type CastBallotCommand struct {
	ElectionID  string
	PositionID  string
	CandidateID string
	VoterKey    string
}

// AttachTransactionRefCommand links an accepted ballot to an external ledger
// transaction once it confirms.
type AttachTransactionRefCommand struct {
	BallotID string
	TxRef    string
}

// BallotUseCase orchestrates ballot admission: referential integrity, phase and
// window gating, eligibility, and the atomic single-vote insert.
type BallotUseCase struct {
	Elections   ports.ElectionRepository
	Eligibility ports.EligibilityRepository
	Ballots     ports.BallotRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// CastBallot accepts at most one ballot per (election, position, voter).
// The conflict check is delegated to the repository's conditional insert so it
// stays atomic under concurrent submissions for the same key.
func (uc BallotUseCase) CastBallot(ctx context.Context, cmd CastBallotCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	positionID := strings.TrimSpace(cmd.PositionID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	voterKey := strings.TrimSpace(cmd.VoterKey)

	logger.Info("ballot cast processing started",
		"event", "election_ballot_cast_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"position_id", positionID,
		"voter_key", voterKey,
	)
	if electionID == "" || positionID == "" || candidateID == "" || voterKey == "" {
		logger.Warn("ballot cast validation failed",
			"event", "election_ballot_cast_validation_failed",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"position_id", positionID,
			"voter_key", voterKey,
		)
		return entities.Ballot{}, domainerrors.ErrInvalidInput
	}

	candidate, err := uc.Elections.GetCandidate(ctx, candidateID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if candidate.PositionID != positionID || candidate.ElectionID != electionID {
		logger.Warn("ballot cast rejected for inconsistent references",
			"event", "election_ballot_cast_inconsistent_reference",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"position_id", positionID,
			"candidate_id", candidateID,
			"candidate_position_id", candidate.PositionID,
			"candidate_election_id", candidate.ElectionID,
		)
		return entities.Ballot{}, domainerrors.ErrInconsistentReference
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Ballot{}, err
	}

	now := uc.now()
	// Phase is administrator-driven and may lag the configured window, so the
	// window is re-evaluated on every ballot rather than only at transition.
	if election.Phase != entities.PhaseVoting || !election.WindowOpen(now) {
		logger.Warn("ballot cast rejected outside voting window",
			"event", "election_ballot_cast_voting_closed",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"phase", string(election.Phase),
			"window_open", election.WindowOpen(now),
		)
		return entities.Ballot{}, domainerrors.ErrVotingClosed
	}

	entry, found, err := uc.Eligibility.GetEligibility(ctx, electionID, voterKey)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !found || !entry.Whitelisted {
		logger.Warn("ballot cast rejected for ineligible voter",
			"event", "election_ballot_cast_not_eligible",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"voter_key", voterKey,
		)
		return entities.Ballot{}, domainerrors.ErrNotEligible
	}

	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	ballot := entities.Ballot{
		BallotID:    ballotID,
		ElectionID:  electionID,
		PositionID:  positionID,
		CandidateID: candidateID,
		VoterKey:    voterKey,
		CastAt:      now,
	}
	if err := uc.Ballots.InsertBallot(ctx, ballot); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			logger.Warn("ballot cast rejected as duplicate",
				"event", "election_ballot_cast_duplicate",
				"module", "election-core/election-engine",
				"layer", "application",
				"election_id", electionID,
				"position_id", positionID,
				"voter_key", voterKey,
			)
		}
		return entities.Ballot{}, err
	}

	if err := uc.appendBallotEvent(ctx, contractsv1.EventTypeBallotAccepted, ballot, map[string]any{
		"candidate_handle": candidate.Handle,
	}); err != nil {
		return entities.Ballot{}, err
	}

	logger.Info("ballot accepted",
		"event", "election_ballot_accepted",
		"module", "election-core/election-engine",
		"layer", "application",
		"ballot_id", ballot.BallotID,
		"election_id", ballot.ElectionID,
		"position_id", ballot.PositionID,
		"candidate_id", ballot.CandidateID,
		"voter_key", ballot.VoterKey,
	)
	return ballot, nil
}

// AttachTransactionRef records the external ledger reference for a ballot.
// Re-attaching the same ref is a no-op; a different ref overwrites, which is
// reconciliation against the external ledger, not a re-vote.
func (uc BallotUseCase) AttachTransactionRef(ctx context.Context, cmd AttachTransactionRefCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	ballotID := strings.TrimSpace(cmd.BallotID)
	txRef := strings.TrimSpace(cmd.TxRef)

	if ballotID == "" || txRef == "" {
		return entities.Ballot{}, domainerrors.ErrInvalidInput
	}

	ballot, err := uc.Ballots.GetBallot(ctx, ballotID)
	if err != nil {
		return entities.Ballot{}, err
	}
	if ballot.TxRef == txRef {
		logger.Info("transaction ref attach replayed",
			"event", "election_ballot_tx_attach_replayed",
			"module", "election-core/election-engine",
			"layer", "application",
			"ballot_id", ballotID,
		)
		return ballot, nil
	}

	if err := uc.Ballots.SetBallotTxRef(ctx, ballotID, txRef); err != nil {
		return entities.Ballot{}, err
	}
	ballot.TxRef = txRef

	if err := uc.appendBallotEvent(ctx, contractsv1.EventTypeBallotTxAttached, ballot, map[string]any{
		"tx_ref": txRef,
	}); err != nil {
		return entities.Ballot{}, err
	}

	logger.Info("transaction ref attached",
		"event", "election_ballot_tx_attached",
		"module", "election-core/election-engine",
		"layer", "application",
		"ballot_id", ballotID,
		"election_id", ballot.ElectionID,
	)
	return ballot, nil
}

func (uc BallotUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc BallotUseCase) appendBallotEvent(
	ctx context.Context,
	eventType string,
	ballot entities.Ballot,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"ballot_id":    ballot.BallotID,
		"election_id":  ballot.ElectionID,
		"position_id":  ballot.PositionID,
		"candidate_id": ballot.CandidateID,
		"voter_key":    ballot.VoterKey,
		"cast_at":      ballot.CastAt.UTC().Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newElectionEnvelope(eventID, eventType, ballot.ElectionID, ballot.CastAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
