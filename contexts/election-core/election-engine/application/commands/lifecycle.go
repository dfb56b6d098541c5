package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	contractsv1 "trustvote/contracts/gen/events/v1"

	application "trustvote/contexts/election-core/election-engine/application"
	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

// TransitionPhaseCommand requests a single forward phase step.
type TransitionPhaseCommand struct {
	ElectionID string
	Target     entities.Phase
}

// LifecycleUseCase owns the Init -> Voting -> Closed state machine. A
// transition succeeds only when the target is the immediate successor of the
// stored phase, applied as one compare-and-swap so racing administrators
// cannot double-advance an election.
type LifecycleUseCase struct {
	Elections ports.ElectionRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// TransitionPhase advances the election and returns the new phase.
func (uc LifecycleUseCase) TransitionPhase(ctx context.Context, cmd TransitionPhaseCommand) (entities.Phase, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)

	logger.Info("phase transition processing started",
		"event", "election_phase_transition_started",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"target_phase", string(cmd.Target),
	)
	if electionID == "" || !cmd.Target.Valid() {
		return "", domainerrors.ErrInvalidInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return "", err
	}
	successor, ok := election.Phase.NextPhase()
	if !ok || successor != cmd.Target {
		logger.Warn("phase transition rejected",
			"event", "election_phase_transition_rejected",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"current_phase", string(election.Phase),
			"target_phase", string(cmd.Target),
		)
		return "", domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	applied, err := uc.Elections.TransitionPhase(ctx, electionID, election.Phase, cmd.Target, now)
	if err != nil {
		return "", err
	}
	if !applied {
		// A concurrent administrator already moved the phase; the stored value
		// is no longer the one this request validated against.
		logger.Warn("phase transition lost the update race",
			"event", "election_phase_transition_conflict",
			"module", "election-core/election-engine",
			"layer", "application",
			"election_id", electionID,
			"target_phase", string(cmd.Target),
		)
		return "", domainerrors.ErrInvalidTransition
	}

	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return "", err
		}
		envelope, err := newElectionEnvelope(eventID, contractsv1.EventTypeElectionPhaseChanged, electionID, now, map[string]any{
			"election_id": electionID,
			"from_phase":  string(election.Phase),
			"to_phase":    string(cmd.Target),
		})
		if err != nil {
			return "", err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return "", err
		}
	}

	logger.Info("phase transition applied",
		"event", "election_phase_transition_applied",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"from_phase", string(election.Phase),
		"to_phase", string(cmd.Target),
	)
	return cmd.Target, nil
}

func (uc LifecycleUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
