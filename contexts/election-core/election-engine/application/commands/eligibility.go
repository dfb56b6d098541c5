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

type GrantEligibilityCommand struct {
	ElectionID string
	VoterKey   string
}

// GrantEligibilityResult distinguishes "newly whitelisted" from "already
// whitelisted" for caller messaging.
type GrantEligibilityResult struct {
	Entry   entities.EligibilityEntry
	Changed bool
}

type RegisterRollEntryCommand struct {
	ElectionID string
	RollKey    string
	Name       string
	MemberID   string
}

// EligibilityUseCase maintains the per-election whitelist and the electoral
// roll used as a pre-registration gate.
type EligibilityUseCase struct {
	Elections   ports.ElectionRepository
	Eligibility ports.EligibilityRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// Grant whitelists a voter for an election. The operation is idempotent; the
// result reports whether this call changed stored state.
func (uc EligibilityUseCase) Grant(ctx context.Context, cmd GrantEligibilityCommand) (GrantEligibilityResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	voterKey := strings.TrimSpace(cmd.VoterKey)
	if electionID == "" || voterKey == "" {
		return GrantEligibilityResult{}, domainerrors.ErrInvalidInput
	}

	// Lookups on a missing election fail with not-found rather than silently
	// reporting "not eligible".
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return GrantEligibilityResult{}, err
	}

	entry := entities.EligibilityEntry{
		ElectionID:  electionID,
		VoterKey:    voterKey,
		Whitelisted: true,
		GrantedAt:   uc.now(),
	}
	changed, err := uc.Eligibility.UpsertEligibility(ctx, entry)
	if err != nil {
		return GrantEligibilityResult{}, err
	}

	if changed && uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return GrantEligibilityResult{}, err
		}
		envelope, err := newElectionEnvelope(eventID, contractsv1.EventTypeEligibilityGranted, electionID, entry.GrantedAt, map[string]any{
			"election_id": electionID,
			"voter_key":   voterKey,
		})
		if err != nil {
			return GrantEligibilityResult{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return GrantEligibilityResult{}, err
		}
	}

	logger.Info("eligibility granted",
		"event", "election_eligibility_granted",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"voter_key", voterKey,
		"changed", changed,
	)
	return GrantEligibilityResult{Entry: entry, Changed: changed}, nil
}

// RegisterRollEntry records a pre-registered roll member for an election.
func (uc EligibilityUseCase) RegisterRollEntry(ctx context.Context, cmd RegisterRollEntryCommand) (entities.RollEntry, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	rollKey := strings.TrimSpace(cmd.RollKey)
	if electionID == "" || rollKey == "" {
		return entities.RollEntry{}, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return entities.RollEntry{}, err
	}

	entry := entities.RollEntry{
		ElectionID: electionID,
		RollKey:    rollKey,
		Name:       strings.TrimSpace(cmd.Name),
		MemberID:   strings.TrimSpace(cmd.MemberID),
		CreatedAt:  uc.now(),
	}
	if err := uc.Eligibility.SaveRollEntry(ctx, entry); err != nil {
		return entities.RollEntry{}, err
	}
	logger.Info("roll entry registered",
		"event", "election_roll_entry_registered",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"roll_key", rollKey,
	)
	return entry, nil
}

func (uc EligibilityUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
