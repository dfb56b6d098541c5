package ports

import (
	"context"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	contractsv1 "trustvote/contracts/gen/events/v1"
)

// ElectionRepository owns election, position, party and candidate persistence.
type ElectionRepository interface {
	SaveElection(ctx context.Context, election entities.Election) error
	GetElection(ctx context.Context, electionID string) (entities.Election, error)
	ListElections(ctx context.Context) ([]entities.Election, error)
	// TransitionPhase applies the phase change only if the stored phase still
	// equals from. It reports false when another writer got there first.
	TransitionPhase(ctx context.Context, electionID string, from entities.Phase, to entities.Phase, updatedAt time.Time) (bool, error)

	SavePosition(ctx context.Context, position entities.Position) error
	GetPosition(ctx context.Context, positionID string) (entities.Position, error)
	ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error)
	PositionHandleExists(ctx context.Context, handle int64) (bool, error)

	SaveParty(ctx context.Context, party entities.Party) error
	GetParty(ctx context.Context, partyID string) (entities.Party, error)

	SaveCandidate(ctx context.Context, candidate entities.Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error)
	CandidateHandleExists(ctx context.Context, handle int64) (bool, error)
}

// EligibilityRepository owns whitelist and electoral-roll persistence.
// At most one EligibilityEntry exists per (election, voterKey).
type EligibilityRepository interface {
	GetEligibility(ctx context.Context, electionID string, voterKey string) (entities.EligibilityEntry, bool, error)
	// UpsertEligibility creates or re-whitelists the entry and reports whether
	// this call changed stored state.
	UpsertEligibility(ctx context.Context, entry entities.EligibilityEntry) (bool, error)

	SaveRollEntry(ctx context.Context, entry entities.RollEntry) error
	GetRollEntry(ctx context.Context, electionID string, rollKey string) (entities.RollEntry, bool, error)
}

// BallotFilter narrows ledger reads for the aggregator and audit listings.
type BallotFilter struct {
	PositionID  string
	CandidateID string
}

// BallotRepository owns the append-only ballot ledger.
type BallotRepository interface {
	// InsertBallot performs the atomic conditional insert guarding the
	// one-ballot-per-(election, position, voter) invariant. Implementations
	// must return domainerrors.ErrAlreadyVoted on a conflicting ballot and
	// must never lose that check under concurrent callers.
	InsertBallot(ctx context.Context, ballot entities.Ballot) error
	GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error)
	GetBallotByIdentity(ctx context.Context, electionID string, positionID string, voterKey string) (entities.Ballot, bool, error)
	ListBallots(ctx context.Context, electionID string, filter BallotFilter) ([]entities.Ballot, error)
	SetBallotTxRef(ctx context.Context, ballotID string, txRef string) error
}

// Clock allows deterministic testing of window and timestamp rules.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts ballot/event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter appends integration events alongside state changes.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
