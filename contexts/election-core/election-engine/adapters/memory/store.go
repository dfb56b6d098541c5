package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is an in-memory implementation of every election-engine port. The
// single RWMutex makes the ballot check-and-insert atomic: no interleaving of
// concurrent CastBallot calls can admit two ballots for the same
// (election, position, voter) key.
type Store struct {
	mu sync.RWMutex

	elections   map[string]entities.Election
	positions   map[string]entities.Position
	parties     map[string]entities.Party
	candidates  map[string]entities.Candidate
	eligibility map[string]entities.EligibilityEntry
	roll        map[string]entities.RollEntry
	ballots     map[string]entities.Ballot
	outbox      map[string]outboxRecord
}

func NewStore(seed []entities.Ballot) *Store {
	ballots := make(map[string]entities.Ballot, len(seed))
	for _, ballot := range seed {
		ballots[ballot.BallotID] = ballot
	}
	return &Store{
		elections:   make(map[string]entities.Election),
		positions:   make(map[string]entities.Position),
		parties:     make(map[string]entities.Party),
		candidates:  make(map[string]entities.Candidate),
		eligibility: make(map[string]entities.EligibilityEntry),
		roll:        make(map[string]entities.RollEntry),
		ballots:     ballots,
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ListElections(_ context.Context) ([]entities.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Election, 0, len(s.elections))
	for _, election := range s.elections {
		items = append(items, election)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ElectionID < items[j].ElectionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionPhase(
	_ context.Context,
	electionID string,
	from entities.Phase,
	to entities.Phase,
	updatedAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return false, domainerrors.ErrElectionNotFound
	}
	if election.Phase != from {
		return false, nil
	}
	election.Phase = to
	election.UpdatedAt = updatedAt.UTC()
	s.elections[strings.TrimSpace(electionID)] = election
	return true, nil
}

func (s *Store) SavePosition(_ context.Context, position entities.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[strings.TrimSpace(position.PositionID)] = position
	return nil
}

func (s *Store) GetPosition(_ context.Context, positionID string) (entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	position, ok := s.positions[strings.TrimSpace(positionID)]
	if !ok {
		return entities.Position{}, domainerrors.ErrPositionNotFound
	}
	return position, nil
}

func (s *Store) ListPositionsByElection(_ context.Context, electionID string) ([]entities.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Position, 0)
	for _, position := range s.positions {
		if position.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, position)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Handle < items[j].Handle
	})
	return items, nil
}

func (s *Store) PositionHandleExists(_ context.Context, handle int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, position := range s.positions {
		if position.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SaveParty(_ context.Context, party entities.Party) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parties[strings.TrimSpace(party.PartyID)] = party
	return nil
}

func (s *Store) GetParty(_ context.Context, partyID string) (entities.Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	party, ok := s.parties[strings.TrimSpace(partyID)]
	if !ok {
		return entities.Party{}, domainerrors.ErrPartyNotFound
	}
	return party, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = candidate
	return nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListCandidatesByPosition(_ context.Context, positionID string) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.PositionID == strings.TrimSpace(positionID) {
			items = append(items, candidate)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Handle < items[j].Handle
	})
	return items, nil
}

func (s *Store) CandidateHandleExists(_ context.Context, handle int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, candidate := range s.candidates {
		if candidate.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) GetEligibility(_ context.Context, electionID string, voterKey string) (entities.EligibilityEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.eligibility[eligibilityKey(electionID, voterKey)]
	if !ok {
		return entities.EligibilityEntry{}, false, nil
	}
	return entry, true, nil
}

func (s *Store) UpsertEligibility(_ context.Context, entry entities.EligibilityEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := eligibilityKey(entry.ElectionID, entry.VoterKey)
	existing, ok := s.eligibility[key]
	if ok && existing.Whitelisted == entry.Whitelisted {
		return false, nil
	}
	s.eligibility[key] = entities.EligibilityEntry{
		ElectionID:  strings.TrimSpace(entry.ElectionID),
		VoterKey:    strings.TrimSpace(entry.VoterKey),
		Whitelisted: entry.Whitelisted,
		GrantedAt:   entry.GrantedAt.UTC(),
	}
	return true, nil
}

func (s *Store) SaveRollEntry(_ context.Context, entry entities.RollEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll[eligibilityKey(entry.ElectionID, entry.RollKey)] = entry
	return nil
}

func (s *Store) GetRollEntry(_ context.Context, electionID string, rollKey string) (entities.RollEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.roll[eligibilityKey(electionID, rollKey)]
	if !ok {
		return entities.RollEntry{}, false, nil
	}
	return entry, true, nil
}

func (s *Store) InsertBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ballots {
		if existing.ElectionID == ballot.ElectionID &&
			existing.PositionID == ballot.PositionID &&
			existing.VoterKey == ballot.VoterKey {
			return domainerrors.ErrAlreadyVoted
		}
	}
	s.ballots[strings.TrimSpace(ballot.BallotID)] = ballot
	return nil
}

func (s *Store) GetBallot(_ context.Context, ballotID string) (entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[strings.TrimSpace(ballotID)]
	if !ok {
		return entities.Ballot{}, domainerrors.ErrBallotNotFound
	}
	return ballot, nil
}

func (s *Store) GetBallotByIdentity(
	_ context.Context,
	electionID string,
	positionID string,
	voterKey string,
) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ballot := range s.ballots {
		if ballot.ElectionID == strings.TrimSpace(electionID) &&
			ballot.PositionID == strings.TrimSpace(positionID) &&
			ballot.VoterKey == strings.TrimSpace(voterKey) {
			return ballot, true, nil
		}
	}
	return entities.Ballot{}, false, nil
}

func (s *Store) ListBallots(_ context.Context, electionID string, filter ports.BallotFilter) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Ballot, 0)
	for _, ballot := range s.ballots {
		if ballot.ElectionID != strings.TrimSpace(electionID) {
			continue
		}
		if filter.PositionID != "" && ballot.PositionID != filter.PositionID {
			continue
		}
		if filter.CandidateID != "" && ballot.CandidateID != filter.CandidateID {
			continue
		}
		items = append(items, ballot)
	}
	sortBallots(items)
	return items, nil
}

func (s *Store) SetBallotTxRef(_ context.Context, ballotID string, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ballot, ok := s.ballots[strings.TrimSpace(ballotID)]
	if !ok {
		return domainerrors.ErrBallotNotFound
	}
	ballot.TxRef = strings.TrimSpace(txRef)
	s.ballots[strings.TrimSpace(ballotID)] = ballot
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrStorageUnavailable
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrStorageUnavailable
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func eligibilityKey(electionID string, key string) string {
	return strings.TrimSpace(electionID) + "/" + strings.TrimSpace(key)
}

func sortBallots(items []entities.Ballot) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].BallotID < items[j].BallotID
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
}

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.EligibilityRepository = (*Store)(nil)
var _ ports.BallotRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
