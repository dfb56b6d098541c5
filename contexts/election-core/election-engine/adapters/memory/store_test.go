package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

func TestInsertBallotRejectsDuplicateIdentity(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	first := entities.Ballot{
		BallotID:    "ballot-1",
		ElectionID:  "election-1",
		PositionID:  "position-1",
		CandidateID: "candidate-1",
		VoterKey:    "voter-1",
		CastAt:      now,
	}
	if err := store.InsertBallot(context.Background(), first); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	duplicate := entities.Ballot{
		BallotID:    "ballot-2",
		ElectionID:  "election-1",
		PositionID:  "position-1",
		CandidateID: "candidate-2",
		VoterKey:    "voter-1",
		CastAt:      now.Add(time.Second),
	}
	if err := store.InsertBallot(context.Background(), duplicate); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	// Same voter on a different position is a distinct identity.
	other := entities.Ballot{
		BallotID:    "ballot-3",
		ElectionID:  "election-1",
		PositionID:  "position-2",
		CandidateID: "candidate-3",
		VoterKey:    "voter-1",
		CastAt:      now.Add(2 * time.Second),
	}
	if err := store.InsertBallot(context.Background(), other); err != nil {
		t.Fatalf("second-position insert failed: %v", err)
	}
}

func TestGetBallotByIdentityMatchesExactKey(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	if err := store.InsertBallot(context.Background(), entities.Ballot{
		BallotID:    "ballot-1",
		ElectionID:  "election-1",
		PositionID:  "position-1",
		CandidateID: "candidate-1",
		VoterKey:    "voter-1",
		CastAt:      now,
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	ballot, found, err := store.GetBallotByIdentity(context.Background(), "election-1", "position-1", "voter-1")
	if err != nil {
		t.Fatalf("get by identity failed: %v", err)
	}
	if !found || ballot.BallotID != "ballot-1" {
		t.Fatalf("expected ballot-1, got found=%v ballot=%+v", found, ballot)
	}

	_, found, err = store.GetBallotByIdentity(context.Background(), "election-1", "position-2", "voter-1")
	if err != nil {
		t.Fatalf("get by identity failed: %v", err)
	}
	if found {
		t.Fatal("expected no ballot for an uncast position")
	}
}

func TestTransitionPhaseIsCompareAndSwap(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	if err := store.SaveElection(context.Background(), entities.Election{
		ElectionID: "election-1",
		Title:      "Council",
		Phase:      entities.PhaseInit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("save election failed: %v", err)
	}

	applied, err := store.TransitionPhase(context.Background(), "election-1", entities.PhaseInit, entities.PhaseVoting, now)
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if !applied {
		t.Fatalf("expected first transition to apply")
	}

	applied, err = store.TransitionPhase(context.Background(), "election-1", entities.PhaseInit, entities.PhaseVoting, now)
	if err != nil {
		t.Fatalf("stale transition errored: %v", err)
	}
	if applied {
		t.Fatalf("expected stale transition to be rejected")
	}

	election, err := store.GetElection(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("get election failed: %v", err)
	}
	if election.Phase != entities.PhaseVoting {
		t.Fatalf("expected phase voting, got %s", election.Phase)
	}
}

func TestUpsertEligibilityReportsChange(t *testing.T) {
	store := NewStore(nil)
	entry := entities.EligibilityEntry{
		ElectionID:  "election-1",
		VoterKey:    "voter-1",
		Whitelisted: true,
		GrantedAt:   time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	}

	changed, err := store.UpsertEligibility(context.Background(), entry)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected first upsert to change state")
	}

	changed, err = store.UpsertEligibility(context.Background(), entry)
	if err != nil {
		t.Fatalf("repeat upsert failed: %v", err)
	}
	if changed {
		t.Fatalf("expected repeat upsert to be a no-op")
	}
}

func TestListBallotsFiltersAndOrdersByCastTime(t *testing.T) {
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := NewStore([]entities.Ballot{
		{BallotID: "ballot-b", ElectionID: "election-1", PositionID: "position-1", CandidateID: "candidate-1", VoterKey: "voter-2", CastAt: base.Add(2 * time.Minute)},
		{BallotID: "ballot-a", ElectionID: "election-1", PositionID: "position-1", CandidateID: "candidate-2", VoterKey: "voter-1", CastAt: base},
		{BallotID: "ballot-c", ElectionID: "election-2", PositionID: "position-9", CandidateID: "candidate-9", VoterKey: "voter-1", CastAt: base.Add(time.Minute)},
	})

	all, err := store.ListBallots(context.Background(), "election-1", ports.BallotFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 || all[0].BallotID != "ballot-a" || all[1].BallotID != "ballot-b" {
		t.Fatalf("unexpected order: %+v", all)
	}

	narrowed, err := store.ListBallots(context.Background(), "election-1", ports.BallotFilter{CandidateID: "candidate-2"})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(narrowed) != 1 || narrowed[0].BallotID != "ballot-a" {
		t.Fatalf("unexpected filter result: %+v", narrowed)
	}
}

func TestOutboxAppendIsIdempotentPerEventID(t *testing.T) {
	store := NewStore(nil)
	envelope := ports.EventEnvelope{
		EventID:      "event-1",
		EventType:    "ballot.accepted",
		OccurredAt:   time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		PartitionKey: "election-1",
	}

	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("replay append failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending row, got %d", len(pending))
	}

	if err := store.MarkOutboxPublished(context.Background(), "event-1", time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty pending set, got %d", len(pending))
	}
}
