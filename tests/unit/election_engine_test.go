package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	electionengine "trustvote/contexts/election-core/election-engine"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	httptransport "trustvote/contexts/election-core/election-engine/transport/http"
)

type fixture struct {
	module      electionengine.Module
	electionID  string
	positionID  string
	partyID     string
	candidateID string
}

// newVotingFixture builds an election already advanced to the voting phase
// with one position, one party and one candidate, and voter-1 whitelisted.
func newVotingFixture(t *testing.T) fixture {
	t.Helper()
	module := electionengine.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	election, err := module.Handler.CreateElectionHandler(ctx, httptransport.CreateElectionRequest{
		Title:       "Student Council 2026",
		Description: "Annual council election",
		StartTime:   time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		EndTime:     time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}

	position, err := module.Handler.AddPositionHandler(ctx, election.ElectionID, httptransport.AddPositionRequest{
		Title:  "President",
		Handle: 1,
	})
	if err != nil {
		t.Fatalf("add position failed: %v", err)
	}

	party, err := module.Handler.CreatePartyHandler(ctx, httptransport.CreatePartyRequest{
		Name: "Unity",
	})
	if err != nil {
		t.Fatalf("create party failed: %v", err)
	}

	candidate, err := module.Handler.AddCandidateHandler(ctx, election.ElectionID, httptransport.AddCandidateRequest{
		PositionID: position.PositionID,
		PartyID:    party.PartyID,
		Name:       "Ada",
		Handle:     101,
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}

	if _, err := module.Handler.GrantEligibilityHandler(ctx, election.ElectionID, httptransport.GrantEligibilityRequest{
		VoterKey: "voter-1",
	}); err != nil {
		t.Fatalf("grant eligibility failed: %v", err)
	}

	if _, err := module.Handler.TransitionPhaseHandler(ctx, election.ElectionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	}); err != nil {
		t.Fatalf("transition to voting failed: %v", err)
	}

	return fixture{
		module:      module,
		electionID:  election.ElectionID,
		positionID:  position.PositionID,
		partyID:     party.PartyID,
		candidateID: candidate.CandidateID,
	}
}

func TestCastBallotAcceptsFirstAndRejectsSecond(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	first, err := f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	})
	if err != nil {
		t.Fatalf("cast ballot failed: %v", err)
	}
	if first.VoterKey != "voter-1" || first.CandidateID != f.candidateID {
		t.Fatalf("unexpected ballot: %+v", first)
	}

	_, err = f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	ballots, err := f.module.Handler.ListBallotsHandler(ctx, f.electionID, "", "")
	if err != nil {
		t.Fatalf("list ballots failed: %v", err)
	}
	if len(ballots.Items) != 1 {
		t.Fatalf("expected 1 ballot, got %d", len(ballots.Items))
	}
}

func TestCastBallotRequiresEligibility(t *testing.T) {
	f := newVotingFixture(t)

	_, err := f.module.Handler.CastBallotHandler(context.Background(), f.electionID, "voter-unknown", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	})
	if !errors.Is(err, domainerrors.ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
}

func TestCastBallotRejectsCandidateFromAnotherPosition(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	_, err := f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  "some-other-position",
		CandidateID: f.candidateID,
	})
	if !errors.Is(err, domainerrors.ErrInconsistentReference) {
		t.Fatalf("expected ErrInconsistentReference, got %v", err)
	}

	ballots, err := f.module.Handler.ListBallotsHandler(ctx, f.electionID, "", "")
	if err != nil {
		t.Fatalf("list ballots failed: %v", err)
	}
	if len(ballots.Items) != 0 {
		t.Fatalf("expected empty ledger, got %d ballots", len(ballots.Items))
	}
}

func TestCastBallotRejectedBeforeVotingPhase(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	election, err := module.Handler.CreateElectionHandler(ctx, httptransport.CreateElectionRequest{
		Title:     "Pending Election",
		StartTime: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		EndTime:   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	position, err := module.Handler.AddPositionHandler(ctx, election.ElectionID, httptransport.AddPositionRequest{
		Title:  "Treasurer",
		Handle: 2,
	})
	if err != nil {
		t.Fatalf("add position failed: %v", err)
	}
	candidate, err := module.Handler.AddCandidateHandler(ctx, election.ElectionID, httptransport.AddCandidateRequest{
		PositionID: position.PositionID,
		Name:       "Grace",
		Handle:     201,
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if _, err := module.Handler.GrantEligibilityHandler(ctx, election.ElectionID, httptransport.GrantEligibilityRequest{
		VoterKey: "voter-1",
	}); err != nil {
		t.Fatalf("grant eligibility failed: %v", err)
	}

	_, err = module.Handler.CastBallotHandler(ctx, election.ElectionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  position.PositionID,
		CandidateID: candidate.CandidateID,
	})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed while still in init, got %v", err)
	}
}

func TestCastBallotRejectedAfterWindowElapsed(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	election, err := module.Handler.CreateElectionHandler(ctx, httptransport.CreateElectionRequest{
		Title:     "Expired Election",
		StartTime: time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339),
		EndTime:   time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	position, err := module.Handler.AddPositionHandler(ctx, election.ElectionID, httptransport.AddPositionRequest{
		Title:  "Secretary",
		Handle: 3,
	})
	if err != nil {
		t.Fatalf("add position failed: %v", err)
	}
	candidate, err := module.Handler.AddCandidateHandler(ctx, election.ElectionID, httptransport.AddCandidateRequest{
		PositionID: position.PositionID,
		Name:       "Linus",
		Handle:     301,
	})
	if err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if _, err := module.Handler.GrantEligibilityHandler(ctx, election.ElectionID, httptransport.GrantEligibilityRequest{
		VoterKey: "voter-1",
	}); err != nil {
		t.Fatalf("grant eligibility failed: %v", err)
	}
	if _, err := module.Handler.TransitionPhaseHandler(ctx, election.ElectionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	}); err != nil {
		t.Fatalf("transition to voting failed: %v", err)
	}

	_, err = module.Handler.CastBallotHandler(ctx, election.ElectionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  position.PositionID,
		CandidateID: candidate.CandidateID,
	})
	if !errors.Is(err, domainerrors.ErrVotingClosed) {
		t.Fatalf("expected ErrVotingClosed after window end, got %v", err)
	}
}

func TestPhaseTransitionsAreForwardOnly(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	// Already in voting; re-targeting voting is not an immediate successor.
	_, err := f.module.Handler.TransitionPhaseHandler(ctx, f.electionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for repeat target, got %v", err)
	}

	if _, err := f.module.Handler.TransitionPhaseHandler(ctx, f.electionID, httptransport.TransitionPhaseRequest{
		Target: "closed",
	}); err != nil {
		t.Fatalf("transition to closed failed: %v", err)
	}

	_, err = f.module.Handler.TransitionPhaseHandler(ctx, f.electionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	})
	if !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition going backward, got %v", err)
	}
}

func TestSetupLockedOutsideInitPhase(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	_, err := f.module.Handler.AddPositionHandler(ctx, f.electionID, httptransport.AddPositionRequest{
		Title:  "Late Position",
		Handle: 9,
	})
	if !errors.Is(err, domainerrors.ErrElectionNotEditable) {
		t.Fatalf("expected ErrElectionNotEditable for position, got %v", err)
	}

	_, err = f.module.Handler.AddCandidateHandler(ctx, f.electionID, httptransport.AddCandidateRequest{
		PositionID: f.positionID,
		Name:       "Late Candidate",
		Handle:     901,
	})
	if !errors.Is(err, domainerrors.ErrElectionNotEditable) {
		t.Fatalf("expected ErrElectionNotEditable for candidate, got %v", err)
	}
}

func TestGrantEligibilityIsIdempotent(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	again, err := f.module.Handler.GrantEligibilityHandler(ctx, f.electionID, httptransport.GrantEligibilityRequest{
		VoterKey: "voter-1",
	})
	if err != nil {
		t.Fatalf("repeat grant failed: %v", err)
	}
	if !again.Whitelisted {
		t.Fatalf("expected voter to stay whitelisted")
	}
	if again.Changed {
		t.Fatalf("expected repeat grant to report no change")
	}
}

func TestRollRegistrationAndVerification(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	if err := f.module.Handler.RegisterRollEntryHandler(ctx, f.electionID, httptransport.RegisterRollEntryRequest{
		RollKey:  "roll-77",
		Name:     "Ada Lovelace",
		MemberID: "S-0077",
	}); err != nil {
		t.Fatalf("register roll entry failed: %v", err)
	}

	onRoll, err := f.module.Handler.VerifyRollMembershipHandler(ctx, f.electionID, "roll-77")
	if err != nil {
		t.Fatalf("verify roll failed: %v", err)
	}
	if !onRoll.OnRoll {
		t.Fatalf("expected roll-77 to verify")
	}

	missing, err := f.module.Handler.VerifyRollMembershipHandler(ctx, f.electionID, "roll-unknown")
	if err != nil {
		t.Fatalf("verify missing roll failed: %v", err)
	}
	if missing.OnRoll {
		t.Fatalf("expected unknown roll key to fail verification")
	}
}

func TestAttachTransactionRefReplaysSameRef(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	ballot, err := f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	})
	if err != nil {
		t.Fatalf("cast ballot failed: %v", err)
	}

	first, err := f.module.Handler.AttachTransactionRefHandler(ctx, ballot.BallotID, httptransport.AttachTransactionRefRequest{
		TxRef: "0xabc123",
	})
	if err != nil {
		t.Fatalf("attach tx ref failed: %v", err)
	}
	if first.TxRef != "0xabc123" {
		t.Fatalf("expected tx ref recorded, got %q", first.TxRef)
	}

	second, err := f.module.Handler.AttachTransactionRefHandler(ctx, ballot.BallotID, httptransport.AttachTransactionRefRequest{
		TxRef: "0xabc123",
	})
	if err != nil {
		t.Fatalf("replay attach failed: %v", err)
	}
	if second.TxRef != "0xabc123" {
		t.Fatalf("expected replay to keep tx ref, got %q", second.TxRef)
	}
}

func TestVoterStatusReflectsWhitelistRollAndBallot(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	before, err := f.module.Handler.VoterStatusHandler(ctx, f.electionID, "voter-1")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if !before.Whitelisted || before.HasVoted {
		t.Fatalf("unexpected status before voting: %+v", before)
	}

	if _, err := f.module.Handler.CastBallotHandler(ctx, f.electionID, "voter-1", httptransport.CastBallotRequest{
		PositionID:  f.positionID,
		CandidateID: f.candidateID,
	}); err != nil {
		t.Fatalf("cast ballot failed: %v", err)
	}

	after, err := f.module.Handler.VoterStatusHandler(ctx, f.electionID, "voter-1")
	if err != nil {
		t.Fatalf("voter status failed: %v", err)
	}
	if !after.HasVoted {
		t.Fatalf("expected has_voted after casting: %+v", after)
	}
}

func TestActiveElectionsListsOpenVotingOnly(t *testing.T) {
	f := newVotingFixture(t)
	ctx := context.Background()

	active, err := f.module.Handler.ActiveElectionsHandler(ctx)
	if err != nil {
		t.Fatalf("active elections failed: %v", err)
	}
	if len(active.Items) != 1 || active.Items[0].ElectionID != f.electionID {
		t.Fatalf("expected only the voting election, got %+v", active.Items)
	}

	if _, err := f.module.Handler.TransitionPhaseHandler(ctx, f.electionID, httptransport.TransitionPhaseRequest{
		Target: "closed",
	}); err != nil {
		t.Fatalf("transition to closed failed: %v", err)
	}

	active, err = f.module.Handler.ActiveElectionsHandler(ctx)
	if err != nil {
		t.Fatalf("active elections failed: %v", err)
	}
	if len(active.Items) != 0 {
		t.Fatalf("expected no active elections after close, got %+v", active.Items)
	}
}
