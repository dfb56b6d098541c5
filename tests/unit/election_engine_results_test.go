package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	electionengine "trustvote/contexts/election-core/election-engine"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	httptransport "trustvote/contexts/election-core/election-engine/transport/http"
)

// buildTallyScenario seeds one position with three candidates and distributes
// votes so two candidates tie and one trails with a lower count.
func buildTallyScenario(t *testing.T) (electionengine.Module, string) {
	t.Helper()
	module := electionengine.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	election, err := module.Handler.CreateElectionHandler(ctx, httptransport.CreateElectionRequest{
		Title:     "Tally Election",
		StartTime: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		EndTime:   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	position, err := module.Handler.AddPositionHandler(ctx, election.ElectionID, httptransport.AddPositionRequest{
		Title:  "Chair",
		Handle: 1,
	})
	if err != nil {
		t.Fatalf("add position failed: %v", err)
	}

	candidates := make(map[string]string, 3)
	for name, handle := range map[string]int64{"Alpha": 30, "Bravo": 20, "Charlie": 10} {
		candidate, err := module.Handler.AddCandidateHandler(ctx, election.ElectionID, httptransport.AddCandidateRequest{
			PositionID: position.PositionID,
			Name:       name,
			Handle:     handle,
		})
		if err != nil {
			t.Fatalf("add candidate %s failed: %v", name, err)
		}
		candidates[name] = candidate.CandidateID
	}

	if _, err := module.Handler.TransitionPhaseHandler(ctx, election.ElectionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	}); err != nil {
		t.Fatalf("transition to voting failed: %v", err)
	}

	// Bravo and Charlie tie at 5 votes each, Alpha trails with 3.
	votes := map[string]int{"Alpha": 3, "Bravo": 5, "Charlie": 5}
	voter := 0
	for name, count := range votes {
		for i := 0; i < count; i++ {
			voter++
			voterKey := fmt.Sprintf("voter-%d", voter)
			if _, err := module.Handler.GrantEligibilityHandler(ctx, election.ElectionID, httptransport.GrantEligibilityRequest{
				VoterKey: voterKey,
			}); err != nil {
				t.Fatalf("grant eligibility failed: %v", err)
			}
			if _, err := module.Handler.CastBallotHandler(ctx, election.ElectionID, voterKey, httptransport.CastBallotRequest{
				PositionID:  position.PositionID,
				CandidateID: candidates[name],
			}); err != nil {
				t.Fatalf("cast ballot for %s failed: %v", name, err)
			}
		}
	}

	return module, election.ElectionID
}

func TestTallyOrdersByVotesThenHandle(t *testing.T) {
	module, electionID := buildTallyScenario(t)
	ctx := context.Background()

	if _, err := module.Handler.TransitionPhaseHandler(ctx, electionID, httptransport.TransitionPhaseRequest{
		Target: "closed",
	}); err != nil {
		t.Fatalf("transition to closed failed: %v", err)
	}

	results, err := module.Handler.ResultsHandler(ctx, electionID, false)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if len(results.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(results.Positions))
	}

	got := results.Positions[0].Candidates
	if len(got) != 3 {
		t.Fatalf("expected 3 tallies, got %d", len(got))
	}
	// Tie between Bravo (handle 20) and Charlie (handle 10) resolves by
	// ascending handle, then Alpha with fewer votes.
	if got[0].Name != "Charlie" || got[0].Votes != 5 {
		t.Fatalf("expected Charlie first with 5 votes, got %+v", got[0])
	}
	if got[1].Name != "Bravo" || got[1].Votes != 5 {
		t.Fatalf("expected Bravo second with 5 votes, got %+v", got[1])
	}
	if got[2].Name != "Alpha" || got[2].Votes != 3 {
		t.Fatalf("expected Alpha last with 3 votes, got %+v", got[2])
	}
}

func TestTallyIncludesZeroVoteCandidates(t *testing.T) {
	module := electionengine.NewInMemoryModule(nil, nil)
	ctx := context.Background()

	election, err := module.Handler.CreateElectionHandler(ctx, httptransport.CreateElectionRequest{
		Title:     "Quiet Election",
		StartTime: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339),
		EndTime:   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create election failed: %v", err)
	}
	position, err := module.Handler.AddPositionHandler(ctx, election.ElectionID, httptransport.AddPositionRequest{
		Title:  "Auditor",
		Handle: 4,
	})
	if err != nil {
		t.Fatalf("add position failed: %v", err)
	}
	if _, err := module.Handler.AddCandidateHandler(ctx, election.ElectionID, httptransport.AddCandidateRequest{
		PositionID: position.PositionID,
		Name:       "Nobody Voted For Me",
		Handle:     401,
	}); err != nil {
		t.Fatalf("add candidate failed: %v", err)
	}
	if _, err := module.Handler.TransitionPhaseHandler(ctx, election.ElectionID, httptransport.TransitionPhaseRequest{
		Target: "voting",
	}); err != nil {
		t.Fatalf("transition to voting failed: %v", err)
	}
	if _, err := module.Handler.TransitionPhaseHandler(ctx, election.ElectionID, httptransport.TransitionPhaseRequest{
		Target: "closed",
	}); err != nil {
		t.Fatalf("transition to closed failed: %v", err)
	}

	results, err := module.Handler.ResultsHandler(ctx, election.ElectionID, false)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	candidates := results.Positions[0].Candidates
	if len(candidates) != 1 || candidates[0].Votes != 0 {
		t.Fatalf("expected single zero-vote tally, got %+v", candidates)
	}
}

func TestResultsHiddenUntilClosedExceptForAdmins(t *testing.T) {
	module, electionID := buildTallyScenario(t)
	ctx := context.Background()

	_, err := module.Handler.ResultsHandler(ctx, electionID, false)
	if !errors.Is(err, domainerrors.ErrResultsNotAvailable) {
		t.Fatalf("expected ErrResultsNotAvailable during voting, got %v", err)
	}

	adminView, err := module.Handler.ResultsHandler(ctx, electionID, true)
	if err != nil {
		t.Fatalf("admin results failed: %v", err)
	}
	if adminView.Phase != "voting" {
		t.Fatalf("expected admin view during voting phase, got %q", adminView.Phase)
	}

	if _, err := module.Handler.TransitionPhaseHandler(ctx, electionID, httptransport.TransitionPhaseRequest{
		Target: "closed",
	}); err != nil {
		t.Fatalf("transition to closed failed: %v", err)
	}

	publicView, err := module.Handler.ResultsHandler(ctx, electionID, false)
	if err != nil {
		t.Fatalf("public results failed: %v", err)
	}
	if publicView.Phase != "closed" {
		t.Fatalf("expected closed phase in public view, got %q", publicView.Phase)
	}
}
