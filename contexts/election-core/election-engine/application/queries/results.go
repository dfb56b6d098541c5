package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

// ResultsUseCase computes tallies from the ballot ledger at call time. Nothing
// is cached, so a tally always reflects every ballot accepted before the call.
type ResultsUseCase struct {
	Elections ports.ElectionRepository
	Ballots   ports.BallotRepository
	Clock     ports.Clock
}

// Tally returns per-position, per-candidate vote counts. Results are visible
// once the election is closed, or earlier to administrators. Within a
// position, candidates are ordered by vote count descending with ties broken
// by ascending candidate handle, so identical ledgers produce identical
// output.
func (uc ResultsUseCase) Tally(ctx context.Context, electionID string, isAdmin bool) (entities.ElectionResults, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return entities.ElectionResults{}, domainerrors.ErrInvalidInput
	}
	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	if election.Phase != entities.PhaseClosed && !isAdmin {
		return entities.ElectionResults{}, domainerrors.ErrResultsNotAvailable
	}

	positions, err := uc.Elections.ListPositionsByElection(ctx, electionID)
	if err != nil {
		return entities.ElectionResults{}, err
	}
	ballots, err := uc.Ballots.ListBallots(ctx, electionID, ports.BallotFilter{})
	if err != nil {
		return entities.ElectionResults{}, err
	}
	countByCandidate := make(map[string]int, len(ballots))
	for _, ballot := range ballots {
		countByCandidate[ballot.CandidateID]++
	}

	results := entities.ElectionResults{
		Election:  election,
		Positions: make([]entities.PositionResult, 0, len(positions)),
		TalliedAt: uc.now(),
	}
	for _, position := range positions {
		candidates, err := uc.Elections.ListCandidatesByPosition(ctx, position.PositionID)
		if err != nil {
			return entities.ElectionResults{}, err
		}
		tallies := make([]entities.CandidateTally, 0, len(candidates))
		for _, candidate := range candidates {
			tallies = append(tallies, entities.CandidateTally{
				Candidate: candidate,
				Votes:     countByCandidate[candidate.CandidateID],
			})
		}
		sort.Slice(tallies, func(i, j int) bool {
			if tallies[i].Votes == tallies[j].Votes {
				return tallies[i].Candidate.Handle < tallies[j].Candidate.Handle
			}
			return tallies[i].Votes > tallies[j].Votes
		})
		results.Positions = append(results.Positions, entities.PositionResult{
			Position:   position,
			Candidates: tallies,
		})
	}
	return results, nil
}

// ActiveElections lists elections in voting phase whose window contains now.
func (uc ResultsUseCase) ActiveElections(ctx context.Context) ([]entities.Election, error) {
	elections, err := uc.Elections.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	active := make([]entities.Election, 0, len(elections))
	for _, election := range elections {
		if election.Phase == entities.PhaseVoting && election.WindowOpen(now) {
			active = append(active, election)
		}
	}
	return active, nil
}

func (uc ResultsUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
