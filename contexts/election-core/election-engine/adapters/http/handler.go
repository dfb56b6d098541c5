package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"trustvote/contexts/election-core/election-engine/application/commands"
	"trustvote/contexts/election-core/election-engine/application/queries"
	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
	httptransport "trustvote/contexts/election-core/election-engine/transport/http"
)

// Handler adapts use cases to transport DTOs. Route plumbing lives in the
// platform HTTP server; this layer owns request/response mapping only.
type Handler struct {
	Setup       commands.SetupUseCase
	Lifecycle   commands.LifecycleUseCase
	Eligibility commands.EligibilityUseCase
	Ballots     commands.BallotUseCase
	Results     queries.ResultsUseCase
	Status      queries.StatusUseCase
	Logger      *slog.Logger
}

func (h Handler) CreateElectionHandler(ctx context.Context, req httptransport.CreateElectionRequest) (httptransport.ElectionResponse, error) {
	startTime, err := parseTimestamp(req.StartTime)
	if err != nil {
		return httptransport.ElectionResponse{}, domainerrors.ErrInvalidInput
	}
	endTime, err := parseTimestamp(req.EndTime)
	if err != nil {
		return httptransport.ElectionResponse{}, domainerrors.ErrInvalidInput
	}
	election, err := h.Setup.CreateElection(ctx, commands.CreateElectionCommand{
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       startTime,
		EndTime:         endTime,
		ContractAddress: req.ContractAddress,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) TransitionPhaseHandler(ctx context.Context, electionID string, req httptransport.TransitionPhaseRequest) (httptransport.TransitionPhaseResponse, error) {
	phase, err := h.Lifecycle.TransitionPhase(ctx, commands.TransitionPhaseCommand{
		ElectionID: electionID,
		Target:     entities.Phase(req.Target),
	})
	if err != nil {
		return httptransport.TransitionPhaseResponse{}, err
	}
	return httptransport.TransitionPhaseResponse{
		ElectionID: electionID,
		Phase:      string(phase),
	}, nil
}

func (h Handler) CreatePartyHandler(ctx context.Context, req httptransport.CreatePartyRequest) (httptransport.PartyResponse, error) {
	party, err := h.Setup.CreateParty(ctx, commands.CreatePartyCommand{
		Name:    req.Name,
		LogoURL: req.LogoURL,
	})
	if err != nil {
		return httptransport.PartyResponse{}, err
	}
	return httptransport.PartyResponse{
		PartyID: party.PartyID,
		Name:    party.Name,
		LogoURL: party.LogoURL,
	}, nil
}

func (h Handler) AddPositionHandler(ctx context.Context, electionID string, req httptransport.AddPositionRequest) (httptransport.PositionResponse, error) {
	position, err := h.Setup.AddPosition(ctx, commands.AddPositionCommand{
		ElectionID: electionID,
		Title:      req.Title,
		Handle:     req.Handle,
	})
	if err != nil {
		return httptransport.PositionResponse{}, err
	}
	return httptransport.PositionResponse{
		PositionID: position.PositionID,
		ElectionID: position.ElectionID,
		Title:      position.Title,
		Handle:     position.Handle,
	}, nil
}

func (h Handler) AddCandidateHandler(ctx context.Context, electionID string, req httptransport.AddCandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Setup.AddCandidate(ctx, commands.AddCandidateCommand{
		ElectionID: electionID,
		PositionID: req.PositionID,
		PartyID:    req.PartyID,
		Name:       req.Name,
		Bio:        req.Bio,
		Manifesto:  req.Manifesto,
		PhotoURL:   req.PhotoURL,
		Handle:     req.Handle,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return httptransport.CandidateResponse{
		CandidateID: candidate.CandidateID,
		ElectionID:  candidate.ElectionID,
		PositionID:  candidate.PositionID,
		PartyID:     candidate.PartyID,
		Name:        candidate.Name,
		Handle:      candidate.Handle,
	}, nil
}

func (h Handler) GrantEligibilityHandler(ctx context.Context, electionID string, req httptransport.GrantEligibilityRequest) (httptransport.GrantEligibilityResponse, error) {
	result, err := h.Eligibility.Grant(ctx, commands.GrantEligibilityCommand{
		ElectionID: electionID,
		VoterKey:   req.VoterKey,
	})
	if err != nil {
		return httptransport.GrantEligibilityResponse{}, err
	}
	return httptransport.GrantEligibilityResponse{
		ElectionID:  result.Entry.ElectionID,
		VoterKey:    result.Entry.VoterKey,
		Whitelisted: result.Entry.Whitelisted,
		Changed:     result.Changed,
	}, nil
}

func (h Handler) RegisterRollEntryHandler(ctx context.Context, electionID string, req httptransport.RegisterRollEntryRequest) error {
	_, err := h.Eligibility.RegisterRollEntry(ctx, commands.RegisterRollEntryCommand{
		ElectionID: electionID,
		RollKey:    req.RollKey,
		Name:       req.Name,
		MemberID:   req.MemberID,
	})
	return err
}

func (h Handler) VerifyRollMembershipHandler(ctx context.Context, electionID string, rollKey string) (httptransport.RollVerificationResponse, error) {
	onRoll, err := h.Status.VerifyRollMembership(ctx, electionID, rollKey)
	if err != nil {
		return httptransport.RollVerificationResponse{}, err
	}
	return httptransport.RollVerificationResponse{
		ElectionID: electionID,
		RollKey:    rollKey,
		OnRoll:     onRoll,
	}, nil
}

func (h Handler) CastBallotHandler(ctx context.Context, electionID string, voterKey string, req httptransport.CastBallotRequest) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.CastBallot(ctx, commands.CastBallotCommand{
		ElectionID:  electionID,
		PositionID:  req.PositionID,
		CandidateID: req.CandidateID,
		VoterKey:    voterKey,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return mapBallot(ballot), nil
}

func (h Handler) AttachTransactionRefHandler(ctx context.Context, ballotID string, req httptransport.AttachTransactionRefRequest) (httptransport.BallotResponse, error) {
	ballot, err := h.Ballots.AttachTransactionRef(ctx, commands.AttachTransactionRefCommand{
		BallotID: ballotID,
		TxRef:    req.TxRef,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return mapBallot(ballot), nil
}

func (h Handler) ListBallotsHandler(ctx context.Context, electionID string, positionID string, candidateID string) (httptransport.BallotListResponse, error) {
	ballots, err := h.Status.ListBallots(ctx, electionID, ports.BallotFilter{
		PositionID:  positionID,
		CandidateID: candidateID,
	})
	if err != nil {
		return httptransport.BallotListResponse{}, err
	}
	items := make([]httptransport.BallotResponse, 0, len(ballots))
	for _, ballot := range ballots {
		items = append(items, mapBallot(ballot))
	}
	return httptransport.BallotListResponse{Items: items}, nil
}

func (h Handler) ResultsHandler(ctx context.Context, electionID string, isAdmin bool) (httptransport.ResultsResponse, error) {
	results, err := h.Results.Tally(ctx, electionID, isAdmin)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	positions := make([]httptransport.PositionResultItem, 0, len(results.Positions))
	for _, position := range results.Positions {
		candidates := make([]httptransport.CandidateTallyItem, 0, len(position.Candidates))
		for _, tally := range position.Candidates {
			candidates = append(candidates, httptransport.CandidateTallyItem{
				CandidateID: tally.Candidate.CandidateID,
				Name:        tally.Candidate.Name,
				PartyID:     tally.Candidate.PartyID,
				Handle:      tally.Candidate.Handle,
				Votes:       tally.Votes,
			})
		}
		positions = append(positions, httptransport.PositionResultItem{
			PositionID: position.Position.PositionID,
			Title:      position.Position.Title,
			Handle:     position.Position.Handle,
			Candidates: candidates,
		})
	}
	return httptransport.ResultsResponse{
		ElectionID: results.Election.ElectionID,
		Title:      results.Election.Title,
		Phase:      string(results.Election.Phase),
		TalliedAt:  results.TalliedAt.UTC().Format(time.RFC3339),
		Positions:  positions,
	}, nil
}

func (h Handler) ActiveElectionsHandler(ctx context.Context) (httptransport.ElectionListResponse, error) {
	elections, err := h.Results.ActiveElections(ctx)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	items := make([]httptransport.ElectionResponse, 0, len(elections))
	for _, election := range elections {
		items = append(items, mapElection(election))
	}
	return httptransport.ElectionListResponse{Items: items}, nil
}

func (h Handler) VoterStatusHandler(ctx context.Context, electionID string, voterKey string) (httptransport.VoterStatusResponse, error) {
	status, err := h.Status.GetVoterStatus(ctx, electionID, voterKey)
	if err != nil {
		return httptransport.VoterStatusResponse{}, err
	}
	return httptransport.VoterStatusResponse{
		ElectionID:   status.ElectionID,
		VoterKey:     status.VoterKey,
		Whitelisted:  status.Whitelisted,
		RollVerified: status.RollVerified,
		HasVoted:     status.HasVoted,
	}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:      election.ElectionID,
		Title:           election.Title,
		Description:     election.Description,
		StartTime:       election.StartTime.UTC().Format(time.RFC3339),
		EndTime:         election.EndTime.UTC().Format(time.RFC3339),
		Phase:           string(election.Phase),
		ContractAddress: election.ContractAddress,
	}
}

func mapBallot(ballot entities.Ballot) httptransport.BallotResponse {
	return httptransport.BallotResponse{
		BallotID:    ballot.BallotID,
		ElectionID:  ballot.ElectionID,
		PositionID:  ballot.PositionID,
		CandidateID: ballot.CandidateID,
		VoterKey:    ballot.VoterKey,
		CastAt:      ballot.CastAt.UTC().Format(time.RFC3339),
		TxRef:       ballot.TxRef,
	}
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}
