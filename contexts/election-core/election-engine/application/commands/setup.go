package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "trustvote/contexts/election-core/election-engine/application"
	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"
)

type CreateElectionCommand struct {
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	ContractAddress string
}

type CreatePartyCommand struct {
	Name    string
	LogoURL string
}

type AddPositionCommand struct {
	ElectionID string
	Title      string
	Handle     int64
}

type AddCandidateCommand struct {
	ElectionID string
	PositionID string
	PartyID    string
	Name       string
	Bio        string
	Manifesto  string
	PhotoURL   string
	Handle     int64
}

// SetupUseCase covers the administrative surface that shapes an election
// before voting opens. Positions and candidates can only be added while the
// election is still in init phase.
type SetupUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc SetupUseCase) CreateElection(ctx context.Context, cmd CreateElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)
	title := strings.TrimSpace(cmd.Title)
	if title == "" || cmd.StartTime.IsZero() || cmd.EndTime.IsZero() {
		return entities.Election{}, domainerrors.ErrInvalidInput
	}
	if !cmd.StartTime.UTC().Before(cmd.EndTime.UTC()) {
		return entities.Election{}, domainerrors.ErrInvalidInput
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	now := uc.now()
	election := entities.Election{
		ElectionID:      electionID,
		Title:           title,
		Description:     strings.TrimSpace(cmd.Description),
		StartTime:       cmd.StartTime.UTC(),
		EndTime:         cmd.EndTime.UTC(),
		Phase:           entities.PhaseInit,
		ContractAddress: strings.TrimSpace(cmd.ContractAddress),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}
	logger.Info("election created",
		"event", "election_created",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", election.ElectionID,
		"title", election.Title,
	)
	return election, nil
}

func (uc SetupUseCase) CreateParty(ctx context.Context, cmd CreatePartyCommand) (entities.Party, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Party{}, domainerrors.ErrInvalidInput
	}
	partyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Party{}, err
	}
	party := entities.Party{
		PartyID:   partyID,
		Name:      name,
		LogoURL:   strings.TrimSpace(cmd.LogoURL),
		CreatedAt: uc.now(),
	}
	if err := uc.Elections.SaveParty(ctx, party); err != nil {
		return entities.Party{}, err
	}
	logger.Info("party created",
		"event", "election_party_created",
		"module", "election-core/election-engine",
		"layer", "application",
		"party_id", party.PartyID,
		"name", party.Name,
	)
	return party, nil
}

func (uc SetupUseCase) AddPosition(ctx context.Context, cmd AddPositionCommand) (entities.Position, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	title := strings.TrimSpace(cmd.Title)
	if electionID == "" || title == "" || cmd.Handle < 0 {
		return entities.Position{}, domainerrors.ErrInvalidInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Position{}, err
	}
	if election.Phase != entities.PhaseInit {
		return entities.Position{}, domainerrors.ErrElectionNotEditable
	}
	taken, err := uc.Elections.PositionHandleExists(ctx, cmd.Handle)
	if err != nil {
		return entities.Position{}, err
	}
	if taken {
		return entities.Position{}, domainerrors.ErrHandleTaken
	}

	positionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Position{}, err
	}
	position := entities.Position{
		PositionID: positionID,
		ElectionID: electionID,
		Title:      title,
		Handle:     cmd.Handle,
		CreatedAt:  uc.now(),
	}
	if err := uc.Elections.SavePosition(ctx, position); err != nil {
		return entities.Position{}, err
	}
	logger.Info("position added",
		"event", "election_position_added",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"position_id", position.PositionID,
		"handle", position.Handle,
	)
	return position, nil
}

func (uc SetupUseCase) AddCandidate(ctx context.Context, cmd AddCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	electionID := strings.TrimSpace(cmd.ElectionID)
	positionID := strings.TrimSpace(cmd.PositionID)
	name := strings.TrimSpace(cmd.Name)
	if electionID == "" || positionID == "" || name == "" || cmd.Handle < 0 {
		return entities.Candidate{}, domainerrors.ErrInvalidInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if election.Phase != entities.PhaseInit {
		return entities.Candidate{}, domainerrors.ErrElectionNotEditable
	}
	position, err := uc.Elections.GetPosition(ctx, positionID)
	if err != nil {
		return entities.Candidate{}, err
	}
	if position.ElectionID != electionID {
		return entities.Candidate{}, domainerrors.ErrInconsistentReference
	}
	if partyID := strings.TrimSpace(cmd.PartyID); partyID != "" {
		if _, err := uc.Elections.GetParty(ctx, partyID); err != nil {
			return entities.Candidate{}, err
		}
	}
	taken, err := uc.Elections.CandidateHandleExists(ctx, cmd.Handle)
	if err != nil {
		return entities.Candidate{}, err
	}
	if taken {
		return entities.Candidate{}, domainerrors.ErrHandleTaken
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate := entities.Candidate{
		CandidateID: candidateID,
		ElectionID:  electionID,
		PositionID:  positionID,
		PartyID:     strings.TrimSpace(cmd.PartyID),
		Name:        name,
		Bio:         strings.TrimSpace(cmd.Bio),
		Manifesto:   strings.TrimSpace(cmd.Manifesto),
		PhotoURL:    strings.TrimSpace(cmd.PhotoURL),
		Handle:      cmd.Handle,
		CreatedAt:   uc.now(),
	}
	if err := uc.Elections.SaveCandidate(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	logger.Info("candidate added",
		"event", "election_candidate_added",
		"module", "election-core/election-engine",
		"layer", "application",
		"election_id", electionID,
		"position_id", positionID,
		"candidate_id", candidate.CandidateID,
		"handle", candidate.Handle,
	)
	return candidate, nil
}

func (uc SetupUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
