package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	"trustvote/contexts/election-core/election-engine/ports"
)

type electionModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Title           string    `gorm:"column:title"`
	Description     string    `gorm:"column:description"`
	StartTime       time.Time `gorm:"column:start_time"`
	EndTime         time.Time `gorm:"column:end_time"`
	Phase           string    `gorm:"column:phase"`
	ContractAddress string    `gorm:"column:contract_address"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:              strings.TrimSpace(election.ElectionID),
		Title:           strings.TrimSpace(election.Title),
		Description:     election.Description,
		StartTime:       election.StartTime.UTC(),
		EndTime:         election.EndTime.UTC(),
		Phase:           string(election.Phase),
		ContractAddress: strings.TrimSpace(election.ContractAddress),
		CreatedAt:       election.CreatedAt.UTC(),
		UpdatedAt:       election.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:      m.ID,
		Title:           m.Title,
		Description:     m.Description,
		StartTime:       m.StartTime.UTC(),
		EndTime:         m.EndTime.UTC(),
		Phase:           entities.Phase(m.Phase),
		ContractAddress: m.ContractAddress,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type positionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id"`
	Title      string    `gorm:"column:title"`
	Handle     int64     `gorm:"column:handle;uniqueIndex"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (positionModel) TableName() string {
	return "positions"
}

func positionModelFromEntity(position entities.Position) positionModel {
	return positionModel{
		ID:         strings.TrimSpace(position.PositionID),
		ElectionID: strings.TrimSpace(position.ElectionID),
		Title:      strings.TrimSpace(position.Title),
		Handle:     position.Handle,
		CreatedAt:  position.CreatedAt.UTC(),
	}
}

func (m positionModel) toEntity() entities.Position {
	return entities.Position{
		PositionID: m.ID,
		ElectionID: m.ElectionID,
		Title:      m.Title,
		Handle:     m.Handle,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type partyModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	LogoURL   string    `gorm:"column:logo_url"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (partyModel) TableName() string {
	return "parties"
}

func partyModelFromEntity(party entities.Party) partyModel {
	return partyModel{
		ID:        strings.TrimSpace(party.PartyID),
		Name:      strings.TrimSpace(party.Name),
		LogoURL:   strings.TrimSpace(party.LogoURL),
		CreatedAt: party.CreatedAt.UTC(),
	}
}

func (m partyModel) toEntity() entities.Party {
	return entities.Party{
		PartyID:   m.ID,
		Name:      m.Name,
		LogoURL:   m.LogoURL,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type candidateModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ElectionID string    `gorm:"column:election_id"`
	PositionID string    `gorm:"column:position_id"`
	PartyID    *string   `gorm:"column:party_id"`
	Name       string    `gorm:"column:name"`
	Bio        string    `gorm:"column:bio"`
	Manifesto  string    `gorm:"column:manifesto"`
	PhotoURL   string    `gorm:"column:photo_url"`
	Handle     int64     `gorm:"column:handle;uniqueIndex"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:         strings.TrimSpace(candidate.CandidateID),
		ElectionID: strings.TrimSpace(candidate.ElectionID),
		PositionID: strings.TrimSpace(candidate.PositionID),
		Name:       strings.TrimSpace(candidate.Name),
		Bio:        candidate.Bio,
		Manifesto:  candidate.Manifesto,
		PhotoURL:   strings.TrimSpace(candidate.PhotoURL),
		Handle:     candidate.Handle,
		CreatedAt:  candidate.CreatedAt.UTC(),
	}
	if partyID := strings.TrimSpace(candidate.PartyID); partyID != "" {
		row.PartyID = &partyID
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	partyID := ""
	if m.PartyID != nil {
		partyID = strings.TrimSpace(*m.PartyID)
	}
	return entities.Candidate{
		CandidateID: m.ID,
		ElectionID:  m.ElectionID,
		PositionID:  m.PositionID,
		PartyID:     partyID,
		Name:        m.Name,
		Bio:         m.Bio,
		Manifesto:   m.Manifesto,
		PhotoURL:    m.PhotoURL,
		Handle:      m.Handle,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type eligibilityModel struct {
	ElectionID  string    `gorm:"column:election_id;primaryKey"`
	VoterKey    string    `gorm:"column:voter_key;primaryKey"`
	Whitelisted bool      `gorm:"column:whitelisted"`
	GrantedAt   time.Time `gorm:"column:granted_at"`
}

func (eligibilityModel) TableName() string {
	return "eligibility_entries"
}

func (m eligibilityModel) toEntity() entities.EligibilityEntry {
	return entities.EligibilityEntry{
		ElectionID:  m.ElectionID,
		VoterKey:    m.VoterKey,
		Whitelisted: m.Whitelisted,
		GrantedAt:   m.GrantedAt.UTC(),
	}
}

type rollModel struct {
	ElectionID string    `gorm:"column:election_id;primaryKey"`
	RollKey    string    `gorm:"column:roll_key;primaryKey"`
	Name       string    `gorm:"column:name"`
	MemberID   string    `gorm:"column:member_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (rollModel) TableName() string {
	return "roll_entries"
}

func rollModelFromEntity(entry entities.RollEntry) rollModel {
	return rollModel{
		ElectionID: strings.TrimSpace(entry.ElectionID),
		RollKey:    strings.TrimSpace(entry.RollKey),
		Name:       strings.TrimSpace(entry.Name),
		MemberID:   strings.TrimSpace(entry.MemberID),
		CreatedAt:  entry.CreatedAt.UTC(),
	}
}

func (m rollModel) toEntity() entities.RollEntry {
	return entities.RollEntry{
		ElectionID: m.ElectionID,
		RollKey:    m.RollKey,
		Name:       m.Name,
		MemberID:   m.MemberID,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id;uniqueIndex:idx_ballots_single_vote"`
	PositionID  string    `gorm:"column:position_id;uniqueIndex:idx_ballots_single_vote"`
	CandidateID string    `gorm:"column:candidate_id"`
	VoterKey    string    `gorm:"column:voter_key;uniqueIndex:idx_ballots_single_vote"`
	CastAt      time.Time `gorm:"column:cast_at"`
	TxRef       string    `gorm:"column:tx_ref"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	return ballotModel{
		ID:          strings.TrimSpace(ballot.BallotID),
		ElectionID:  strings.TrimSpace(ballot.ElectionID),
		PositionID:  strings.TrimSpace(ballot.PositionID),
		CandidateID: strings.TrimSpace(ballot.CandidateID),
		VoterKey:    strings.TrimSpace(ballot.VoterKey),
		CastAt:      ballot.CastAt.UTC(),
		TxRef:       strings.TrimSpace(ballot.TxRef),
	}
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:    m.ID,
		ElectionID:  m.ElectionID,
		PositionID:  m.PositionID,
		CandidateID: m.CandidateID,
		VoterKey:    m.VoterKey,
		CastAt:      m.CastAt.UTC(),
		TxRef:       m.TxRef,
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}
