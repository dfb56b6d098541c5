package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateElectionRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	ContractAddress string `json:"contract_address,omitempty"`
}

type ElectionResponse struct {
	ElectionID      string `json:"election_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Phase           string `json:"phase"`
	ContractAddress string `json:"contract_address,omitempty"`
}

type ElectionListResponse struct {
	Items []ElectionResponse `json:"items"`
}

type TransitionPhaseRequest struct {
	Target string `json:"target"`
}

type TransitionPhaseResponse struct {
	ElectionID string `json:"election_id"`
	Phase      string `json:"phase"`
}

type CreatePartyRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type PartyResponse struct {
	PartyID string `json:"party_id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type AddPositionRequest struct {
	Title  string `json:"title"`
	Handle int64  `json:"handle"`
}

type PositionResponse struct {
	PositionID string `json:"position_id"`
	ElectionID string `json:"election_id"`
	Title      string `json:"title"`
	Handle     int64  `json:"handle"`
}

type AddCandidateRequest struct {
	PositionID string `json:"position_id"`
	PartyID    string `json:"party_id,omitempty"`
	Name       string `json:"name"`
	Bio        string `json:"bio,omitempty"`
	Manifesto  string `json:"manifesto,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Handle     int64  `json:"handle"`
}

type CandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	ElectionID  string `json:"election_id"`
	PositionID  string `json:"position_id"`
	PartyID     string `json:"party_id,omitempty"`
	Name        string `json:"name"`
	Handle      int64  `json:"handle"`
}

type GrantEligibilityRequest struct {
	VoterKey string `json:"voter_key"`
}

type GrantEligibilityResponse struct {
	ElectionID  string `json:"election_id"`
	VoterKey    string `json:"voter_key"`
	Whitelisted bool   `json:"whitelisted"`
	Changed     bool   `json:"changed"`
}

type RegisterRollEntryRequest struct {
	RollKey  string `json:"roll_key"`
	Name     string `json:"name,omitempty"`
	MemberID string `json:"member_id,omitempty"`
}

type RollVerificationResponse struct {
	ElectionID string `json:"election_id"`
	RollKey    string `json:"roll_key"`
	OnRoll     bool   `json:"on_roll"`
}

type CastBallotRequest struct {
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
}

type BallotResponse struct {
	BallotID    string `json:"ballot_id"`
	ElectionID  string `json:"election_id"`
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
	VoterKey    string `json:"voter_key"`
	CastAt      string `json:"cast_at"`
	TxRef       string `json:"tx_ref,omitempty"`
}

type BallotListResponse struct {
	Items []BallotResponse `json:"items"`
}

type AttachTransactionRefRequest struct {
	TxRef string `json:"tx_ref"`
}

type CandidateTallyItem struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	PartyID     string `json:"party_id,omitempty"`
	Handle      int64  `json:"handle"`
	Votes       int    `json:"votes"`
}

type PositionResultItem struct {
	PositionID string               `json:"position_id"`
	Title      string               `json:"title"`
	Handle     int64                `json:"handle"`
	Candidates []CandidateTallyItem `json:"candidates"`
}

type ResultsResponse struct {
	ElectionID string               `json:"election_id"`
	Title      string               `json:"title"`
	Phase      string               `json:"phase"`
	TalliedAt  string               `json:"tallied_at"`
	Positions  []PositionResultItem `json:"positions"`
}

type VoterStatusResponse struct {
	ElectionID   string `json:"election_id"`
	VoterKey     string `json:"voter_key"`
	Whitelisted  bool   `json:"whitelisted"`
	RollVerified bool   `json:"roll_verified"`
	HasVoted     bool   `json:"has_voted"`
}
