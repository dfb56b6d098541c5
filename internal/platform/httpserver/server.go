package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	electionengine "trustvote/contexts/election-core/election-engine"
	electionerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	electionhttp "trustvote/contexts/election-core/election-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "trustvote/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	adminKey string
	election electionengine.Module
}

func New(
	electionModule electionengine.Module,
	adminKey string,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		adminKey: adminKey,
		election: electionModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /api/elections/active", s.handleActiveElections)
	s.mux.HandleFunc("POST /api/elections/{election_id}/transition", s.handleTransitionPhase)
	s.mux.HandleFunc("POST /api/parties", s.handleCreateParty)
	s.mux.HandleFunc("POST /api/elections/{election_id}/positions", s.handleAddPosition)
	s.mux.HandleFunc("POST /api/elections/{election_id}/candidates", s.handleAddCandidate)

	s.mux.HandleFunc("POST /api/elections/{election_id}/eligibility", s.handleGrantEligibility)
	s.mux.HandleFunc("POST /api/elections/{election_id}/roll", s.handleRegisterRollEntry)
	s.mux.HandleFunc("GET /api/elections/{election_id}/roll/{roll_key}", s.handleVerifyRollMembership)

	s.mux.HandleFunc("POST /api/elections/{election_id}/ballots", s.handleCastBallot)
	s.mux.HandleFunc("GET /api/elections/{election_id}/ballots", s.handleListBallots)
	s.mux.HandleFunc("POST /api/ballots/{ballot_id}/transaction", s.handleAttachTransactionRef)

	s.mux.HandleFunc("GET /api/elections/{election_id}/results", s.handleResults)
	s.mux.HandleFunc("GET /api/elections/{election_id}/voters/{voter_key}/status", s.handleVoterStatus)
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.CreateElectionHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTransitionPhase(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.TransitionPhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.TransitionPhaseHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.CreatePartyHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.AddPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AddPositionHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.AddCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AddCandidateHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGrantEligibility(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.GrantEligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.GrantEligibilityHandler(r.Context(), r.PathValue("election_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterRollEntry(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.RegisterRollEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.election.Handler.RegisterRollEntryHandler(r.Context(), r.PathValue("election_id"), req); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifyRollMembership(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.VerifyRollMembershipHandler(
		r.Context(),
		r.PathValue("election_id"),
		r.PathValue("roll_key"),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	voterKey := strings.TrimSpace(r.Header.Get("X-Voter-Key"))
	if voterKey == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Key header is required")
		return
	}

	var req electionhttp.CastBallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.CastBallotHandler(r.Context(), r.PathValue("election_id"), voterKey, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAttachTransactionRef(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.AttachTransactionRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AttachTransactionRefHandler(r.Context(), r.PathValue("ballot_id"), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListBallots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.election.Handler.ListBallotsHandler(
		r.Context(),
		r.PathValue("election_id"),
		query.Get("position_id"),
		query.Get("candidate_id"),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ResultsHandler(
		r.Context(),
		r.PathValue("election_id"),
		s.isAdmin(r),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveElections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ActiveElectionsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.VoterStatusHandler(
		r.Context(),
		r.PathValue("election_id"),
		r.PathValue("voter_key"),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) isAdmin(r *http.Request) bool {
	key := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
	return key != "" && s.adminKey != "" && key == s.adminKey
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrInvalidInput):
		writeElectionError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound),
		errors.Is(err, electionerrors.ErrPositionNotFound),
		errors.Is(err, electionerrors.ErrPartyNotFound),
		errors.Is(err, electionerrors.ErrCandidateNotFound),
		errors.Is(err, electionerrors.ErrBallotNotFound):
		writeElectionError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, electionerrors.ErrInconsistentReference):
		writeElectionError(w, http.StatusUnprocessableEntity, "inconsistent_reference", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidTransition):
		writeElectionError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotEditable):
		writeElectionError(w, http.StatusConflict, "election_not_editable", err.Error())
	case errors.Is(err, electionerrors.ErrHandleTaken):
		writeElectionError(w, http.StatusConflict, "handle_taken", err.Error())
	case errors.Is(err, electionerrors.ErrVotingClosed):
		writeElectionError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, electionerrors.ErrNotEligible):
		writeElectionError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrResultsNotAvailable):
		writeElectionError(w, http.StatusForbidden, "results_not_available", err.Error())
	case errors.Is(err, electionerrors.ErrStorageUnavailable):
		writeElectionError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
