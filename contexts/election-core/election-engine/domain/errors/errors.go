package errors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid election engine input")
	ErrElectionNotFound      = errors.New("election not found")
	ErrPositionNotFound      = errors.New("position not found")
	ErrPartyNotFound         = errors.New("party not found")
	ErrCandidateNotFound     = errors.New("candidate not found")
	ErrBallotNotFound        = errors.New("ballot not found")
	ErrInconsistentReference = errors.New("candidate does not belong to the given position and election")
	ErrInvalidTransition     = errors.New("requested phase is not the legal successor")
	ErrElectionNotEditable   = errors.New("election setup is only allowed during init phase")
	ErrHandleTaken           = errors.New("numeric handle is already in use")
	ErrVotingClosed          = errors.New("election is not accepting ballots")
	ErrNotEligible           = errors.New("voter is not whitelisted for this election")
	ErrAlreadyVoted          = errors.New("a ballot for this voter and position already exists")
	ErrResultsNotAvailable   = errors.New("results are not available until the election is closed")
	ErrStorageUnavailable    = errors.New("ballot store is unavailable")
)
