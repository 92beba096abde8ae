package services

import "errors"

// Service errors. Engine errors from package brackets are returned unchanged
// next to these.
var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotInProgress = errors.New("session is not in progress")
	ErrInvalidTeamMode      = errors.New("team mode must be RANDOM or FAIR")
	ErrConcurrentUpdate     = errors.New("tournament was updated by someone else, reload and retry")
)
