package brackets

import "errors"

// Errors returned by the tournament engine. All of them are recoverable and
// leave the input snapshot untouched.
var (
	// Team formation
	ErrInsufficientPlayers     = errors.New("not enough players to form teams")
	ErrInsufficientMiddleRange = errors.New("not enough players left between the strongest and weakest to pair")
	ErrDuplicatePlayer         = errors.New("player appears more than once in the roster")

	// Series
	ErrInvalidScore         = errors.New("invalid game score")
	ErrSeriesAlreadyDecided = errors.New("series is already decided")
	ErrMatchNotReady        = errors.New("match is still waiting for a team")

	// Tournament
	ErrInsufficientTeams       = errors.New("not enough teams to start a tournament")
	ErrTournamentAlreadyActive = errors.New("session already has an active tournament")
	ErrNoActiveTournament      = errors.New("tournament is not active")
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchNotInStage         = errors.New("match does not belong to the current stage")
)
