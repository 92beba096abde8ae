package brackets

import (
	"errors"

	"github.com/Dosada05/spikers-tournament/models"
)

// CanStart reports whether a new tournament may be created for a session.
func CanStart(status models.SessionStatus, existing *models.Tournament) bool {
	return status == models.SessionInProgress && !existing.IsActive()
}

// ActiveMatch returns the one match that needs a result next: the earliest
// incomplete match of the current stage by (round, slot). It returns nil when
// the tournament is not active or nothing is playable.
func ActiveMatch(t *models.Tournament) *models.Match {
	if !t.IsActive() {
		return nil
	}
	var active *models.Match
	for _, stage := range t.CurrentMatchStages() {
		for _, m := range t.MatchesInStage(stage) {
			if m.IsComplete || !m.HasBothTeams() {
				continue
			}
			if active == nil || m.Before(active) {
				active = m
			}
			break
		}
	}
	return active
}

// StageGroup is the read-only projection the client renders as one card.
type StageGroup struct {
	Stage   models.MatchStage `json:"stage"`
	Title   string            `json:"title"`
	Matches []*models.Match   `json:"matches"`
}

// GroupByStage groups matches by stage in display order, skipping empty stages.
func GroupByStage(t *models.Tournament) []StageGroup {
	groups := make([]StageGroup, 0, len(models.MatchStageOrder))
	for _, stage := range models.MatchStageOrder {
		matches := t.MatchesInStage(stage)
		if len(matches) == 0 {
			continue
		}
		groups = append(groups, StageGroup{Stage: stage, Title: StageTitle(stage), Matches: matches})
	}
	return groups
}

func StageTitle(stage models.MatchStage) string {
	switch stage {
	case models.MatchStageRoundRobin:
		return "Round Robin"
	case models.MatchStageBracket:
		return "Bracket"
	case models.MatchStageWinnersFinal:
		return "Winners Final"
	case models.MatchStageLosersFinal:
		return "Losers Final (3rd Place)"
	default:
		return string(stage)
	}
}

func StatusText(status models.TournamentStatus) string {
	switch status {
	case models.TournamentActive:
		return "Tournament in progress"
	case models.TournamentCompleted:
		return "Tournament complete"
	case models.TournamentEnded:
		return "Tournament ended early"
	default:
		return string(status)
	}
}

var userMessages = []struct {
	err     error
	code    string
	message string
}{
	{ErrInsufficientPlayers, "insufficient_players", "Need at least 4 attending players (an even number for random teams)."},
	{ErrInsufficientMiddleRange, "insufficient_middle_range", "Not enough players to build fair teams."},
	{ErrDuplicatePlayer, "duplicate_player", "A player is listed twice in the attendance."},
	{ErrInvalidScore, "invalid_score", "Enter two different, non-negative scores."},
	{ErrSeriesAlreadyDecided, "series_already_decided", "This series is already decided."},
	{ErrMatchNotReady, "match_not_ready", "This match is still waiting for a team."},
	{ErrInsufficientTeams, "insufficient_teams", "Need at least 2 teams for a tournament."},
	{ErrTournamentAlreadyActive, "tournament_already_active", "A tournament is already running for this session."},
	{ErrNoActiveTournament, "no_active_tournament", "This tournament is no longer active."},
	{ErrMatchNotFound, "match_not_found", "That match could not be found."},
	{ErrMatchNotInStage, "match_not_in_stage", "That match is not playable right now."},
}

// ErrorCode returns a stable identifier for an engine error, or "" when err is
// not one of them.
func ErrorCode(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return ""
}

// UserMessage turns an engine error into a short sentence for the client.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.message
		}
	}
	return "Something went wrong. Please try again."
}
