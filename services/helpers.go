package services

import (
	"github.com/Dosada05/spikers-tournament/brackets"
	"github.com/Dosada05/spikers-tournament/models"
)

// TournamentView is a tournament snapshot plus what the client derives from it.
type TournamentView struct {
	Tournament  *models.Tournament `json:"tournament"`
	ActiveMatch *models.Match      `json:"activeMatch"`
	StatusText  string             `json:"statusText"`
	Winner      *models.Team       `json:"winner,omitempty"`
}

type SessionTournamentView struct {
	SessionID     string               `json:"sessionId"`
	SessionStatus models.SessionStatus `json:"sessionStatus"`
	CanStart      bool                 `json:"canStart"`
	Tournament    *TournamentView      `json:"tournament"`
}

type SubmitGameResult struct {
	*TournamentView
	Outcome brackets.SeriesOutcome `json:"outcome"`
}

func newTournamentView(t *models.Tournament) *TournamentView {
	return &TournamentView{
		Tournament:  t,
		ActiveMatch: brackets.ActiveMatch(t),
		StatusText:  brackets.StatusText(t.Status),
		Winner:      t.Team(t.WinnerTeamID),
	}
}
