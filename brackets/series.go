package brackets

import (
	"fmt"
	"time"

	"github.com/Dosada05/spikers-tournament/models"
)

// Side identifies one of the two teams of a match.
type Side string

const (
	SideNone Side = ""
	SideA    Side = "A"
	SideB    Side = "B"
)

// GameInput is a single game result to be added to a series.
type GameInput struct {
	ID     string
	GameID string
	ScoreA int
	ScoreB int
	At     time.Time
}

// SeriesOutcome reports what a recorded game did to its series.
type SeriesOutcome struct {
	GameNumber int  `json:"gameNumber"`
	Decided    bool `json:"decided"`
	Winner     Side `json:"winner,omitempty"`
}

// WinsNeeded is the number of game wins that decides a best-of series.
func WinsNeeded(bestOf int) int {
	return (bestOf + 1) / 2
}

// RecordGame appends a game to the match and re-evaluates the series. On error
// the match is not modified.
func RecordGame(m *models.Match, in GameInput) (SeriesOutcome, error) {
	if m.IsComplete {
		return SeriesOutcome{}, fmt.Errorf("%w: match %s", ErrSeriesAlreadyDecided, m.ID)
	}
	if in.ScoreA == in.ScoreB {
		return SeriesOutcome{}, fmt.Errorf("%w: games cannot end in a tie (%d-%d)", ErrInvalidScore, in.ScoreA, in.ScoreB)
	}
	if in.ScoreA < 0 || in.ScoreB < 0 {
		return SeriesOutcome{}, fmt.Errorf("%w: scores must not be negative (%d-%d)", ErrInvalidScore, in.ScoreA, in.ScoreB)
	}
	if !m.HasBothTeams() {
		return SeriesOutcome{}, fmt.Errorf("%w: match %s", ErrMatchNotReady, m.ID)
	}

	game := models.MatchGame{
		ID:                in.ID,
		TournamentMatchID: m.ID,
		GameID:            in.GameID,
		GameNumber:        len(m.Games) + 1,
		ScoreA:            in.ScoreA,
		ScoreB:            in.ScoreB,
		CreatedAt:         in.At,
	}
	m.Games = append(m.Games, game)

	if in.ScoreA > in.ScoreB {
		m.WinsA++
	} else {
		m.WinsB++
	}

	outcome := SeriesOutcome{GameNumber: game.GameNumber}
	need := WinsNeeded(m.BestOf)
	switch {
	case m.WinsA >= need:
		outcome.Decided, outcome.Winner = true, SideA
		m.IsComplete = true
		m.WinnerTeamID, m.LoserTeamID = cloneID(m.TeamAID), cloneID(m.TeamBID)
	case m.WinsB >= need:
		outcome.Decided, outcome.Winner = true, SideB
		m.IsComplete = true
		m.WinnerTeamID, m.LoserTeamID = cloneID(m.TeamBID), cloneID(m.TeamAID)
	}
	return outcome, nil
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
