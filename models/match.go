package models

import (
	"sort"
	"time"
)

// MatchStage tags which part of the competition a match belongs to.
type MatchStage string

const (
	MatchStageRoundRobin   MatchStage = "ROUND_ROBIN"
	MatchStageBracket      MatchStage = "BRACKET"
	MatchStageWinnersFinal MatchStage = "WINNERS_FINAL"
	MatchStageLosersFinal  MatchStage = "LOSERS_FINAL"
)

// MatchStageOrder is the display order of match stages.
var MatchStageOrder = []MatchStage{
	MatchStageRoundRobin,
	MatchStageBracket,
	MatchStageWinnersFinal,
	MatchStageLosersFinal,
}

func (s MatchStage) Order() int {
	for i, stage := range MatchStageOrder {
		if stage == s {
			return i
		}
	}
	return len(MatchStageOrder)
}

// IsFinal reports whether the stage is one of the two concurrently played finals.
func (s MatchStage) IsFinal() bool {
	return s == MatchStageWinnersFinal || s == MatchStageLosersFinal
}

// DefaultBestOf is the series length used for every generated match.
const DefaultBestOf = 3

// Match is a best-of-N series between two teams. A nil team id is an
// unresolved ("TBD") side waiting on an earlier match; its player id list is
// empty until the side resolves.
type Match struct {
	ID             string      `json:"id"`
	TournamentID   string      `json:"tournamentId"`
	Stage          MatchStage  `json:"stage"`
	Round          int         `json:"round"`
	Slot           int         `json:"slot"`
	BestOf         int         `json:"bestOf"`
	WinsA          int         `json:"winsA"`
	WinsB          int         `json:"winsB"`
	IsComplete     bool        `json:"isComplete"`
	TeamAID        *string     `json:"teamAId"`
	TeamBID        *string     `json:"teamBId"`
	WinnerTeamID   *string     `json:"winnerTeamId"`
	LoserTeamID    *string     `json:"loserTeamId"`
	TeamAPlayerIDs []string    `json:"teamAPlayerIds"`
	TeamBPlayerIDs []string    `json:"teamBPlayerIds"`
	Games          []MatchGame `json:"games"`
}

// MatchGame is one game of a series. GameNumber starts at 1 and is never reused.
// GameID identifies the game result itself; ID identifies its place in the series.
type MatchGame struct {
	ID                string    `json:"id"`
	TournamentMatchID string    `json:"tournamentMatchId"`
	GameID            string    `json:"gameId"`
	GameNumber        int       `json:"gameNumber"`
	ScoreA            int       `json:"scoreA"`
	ScoreB            int       `json:"scoreB"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (m *Match) HasBothTeams() bool {
	return m.TeamAID != nil && m.TeamBID != nil
}

// Before orders matches by round, then slot.
func (m *Match) Before(other *Match) bool {
	if m.Round != other.Round {
		return m.Round < other.Round
	}
	if m.Slot != other.Slot {
		return m.Slot < other.Slot
	}
	return m.ID < other.ID
}

func (m *Match) Clone() *Match {
	c := *m
	c.TeamAID = cloneString(m.TeamAID)
	c.TeamBID = cloneString(m.TeamBID)
	c.WinnerTeamID = cloneString(m.WinnerTeamID)
	c.LoserTeamID = cloneString(m.LoserTeamID)
	c.TeamAPlayerIDs = cloneStrings(m.TeamAPlayerIDs)
	c.TeamBPlayerIDs = cloneStrings(m.TeamBPlayerIDs)
	c.Games = make([]MatchGame, len(m.Games))
	copy(c.Games, m.Games)
	return &c
}

func SortMatches(matches []*Match) {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Before(matches[j])
	})
}
