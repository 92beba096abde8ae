package brackets

import (
	"sort"

	"github.com/Dosada05/spikers-tournament/models"
)

// Standing is one team's record within a stage.
type Standing struct {
	TeamID        string `json:"teamId"`
	TeamName      string `json:"teamName"`
	Seed          int    `json:"seed"`
	Rank          int    `json:"rank"`
	Played        int    `json:"played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
	PointDiff     int    `json:"pointDiff"`
}

// ComputeStandings ranks every team by its completed matches in the stage:
// series wins descending, then point differential descending, then original
// seed ascending.
func ComputeStandings(t *models.Tournament, stage models.MatchStage) []Standing {
	byTeam := make(map[string]*Standing, len(t.Teams))
	for _, team := range t.Teams {
		byTeam[team.ID] = &Standing{TeamID: team.ID, TeamName: team.Name, Seed: team.Seed}
	}

	for _, m := range t.Matches {
		if m.Stage != stage || !m.IsComplete || !m.HasBothTeams() {
			continue
		}
		a, b := byTeam[*m.TeamAID], byTeam[*m.TeamBID]
		if a == nil || b == nil {
			continue
		}
		a.Played++
		b.Played++
		for _, g := range m.Games {
			a.PointsFor += g.ScoreA
			a.PointsAgainst += g.ScoreB
			b.PointsFor += g.ScoreB
			b.PointsAgainst += g.ScoreA
		}
		if m.WinnerTeamID != nil && *m.WinnerTeamID == a.TeamID {
			a.Wins++
			b.Losses++
		} else {
			b.Wins++
			a.Losses++
		}
	}

	standings := make([]Standing, 0, len(byTeam))
	for _, s := range byTeam {
		s.PointDiff = s.PointsFor - s.PointsAgainst
		standings = append(standings, *s)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.PointDiff != b.PointDiff {
			return a.PointDiff > b.PointDiff
		}
		return a.Seed < b.Seed
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
