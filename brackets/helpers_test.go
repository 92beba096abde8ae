package brackets

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(prefix string) IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

// tickingClock advances one second on every call so UpdatedAt changes are
// observable.
func tickingClock() func() time.Time {
	now := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestEngine() *Engine {
	return NewEngine(
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithIDFunc(sequentialIDs("id")),
		WithClock(tickingClock()),
	)
}

func fakePlayers(seed uint64, n int) []models.Player {
	faker := gofakeit.New(seed)
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:       faker.UUID(),
			Name:     faker.FirstName(),
			Emoji:    faker.Emoji(),
			IsActive: true,
			Rating:   faker.IntRange(800, 2000),
		}
	}
	return players
}

func ratedPlayers(ratings ...int) []models.Player {
	players := make([]models.Player, len(ratings))
	for i, r := range ratings {
		players[i] = models.Player{ID: fmt.Sprintf("p%d", r), Name: fmt.Sprintf("P%d", r), Rating: r}
	}
	return players
}

// makeTeams returns n teams named team-1..team-n in formation order.
func makeTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := range teams {
		id := fmt.Sprintf("team-%d", i+1)
		teams[i] = &models.Team{ID: id, Name: id, PlayerAID: id + "-a", PlayerA: models.Player{ID: id + "-a", Name: id}}
	}
	return teams
}

func startTournament(t *testing.T, e *Engine, teams int) *models.Tournament {
	t.Helper()
	tour, err := e.Start(StartParams{SessionID: "session-1", Mode: models.TeamModeFair, Teams: makeTeams(teams)})
	require.NoError(t, err)
	return tour
}

// winSeries submits straight-set games until the given side takes the series.
func winSeries(t *testing.T, e *Engine, tour *models.Tournament, matchID string, winner Side) *models.Tournament {
	t.Helper()
	for i := 0; i < 3; i++ {
		scoreA, scoreB := 21, 15
		if winner == SideB {
			scoreA, scoreB = 15, 21
		}
		next, outcome, err := e.SubmitGame(tour, matchID, scoreA, scoreB)
		require.NoError(t, err)
		tour = next
		if outcome.Decided {
			require.Equal(t, winner, outcome.Winner)
			return tour
		}
	}
	t.Fatalf("series %s was not decided", matchID)
	return nil
}

// lowerSeedWins lets the team with the better original seed win.
func lowerSeedWins(tour *models.Tournament, m *models.Match) Side {
	if tour.Team(m.TeamAID).Seed < tour.Team(m.TeamBID).Seed {
		return SideA
	}
	return SideB
}

// playStage plays active matches while the tournament stays in stage.
func playStage(t *testing.T, e *Engine, tour *models.Tournament, stage models.TournamentStage, pick func(*models.Tournament, *models.Match) Side) *models.Tournament {
	t.Helper()
	for tour.Stage == stage {
		m := ActiveMatch(tour)
		require.NotNil(t, m, "stage %s has no playable match", stage)
		tour = winSeries(t, e, tour, m.ID, pick(tour, m))
	}
	return tour
}

func teamIDsOf(ids ...*string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			out = append(out, "")
			continue
		}
		out = append(out, *id)
	}
	return out
}
