package brackets

import (
	"testing"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eliminatedTeams(tour *models.Tournament) []string {
	var out []string
	for _, team := range tour.TeamsBySeed() {
		if team.IsEliminated {
			out = append(out, team.ID)
		}
	}
	return out
}

func TestEngineStart(t *testing.T) {
	e := newTestEngine()
	input := makeTeams(4)
	input[2].Wins = 5
	input[2].IsEliminated = true

	tour, err := e.Start(StartParams{SessionID: "session-1", Mode: models.TeamModeRandom, Teams: input})
	require.NoError(t, err)

	assert.Equal(t, models.TournamentActive, tour.Status)
	assert.Equal(t, models.StageRoundRobin, tour.Stage)
	assert.Equal(t, models.TeamModeRandom, tour.TeamMode)
	assert.Equal(t, "session-1", tour.SessionID)
	assert.Nil(t, tour.EndedAt)
	assert.Nil(t, tour.WinnerTeamID)
	require.Len(t, tour.Teams, 4)
	assert.Len(t, tour.Matches, 6)

	for i, team := range tour.TeamsBySeed() {
		assert.Equal(t, i+1, team.Seed)
		assert.Equal(t, tour.ID, team.TournamentID)
		assert.Zero(t, team.Wins)
		assert.False(t, team.IsEliminated)
	}
	for _, m := range tour.Matches {
		assert.Equal(t, []string{*m.TeamAID + "-a"}, m.TeamAPlayerIDs)
		assert.Equal(t, []string{*m.TeamBID + "-a"}, m.TeamBPlayerIDs)
	}
	assert.Equal(t, 5, input[2].Wins, "input teams are not modified")
}

func TestEngineStartErrors(t *testing.T) {
	e := newTestEngine()
	active := startTournament(t, e, 2)

	ended, err := e.EndEarly(active)
	require.NoError(t, err)

	tests := []struct {
		name    string
		params  StartParams
		wantErr error
	}{
		{
			name:    "active tournament exists",
			params:  StartParams{SessionID: "session-1", Teams: makeTeams(4), Existing: active},
			wantErr: ErrTournamentAlreadyActive,
		},
		{
			name:    "single team",
			params:  StartParams{SessionID: "session-1", Teams: makeTeams(1)},
			wantErr: ErrInsufficientTeams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Start(tt.params)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = e.Start(StartParams{SessionID: "session-1", Mode: models.TeamModeFair, Teams: makeTeams(4), Existing: ended})
	require.NoError(t, err, "a finished tournament does not block a new one")
}

func TestEngineFormTeams(t *testing.T) {
	e := newTestEngine()

	teams, err := e.FormTeams(models.TeamModeFair, ratedPlayers(100, 200, 300, 400))
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	teams, err = e.FormTeams(models.TeamModeRandom, fakePlayers(8, 6))
	require.NoError(t, err)
	assert.Len(t, teams, 3)

	_, err = e.FormTeams(models.TeamMode("SNAKE"), fakePlayers(8, 6))
	require.Error(t, err)
}

// Four teams: round robin, semifinals, then both finals.
func TestEngineFullTournamentFourTeams(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 4)

	tour = playStage(t, e, tour, models.StageRoundRobin, lowerSeedWins)
	require.Equal(t, models.StageBracket, tour.Stage)

	for i, team := range tour.TeamsBySeed() {
		assert.Equal(t, i+1, team.BracketSeed, "round robin ranking follows the results")
	}

	semis := tour.MatchesInStage(models.MatchStageBracket)
	require.Len(t, semis, 2)
	assert.Equal(t, []string{"team-1", "team-4"}, teamIDsOf(semis[0].TeamAID, semis[0].TeamBID))
	assert.Equal(t, []string{"team-2", "team-3"}, teamIDsOf(semis[1].TeamAID, semis[1].TeamBID))

	// team-4 upsets team-1, team-2 beats team-3.
	tour = winSeries(t, e, tour, semis[0].ID, SideB)
	assert.Equal(t, models.StageBracket, tour.Stage)
	assert.Empty(t, eliminatedTeams(tour), "semifinal losers still play for third")
	tour = winSeries(t, e, tour, semis[1].ID, SideA)
	require.Equal(t, models.StageFinals, tour.Stage)

	losersFinal := tour.MatchesInStage(models.MatchStageLosersFinal)
	winnersFinal := tour.MatchesInStage(models.MatchStageWinnersFinal)
	require.Len(t, losersFinal, 1)
	require.Len(t, winnersFinal, 1)
	assert.Equal(t, []string{"team-1", "team-3"}, teamIDsOf(losersFinal[0].TeamAID, losersFinal[0].TeamBID))
	assert.Equal(t, []string{"team-4", "team-2"}, teamIDsOf(winnersFinal[0].TeamAID, winnersFinal[0].TeamBID))
	assert.Equal(t, 2, losersFinal[0].Round)
	assert.Equal(t, 2, winnersFinal[0].Round)

	active := ActiveMatch(tour)
	require.NotNil(t, active)
	assert.Equal(t, losersFinal[0].ID, active.ID, "third place is played first")

	tour = winSeries(t, e, tour, losersFinal[0].ID, SideB)
	assert.Equal(t, models.StageFinals, tour.Stage)
	assert.Equal(t, winnersFinal[0].ID, ActiveMatch(tour).ID)

	tour = winSeries(t, e, tour, winnersFinal[0].ID, SideB)
	assert.Equal(t, models.TournamentCompleted, tour.Status)
	assert.Equal(t, models.StageCompleted, tour.Stage)
	require.NotNil(t, tour.WinnerTeamID)
	assert.Equal(t, "team-2", *tour.WinnerTeamID)
	require.NotNil(t, tour.EndedAt)
	assert.Nil(t, ActiveMatch(tour))
	assert.Equal(t, []string{"team-1", "team-4"}, eliminatedTeams(tour))

	champion := tour.Teams["team-2"]
	assert.Equal(t, 4, champion.Wins)
	assert.Equal(t, 1, champion.Losses)

	_, _, err := e.SubmitGame(tour, winnersFinal[0].ID, 21, 3)
	require.ErrorIs(t, err, ErrNoActiveTournament)
}

func TestEngineTwoTeamsSkipBracket(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 2)
	require.Len(t, tour.Matches, 1)

	tour = playStage(t, e, tour, models.StageRoundRobin, func(*models.Tournament, *models.Match) Side { return SideB })
	require.Equal(t, models.StageFinals, tour.Stage)
	assert.Empty(t, tour.MatchesInStage(models.MatchStageBracket))
	assert.Empty(t, tour.MatchesInStage(models.MatchStageLosersFinal))

	final := tour.MatchesInStage(models.MatchStageWinnersFinal)
	require.Len(t, final, 1)
	assert.Equal(t, []string{"team-2", "team-1"}, teamIDsOf(final[0].TeamAID, final[0].TeamBID), "round robin winner is bracket seed 1")

	tour = winSeries(t, e, tour, final[0].ID, SideB)
	assert.Equal(t, models.TournamentCompleted, tour.Status)
	assert.Equal(t, "team-1", *tour.WinnerTeamID)
	assert.Equal(t, []string{"team-2"}, eliminatedTeams(tour))
}

func TestEngineThreeTeamsByeGoesToFinal(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 3)

	tour = playStage(t, e, tour, models.StageRoundRobin, lowerSeedWins)
	require.Equal(t, models.StageBracket, tour.Stage)

	bracket := tour.MatchesInStage(models.MatchStageBracket)
	require.Len(t, bracket, 1)
	assert.Equal(t, []string{"team-2", "team-3"}, teamIDsOf(bracket[0].TeamAID, bracket[0].TeamBID))

	tour = winSeries(t, e, tour, bracket[0].ID, SideB)
	require.Equal(t, models.StageFinals, tour.Stage)
	assert.Empty(t, tour.MatchesInStage(models.MatchStageLosersFinal), "no losers final without two semifinals")
	assert.Equal(t, []string{"team-2"}, eliminatedTeams(tour))

	final := tour.MatchesInStage(models.MatchStageWinnersFinal)
	require.Len(t, final, 1)
	assert.Equal(t, []string{"team-1", "team-3"}, teamIDsOf(final[0].TeamAID, final[0].TeamBID))

	tour = winSeries(t, e, tour, final[0].ID, SideA)
	assert.Equal(t, models.StageCompleted, tour.Stage)
	assert.Equal(t, "team-1", *tour.WinnerTeamID)
	assert.Equal(t, []string{"team-2", "team-3"}, eliminatedTeams(tour))
}

func TestEngineFiveTeamsPropagatesWinners(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 5)
	assert.Len(t, tour.Matches, 10)

	tour = playStage(t, e, tour, models.StageRoundRobin, lowerSeedWins)
	require.Equal(t, models.StageBracket, tour.Stage)

	waiting := bracketMatchAt(tour, 2, 1)
	require.NotNil(t, waiting)
	assert.Equal(t, []string{"team-1", ""}, teamIDsOf(waiting.TeamAID, waiting.TeamBID))
	assert.Equal(t, []string{"team-1-a"}, waiting.TeamAPlayerIDs)
	assert.Equal(t, []string{}, waiting.TeamBPlayerIDs, "an unresolved side has no players")

	_, _, err := e.SubmitGame(tour, waiting.ID, 21, 10)
	require.ErrorIs(t, err, ErrMatchNotReady)

	first := bracketMatchAt(tour, 1, 2)
	require.NotNil(t, first)
	assert.Equal(t, first.ID, ActiveMatch(tour).ID, "earliest round is played first")

	tour = winSeries(t, e, tour, first.ID, SideB)
	waiting = bracketMatchAt(tour, 2, 1)
	assert.Equal(t, []string{"team-1", "team-5"}, teamIDsOf(waiting.TeamAID, waiting.TeamBID))
	assert.Equal(t, []string{"team-5-a"}, waiting.TeamBPlayerIDs, "players follow the winner into the next round")
	assert.Equal(t, []string{"team-4"}, eliminatedTeams(tour), "early round losers are out")

	tour = playStage(t, e, tour, models.StageBracket, lowerSeedWins)
	require.Equal(t, models.StageFinals, tour.Stage)

	assert.Equal(t, []string{"team-5", "team-3"}, teamIDsOf(
		tour.MatchesInStage(models.MatchStageLosersFinal)[0].TeamAID,
		tour.MatchesInStage(models.MatchStageLosersFinal)[0].TeamBID,
	))
	assert.Equal(t, []string{"team-1", "team-2"}, teamIDsOf(
		tour.MatchesInStage(models.MatchStageWinnersFinal)[0].TeamAID,
		tour.MatchesInStage(models.MatchStageWinnersFinal)[0].TeamBID,
	))
	losersFinal := tour.MatchesInStage(models.MatchStageLosersFinal)[0]
	assert.Equal(t, []string{"team-5-a"}, losersFinal.TeamAPlayerIDs)
	assert.Equal(t, []string{"team-3-a"}, losersFinal.TeamBPlayerIDs)

	tour = playStage(t, e, tour, models.StageFinals, lowerSeedWins)
	assert.Equal(t, models.TournamentCompleted, tour.Status)
	assert.Equal(t, "team-1", *tour.WinnerTeamID)
}

func TestEngineSubmitGameErrors(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 4)
	rr := tour.MatchesInStage(models.MatchStageRoundRobin)

	decided := winSeries(t, e, tour, rr[0].ID, SideA)

	withStray := tour.Clone()
	a, b := "team-1", "team-2"
	withStray.AddMatch(&models.Match{
		ID: "stray", Stage: models.MatchStageBracket, Round: 1, Slot: 1,
		BestOf: models.DefaultBestOf, TeamAID: &a, TeamBID: &b, Games: []models.MatchGame{},
	})

	ended, err := e.EndEarly(tour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		tour    *models.Tournament
		matchID string
		scoreA  int
		scoreB  int
		wantErr error
	}{
		{name: "unknown match", tour: tour, matchID: "nope", scoreA: 21, scoreB: 1, wantErr: ErrMatchNotFound},
		{name: "tie", tour: tour, matchID: rr[1].ID, scoreA: 21, scoreB: 21, wantErr: ErrInvalidScore},
		{name: "decided series", tour: decided, matchID: rr[0].ID, scoreA: 21, scoreB: 1, wantErr: ErrSeriesAlreadyDecided},
		{name: "match outside current stage", tour: withStray, matchID: "stray", scoreA: 21, scoreB: 1, wantErr: ErrMatchNotInStage},
		{name: "ended tournament", tour: ended, matchID: rr[1].ID, scoreA: 21, scoreB: 1, wantErr: ErrNoActiveTournament},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.tour.Clone()
			next, _, err := e.SubmitGame(tt.tour, tt.matchID, tt.scoreA, tt.scoreB)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, next)
			assert.Empty(t, cmp.Diff(before, tt.tour))
		})
	}
}

func TestEngineSubmitGameLeavesInputUntouched(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 3)
	before := tour.Clone()

	m := ActiveMatch(tour)
	next, outcome, err := e.SubmitGame(tour, m.ID, 21, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.GameNumber)
	assert.False(t, outcome.Decided)

	assert.Empty(t, cmp.Diff(before, tour))
	assert.Len(t, next.Matches[m.ID].Games, 1)
	game := next.Matches[m.ID].Games[0]
	assert.Equal(t, m.ID, game.TournamentMatchID)
	assert.NotEmpty(t, game.GameID)
	assert.NotEqual(t, game.ID, game.GameID)
	assert.True(t, next.UpdatedAt.After(tour.UpdatedAt))
}

func TestEngineAdvanceIsIdempotent(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 5)
	tour = playStage(t, e, tour, models.StageRoundRobin, lowerSeedWins)

	snapshots := []*models.Tournament{
		startTournament(t, e, 4),
		tour,
		winSeries(t, e, tour, ActiveMatch(tour).ID, SideA),
	}
	for _, snap := range snapshots {
		assert.False(t, e.Pending(snap))

		once, err := e.Advance(snap)
		require.NoError(t, err)
		twice, err := e.Advance(once)
		require.NoError(t, err)

		assert.Empty(t, cmp.Diff(snap, once))
		assert.Empty(t, cmp.Diff(once, twice))
	}
}

func TestEngineAdvanceRepairsStalledSnapshot(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 2)

	// A snapshot whose round robin was decided but never advanced.
	stalled := tour.Clone()
	m := stalled.MatchesInStage(models.MatchStageRoundRobin)[0]
	for i := 0; i < 2; i++ {
		_, err := RecordGame(m, GameInput{ID: "g", ScoreA: 21, ScoreB: 9})
		require.NoError(t, err)
	}
	require.True(t, e.Pending(stalled))

	next, err := e.Advance(stalled)
	require.NoError(t, err)
	assert.Equal(t, models.StageFinals, next.Stage)
	assert.True(t, next.UpdatedAt.After(stalled.UpdatedAt))
	assert.Equal(t, models.StageRoundRobin, stalled.Stage)
	assert.False(t, e.Pending(next))
}

func TestEngineEndEarly(t *testing.T) {
	e := newTestEngine()
	tour := startTournament(t, e, 4)
	rr := tour.MatchesInStage(models.MatchStageRoundRobin)
	tour = winSeries(t, e, tour, rr[0].ID, SideA)
	tour, _, err := e.SubmitGame(tour, rr[1].ID, 21, 19)
	require.NoError(t, err)

	ended, err := e.EndEarly(tour)
	require.NoError(t, err)

	assert.Equal(t, models.TournamentEnded, ended.Status)
	assert.Equal(t, models.StageEnded, ended.Stage)
	require.NotNil(t, ended.EndedAt)
	assert.Nil(t, ended.WinnerTeamID)
	assert.Nil(t, ActiveMatch(ended))
	assert.True(t, ended.Matches[rr[0].ID].IsComplete, "finished matches are kept")
	assert.Len(t, ended.Matches[rr[1].ID].Games, 1, "partial series are kept as they are")
	assert.Equal(t, models.TournamentActive, tour.Status)

	_, err = e.EndEarly(ended)
	require.ErrorIs(t, err, ErrNoActiveTournament)
	assert.False(t, e.Pending(ended))
}
