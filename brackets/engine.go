package brackets

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/google/uuid"
)

// Engine runs tournaments. It keeps no tournament state of its own: every
// command takes a snapshot and returns a new one, leaving the input untouched.
type Engine struct {
	rng   *rand.Rand
	newID IDFunc
	now   func() time.Time

	roundRobin StageGenerator
	bracket    StageGenerator
}

type Option func(*Engine)

// WithRand sets the randomness source used for random team formation.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithIDFunc(fn IDFunc) Option {
	return func(e *Engine) { e.newID = fn }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
		roundRobin: NewRoundRobinGenerator(),
		bracket:    NewSingleEliminationGenerator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FormTeams splits the roster according to mode.
func (e *Engine) FormTeams(mode models.TeamMode, players []models.Player) ([]*models.Team, error) {
	switch mode {
	case models.TeamModeRandom:
		return FormRandomTeams(players, e.rng, e.newID)
	case models.TeamModeFair:
		return FormFairTeams(players, e.newID)
	default:
		return nil, fmt.Errorf("unknown team mode %q", mode)
	}
}

type StartParams struct {
	SessionID string
	Mode      models.TeamMode
	// Teams in formation order; seeds follow this order.
	Teams []*models.Team
	// Existing is the session's latest tournament, if any.
	Existing *models.Tournament
}

// Start creates a tournament in the round robin stage.
func (e *Engine) Start(params StartParams) (*models.Tournament, error) {
	if params.Existing.IsActive() {
		return nil, fmt.Errorf("%w: tournament %s", ErrTournamentAlreadyActive, params.Existing.ID)
	}
	if len(params.Teams) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrInsufficientTeams, len(params.Teams))
	}

	t := models.NewTournament(e.newID(), params.SessionID, params.Mode, e.now())
	teams := make([]*models.Team, len(params.Teams))
	for i, team := range params.Teams {
		c := team.Clone()
		c.Seed = i + 1
		c.BracketSeed = 0
		c.Wins, c.Losses, c.IsEliminated = 0, 0, false
		t.AddTeam(c)
		teams[i] = c
	}

	matches, err := e.roundRobin.Generate(GenerateParams{TournamentID: t.ID, Teams: teams, NewID: e.newID})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s matches: %w", e.roundRobin.Stage(), err)
	}
	for _, m := range matches {
		t.AddMatch(m)
	}
	return t, nil
}

// SubmitGame records a game on a match of the current stage and advances the
// tournament when the series is decided.
func (e *Engine) SubmitGame(t *models.Tournament, matchID string, scoreA, scoreB int) (*models.Tournament, SeriesOutcome, error) {
	if !t.IsActive() {
		return nil, SeriesOutcome{}, ErrNoActiveTournament
	}
	current, ok := t.Matches[matchID]
	if !ok {
		return nil, SeriesOutcome{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if !current.IsComplete && !inCurrentStage(t, current) {
		return nil, SeriesOutcome{}, fmt.Errorf("%w: match %s is %s, tournament is in %s", ErrMatchNotInStage, matchID, current.Stage, t.Stage)
	}

	next := t.Clone()
	now := e.now()
	outcome, err := RecordGame(next.Matches[matchID], GameInput{ID: e.newID(), GameID: e.newID(), ScoreA: scoreA, ScoreB: scoreB, At: now})
	if err != nil {
		return nil, SeriesOutcome{}, err
	}
	next.UpdatedAt = now

	if outcome.Decided {
		e.advance(next)
	}
	return next, outcome, nil
}

// Advance applies every stage transition that is due. Calling it when nothing
// is due returns a snapshot identical to the input.
func (e *Engine) Advance(t *models.Tournament) (*models.Tournament, error) {
	next := t.Clone()
	if !next.IsActive() {
		return next, nil
	}
	e.advance(next)
	return next, nil
}

// EndEarly stops an active tournament. Finished matches are kept as they are
// and unfinished ones stay unresolved.
func (e *Engine) EndEarly(t *models.Tournament) (*models.Tournament, error) {
	if !t.IsActive() {
		return nil, ErrNoActiveTournament
	}
	next := t.Clone()
	now := e.now()
	next.Status = models.TournamentEnded
	next.Stage = models.StageEnded
	next.EndedAt = &now
	next.UpdatedAt = now
	return next, nil
}

// Pending reports whether Advance would change t.
func (e *Engine) Pending(t *models.Tournament) bool {
	if !t.IsActive() {
		return false
	}
	return e.advance(t.Clone())
}

// advance mutates t in place until no further transition applies and reports
// whether anything changed.
func (e *Engine) advance(t *models.Tournament) bool {
	changed := false
	for t.IsActive() {
		step := recountRecords(t)
		switch t.Stage {
		case models.StageRoundRobin:
			step = e.finishRoundRobin(t) || step
		case models.StageBracket:
			step = propagateBracket(t) || step
			step = e.finishBracket(t) || step
		case models.StageFinals:
			step = e.finishFinals(t) || step
		}
		if !step {
			break
		}
		changed = true
	}
	if changed {
		t.UpdatedAt = e.now()
	}
	return changed
}

func (e *Engine) finishRoundRobin(t *models.Tournament) bool {
	if !stageComplete(t, models.MatchStageRoundRobin) {
		return false
	}

	standings := ComputeStandings(t, models.MatchStageRoundRobin)
	ranked := make([]*models.Team, len(standings))
	for i, s := range standings {
		team := t.Teams[s.TeamID]
		team.BracketSeed = i + 1
		ranked[i] = team
	}

	layout := newBracketLayout(len(ranked))
	if layout.PenultimateRound() < 1 {
		e.scheduleFinals(t, layout)
		return true
	}

	matches, err := e.bracket.Generate(GenerateParams{TournamentID: t.ID, Teams: ranked, NewID: e.newID})
	if err != nil {
		// Unreachable: a started tournament always has at least two teams.
		return false
	}
	for _, m := range matches {
		t.AddMatch(m)
	}
	t.Stage = models.StageBracket
	return true
}

func (e *Engine) finishBracket(t *models.Tournament) bool {
	if !stageComplete(t, models.MatchStageBracket) {
		return false
	}
	e.scheduleFinals(t, newBracketLayout(len(t.Teams)))
	return true
}

// scheduleFinals creates the winners final between the two teams still unbeaten
// in the bracket and, when both semifinals were played, a losers final between
// their losers for third place.
func (e *Engine) scheduleFinals(t *models.Tournament, layout bracketLayout) {
	params := GenerateParams{TournamentID: t.ID, NewID: e.newID}
	round := layout.FinalRound()

	var finalistA, finalistB *string
	if layout.PenultimateRound() < 1 {
		ranked := teamsByBracketSeed(t)
		finalistA, finalistB = teamIDPtr(ranked[0]), teamIDPtr(ranked[1])
	} else {
		semi := layout.PenultimateRound()
		finalistA = bracketAdvancer(t, layout, semi, 1)
		finalistB = bracketAdvancer(t, layout, semi, 2)

		semi1, semi2 := bracketMatchAt(t, semi, 1), bracketMatchAt(t, semi, 2)
		if semi1 != nil && semi2 != nil {
			t.AddMatch(newMatch(params, models.MatchStageLosersFinal, round, 1, cloneID(semi1.LoserTeamID), cloneID(semi2.LoserTeamID)))
		} else {
			for _, semiMatch := range []*models.Match{semi1, semi2} {
				if semiMatch != nil {
					eliminate(t, semiMatch.LoserTeamID)
				}
			}
		}
	}

	t.AddMatch(newMatch(params, models.MatchStageWinnersFinal, round, 2, finalistA, finalistB))
	t.Stage = models.StageFinals
}

func (e *Engine) finishFinals(t *models.Tournament) bool {
	var finals []*models.Match
	for _, m := range t.Matches {
		if m.Stage.IsFinal() {
			finals = append(finals, m)
		}
	}
	if len(finals) == 0 {
		return false
	}
	var winner *string
	for _, m := range finals {
		if !m.IsComplete {
			return false
		}
		if m.Stage == models.MatchStageWinnersFinal {
			winner = cloneID(m.WinnerTeamID)
		}
	}
	for _, m := range finals {
		eliminate(t, m.LoserTeamID)
	}

	now := e.now()
	t.Status = models.TournamentCompleted
	t.Stage = models.StageCompleted
	t.WinnerTeamID = winner
	t.EndedAt = &now
	return true
}

// propagateBracket moves decided winners into the next round and eliminates
// losers that have no further match to play.
func propagateBracket(t *models.Tournament) bool {
	layout := newBracketLayout(len(t.Teams))
	changed := false
	for _, m := range t.MatchesInStage(models.MatchStageBracket) {
		if m.IsComplete && m.Round < layout.PenultimateRound() {
			changed = eliminate(t, m.LoserTeamID) || changed
		}
		if m.Round < 2 || m.IsComplete {
			continue
		}
		resolved := false
		if m.TeamAID == nil {
			if id := bracketAdvancer(t, layout, m.Round-1, 2*m.Slot-1); id != nil {
				m.TeamAID = id
				resolved = true
			}
		}
		if m.TeamBID == nil {
			if id := bracketAdvancer(t, layout, m.Round-1, 2*m.Slot); id != nil {
				m.TeamBID = id
				resolved = true
			}
		}
		if resolved {
			t.ResolveSides(m)
			changed = true
		}
	}
	return changed
}

// recountRecords derives every team's wins and losses from completed matches.
func recountRecords(t *models.Tournament) bool {
	wins := make(map[string]int, len(t.Teams))
	losses := make(map[string]int, len(t.Teams))
	for _, m := range t.Matches {
		if !m.IsComplete {
			continue
		}
		if m.WinnerTeamID != nil {
			wins[*m.WinnerTeamID]++
		}
		if m.LoserTeamID != nil {
			losses[*m.LoserTeamID]++
		}
	}
	changed := false
	for id, team := range t.Teams {
		if team.Wins != wins[id] || team.Losses != losses[id] {
			team.Wins, team.Losses = wins[id], losses[id]
			changed = true
		}
	}
	return changed
}

func eliminate(t *models.Tournament, teamID *string) bool {
	team := t.Team(teamID)
	if team == nil || team.IsEliminated {
		return false
	}
	team.IsEliminated = true
	return true
}

func stageComplete(t *models.Tournament, stage models.MatchStage) bool {
	matches := t.MatchesInStage(stage)
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.IsComplete {
			return false
		}
	}
	return true
}

func inCurrentStage(t *models.Tournament, m *models.Match) bool {
	for _, stage := range t.CurrentMatchStages() {
		if m.Stage == stage {
			return true
		}
	}
	return false
}

func teamsByBracketSeed(t *models.Tournament) []*models.Team {
	ranked := make([]*models.Team, len(t.Teams))
	for _, team := range t.Teams {
		if team.BracketSeed >= 1 && team.BracketSeed <= len(ranked) {
			ranked[team.BracketSeed-1] = team
		}
	}
	return ranked
}
