package brackets

import "github.com/Dosada05/spikers-tournament/models"

// GenerateParams carries the teams a stage is built from, already in ranking
// order (best first).
type GenerateParams struct {
	TournamentID string
	Teams        []*models.Team
	NewID        IDFunc
}

// StageGenerator builds the match set of one stage.
type StageGenerator interface {
	Generate(params GenerateParams) ([]*models.Match, error)

	Stage() models.MatchStage
}

func newMatch(params GenerateParams, stage models.MatchStage, round, slot int, teamA, teamB *string) *models.Match {
	return &models.Match{
		ID:             params.NewID(),
		TournamentID:   params.TournamentID,
		Stage:          stage,
		Round:          round,
		Slot:           slot,
		BestOf:         models.DefaultBestOf,
		TeamAID:        teamA,
		TeamBID:        teamB,
		TeamAPlayerIDs: []string{},
		TeamBPlayerIDs: []string{},
		Games:          []models.MatchGame{},
	}
}

func teamIDPtr(team *models.Team) *string {
	if team == nil {
		return nil
	}
	id := team.ID
	return &id
}
