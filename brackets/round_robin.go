package brackets

import (
	"fmt"

	"github.com/Dosada05/spikers-tournament/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() StageGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Stage() models.MatchStage {
	return models.MatchStageRoundRobin
}

// Generate pairs every team with every other team exactly once. All matches
// share round 1; slots follow pairing order.
func (g *RoundRobinGenerator) Generate(params GenerateParams) ([]*models.Match, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: round robin needs at least 2 teams, got %d", ErrInsufficientTeams, len(teams))
	}

	matches := make([]*models.Match, 0, len(teams)*(len(teams)-1)/2)
	slot := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			slot++
			matches = append(matches, newMatch(params, g.Stage(), 1, slot, teamIDPtr(teams[i]), teamIDPtr(teams[j])))
		}
	}
	return matches, nil
}
