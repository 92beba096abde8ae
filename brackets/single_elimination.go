package brackets

import (
	"fmt"
	"math"

	"github.com/Dosada05/spikers-tournament/models"
)

// bracketLayout describes a single-elimination tree padded to a power of two.
// The last round is played as the finals stage, so the bracket stage holds
// rounds 1..Rounds-1.
type bracketLayout struct {
	Teams  int
	Size   int
	Rounds int
}

func newBracketLayout(teams int) bracketLayout {
	numRounds := 0
	if teams > 1 {
		numRounds = int(math.Ceil(math.Log2(float64(teams))))
	}
	return bracketLayout{Teams: teams, Size: 1 << uint(numRounds), Rounds: numRounds}
}

// FinalRound is the round number used by the finals matches.
func (l bracketLayout) FinalRound() int {
	return l.Rounds
}

// PenultimateRound is the last round played in the bracket stage; 0 when the
// tournament goes from round robin straight to the finals.
func (l bracketLayout) PenultimateRound() int {
	return l.Rounds - 1
}

func (l bracketLayout) SlotsInRound(round int) int {
	return l.Size >> uint(round)
}

// firstRoundSeeds returns the two bracket seeds that meet in a first round slot.
// A seed above Teams is a bye.
func (l bracketLayout) firstRoundSeeds(slot int) (int, int) {
	positions := seedPositions(l.Size)
	return positions[2*slot-2], positions[2*slot-1]
}

func (l bracketLayout) isBye(seed int) bool {
	return seed > l.Teams
}

// seedPositions returns bracket seeds in tree order, so adjacent pairs are the
// first round matches: 1 v size, and the top two seeds can only meet in the final.
func seedPositions(size int) []int {
	positions := []int{1}
	for len(positions) < size {
		next := make([]int, 0, len(positions)*2)
		total := len(positions)*2 + 1
		for _, seed := range positions {
			next = append(next, seed, total-seed)
		}
		positions = next
	}
	return positions
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() StageGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Stage() models.MatchStage {
	return models.MatchStageBracket
}

// Generate builds every bracket-stage round. params.Teams must be ordered by
// bracket seed. Byes are not played: the seeded team is placed straight into
// its second round match. Later rounds start with unresolved sides.
func (g *SingleEliminationGenerator) Generate(params GenerateParams) ([]*models.Match, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, fmt.Errorf("%w: bracket needs at least 2 teams, got %d", ErrInsufficientTeams, n)
	}
	layout := newBracketLayout(n)

	matches := make([]*models.Match, 0, layout.Size)
	if layout.PenultimateRound() < 1 {
		return matches, nil
	}

	byes := make(map[int]*string)
	for slot := 1; slot <= layout.SlotsInRound(1); slot++ {
		seedA, seedB := layout.firstRoundSeeds(slot)
		if layout.isBye(seedB) {
			byes[slot] = teamIDPtr(params.Teams[seedA-1])
			continue
		}
		matches = append(matches, newMatch(params, g.Stage(), 1, slot,
			teamIDPtr(params.Teams[seedA-1]), teamIDPtr(params.Teams[seedB-1])))
	}

	for round := 2; round <= layout.PenultimateRound(); round++ {
		for slot := 1; slot <= layout.SlotsInRound(round); slot++ {
			var teamA, teamB *string
			if round == 2 {
				teamA, teamB = byes[2*slot-1], byes[2*slot]
			}
			matches = append(matches, newMatch(params, g.Stage(), round, slot, teamA, teamB))
		}
	}

	models.SortMatches(matches)
	return matches, nil
}

// bracketAdvancer returns the team that comes out of bracket position
// (round, slot), or nil while it is still undecided.
func bracketAdvancer(t *models.Tournament, layout bracketLayout, round, slot int) *string {
	if m := bracketMatchAt(t, round, slot); m != nil {
		if !m.IsComplete {
			return nil
		}
		return cloneID(m.WinnerTeamID)
	}
	if round != 1 {
		return nil
	}
	seedA, _ := layout.firstRoundSeeds(slot)
	for _, team := range t.Teams {
		if team.BracketSeed == seedA {
			return teamIDPtr(team)
		}
	}
	return nil
}

// bracketMatchAt returns the bracket match at (round, slot), if one was created.
func bracketMatchAt(t *models.Tournament, round, slot int) *models.Match {
	for _, m := range t.Matches {
		if m.Stage == models.MatchStageBracket && m.Round == round && m.Slot == slot {
			return m
		}
	}
	return nil
}
