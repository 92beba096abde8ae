package brackets

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Dosada05/spikers-tournament/models"
)

// MinTeamPlayers is the smallest roster that can be split into teams.
const MinTeamPlayers = 4

// IDFunc produces identifiers for new teams, matches and games.
type IDFunc func() string

// FormRandomTeams shuffles the roster with rng and pairs consecutive players.
// The roster must hold an even number of at least four players.
func FormRandomTeams(players []models.Player, rng *rand.Rand, newID IDFunc) ([]*models.Team, error) {
	if err := validateRoster(players); err != nil {
		return nil, err
	}
	if len(players)%2 != 0 {
		return nil, fmt.Errorf("%w: random teams need an even roster, got %d players", ErrInsufficientPlayers, len(players))
	}

	shuffled := make([]models.Player, len(players))
	copy(shuffled, players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	teams := make([]*models.Team, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		partner := shuffled[i+1]
		teams = append(teams, newTeam(newID(), len(teams)+1, shuffled[i], &partner))
	}
	return teams, nil
}

// FormFairTeams sorts the roster by rating and pairs the strongest remaining
// player with the weakest remaining one. With an odd roster the median player
// enters solo.
func FormFairTeams(players []models.Player, newID IDFunc) ([]*models.Team, error) {
	if err := validateRoster(players); err != nil {
		return nil, err
	}

	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	return pairInward(sorted, newID)
}

// pairInward expects players sorted by rating descending.
func pairInward(sorted []models.Player, newID IDFunc) ([]*models.Team, error) {
	if len(sorted) < 2 {
		return nil, fmt.Errorf("%w: got %d players", ErrInsufficientPlayers, len(sorted))
	}
	// The first pair takes both extremes; the rest of the pairing needs at
	// least two players in between.
	if middle := len(sorted) - 2; middle < 2 {
		return nil, fmt.Errorf("%w: %d players left after the first pair", ErrInsufficientMiddleRange, middle)
	}

	teams := make([]*models.Team, 0, (len(sorted)+1)/2)
	lo, hi := 0, len(sorted)-1
	for lo < hi {
		partner := sorted[hi]
		teams = append(teams, newTeam(newID(), len(teams)+1, sorted[lo], &partner))
		lo++
		hi--
	}
	if lo == hi {
		teams = append(teams, newTeam(newID(), len(teams)+1, sorted[lo], nil))
	}
	return teams, nil
}

func validateRoster(players []models.Player) error {
	if len(players) < MinTeamPlayers {
		return fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientPlayers, MinTeamPlayers, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func newTeam(id string, seed int, a models.Player, b *models.Player) *models.Team {
	team := &models.Team{
		ID:        id,
		Name:      a.Name,
		Seed:      seed,
		PlayerAID: a.ID,
		PlayerA:   a,
	}
	if b != nil {
		partnerID := b.ID
		team.PlayerBID = &partnerID
		team.PlayerB = b
		team.Name = a.Name + " & " + b.Name
	}
	return team
}
