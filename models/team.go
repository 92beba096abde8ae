package models

// Team is a pair of players entered into one tournament. PlayerBID is nil for
// a solo entrant. Seed is the formation order; BracketSeed is the ranking after
// round robin. Wins and Losses are derived from completed matches.
type Team struct {
	ID           string  `json:"id"`
	TournamentID string  `json:"tournamentId"`
	Name         string  `json:"name"`
	Seed         int     `json:"seed"`
	BracketSeed  int     `json:"bracketSeed,omitempty"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	IsEliminated bool    `json:"isEliminated"`
	PlayerAID    string  `json:"playerAId"`
	PlayerBID    *string `json:"playerBId"`
	PlayerA      Player  `json:"playerA"`
	PlayerB      *Player `json:"playerB"`
}

// PlayerIDs returns the ids of the team members, partner last.
func (t *Team) PlayerIDs() []string {
	ids := []string{t.PlayerAID}
	if t.PlayerBID != nil {
		ids = append(ids, *t.PlayerBID)
	}
	return ids
}

func (t *Team) Clone() *Team {
	c := *t
	c.PlayerBID = cloneString(t.PlayerBID)
	if t.PlayerB != nil {
		p := *t.PlayerB
		c.PlayerB = &p
	}
	return &c
}
