package models

import (
	"encoding/json"
	"sort"
	"time"
)

// TournamentStatus mirrors the status values stored by the backend.
type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "ACTIVE"
	TournamentCompleted TournamentStatus = "COMPLETED"
	TournamentEnded     TournamentStatus = "ENDED"
)

type TeamMode string

const (
	TeamModeRandom TeamMode = "RANDOM"
	TeamModeFair   TeamMode = "FAIR"
)

func (m TeamMode) Valid() bool {
	return m == TeamModeRandom || m == TeamModeFair
}

// TournamentStage is the phase the whole tournament is in. FINALS covers the
// concurrently played winners and losers finals.
type TournamentStage string

const (
	StageRoundRobin TournamentStage = "ROUND_ROBIN"
	StageBracket    TournamentStage = "BRACKET"
	StageFinals     TournamentStage = "FINALS"
	StageCompleted  TournamentStage = "COMPLETED"
	StageEnded      TournamentStage = "ENDED"
)

// Tournament is the aggregate the engine operates on. Teams and matches are kept
// in maps keyed by id; every reference between them is an id.
type Tournament struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"sessionId"`
	Status       TournamentStatus `json:"status"`
	TeamMode     TeamMode         `json:"teamMode"`
	Stage        TournamentStage  `json:"stage"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	EndedAt      *time.Time       `json:"endedAt,omitempty"`
	WinnerTeamID *string          `json:"winnerTeamId,omitempty"`
	Version      int              `json:"version"`

	Teams   map[string]*Team  `json:"-"`
	Matches map[string]*Match `json:"-"`
}

func NewTournament(id, sessionID string, mode TeamMode, now time.Time) *Tournament {
	return &Tournament{
		ID:        id,
		SessionID: sessionID,
		Status:    TournamentActive,
		TeamMode:  mode,
		Stage:     StageRoundRobin,
		CreatedAt: now,
		UpdatedAt: now,
		Teams:     make(map[string]*Team),
		Matches:   make(map[string]*Match),
	}
}

func (t *Tournament) IsActive() bool {
	return t != nil && t.Status == TournamentActive
}

// CurrentMatchStages returns the match stages that belong to the current
// tournament stage. Terminal stages own no matches.
func (t *Tournament) CurrentMatchStages() []MatchStage {
	switch t.Stage {
	case StageRoundRobin:
		return []MatchStage{MatchStageRoundRobin}
	case StageBracket:
		return []MatchStage{MatchStageBracket}
	case StageFinals:
		return []MatchStage{MatchStageWinnersFinal, MatchStageLosersFinal}
	default:
		return nil
	}
}

func (t *Tournament) AddTeam(team *Team) {
	team.TournamentID = t.ID
	t.Teams[team.ID] = team
}

// AddMatch attaches the match to the tournament. Its teams must already be
// added so the sides can be resolved.
func (t *Tournament) AddMatch(m *Match) {
	m.TournamentID = t.ID
	t.Matches[m.ID] = m
	t.ResolveSides(m)
}

// ResolveSides copies the members of each side's team onto the match. A TBD
// side gets an empty list.
func (t *Tournament) ResolveSides(m *Match) {
	m.TeamAPlayerIDs = t.sidePlayerIDs(m.TeamAID)
	m.TeamBPlayerIDs = t.sidePlayerIDs(m.TeamBID)
}

func (t *Tournament) sidePlayerIDs(teamID *string) []string {
	if team := t.Team(teamID); team != nil {
		return team.PlayerIDs()
	}
	return []string{}
}

func (t *Tournament) Team(id *string) *Team {
	if id == nil {
		return nil
	}
	return t.Teams[*id]
}

// TeamsBySeed returns the teams ordered by seed ascending.
func (t *Tournament) TeamsBySeed() []*Team {
	teams := make([]*Team, 0, len(t.Teams))
	for _, team := range t.Teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Seed != teams[j].Seed {
			return teams[i].Seed < teams[j].Seed
		}
		return teams[i].ID < teams[j].ID
	})
	return teams
}

// MatchesInStage returns the matches of the given stage ordered by round, then slot.
func (t *Tournament) MatchesInStage(stage MatchStage) []*Match {
	matches := make([]*Match, 0)
	for _, m := range t.Matches {
		if m.Stage == stage {
			matches = append(matches, m)
		}
	}
	SortMatches(matches)
	return matches
}

// OrderedMatches returns every match ordered by stage, round and slot.
func (t *Tournament) OrderedMatches() []*Match {
	matches := make([]*Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Stage.Order() != b.Stage.Order() {
			return a.Stage.Order() < b.Stage.Order()
		}
		return a.Before(b)
	})
	return matches
}

// Clone returns a deep copy that shares no mutable state with t.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.EndedAt = cloneTime(t.EndedAt)
	c.WinnerTeamID = cloneString(t.WinnerTeamID)
	c.Teams = make(map[string]*Team, len(t.Teams))
	for id, team := range t.Teams {
		c.Teams[id] = team.Clone()
	}
	c.Matches = make(map[string]*Match, len(t.Matches))
	for id, m := range t.Matches {
		c.Matches[id] = m.Clone()
	}
	return &c
}

// tournamentAlias drops the methods of Tournament so the JSON hooks below do not recurse.
type tournamentAlias Tournament

type tournamentJSON struct {
	*tournamentAlias
	Teams   []*Team  `json:"teams"`
	Matches []*Match `json:"matches"`
}

// MarshalJSON encodes teams and matches as arrays, the shape the client decodes.
func (t *Tournament) MarshalJSON() ([]byte, error) {
	return json.Marshal(tournamentJSON{
		tournamentAlias: (*tournamentAlias)(t),
		Teams:           t.TeamsBySeed(),
		Matches:         t.OrderedMatches(),
	})
}

func (t *Tournament) UnmarshalJSON(data []byte) error {
	aux := tournamentJSON{tournamentAlias: (*tournamentAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Teams = make(map[string]*Team, len(aux.Teams))
	for _, team := range aux.Teams {
		t.Teams[team.ID] = team
	}
	t.Matches = make(map[string]*Match, len(aux.Matches))
	for _, m := range aux.Matches {
		if m.Games == nil {
			m.Games = []MatchGame{}
		}
		if m.TeamAPlayerIDs == nil {
			m.TeamAPlayerIDs = []string{}
		}
		if m.TeamBPlayerIDs == nil {
			m.TeamBPlayerIDs = []string{}
		}
		t.Matches[m.ID] = m
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(tm *time.Time) *time.Time {
	if tm == nil {
		return nil
	}
	v := *tm
	return &v
}
