package models

import "time"

type SessionStatus string

const (
	SessionUpcoming   SessionStatus = "UPCOMING"
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// Session is read from the session service tables; this service never writes it.
type Session struct {
	ID          string        `json:"id"`
	Date        time.Time     `json:"date"`
	Location    *string       `json:"location,omitempty"`
	Status      SessionStatus `json:"status"`
	Attendances []Attendance  `json:"attendances"`
}

type Attendance struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	Present   bool   `json:"present"`
	Player    Player `json:"player"`
}

// PresentPlayers returns the players marked present, in roster order.
func (s *Session) PresentPlayers() []Player {
	players := make([]Player, 0, len(s.Attendances))
	for _, a := range s.Attendances {
		if a.Present {
			players = append(players, a.Player)
		}
	}
	return players
}
