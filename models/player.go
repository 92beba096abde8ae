package models

import "time"

// Player is owned by the player service; the engine only reads it.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
	Rating    int       `json:"rating"`
}
