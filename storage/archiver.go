package storage

import (
	"context"
	"fmt"

	"github.com/Dosada05/spikers-tournament/models"
)

type ArchiveResult struct {
	Key      string
	Location string
	ETag     string
}

// Archiver keeps a copy of every tournament that reached a terminal state.
type Archiver interface {
	Archive(ctx context.Context, tournament *models.Tournament) (*ArchiveResult, error)
}

// ArchiveKey is the object key of a tournament's final snapshot.
func ArchiveKey(t *models.Tournament) string {
	return fmt.Sprintf("tournaments/%s/%s.json", t.SessionID, t.ID)
}

type nopArchiver struct{}

// NewNopArchiver returns an Archiver that stores nothing, used when no bucket
// is configured.
func NewNopArchiver() Archiver {
	return nopArchiver{}
}

func (nopArchiver) Archive(_ context.Context, t *models.Tournament) (*ArchiveResult, error) {
	return &ArchiveResult{Key: ArchiveKey(t)}, nil
}
