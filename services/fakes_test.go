package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/Dosada05/spikers-tournament/repositories"
	"github.com/Dosada05/spikers-tournament/storage"
)

// fakeTournamentRepo keeps clones in memory and enforces the same version and
// one-active-per-session rules as the Postgres repository.
type fakeTournamentRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Tournament
	order []string

	createErr error
	saveErr   error
	saves     int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{byID: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.SessionID == t.SessionID && existing.IsActive() && t.IsActive() {
			return repositories.ErrTournamentActiveConflict
		}
	}
	t.Version = 1
	r.byID[t.ID] = t.Clone()
	r.order = append(r.order, t.ID)
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r *fakeTournamentRepo) GetLatestBySession(_ context.Context, sessionID string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		if t := r.byID[r.order[i]]; t.SessionID == sessionID {
			return t.Clone(), nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) Save(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.byID[t.ID]
	if !ok || stored.Version != t.Version {
		return repositories.ErrTournamentVersionConflict
	}
	t.Version++
	r.byID[t.ID] = t.Clone()
	r.saves++
	return nil
}

func (r *fakeTournamentRepo) ListActive(_ context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	active := make([]*models.Tournament, 0)
	for _, id := range r.order {
		if t := r.byID[id]; t.IsActive() {
			active = append(active, t.Clone())
		}
	}
	return active, nil
}

// put stores a snapshot as is, for tests that need a specific state.
func (r *fakeTournamentRepo) put(t *models.Tournament) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Version == 0 {
		t.Version = 1
	}
	r.byID[t.ID] = t.Clone()
	r.order = append(r.order, t.ID)
}

type fakeSessionRepo struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Session, error)
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.Session, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrSessionNotFound
}

type publishedMessage struct {
	TournamentID string
	Type         string
	Payload      interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *fakePublisher) PublishTournament(tournamentID, messageType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{TournamentID: tournamentID, Type: messageType, Payload: payload})
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Type
	}
	return out
}

type fakeArchiver struct {
	mu       sync.Mutex
	archived []string
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, t *models.Tournament) (*storage.ArchiveResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.archived = append(a.archived, t.ID)
	return &storage.ArchiveResult{Key: storage.ArchiveKey(t)}, nil
}

var errArchiveDown = errors.New("bucket unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
