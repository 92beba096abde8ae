package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/spikers-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentVersionConflict = errors.New("tournament was modified concurrently")
	ErrTournamentActiveConflict  = errors.New("session already has an active tournament")
)

// TournamentRepository stores whole tournament snapshots. Save is a
// compare-and-swap on Tournament.Version so two writers cannot interleave.
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	GetLatestBySession(ctx context.Context, sessionID string) (*models.Tournament, error)
	Save(ctx context.Context, tournament *models.Tournament) error
	ListActive(ctx context.Context) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db SQLExecutor
}

func NewPostgresTournamentRepository(db SQLExecutor) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	t.Version = 1
	snapshot, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		INSERT INTO tournaments (
			id, session_id, status, stage, team_mode, version, snapshot, created_at, updated_at, ended_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.SessionID, t.Status, t.Stage, t.TeamMode, t.Version, string(snapshot), t.CreatedAt, t.UpdatedAt, t.EndedAt,
	)
	if err != nil {
		t.Version = 0
		return r.handleTournamentError(err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `SELECT snapshot, version FROM tournaments WHERE id = $1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestBySession returns the most recently created tournament of the
// session, or ErrTournamentNotFound when it never had one.
func (r *postgresTournamentRepository) GetLatestBySession(ctx context.Context, sessionID string) (*models.Tournament, error) {
	query := `
		SELECT snapshot, version
		FROM tournaments
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanTournament(r.db.QueryRowContext(ctx, query, sessionID))
}

func (r *postgresTournamentRepository) Save(ctx context.Context, t *models.Tournament) error {
	expected := t.Version
	t.Version = expected + 1
	snapshot, err := json.Marshal(t)
	if err != nil {
		t.Version = expected
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	query := `
		UPDATE tournaments SET
			status = $1, stage = $2, version = $3, snapshot = $4, updated_at = $5, ended_at = $6
		WHERE id = $7 AND version = $8`

	result, err := r.db.ExecContext(ctx, query,
		t.Status, t.Stage, t.Version, string(snapshot), t.UpdatedAt, t.EndedAt, t.ID, expected,
	)
	if err != nil {
		t.Version = expected
		return r.handleTournamentError(err)
	}
	if err := checkAffectedRows(result, ErrTournamentVersionConflict); err != nil {
		t.Version = expected
		return err
	}
	return nil
}

func (r *postgresTournamentRepository) ListActive(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT snapshot, version FROM tournaments WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, models.TournamentActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, errScan := r.scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var (
		snapshot []byte
		version  int
	)
	if err := rowScanner.Scan(&snapshot, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	t := &models.Tournament{}
	if err := json.Unmarshal(snapshot, t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament snapshot: %w", err)
	}
	t.Version = version
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "tournaments_one_active_per_session" {
				return ErrTournamentActiveConflict
			}
		}
	}
	return err
}
