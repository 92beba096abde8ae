package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/spikers-tournament/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository reads sessions and their attendance from the tables the
// session service owns.
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
}

type postgresSessionRepository struct {
	db SQLExecutor
}

func NewPostgresSessionRepository(db SQLExecutor) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT id, date, location, status FROM sessions WHERE id = $1`

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Date, &s.Location, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	attendances, err := r.listAttendances(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Attendances = attendances
	return s, nil
}

// listAttendances keeps the order players were checked in, which is the
// roster order team formation works from.
func (r *postgresSessionRepository) listAttendances(ctx context.Context, sessionID string) ([]models.Attendance, error) {
	query := `
		SELECT a.id, a.session_id, a.player_id, a.present,
		       p.id, p.name, p.emoji, p.created_at, p.is_active, p.rating
		FROM attendances a
		JOIN players p ON p.id = a.player_id
		WHERE a.session_id = $1
		ORDER BY a.created_at, a.id`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	attendances := make([]models.Attendance, 0)
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.PlayerID, &a.Present,
			&a.Player.ID, &a.Player.Name, &a.Player.Emoji, &a.Player.CreatedAt, &a.Player.IsActive, &a.Player.Rating,
		); err != nil {
			return nil, err
		}
		attendances = append(attendances, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return attendances, nil
}
