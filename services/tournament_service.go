package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/spikers-tournament/brackets"
	"github.com/Dosada05/spikers-tournament/models"
	"github.com/Dosada05/spikers-tournament/realtime"
	"github.com/Dosada05/spikers-tournament/repositories"
	"github.com/Dosada05/spikers-tournament/storage"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	StartTournament(ctx context.Context, sessionID string, input StartTournamentInput) (*TournamentView, error)
	GetTournament(ctx context.Context, tournamentID string) (*TournamentView, error)
	GetSessionTournament(ctx context.Context, sessionID string) (*SessionTournamentView, error)
	GetActiveMatch(ctx context.Context, tournamentID string) (*models.Match, error)
	GetBracket(ctx context.Context, tournamentID string) ([]brackets.StageGroup, error)
	GetStandings(ctx context.Context, tournamentID string) ([]brackets.Standing, error)
	SubmitGame(ctx context.Context, tournamentID, matchID string, input SubmitGameInput) (*SubmitGameResult, error)
	EndTournament(ctx context.Context, tournamentID string) (*TournamentView, error)
	RecoverActive(ctx context.Context) (int, error)
}

// Publisher pushes tournament snapshots to subscribed clients.
type Publisher interface {
	PublishTournament(tournamentID, messageType string, payload interface{})
}

type StartTournamentInput struct {
	TeamMode models.TeamMode `json:"teamMode"`
}

type SubmitGameInput struct {
	ScoreA int `json:"scoreA"`
	ScoreB int `json:"scoreB"`
}

type tournamentService struct {
	engine         *brackets.Engine
	tournamentRepo repositories.TournamentRepository
	sessionRepo    repositories.SessionRepository
	publisher      Publisher
	archiver       storage.Archiver
	logger         *slog.Logger
}

func NewTournamentService(
	engine *brackets.Engine,
	tournamentRepo repositories.TournamentRepository,
	sessionRepo repositories.SessionRepository,
	publisher Publisher,
	archiver storage.Archiver,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		engine:         engine,
		tournamentRepo: tournamentRepo,
		sessionRepo:    sessionRepo,
		publisher:      publisher,
		archiver:       archiver,
		logger:         logger,
	}
}

// StartTournament forms teams from the session's present players and creates
// the tournament.
func (s *tournamentService) StartTournament(ctx context.Context, sessionID string, input StartTournamentInput) (*TournamentView, error) {
	if !input.TeamMode.Valid() {
		return nil, ErrInvalidTeamMode
	}

	session, existing, err := s.loadSessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !brackets.CanStart(session.Status, existing) {
		if existing.IsActive() {
			return nil, fmt.Errorf("%w: tournament %s", brackets.ErrTournamentAlreadyActive, existing.ID)
		}
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionNotInProgress, sessionID, session.Status)
	}

	teams, err := s.engine.FormTeams(input.TeamMode, session.PresentPlayers())
	if err != nil {
		return nil, err
	}
	tournament, err := s.engine.Start(brackets.StartParams{
		SessionID: sessionID,
		Mode:      input.TeamMode,
		Teams:     teams,
		Existing:  existing,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentActiveConflict) {
			return nil, fmt.Errorf("%w: session %s", brackets.ErrTournamentAlreadyActive, sessionID)
		}
		return nil, fmt.Errorf("failed to save new tournament for session %s: %w", sessionID, err)
	}

	s.logger.Info("tournament started",
		slog.String("tournament_id", tournament.ID),
		slog.String("session_id", sessionID),
		slog.String("team_mode", string(input.TeamMode)),
		slog.Int("teams", len(tournament.Teams)),
		slog.Int("matches", len(tournament.Matches)),
	)

	view := newTournamentView(tournament)
	s.publisher.PublishTournament(tournament.ID, realtime.TypeTournamentUpdated, view)
	return view, nil
}

// loadSessionState fetches the session and its latest tournament in parallel.
// existing is nil when the session never had a tournament.
func (s *tournamentService) loadSessionState(ctx context.Context, sessionID string) (*models.Session, *models.Tournament, error) {
	var (
		session  *models.Session
		existing *models.Tournament
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessionRepo.GetByID(gCtx, sessionID)
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		existing, err = s.tournamentRepo.GetLatestBySession(gCtx, sessionID)
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			existing = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament of session %s: %w", sessionID, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return session, existing, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID string) (*TournamentView, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return newTournamentView(t), nil
}

// GetSessionTournament returns the session's latest tournament, which may be
// absent, together with whether a new one may be started.
func (s *tournamentService) GetSessionTournament(ctx context.Context, sessionID string) (*SessionTournamentView, error) {
	session, existing, err := s.loadSessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := &SessionTournamentView{
		SessionID:     sessionID,
		SessionStatus: session.Status,
		CanStart:      brackets.CanStart(session.Status, existing),
	}
	if existing != nil {
		view.Tournament = newTournamentView(existing)
	}
	return view, nil
}

func (s *tournamentService) GetActiveMatch(ctx context.Context, tournamentID string) (*models.Match, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.ActiveMatch(t), nil
}

func (s *tournamentService) GetBracket(ctx context.Context, tournamentID string) ([]brackets.StageGroup, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.GroupByStage(t), nil
}

func (s *tournamentService) GetStandings(ctx context.Context, tournamentID string) ([]brackets.Standing, error) {
	t, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return brackets.ComputeStandings(t, models.MatchStageRoundRobin), nil
}

// SubmitGame records one game result. The series outcome tells the client
// whether the match just finished.
func (s *tournamentService) SubmitGame(ctx context.Context, tournamentID, matchID string, input SubmitGameInput) (*SubmitGameResult, error) {
	var outcome brackets.SeriesOutcome
	view, err := s.mutate(ctx, tournamentID, func(t *models.Tournament) (*models.Tournament, error) {
		next, o, err := s.engine.SubmitGame(t, matchID, input.ScoreA, input.ScoreB)
		outcome = o
		return next, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament game recorded",
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID),
		slog.Int("game_number", outcome.GameNumber),
		slog.Bool("series_decided", outcome.Decided),
		slog.String("stage", string(view.Tournament.Stage)),
	)
	return &SubmitGameResult{TournamentView: view, Outcome: outcome}, nil
}

func (s *tournamentService) EndTournament(ctx context.Context, tournamentID string) (*TournamentView, error) {
	view, err := s.mutate(ctx, tournamentID, s.engine.EndEarly)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tournament ended early", slog.String("tournament_id", tournamentID))
	return view, nil
}

// RecoverActive re-applies due stage transitions to every active tournament,
// for snapshots written by a process that stopped mid-update. It returns how
// many tournaments were changed.
func (s *tournamentService) RecoverActive(ctx context.Context) (int, error) {
	active, err := s.tournamentRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active tournaments: %w", err)
	}

	recovered := 0
	for _, t := range active {
		if !s.engine.Pending(t) {
			continue
		}
		next, err := s.engine.Advance(t)
		if err != nil {
			return recovered, fmt.Errorf("failed to advance tournament %s: %w", t.ID, err)
		}
		if err := s.tournamentRepo.Save(ctx, next); err != nil {
			s.logger.Warn("failed to save recovered tournament", slog.String("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		recovered++
		if !next.IsActive() {
			s.archive(ctx, next)
		}
	}

	s.logger.Info("active tournaments checked", slog.Int("active", len(active)), slog.Int("recovered", recovered))
	return recovered, nil
}

// mutate loads a snapshot, applies an engine command and persists the result
// with an optimistic version check.
func (s *tournamentService) mutate(ctx context.Context, tournamentID string, apply func(*models.Tournament) (*models.Tournament, error)) (*TournamentView, error) {
	current, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	next, err := apply(current)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Save(ctx, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentVersionConflict) {
			return nil, fmt.Errorf("%w: tournament %s", ErrConcurrentUpdate, tournamentID)
		}
		return nil, fmt.Errorf("failed to save tournament %s: %w", tournamentID, err)
	}

	if current.Stage != next.Stage {
		s.logger.Info("tournament stage changed",
			slog.String("tournament_id", tournamentID),
			slog.String("from", string(current.Stage)),
			slog.String("to", string(next.Stage)),
		)
	}

	view := newTournamentView(next)
	if next.IsActive() {
		s.publisher.PublishTournament(next.ID, realtime.TypeTournamentUpdated, view)
		return view, nil
	}

	s.publisher.PublishTournament(next.ID, realtime.TypeTournamentEnded, view)
	s.archive(ctx, next)
	return view, nil
}

// archive copies a finished tournament to long-term storage. The snapshot is
// already persisted, so a failure here is only logged.
func (s *tournamentService) archive(ctx context.Context, t *models.Tournament) {
	result, err := s.archiver.Archive(ctx, t)
	if err != nil {
		s.logger.Error("failed to archive tournament", slog.String("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("tournament archived", slog.String("tournament_id", t.ID), slog.String("key", result.Key))
}

func (s *tournamentService) load(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, tournamentID)
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}
	return t, nil
}
