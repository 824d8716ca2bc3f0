package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

// DisciplinaryService is a pure accumulation/query component. Registration
// eligibility checks consult ActivePoints before accepting a sign-up; that
// policy lives with the caller.
type DisciplinaryService interface {
	AddPoints(ctx context.Context, playerID int, tournamentID *int, reason string, points int, expiresAt *time.Time) (*models.DisciplinaryPoints, error)
	ActivePoints(ctx context.Context, playerID int) (int, error)
	ListByPlayer(ctx context.Context, playerID int) ([]*models.DisciplinaryPoints, error)
	// ExpireStale flips is_active on entries past their expiry; run
	// periodically from the housekeeping scheduler.
	ExpireStale(ctx context.Context) (int64, error)
}

type disciplinaryService struct {
	repo   repositories.DisciplinaryRepository
	logger *slog.Logger
}

func NewDisciplinaryService(repo repositories.DisciplinaryRepository, logger *slog.Logger) DisciplinaryService {
	return &disciplinaryService{repo: repo, logger: logger}
}

func (s *disciplinaryService) AddPoints(ctx context.Context, playerID int, tournamentID *int, reason string, points int, expiresAt *time.Time) (*models.DisciplinaryPoints, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("%w: player id is required", ErrValidationFailed)
	}
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrValidationFailed)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidationFailed)
	}

	entry := &models.DisciplinaryPoints{
		PlayerID:     &playerID,
		TournamentID: tournamentID,
		Points:       points,
		Reason:       reason,
		IsActive:     true,
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("failed to add disciplinary points: %w", err)
	}
	s.logger.Info("disciplinary points added",
		slog.Int("player_id", playerID), slog.Int("points", points), slog.String("reason", reason))
	return entry, nil
}

func (s *disciplinaryService) ActivePoints(ctx context.Context, playerID int) (int, error) {
	return s.repo.SumActiveByPlayer(ctx, playerID, time.Now())
}

func (s *disciplinaryService) ListByPlayer(ctx context.Context, playerID int) ([]*models.DisciplinaryPoints, error) {
	return s.repo.ListByPlayer(ctx, playerID)
}

func (s *disciplinaryService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired disciplinary entries deactivated", slog.Int64("count", n))
	}
	return n, nil
}
