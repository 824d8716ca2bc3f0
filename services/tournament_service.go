package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
	"github.com/padelhq/tournament-engine/storage"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	Create(ctx context.Context, clubID int, t *models.Tournament) error
	ListByClub(ctx context.Context, clubID int) ([]*models.Tournament, error)
	// GetFull loads the tournament with registrations, pools and matches
	// fetched in parallel. It is the spectator read path and does not
	// require ownership.
	GetFull(ctx context.Context, tournamentID int) (*models.Tournament, error)
	GetOwned(ctx context.Context, clubID, tournamentID int) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, clubID, tournamentID int, next models.TournamentStatus) (*models.Tournament, error)
	UploadPoster(ctx context.Context, clubID, tournamentID int, contentType string, body io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	poolRepo         repositories.PoolRepository
	matchRepo        repositories.MatchRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	poolRepo repositories.PoolRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		poolRepo:         poolRepo,
		matchRepo:        matchRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, clubID int, t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTournamentNameRequired
	}
	if !t.Format.Valid() {
		return fmt.Errorf("%w: %q", ErrTournamentInvalidFormat, t.Format)
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && !t.StartDate.Before(t.EndDate) {
		return ErrTournamentInvalidDateRange
	}
	if t.CourtCount <= 0 {
		return ErrTournamentInvalidCourtCount
	}

	t.ClubID = clubID
	t.Status = models.TournamentStatusDraft

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if err == repositories.ErrTournamentNameConflict {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.Int("club_id", clubID))
	return nil
}

func (s *tournamentService) ListByClub(ctx context.Context, clubID int) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for club %d: %w", clubID, err)
	}
	for _, t := range tournaments {
		s.populatePosterURL(t)
	}
	return tournaments, nil
}

// GetOwned fetches the tournament and enforces club ownership.
func (s *tournamentService) GetOwned(ctx context.Context, clubID, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

func (s *tournamentService) GetFull(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		regs, err := s.registrationRepo.ListByTournament(gCtx, tournamentID, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to load registrations: %w", err)
		}
		t.Registrations = make([]models.Registration, len(regs))
		for i, r := range regs {
			t.Registrations[i] = *r
		}
		return nil
	})

	g.Go(func() error {
		pools, err := s.poolRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load pools: %w", err)
		}
		t.Pools = make([]models.Pool, len(pools))
		for i, p := range pools {
			t.Pools[i] = *p
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		t.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			t.Matches[i] = *m
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.populatePosterURL(t)
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, clubID, tournamentID int, next models.TournamentStatus) (*models.Tournament, error) {
	t, err := s.GetOwned(ctx, clubID, tournamentID)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, t.Status, next)
	}
	if t.Status == next {
		return t, nil
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, next); err != nil {
		return nil, mapRepoNotFound(err)
	}
	t.Status = next
	s.logger.Info("tournament status updated",
		slog.Int("tournament_id", tournamentID), slog.String("status", string(next)))
	return t, nil
}

func (s *tournamentService) UploadPoster(ctx context.Context, clubID, tournamentID int, contentType string, body io.Reader) (*models.Tournament, error) {
	t, err := s.GetOwned(ctx, clubID, tournamentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/poster", tournamentID)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload poster for tournament %d: %w", tournamentID, err)
	}
	if err := s.tournamentRepo.UpdatePosterKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, mapRepoNotFound(err)
	}
	t.PosterKey = &result.Key
	s.populatePosterURL(t)
	return t, nil
}

func (s *tournamentService) populatePosterURL(t *models.Tournament) {
	if t == nil || t.PosterKey == nil || *t.PosterKey == "" || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.PosterKey)
	t.PosterURL = &url
}
