package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/padelhq/tournament-engine/brackets"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

type DrawService interface {
	// PublishDraw seeds the confirmed main-draw registrations into round-1
	// knockout matches and flips the tournament to draw_published.
	PublishDraw(ctx context.Context, clubID, tournamentID int) ([]*models.Match, error)
	// AssignPools partitions confirmed qualification entries into pools of
	// poolSize and generates their round-robin matches.
	AssignPools(ctx context.Context, clubID, tournamentID, poolSize int) ([]*models.Pool, error)
}

type drawService struct {
	db               *sql.DB
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	poolRepo         repositories.PoolRepository
	matchRepo        repositories.MatchRepository
	hub              *brackets.Hub
	logger           *slog.Logger
	newRand          func() *rand.Rand
}

func NewDrawService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	poolRepo repositories.PoolRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
	newRand func() *rand.Rand,
) DrawService {
	return &drawService{
		db:               db,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		poolRepo:         poolRepo,
		matchRepo:        matchRepo,
		hub:              hub,
		logger:           logger,
		newRand:          newRand,
	}
}

func (s *drawService) PublishDraw(ctx context.Context, clubID, tournamentID int) ([]*models.Match, error) {
	t, err := s.ownedTournament(ctx, clubID, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentStatusRegistrationClosed {
		return nil, fmt.Errorf("%w: draw requires status %s, tournament is %s",
			ErrInvalidStatusTransition, models.TournamentStatusRegistrationClosed, t.Status)
	}

	confirmed := models.RegistrationStatusConfirmed
	mainDraw := models.PhaseMainDraw
	regs, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &confirmed, &mainDraw)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed registrations for tournament %d: %w", tournamentID, err)
	}

	ordered := brackets.SeedOrder(regs)
	seededIDs := make([]int, len(ordered))
	for i, reg := range ordered {
		seededIDs[i] = reg.ID
	}

	pairings, err := brackets.SeedFirstRound(seededIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientRegistrations) {
			return nil, ErrInsufficientRegistrations
		}
		return nil, err
	}

	roundType := models.RoundForTeams(len(seededIDs))
	matches := pairingsToMatches(tournamentID, nil, roundType, pairings)

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repositories.AcquireTournamentLock(ctx, tx, tournamentID); err != nil {
			return err
		}
		existing, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil)
		if err != nil {
			return err
		}
		for _, m := range existing {
			if m.RoundType != models.RoundPool {
				return ErrDrawAlreadyPublished
			}
		}
		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusDrawPublished)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("draw published",
		slog.Int("tournament_id", tournamentID),
		slog.String("round_type", string(roundType)),
		slog.Int("matches", len(matches)))
	s.hub.Publish(brackets.Event{Type: brackets.EventDrawPublished, TournamentID: tournamentID, Payload: matches})
	return matches, nil
}

func (s *drawService) AssignPools(ctx context.Context, clubID, tournamentID, poolSize int) ([]*models.Pool, error) {
	t, err := s.ownedTournament(ctx, clubID, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentStatusRegistrationClosed {
		return nil, fmt.Errorf("%w: pool assignment requires status %s, tournament is %s",
			ErrInvalidStatusTransition, models.TournamentStatusRegistrationClosed, t.Status)
	}

	confirmed := models.RegistrationStatusConfirmed
	quals := models.PhaseQualifications
	regs, err := s.registrationRepo.ListByTournament(ctx, tournamentID, &confirmed, &quals)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualification registrations for tournament %d: %w", tournamentID, err)
	}
	if len(regs) < 2 {
		return nil, ErrInsufficientRegistrations
	}

	regIDs := make([]int, len(regs))
	for i, reg := range regs {
		regIDs[i] = reg.ID
	}

	assigned, err := brackets.AssignPools(regIDs, poolSize, s.newRand())
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidPoolSize) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	pools := make([]*models.Pool, 0, len(assigned))

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repositories.AcquireTournamentLock(ctx, tx, tournamentID); err != nil {
			return err
		}
		existing, err := s.poolRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrPoolsAlreadyAssigned
		}

		poolMatches := make([]*models.Match, 0)
		for i, members := range assigned {
			pool := &models.Pool{
				TournamentID: tournamentID,
				Name:         fmt.Sprintf("Pool %c", 'A'+i),
				PoolNumber:   i + 1,
				NumTeams:     len(members),
				Status:       models.PoolStatusPending,
			}
			if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
				return err
			}
			pools = append(pools, pool)

			division := i + 1
			for _, regID := range members {
				if err := s.registrationRepo.UpdatePoolAssignment(ctx, tx, regID, pool.ID, division); err != nil {
					return err
				}
			}

			poolID := pool.ID
			for _, pair := range brackets.RoundRobinPairings(members) {
				team1, team2 := pair[0], pair[1]
				poolMatches = append(poolMatches, &models.Match{
					TournamentID:        tournamentID,
					PoolID:              &poolID,
					RoundType:           models.RoundPool,
					MatchOrder:          len(poolMatches) + 1,
					Team1RegistrationID: &team1,
					Team2RegistrationID: &team2,
					Status:              models.MatchStatusScheduled,
				})
			}
		}
		return s.matchRepo.CreateBatch(ctx, tx, poolMatches)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pools assigned",
		slog.Int("tournament_id", tournamentID), slog.Int("pools", len(pools)))
	s.hub.Publish(brackets.Event{Type: brackets.EventPoolsAssigned, TournamentID: tournamentID, Payload: pools})
	return pools, nil
}

func (s *drawService) ownedTournament(ctx context.Context, clubID, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

// pairingsToMatches materializes generated pairings as match rows. Byes are
// born completed with the lone team as winner.
func pairingsToMatches(tournamentID int, poolID *int, roundType models.RoundType, pairings []brackets.Pairing) []*models.Match {
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		team1 := p.Team1
		m := &models.Match{
			TournamentID:        tournamentID,
			PoolID:              poolID,
			RoundType:           roundType,
			MatchOrder:          p.Order,
			Team1RegistrationID: &team1,
			Status:              models.MatchStatusScheduled,
		}
		if regID, ok := p.Team2.RegistrationID(); ok {
			team2 := regID
			m.Team2RegistrationID = &team2
		} else {
			m.IsBye = true
			m.Status = models.MatchStatusCompleted
			m.WinnerRegistrationID = &team1
		}
		matches = append(matches, m)
	}
	return matches
}
