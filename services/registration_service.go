package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

type RegisterPairInput struct {
	Player1ID   int `json:"player1_id"`
	Player2ID   int `json:"player2_id"`
	Player1Rank int `json:"player1_rank"`
	Player2Rank int `json:"player2_rank"`
}

// UpdateRegistrationInput carries an admin edit: validation/rejection and
// rank or seed changes. Nil fields are left untouched.
type UpdateRegistrationInput struct {
	Status      *models.RegistrationStatus `json:"status,omitempty"`
	Phase       *models.RegistrationPhase  `json:"phase,omitempty"`
	Player1Rank *int                       `json:"player1_rank,omitempty"`
	Player2Rank *int                       `json:"player2_rank,omitempty"`
	SeedNumber  *int                       `json:"seed_number,omitempty"`
}

type RegistrationService interface {
	Register(ctx context.Context, tournamentID int, input RegisterPairInput) (*models.Registration, error)
	Update(ctx context.Context, clubID, tournamentID, registrationID int, input UpdateRegistrationInput) (*models.Registration, error)
	Withdraw(ctx context.Context, tournamentID, registrationID, callerUserID int) error
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		logger:           logger,
	}
}

func (s *registrationService) Register(ctx context.Context, tournamentID int, input RegisterPairInput) (*models.Registration, error) {
	if input.Player1ID <= 0 || input.Player2ID <= 0 || input.Player1ID == input.Player2ID {
		return nil, fmt.Errorf("%w: a registration needs two distinct players", ErrValidationFailed)
	}
	if input.Player1Rank < 0 || input.Player2Rank < 0 {
		return nil, fmt.Errorf("%w: ranks cannot be negative", ErrValidationFailed)
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.Status != models.TournamentStatusOpen {
		return nil, ErrRegistrationNotOpen
	}

	reg := &models.Registration{
		TournamentID: tournamentID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Player1Rank:  input.Player1Rank,
		Player2Rank:  input.Player2Rank,
		Phase:        models.PhaseMainDraw,
		Status:       models.RegistrationStatusPending,
		Payment:      models.PaymentStatusPending,
	}
	reg.RecomputePairWeight()

	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	s.logger.Info("registration created",
		slog.Int("tournament_id", tournamentID), slog.Int("registration_id", reg.ID))
	return reg, nil
}

func (s *registrationService) Update(ctx context.Context, clubID, tournamentID, registrationID int, input UpdateRegistrationInput) (*models.Registration, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if reg.TournamentID != tournamentID {
		return nil, ErrRegistrationNotFound
	}

	if input.Status != nil {
		switch *input.Status {
		case models.RegistrationStatusConfirmed, models.RegistrationStatusRejected, models.RegistrationStatusWaitingList:
			reg.Status = *input.Status
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidRegistrationStatus, *input.Status)
		}
	}
	if input.Phase != nil {
		reg.Phase = *input.Phase
	}
	if input.Player1Rank != nil {
		if *input.Player1Rank < 0 {
			return nil, fmt.Errorf("%w: ranks cannot be negative", ErrValidationFailed)
		}
		reg.Player1Rank = *input.Player1Rank
	}
	if input.Player2Rank != nil {
		if *input.Player2Rank < 0 {
			return nil, fmt.Errorf("%w: ranks cannot be negative", ErrValidationFailed)
		}
		reg.Player2Rank = *input.Player2Rank
	}
	if input.SeedNumber != nil {
		reg.SeedNumber = input.SeedNumber
	}

	// pair_weight == rank1 + rank2, always.
	reg.RecomputePairWeight()

	if err := s.registrationRepo.Update(ctx, nil, reg); err != nil {
		return nil, mapRepoNotFound(err)
	}
	return reg, nil
}

func (s *registrationService) Withdraw(ctx context.Context, tournamentID, registrationID, callerUserID int) error {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return mapRepoNotFound(err)
	}

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return mapRepoNotFound(err)
	}
	if reg.TournamentID != tournamentID {
		return ErrRegistrationNotFound
	}
	if !reg.HasPlayer(callerUserID) {
		return ErrForbiddenOperation
	}
	if t.Started() {
		return ErrTournamentAlreadyStarted
	}
	if reg.Status == models.RegistrationStatusConfirmed {
		return ErrRegistrationAlreadyValidated
	}

	if err := s.registrationRepo.UpdateStatus(ctx, nil, registrationID, models.RegistrationStatusWithdrawn); err != nil {
		return mapRepoNotFound(err)
	}
	s.logger.Info("registration withdrawn",
		slog.Int("tournament_id", tournamentID), slog.Int("registration_id", registrationID))
	return nil
}
