package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/padelhq/tournament-engine/brackets"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

// ForfeitInput declares which registration gives the match up and why.
type ForfeitInput struct {
	RegistrationID int                `json:"registration_id"`
	Type           models.ForfeitType `json:"type"`
}

type MatchService interface {
	// RecordResult applies a final score or a forfeit to a match, decides the
	// winner and completes the match. Resolving the final also completes the
	// tournament.
	RecordResult(ctx context.Context, clubID, matchID int, score *models.MatchScore, forfeit *ForfeitInput) (*models.Match, error)
	ListByTournament(ctx context.Context, clubID, tournamentID int, roundType *models.RoundType) ([]*models.Match, error)
}

type matchService struct {
	db               *sql.DB
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	disciplinaryRepo repositories.DisciplinaryRepository
	hub              *brackets.Hub
	logger           *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	disciplinaryRepo repositories.DisciplinaryRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:               db,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		disciplinaryRepo: disciplinaryRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *matchService) RecordResult(ctx context.Context, clubID, matchID int, score *models.MatchScore, forfeit *ForfeitInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}

	t, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}

	if match.WinnerRegistrationID != nil || match.IsBye {
		return nil, ErrMatchAlreadyDecided
	}
	if match.Team1RegistrationID == nil || match.Team2RegistrationID == nil {
		return nil, fmt.Errorf("%w: match %d has an unassigned team", ErrValidationFailed, matchID)
	}

	switch {
	case forfeit != nil:
		err = s.recordForfeit(ctx, match, forfeit)
	case score != nil:
		err = s.recordScore(ctx, match, score)
	default:
		return nil, fmt.Errorf("%w: either a score or a forfeit is required", ErrValidationFailed)
	}
	if err != nil {
		return nil, err
	}

	s.hub.Publish(brackets.Event{Type: brackets.EventResultRecorded, TournamentID: match.TournamentID, Payload: match})

	// The engine owns the terminal completed transition: once the final
	// resolves there is nothing left to play.
	if match.RoundType == models.RoundFinal {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, match.TournamentID, models.TournamentStatusCompleted); err != nil {
			return nil, fmt.Errorf("final recorded but failed to complete tournament %d: %w", match.TournamentID, err)
		}
		s.logger.Info("tournament completed",
			slog.Int("tournament_id", match.TournamentID),
			slog.Int("winner_registration_id", derefInt(match.WinnerRegistrationID)))
		s.hub.Publish(brackets.Event{
			Type:         brackets.EventTournamentEnded,
			TournamentID: match.TournamentID,
			Payload:      map[string]interface{}{"winner_registration_id": match.WinnerRegistrationID},
		})
	}
	return match, nil
}

func (s *matchService) recordScore(ctx context.Context, match *models.Match, score *models.MatchScore) error {
	side, err := score.DetermineWinner()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}

	winnerID := *match.Team1RegistrationID
	loserID := *match.Team2RegistrationID
	if side == 2 {
		winnerID, loserID = loserID, winnerID
	}

	if err := s.matchRepo.UpdateResult(ctx, nil, match.ID, score, models.MatchStatusCompleted, winnerID); err != nil {
		if errors.Is(err, repositories.ErrMatchAlreadyDecided) {
			return ErrMatchAlreadyDecided
		}
		return err
	}

	match.Score = score
	match.Status = models.MatchStatusCompleted
	match.WinnerRegistrationID = &winnerID
	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("winner_registration_id", winnerID),
		slog.Int("loser_registration_id", loserID))
	return nil
}

func (s *matchService) recordForfeit(ctx context.Context, match *models.Match, forfeit *ForfeitInput) error {
	opponent, ok := match.OpponentOf(forfeit.RegistrationID)
	if !ok {
		return fmt.Errorf("%w: registration %d is not part of match %d", ErrValidationFailed, forfeit.RegistrationID, match.ID)
	}
	winnerID, ok := opponent.RegistrationID()
	if !ok {
		return fmt.Errorf("%w: match %d has no opponent to credit", ErrValidationFailed, match.ID)
	}
	points, known := models.ForfeitPenaltyPoints[forfeit.Type]
	if !known {
		return fmt.Errorf("%w: unknown forfeit type %q", ErrValidationFailed, forfeit.Type)
	}

	now := time.Now()
	forfeitingID := forfeit.RegistrationID
	tournamentID := match.TournamentID
	expiry := now.AddDate(1, 0, 0)

	err := runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, match.Score, models.MatchStatusForfeit, winnerID); err != nil {
			if errors.Is(err, repositories.ErrMatchAlreadyDecided) {
				return ErrMatchAlreadyDecided
			}
			return err
		}
		if err := s.registrationRepo.SetForfeit(ctx, tx, forfeitingID, forfeit.Type, now); err != nil {
			return mapRepoNotFound(err)
		}
		entry := &models.DisciplinaryPoints{
			RegistrationID: &forfeitingID,
			TournamentID:   &tournamentID,
			Points:         points,
			Reason:         fmt.Sprintf("forfeit (%s) in match %d", forfeit.Type, match.ID),
			IsActive:       true,
			ExpiresAt:      &expiry,
		}
		return s.disciplinaryRepo.Create(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	match.Status = models.MatchStatusForfeit
	match.WinnerRegistrationID = &winnerID
	s.logger.Info("forfeit recorded",
		slog.Int("match_id", match.ID),
		slog.Int("forfeiting_registration_id", forfeitingID),
		slog.String("forfeit_type", string(forfeit.Type)),
		slog.Int("points", points))
	return nil
}

func (s *matchService) ListByTournament(ctx context.Context, clubID, tournamentID int, roundType *models.RoundType) ([]*models.Match, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, roundType)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}
