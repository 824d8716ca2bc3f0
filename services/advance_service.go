package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/padelhq/tournament-engine/brackets"
	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

// AdvanceService is the round progression state machine: it finds the one
// completed round whose successor has not been generated yet and creates the
// successor from its winners.
type AdvanceService interface {
	FinalizeNextRound(ctx context.Context, clubID, tournamentID int) ([]*models.Match, error)
}

type advanceService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewAdvanceService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) AdvanceService {
	return &advanceService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *advanceService) FinalizeNextRound(ctx context.Context, clubID, tournamentID int) ([]*models.Match, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepoNotFound(err)
	}
	if t.ClubID != clubID {
		return nil, ErrForbiddenOperation
	}
	switch t.Status {
	case models.TournamentStatusDrawPublished, models.TournamentStatusInProgress:
	default:
		return nil, fmt.Errorf("%w: cannot advance a tournament in status %s", ErrInvalidStatusTransition, t.Status)
	}

	var created []*models.Match
	var target models.RoundType

	// The whole read-check-write sequence runs under the tournament's
	// advisory lock: two racing advance calls serialize, and the loser sees
	// the freshly generated round and reports ErrNoAdvanceableRound exactly
	// like a deliberate second call.
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repositories.AcquireTournamentLock(ctx, tx, tournamentID); err != nil {
			return err
		}
		all, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, nil)
		if err != nil {
			return err
		}
		if len(all) == 0 {
			return ErrMatchNotFound
		}

		candidate, winners, findErr := findAdvanceableRound(all)
		if findErr != nil {
			return findErr
		}

		pairings, err := brackets.PairWinners(winners)
		if err != nil {
			if errors.Is(err, brackets.ErrInsufficientWinners) {
				return ErrInsufficientWinners
			}
			return err
		}

		target = models.RoundForTeams(len(winners))
		created = pairingsToMatches(tournamentID, nil, target, pairings)
		if err := s.matchRepo.CreateBatch(ctx, tx, created); err != nil {
			// A lost uniqueness race is indistinguishable from a double call
			// by contract.
			if errors.Is(err, repositories.ErrMatchRoundConflict) {
				return ErrNoAdvanceableRound
			}
			return err
		}
		s.logger.Info("round advanced",
			slog.Int("tournament_id", tournamentID),
			slog.String("from", string(candidate)),
			slog.String("to", string(target)),
			slog.Int("matches", len(created)))

		if t.Status == models.TournamentStatusDrawPublished {
			return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusInProgress)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(brackets.Event{Type: brackets.EventRoundAdvanced, TournamentID: tournamentID, Payload: created})
	return created, nil
}

// findAdvanceableRound scans the match table grouped by round type, in round
// order, and returns the single round that is fully decided and whose target
// round has no matches yet. Pool play never advances through this path: pool
// standings feed the knockout draw through seeding instead of per-match
// winner pairing.
func findAdvanceableRound(all []*models.Match) (models.RoundType, []int, error) {
	byRound := make(map[models.RoundType][]*models.Match)
	for _, m := range all {
		byRound[m.RoundType] = append(byRound[m.RoundType], m)
	}

	for _, rt := range models.KnockoutRounds() {
		if rt.Terminal() {
			continue
		}
		roundMatches, present := byRound[rt]
		if !present {
			continue
		}

		winners, decided := roundWinners(roundMatches)
		if !decided {
			continue
		}

		target := models.RoundForTeams(len(winners))
		if target == rt {
			// Only possible when a round holds more than 64 decided
			// matches; the successor lookup would loop on itself.
			return "", nil, fmt.Errorf("%w: %d winners in %s", ErrBracketInconsistent, len(winners), rt)
		}
		if len(byRound[target]) > 0 {
			continue
		}
		return rt, winners, nil
	}
	return "", nil, ErrNoAdvanceableRound
}

// roundWinners returns the winners of a round in match_order, or decided ==
// false when any match is still open.
func roundWinners(roundMatches []*models.Match) ([]int, bool) {
	ordered := make([]*models.Match, len(roundMatches))
	copy(ordered, roundMatches)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].MatchOrder < ordered[j].MatchOrder
	})

	winners := make([]int, 0, len(ordered))
	for _, m := range ordered {
		if !m.Status.TerminalWithWinner() || m.WinnerRegistrationID == nil {
			return nil, false
		}
		winners = append(winners, *m.WinnerRegistrationID)
	}
	return winners, true
}
