package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/padelhq/tournament-engine/models"
	"github.com/padelhq/tournament-engine/repositories"
)

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentStatusDraft:              {models.TournamentStatusOpen, models.TournamentStatusCancelled},
		models.TournamentStatusOpen:               {models.TournamentStatusRegistrationClosed, models.TournamentStatusCancelled},
		models.TournamentStatusRegistrationClosed: {models.TournamentStatusDrawPublished, models.TournamentStatusOpen, models.TournamentStatusCancelled},
		models.TournamentStatusDrawPublished:      {models.TournamentStatusInProgress, models.TournamentStatusCancelled},
		models.TournamentStatusInProgress:         {models.TournamentStatusCompleted, models.TournamentStatusCancelled},
		models.TournamentStatusCompleted:          {},
		models.TournamentStatusCancelled:          {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// runInTx wraps fn in a transaction: rollback on error or panic, commit
// otherwise.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	err = fn(tx)
	return err
}

// mapRepoNotFound converts repository not-found sentinels to their service
// equivalents and passes everything else through.
func mapRepoNotFound(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrRegistrationNotFound):
		return ErrRegistrationNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrPoolNotFound):
		return ErrPoolNotFound
	}
	return err
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
