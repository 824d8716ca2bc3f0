package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/padelhq/tournament-engine/models"
)

var (
	ErrPoolNotFound          = errors.New("pool not found")
	ErrPoolNumberConflict    = errors.New("pool number already exists for this tournament")
	ErrPoolTournamentInvalid = errors.New("pool tournament conflict or invalid")
)

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Pool, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PoolStatus) error
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_pools (tournament_id, name, pool_number, num_teams, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		pool.TournamentID, pool.Name, pool.PoolNumber, pool.NumTeams, pool.Status,
	).Scan(&pool.ID, &pool.CreatedAt)

	return r.handlePoolError(err)
}

func (r *postgresPoolRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Pool, error) {
	query := `
		SELECT id, tournament_id, name, pool_number, num_teams, status, created_at
		FROM tournament_pools
		WHERE tournament_id = $1
		ORDER BY pool_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	pools := make([]*models.Pool, 0)
	for rows.Next() {
		pool := &models.Pool{}
		if scanErr := rows.Scan(
			&pool.ID, &pool.TournamentID, &pool.Name, &pool.PoolNumber, &pool.NumTeams, &pool.Status, &pool.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", scanErr)
		}
		pools = append(pools, pool)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pool rows iteration: %w", err)
	}
	return pools, nil
}

func (r *postgresPoolRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PoolStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournament_pools SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) handlePoolError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_pools_tournament_id_pool_number_key":
			return ErrPoolNumberConflict
		case "tournament_pools_tournament_id_fkey":
			return ErrPoolTournamentInvalid
		}
	}
	return err
}
