package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/padelhq/tournament-engine/models"
)

var ErrDisciplinaryTargetInvalid = errors.New("disciplinary entry must reference a player or a registration")

type DisciplinaryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.DisciplinaryPoints) error
	ListByPlayer(ctx context.Context, playerID int) ([]*models.DisciplinaryPoints, error)
	// SumActiveByPlayer totals non-expired active points, counting both direct
	// player entries and entries against any registration the player is part of.
	SumActiveByPlayer(ctx context.Context, playerID int, now time.Time) (int, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresDisciplinaryRepository struct {
	db *sql.DB
}

func NewPostgresDisciplinaryRepository(db *sql.DB) DisciplinaryRepository {
	return &postgresDisciplinaryRepository{db: db}
}

func (r *postgresDisciplinaryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresDisciplinaryRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.DisciplinaryPoints) error {
	if entry.PlayerID == nil && entry.RegistrationID == nil {
		return ErrDisciplinaryTargetInvalid
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO disciplinary_points (player_id, registration_id, tournament_id, points, reason, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.PlayerID, entry.RegistrationID, entry.TournamentID, entry.Points, entry.Reason, entry.IsActive, entry.ExpiresAt,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrDisciplinaryTargetInvalid
		}
		return fmt.Errorf("failed to insert disciplinary entry: %w", err)
	}
	return nil
}

func (r *postgresDisciplinaryRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.DisciplinaryPoints, error) {
	query := `
		SELECT dp.id, dp.player_id, dp.registration_id, dp.tournament_id, dp.points, dp.reason, dp.is_active, dp.expires_at, dp.created_at
		FROM disciplinary_points dp
		LEFT JOIN tournament_registrations r ON dp.registration_id = r.id
		WHERE dp.player_id = $1 OR r.player1_id = $1 OR r.player2_id = $1
		ORDER BY dp.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query disciplinary entries for player %d: %w", playerID, err)
	}
	defer rows.Close()

	entries := make([]*models.DisciplinaryPoints, 0)
	for rows.Next() {
		entry := &models.DisciplinaryPoints{}
		if scanErr := rows.Scan(
			&entry.ID, &entry.PlayerID, &entry.RegistrationID, &entry.TournamentID,
			&entry.Points, &entry.Reason, &entry.IsActive, &entry.ExpiresAt, &entry.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan disciplinary row: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during disciplinary rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresDisciplinaryRepository) SumActiveByPlayer(ctx context.Context, playerID int, now time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(dp.points), 0)
		FROM disciplinary_points dp
		LEFT JOIN tournament_registrations r ON dp.registration_id = r.id
		WHERE dp.is_active
		  AND (dp.expires_at IS NULL OR dp.expires_at > $2)
		  AND (dp.player_id = $1 OR r.player1_id = $1 OR r.player2_id = $1)`

	var total int
	if err := r.db.QueryRowContext(ctx, query, playerID, now).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum active points for player %d: %w", playerID, err)
	}
	return total, nil
}

func (r *postgresDisciplinaryRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE disciplinary_points SET is_active = FALSE WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired disciplinary entries: %w", err)
	}
	return result.RowsAffected()
}
