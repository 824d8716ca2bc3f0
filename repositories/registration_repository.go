package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/padelhq/tournament-engine/models"
)

var (
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("pair is already registered for this tournament")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament conflict or invalid")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus, phase *models.RegistrationPhase) ([]*models.Registration, error)
	Update(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	UpdatePoolAssignment(ctx context.Context, exec SQLExecutor, id int, poolID int, division int) error
	SetForfeit(ctx context.Context, exec SQLExecutor, id int, forfeitType models.ForfeitType, at time.Time) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, tournament_id, player1_id, player2_id, player1_rank, player2_rank, pair_weight,
	seed_number, phase, status, payment_status, pool_id, division, forfeit_type, forfeit_date, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO tournament_registrations
			(tournament_id, player1_id, player2_id, player1_rank, player2_rank, pair_weight,
			 seed_number, phase, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID, reg.Player1ID, reg.Player2ID, reg.Player1Rank, reg.Player2Rank, reg.PairWeight,
		reg.SeedNumber, reg.Phase, reg.Status, reg.Payment,
	).Scan(&reg.ID, &reg.CreatedAt)

	return r.handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM tournament_registrations WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reg.ID, &reg.TournamentID, &reg.Player1ID, &reg.Player2ID, &reg.Player1Rank, &reg.Player2Rank,
		&reg.PairWeight, &reg.SeedNumber, &reg.Phase, &reg.Status, &reg.Payment,
		&reg.PoolID, &reg.Division, &reg.ForfeitType, &reg.ForfeitDate, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration %d: %w", id, err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.RegistrationStatus, phase *models.RegistrationPhase) ([]*models.Registration, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + registrationColumns + ` FROM tournament_registrations WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2

	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *status)
		placeholderIndex++
	}
	if phase != nil {
		queryBuilder.WriteString(" AND phase = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *phase)
	}
	queryBuilder.WriteString(" ORDER BY pair_weight ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{}
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.Player1ID, &reg.Player2ID, &reg.Player1Rank, &reg.Player2Rank,
			&reg.PairWeight, &reg.SeedNumber, &reg.Phase, &reg.Status, &reg.Payment,
			&reg.PoolID, &reg.Division, &reg.ForfeitType, &reg.ForfeitDate, &reg.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) Update(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_registrations
		SET player1_rank = $1, player2_rank = $2, pair_weight = $3, seed_number = $4,
		    phase = $5, status = $6, payment_status = $7
		WHERE id = $8`

	result, err := executor.ExecContext(ctx, query,
		reg.Player1Rank, reg.Player2Rank, reg.PairWeight, reg.SeedNumber,
		reg.Phase, reg.Status, reg.Payment, reg.ID,
	)
	if err != nil {
		return r.handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournament_registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdatePoolAssignment(ctx context.Context, exec SQLExecutor, id int, poolID int, division int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_registrations SET pool_id = $1, division = $2, phase = $3 WHERE id = $4`,
		poolID, division, models.PhaseQualifications, id,
	)
	if err != nil {
		return r.handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) SetForfeit(ctx context.Context, exec SQLExecutor, id int, forfeitType models.ForfeitType, at time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournament_registrations SET forfeit_type = $1, forfeit_date = $2, phase = $3 WHERE id = $4`,
		forfeitType, at, models.PhaseEliminated, id,
	)
	if err != nil {
		return r.handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) handleRegistrationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_registrations_tournament_id_player1_id_player2_id_key":
			return ErrRegistrationConflict
		case "tournament_registrations_tournament_id_fkey":
			return ErrRegistrationTournamentInvalid
		}
	}
	return err
}
