package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/padelhq/tournament-engine/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchAlreadyDecided    = errors.New("match already has a winner")
	ErrMatchRoundConflict     = errors.New("matches for this round already exist")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team reference conflict or invalid")
)

type MatchRepository interface {
	// CreateBatch inserts a whole round in one statement, so a failed
	// generation can never leave a partial round behind.
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundType *models.RoundType) ([]*models.Match, error)
	// UpdateResult is conditional on the match being undecided; a lost
	// read-modify-write race surfaces as ErrMatchAlreadyDecided.
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, score *models.MatchScore, status models.MatchStatus, winnerRegistrationID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, pool_id, round_type, match_order, team1_registration_id,
	team2_registration_id, is_bye, status, winner_registration_id, score, created_at`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		INSERT INTO tournament_matches
			(tournament_id, pool_id, round_type, match_order, team1_registration_id,
			 team2_registration_id, is_bye, status, winner_registration_id, score)
		VALUES `)

	args := make([]interface{}, 0, len(matches)*10)
	for i, m := range matches {
		if i > 0 {
			queryBuilder.WriteString(", ")
		}
		queryBuilder.WriteString("(")
		for j := 0; j < 10; j++ {
			if j > 0 {
				queryBuilder.WriteString(", ")
			}
			queryBuilder.WriteString("$")
			queryBuilder.WriteString(strconv.Itoa(i*10 + j + 1))
		}
		queryBuilder.WriteString(")")
		args = append(args,
			m.TournamentID, m.PoolID, m.RoundType, m.MatchOrder, m.Team1RegistrationID,
			m.Team2RegistrationID, m.IsBye, m.Status, m.WinnerRegistrationID, m.Score,
		)
	}
	queryBuilder.WriteString(" RETURNING id, created_at")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return r.handleMatchError(err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(matches) {
			return errors.New("batch insert returned more rows than matches")
		}
		if scanErr := rows.Scan(&matches[i].ID, &matches[i].CreatedAt); scanErr != nil {
			return fmt.Errorf("failed to scan inserted match id: %w", scanErr)
		}
		i++
	}
	if err = rows.Err(); err != nil {
		return r.handleMatchError(err)
	}
	if i != len(matches) {
		return fmt.Errorf("batch insert returned %d rows for %d matches", i, len(matches))
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM tournament_matches WHERE id = $1`

	m := &models.Match{}
	var score models.MatchScore
	var scoreRaw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.PoolID, &m.RoundType, &m.MatchOrder, &m.Team1RegistrationID,
		&m.Team2RegistrationID, &m.IsBye, &m.Status, &m.WinnerRegistrationID, &scoreRaw, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	if scoreRaw != nil {
		if err := score.Scan(scoreRaw); err != nil {
			return nil, fmt.Errorf("failed to decode score for match %d: %w", id, err)
		}
		m.Score = &score
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, roundType *models.RoundType) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM tournament_matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if roundType != nil {
		queryBuilder.WriteString(" AND round_type = $2")
		args = append(args, *roundType)
	}
	queryBuilder.WriteString(" ORDER BY match_order ASC, id ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		var scoreRaw []byte
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.PoolID, &m.RoundType, &m.MatchOrder, &m.Team1RegistrationID,
			&m.Team2RegistrationID, &m.IsBye, &m.Status, &m.WinnerRegistrationID, &scoreRaw, &m.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		if scoreRaw != nil {
			var score models.MatchScore
			if err := score.Scan(scoreRaw); err != nil {
				return nil, fmt.Errorf("failed to decode score for match %d: %w", m.ID, err)
			}
			m.Score = &score
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, score *models.MatchScore, status models.MatchStatus, winnerRegistrationID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_matches
		SET score = $1, status = $2, winner_registration_id = $3
		WHERE id = $4 AND winner_registration_id IS NULL`

	result, err := executor.ExecContext(ctx, query, score, status, winnerRegistrationID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMatchAlreadyDecided
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournament_matches_tournament_id_round_type_match_order_key":
			return ErrMatchRoundConflict
		case "tournament_matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "tournament_matches_team1_registration_id_fkey", "tournament_matches_team2_registration_id_fkey", "tournament_matches_winner_registration_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
