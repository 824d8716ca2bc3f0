package models

import "time"

type PoolStatus string

const (
	PoolStatusPending    PoolStatus = "pending"
	PoolStatusInProgress PoolStatus = "in_progress"
	PoolStatusCompleted  PoolStatus = "completed"
)

// Pool is a round-robin qualification group. PoolNumber and NumTeams are
// computed once at assignment time.
type Pool struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Name         string     `json:"name" db:"name"`
	PoolNumber   int        `json:"pool_number" db:"pool_number"`
	NumTeams     int        `json:"num_teams" db:"num_teams"`
	Status       PoolStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
