package models

import "time"

// DisciplinaryPoints is an append-only penalty entry. Rows are never mutated
// after creation except the is_active flip when they expire. A row targets
// either a single player or a whole registration (forfeits penalize the
// pair).
type DisciplinaryPoints struct {
	ID             int        `json:"id" db:"id"`
	PlayerID       *int       `json:"player_id,omitempty" db:"player_id"`
	RegistrationID *int       `json:"registration_id,omitempty" db:"registration_id"`
	TournamentID   *int       `json:"tournament_id,omitempty" db:"tournament_id"`
	Points         int        `json:"points" db:"points"`
	Reason         string     `json:"reason" db:"reason"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Forfeit point values per forfeit type.
var ForfeitPenaltyPoints = map[ForfeitType]int{
	ForfeitWithdrawal: 1,
	ForfeitRetirement: 2,
	ForfeitNoShow:     3,
}
