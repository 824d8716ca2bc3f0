package models

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending     RegistrationStatus = "pending"
	RegistrationStatusConfirmed   RegistrationStatus = "confirmed"
	RegistrationStatusWaitingList RegistrationStatus = "waiting_list"
	RegistrationStatusRejected    RegistrationStatus = "rejected"
	RegistrationStatusWithdrawn   RegistrationStatus = "withdrawn"
)

type RegistrationPhase string

const (
	PhaseWaitingList    RegistrationPhase = "waiting_list"
	PhaseQualifications RegistrationPhase = "qualifications"
	PhaseMainDraw       RegistrationPhase = "main_draw"
	PhaseEliminated     RegistrationPhase = "eliminated"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type ForfeitType string

const (
	ForfeitWithdrawal ForfeitType = "withdrawal"
	ForfeitNoShow     ForfeitType = "no_show"
	ForfeitRetirement ForfeitType = "retirement"
)

// Registration is a confirmed or pending pair entry for a tournament. Rows
// are never physically deleted once the tournament is in progress, only moved
// through logical states.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	Player1ID    int                `json:"player1_id" db:"player1_id"`
	Player2ID    int                `json:"player2_id" db:"player2_id"`
	Player1Rank  int                `json:"player1_rank" db:"player1_rank"`
	Player2Rank  int                `json:"player2_rank" db:"player2_rank"`
	PairWeight   int                `json:"pair_weight" db:"pair_weight"`
	SeedNumber   *int               `json:"seed_number,omitempty" db:"seed_number"`
	Phase        RegistrationPhase  `json:"phase" db:"phase"`
	Status       RegistrationStatus `json:"status" db:"status"`
	Payment      PaymentStatus      `json:"payment_status" db:"payment_status"`
	PoolID       *int               `json:"pool_id,omitempty" db:"pool_id"`
	Division     *int               `json:"division,omitempty" db:"division"`
	ForfeitType  *ForfeitType       `json:"forfeit_type,omitempty" db:"forfeit_type"`
	ForfeitDate  *time.Time         `json:"forfeit_date,omitempty" db:"forfeit_date"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

// RecomputePairWeight restores the pair_weight invariant after a rank change.
func (r *Registration) RecomputePairWeight() {
	r.PairWeight = r.Player1Rank + r.Player2Rank
}

// HasPlayer reports whether the given user is one of the pair.
func (r *Registration) HasPlayer(userID int) bool {
	return r.Player1ID == userID || r.Player2ID == userID
}
