package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusReady      MatchStatus = "ready"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusForfeit    MatchStatus = "forfeit"
)

// TerminalWithWinner reports whether the status counts as decided for round
// advancement purposes.
func (s MatchStatus) TerminalWithWinner() bool {
	return s == MatchStatusCompleted || s == MatchStatusForfeit
}

// Opponent is one side of a match slot: either a concrete registration or a
// bye. Construction goes through Team/NoOpponent so a zero registration id
// never masquerades as a real team.
type Opponent struct {
	registrationID int
	bye            bool
}

func Team(registrationID int) Opponent {
	return Opponent{registrationID: registrationID}
}

func NoOpponent() Opponent {
	return Opponent{bye: true}
}

func (o Opponent) IsBye() bool {
	return o.bye
}

// RegistrationID returns the registration behind the slot; ok is false for a
// bye.
func (o Opponent) RegistrationID() (int, bool) {
	if o.bye {
		return 0, false
	}
	return o.registrationID, true
}

type Match struct {
	ID                   int         `json:"id" db:"id"`
	TournamentID         int         `json:"tournament_id" db:"tournament_id"`
	PoolID               *int        `json:"pool_id,omitempty" db:"pool_id"`
	RoundType            RoundType   `json:"round_type" db:"round_type"`
	MatchOrder           int         `json:"match_order" db:"match_order"`
	Team1RegistrationID  *int        `json:"team1_registration_id,omitempty" db:"team1_registration_id"`
	Team2RegistrationID  *int        `json:"team2_registration_id,omitempty" db:"team2_registration_id"`
	IsBye                bool        `json:"is_bye" db:"is_bye"`
	Status               MatchStatus `json:"status" db:"status"`
	WinnerRegistrationID *int        `json:"winner_registration_id,omitempty" db:"winner_registration_id"`
	Score                *MatchScore `json:"score,omitempty" db:"score"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
}

// Team2 exposes the second slot as a tagged variant so callers never have to
// remember the is_bye check themselves.
func (m *Match) Team2() Opponent {
	if m.IsBye || m.Team2RegistrationID == nil {
		return NoOpponent()
	}
	return Team(*m.Team2RegistrationID)
}

// OpponentOf returns the registration facing regID in this match, or a bye.
// ok is false when regID is not part of the match at all.
func (m *Match) OpponentOf(regID int) (Opponent, bool) {
	if m.Team1RegistrationID != nil && *m.Team1RegistrationID == regID {
		return m.Team2(), true
	}
	if m.Team2RegistrationID != nil && *m.Team2RegistrationID == regID {
		if m.Team1RegistrationID == nil {
			return NoOpponent(), true
		}
		return Team(*m.Team1RegistrationID), true
	}
	return Opponent{}, false
}
