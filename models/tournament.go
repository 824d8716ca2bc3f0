package models

import "time"

type TournamentStatus string

const (
	TournamentStatusDraft              TournamentStatus = "draft"
	TournamentStatusOpen               TournamentStatus = "open"
	TournamentStatusRegistrationClosed TournamentStatus = "registration_closed"
	TournamentStatusDrawPublished      TournamentStatus = "draw_published"
	TournamentStatusInProgress         TournamentStatus = "in_progress"
	TournamentStatusCompleted          TournamentStatus = "completed"
	TournamentStatusCancelled          TournamentStatus = "cancelled"
)

type TournamentFormat string

const (
	FormatKnockout      TournamentFormat = "knockout"
	FormatPoolsKnockout TournamentFormat = "pools+knockout"
	FormatAmericano     TournamentFormat = "americano"
	FormatMexicano      TournamentFormat = "mexicano"
	FormatCustom        TournamentFormat = "custom"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case FormatKnockout, FormatPoolsKnockout, FormatAmericano, FormatMexicano, FormatCustom:
		return true
	}
	return false
}

// Tournament is a club-owned event. Status transitions are admin driven,
// except the terminal completed transition which the engine asserts once the
// final match resolves.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	ClubID     int              `json:"club_id" db:"club_id"`
	Name       string           `json:"name" db:"name"`
	Category   string           `json:"category" db:"category"`
	Format     TournamentFormat `json:"format" db:"format"`
	Status     TournamentStatus `json:"status" db:"status"`
	StartDate  time.Time        `json:"start_date" db:"start_date"`
	EndDate    time.Time        `json:"end_date" db:"end_date"`
	CourtCount int              `json:"court_count" db:"court_count"`
	PosterKey  *string          `json:"-" db:"poster_key"`
	PosterURL  *string          `json:"poster_url,omitempty" db:"-"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	Registrations []Registration `json:"registrations,omitempty" db:"-"`
	Pools         []Pool         `json:"pools,omitempty" db:"-"`
	Matches       []Match        `json:"matches,omitempty" db:"-"`
}

// Started reports whether the tournament has progressed past the point where
// registrations may still be withdrawn.
func (t *Tournament) Started() bool {
	switch t.Status {
	case TournamentStatusDrawPublished, TournamentStatusInProgress, TournamentStatusCompleted:
		return true
	}
	return false
}
