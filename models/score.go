package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// SetScore is one set of a padel match, games per side plus the tiebreak
// detail when the set went to 7-6.
type SetScore struct {
	Team1Games int            `json:"team1_games"`
	Team2Games int            `json:"team2_games"`
	Tiebreak   *TiebreakScore `json:"tiebreak,omitempty"`
}

type TiebreakScore struct {
	Team1Points int `json:"team1_points"`
	Team2Points int `json:"team2_points"`
}

// MatchScore is the structured final score of a best-of-three padel match.
// A super tiebreak may replace the third set when the first two are split.
// PuntoDeOro records that games were played with the golden point rule; it
// does not change how sets are counted.
type MatchScore struct {
	Sets          []SetScore     `json:"sets"`
	SuperTiebreak *TiebreakScore `json:"super_tiebreak,omitempty"`
	PuntoDeOro    bool           `json:"punto_de_oro"`
}

const setsToWin = 2

// DetermineWinner validates the score against the match format and returns
// the winning side, 1 or 2.
func (s MatchScore) DetermineWinner() (int, error) {
	if len(s.Sets) < setsToWin {
		return 0, fmt.Errorf("a match needs at least %d sets, got %d", setsToWin, len(s.Sets))
	}
	if len(s.Sets) > 2*setsToWin-1 {
		return 0, fmt.Errorf("too many sets: %d", len(s.Sets))
	}

	team1Sets, team2Sets := 0, 0
	for i, set := range s.Sets {
		winner, err := set.winner()
		if err != nil {
			return 0, fmt.Errorf("set %d: %w", i+1, err)
		}
		if team1Sets == setsToWin || team2Sets == setsToWin {
			return 0, fmt.Errorf("set %d recorded after the match was already decided", i+1)
		}
		if winner == 1 {
			team1Sets++
		} else {
			team2Sets++
		}
	}

	if s.SuperTiebreak != nil {
		if len(s.Sets) != 2 || team1Sets != 1 || team2Sets != 1 {
			return 0, errors.New("super tiebreak is only valid instead of a deciding third set")
		}
		winner, err := s.SuperTiebreak.winner(10)
		if err != nil {
			return 0, fmt.Errorf("super tiebreak: %w", err)
		}
		return winner, nil
	}

	switch {
	case team1Sets == setsToWin:
		return 1, nil
	case team2Sets == setsToWin:
		return 2, nil
	default:
		return 0, fmt.Errorf("no side won %d sets (%d-%d)", setsToWin, team1Sets, team2Sets)
	}
}

func (set SetScore) winner() (int, error) {
	hi, lo := set.Team1Games, set.Team2Games
	side := 1
	if set.Team2Games > set.Team1Games {
		hi, lo = set.Team2Games, set.Team1Games
		side = 2
	}
	if lo < 0 {
		return 0, fmt.Errorf("negative game count %d", lo)
	}

	switch {
	case hi == 6 && lo <= 4:
		return side, nil
	case hi == 7 && lo == 5:
		return side, nil
	case hi == 7 && lo == 6:
		if set.Tiebreak == nil {
			return 0, errors.New("7-6 set requires a tiebreak score")
		}
		tbWinner, err := set.Tiebreak.winner(7)
		if err != nil {
			return 0, fmt.Errorf("tiebreak: %w", err)
		}
		if tbWinner != side {
			return 0, errors.New("tiebreak winner does not match set winner")
		}
		return side, nil
	default:
		return 0, fmt.Errorf("%d-%d is not a finished set", set.Team1Games, set.Team2Games)
	}
}

func (tb TiebreakScore) winner(target int) (int, error) {
	hi, lo := tb.Team1Points, tb.Team2Points
	side := 1
	if tb.Team2Points > tb.Team1Points {
		hi, lo = tb.Team2Points, tb.Team1Points
		side = 2
	}
	if lo < 0 {
		return 0, fmt.Errorf("negative point count %d", lo)
	}
	if hi < target || hi-lo < 2 {
		return 0, fmt.Errorf("%d-%d is not a finished tiebreak to %d", tb.Team1Points, tb.Team2Points, target)
	}
	return side, nil
}

// Value and Scan store the score as a jsonb column.

func (s MatchScore) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *MatchScore) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported score column type %T", src)
	}
	return json.Unmarshal(data, s)
}
