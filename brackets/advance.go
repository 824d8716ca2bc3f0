package brackets

import (
	"errors"

	"github.com/padelhq/tournament-engine/models"
)

var ErrInsufficientWinners = errors.New("fewer than 2 winners available for the next round")

// PairWinners folds the ordered winners of a completed round into the next
// round's pairings: winners[0] vs winners[1], winners[2] vs winners[3], and
// so on. An odd winner count grants the last winner a bye. A single winner is
// a finished tournament, not a next round, so that case errors out.
func PairWinners(winners []int) ([]Pairing, error) {
	if len(winners) < 2 {
		return nil, ErrInsufficientWinners
	}

	pairings := make([]Pairing, 0, len(winners)/2+1)
	for i := 0; i+1 < len(winners); i += 2 {
		pairings = append(pairings, Pairing{
			Order: len(pairings) + 1,
			Team1: winners[i],
			Team2: models.Team(winners[i+1]),
		})
	}
	if len(winners)%2 == 1 {
		pairings = append(pairings, Pairing{
			Order: len(pairings) + 1,
			Team1: winners[len(winners)-1],
			Team2: models.NoOpponent(),
		})
	}
	return pairings, nil
}
