package brackets

import (
	"errors"
	"sort"

	"github.com/padelhq/tournament-engine/models"
)

var ErrInsufficientRegistrations = errors.New("not enough confirmed registrations to seed a draw (minimum 2)")

// Pairing is one generated match slot before it is persisted. Team1 is always
// a real registration; Team2 may be a bye.
type Pairing struct {
	Order int
	Team1 int
	Team2 models.Opponent
}

// Completed reports whether the pairing resolves without play, i.e. a bye.
func (p Pairing) Completed() bool {
	return p.Team2.IsBye()
}

// SeedOrder sorts registrations into draw order: explicit seed numbers first
// (ascending), then pair weight ascending, registration id as the tie break.
func SeedOrder(regs []*models.Registration) []*models.Registration {
	ordered := make([]*models.Registration, len(regs))
	copy(ordered, regs)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := ordered[i].SeedNumber, ordered[j].SeedNumber
		switch {
		case si != nil && sj != nil:
			if *si != *sj {
				return *si < *sj
			}
		case si != nil:
			return true
		case sj != nil:
			return false
		}
		if ordered[i].PairWeight != ordered[j].PairWeight {
			return ordered[i].PairWeight < ordered[j].PairWeight
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// SeedFirstRound builds the round-1 pairings for a knockout draw from a list
// of registration ids already in seed order (strongest first).
//
// Power-of-two fields use the mirrored standard layout, so 8 seeds come out
// as (1v8),(4v5),(3v6),(2v7) and pairing consecutive winners keeps reseeding
// the later rounds correctly. Other fields are drawn compactly: an odd field
// gives its single bye to the top seed, placed first in the order, and the
// remaining teams are cross-paired i vs (m+1-i). In the compact case seeds
// are only guaranteed to avoid each other in round 1.
func SeedFirstRound(seeded []int) ([]Pairing, error) {
	n := len(seeded)
	if n < 2 {
		return nil, ErrInsufficientRegistrations
	}

	if isPowerOfTwo(n) {
		pairings := make([]Pairing, 0, n/2)
		order := mirroredSeedOrder(n)
		for i := 0; i < n; i += 2 {
			pairings = append(pairings, Pairing{
				Order: len(pairings) + 1,
				Team1: seeded[order[i]-1],
				Team2: models.Team(seeded[order[i+1]-1]),
			})
		}
		return pairings, nil
	}

	pairings := make([]Pairing, 0, n/2+1)
	rest := seeded
	if n%2 == 1 {
		pairings = append(pairings, Pairing{Order: 1, Team1: seeded[0], Team2: models.NoOpponent()})
		rest = seeded[1:]
	}
	m := len(rest)
	for i := 0; i < m/2; i++ {
		pairings = append(pairings, Pairing{
			Order: len(pairings) + 1,
			Team1: rest[i],
			Team2: models.Team(rest[m-1-i]),
		})
	}
	return pairings, nil
}

// mirroredSeedOrder lays out seeds 1..size over the bracket slots. The
// standard recursive expansion is computed first, then the second half of the
// pairs is reversed, which keeps the reseeding property under
// consecutive-winner pairing at every depth.
func mirroredSeedOrder(size int) []int {
	seq := []int{1}
	for len(seq) < size {
		doubled := len(seq) * 2
		next := make([]int, 0, doubled)
		for _, s := range seq {
			next = append(next, s, doubled+1-s)
		}
		seq = next
	}

	type pair [2]int
	pairs := make([]pair, 0, size/2)
	for i := 0; i < size; i += 2 {
		pairs = append(pairs, pair{seq[i], seq[i+1]})
	}

	half := len(pairs) / 2
	ordered := make([]pair, 0, len(pairs))
	ordered = append(ordered, pairs[:half]...)
	for i := len(pairs) - 1; i >= half; i-- {
		ordered = append(ordered, pairs[i])
	}

	flat := make([]int, 0, size)
	for _, p := range ordered {
		flat = append(flat, p[0], p[1])
	}
	return flat
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
