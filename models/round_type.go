package models

// RoundType names the stage a match belongs to. The set is closed and
// totally ordered: a tournament's matches only ever move forward through it.
type RoundType string

const (
	RoundPool           RoundType = "pool"
	RoundQualifications RoundType = "qualifications"
	RoundOf64           RoundType = "round_of_64"
	RoundOf32           RoundType = "round_of_32"
	RoundOf16           RoundType = "round_of_16"
	RoundQuarters       RoundType = "quarters"
	RoundSemis          RoundType = "semis"
	RoundFinal          RoundType = "final"
	RoundThirdPlace     RoundType = "third_place"
)

var roundOrder = [...]RoundType{
	RoundPool,
	RoundQualifications,
	RoundOf64,
	RoundOf32,
	RoundOf16,
	RoundQuarters,
	RoundSemis,
	RoundFinal,
	RoundThirdPlace,
}

// KnockoutRounds returns the knockout stages in ascending order, pool play
// excluded.
func KnockoutRounds() []RoundType {
	return []RoundType{RoundQualifications, RoundOf64, RoundOf32, RoundOf16, RoundQuarters, RoundSemis, RoundFinal}
}

func (r RoundType) Valid() bool {
	return r.ord() >= 0
}

func (r RoundType) ord() int {
	for i, rt := range roundOrder {
		if rt == r {
			return i
		}
	}
	return -1
}

// Before reports whether r precedes other in bracket order. Unknown round
// types never precede anything.
func (r RoundType) Before(other RoundType) bool {
	ri, oi := r.ord(), other.ord()
	return ri >= 0 && oi >= 0 && ri < oi
}

// Terminal reports whether no further round can be generated from r.
func (r RoundType) Terminal() bool {
	return r == RoundFinal || r == RoundThirdPlace
}

// RoundForTeams derives the stage label from the number of teams entering a
// knockout round. Compact draws with byes keep monotonically increasing
// labels this way: 5 teams enter at quarters, their 3 survivors at semis.
func RoundForTeams(teams int) RoundType {
	switch {
	case teams <= 2:
		return RoundFinal
	case teams <= 4:
		return RoundSemis
	case teams <= 8:
		return RoundQuarters
	case teams <= 16:
		return RoundOf16
	case teams <= 32:
		return RoundOf32
	case teams <= 64:
		return RoundOf64
	default:
		return RoundQualifications
	}
}
