package brackets

import (
	"errors"
	"fmt"
	"math/rand"
)

var ErrInvalidPoolSize = errors.New("pool size must be 3 or 4")

// AssignPools shuffles the registration ids with Fisher-Yates and partitions
// them into pools of roughly poolSize members. Every registration lands in
// exactly one pool and pool sizes differ by at most one: the plain
// floor(index/poolSize) split can leave a trailing pool of one, so the
// remainder is spread over the leading pools instead.
func AssignPools(regIDs []int, poolSize int, rng *rand.Rand) ([][]int, error) {
	if poolSize != 3 && poolSize != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPoolSize, poolSize)
	}
	n := len(regIDs)
	if n < poolSize {
		return nil, fmt.Errorf("need at least %d registrations for pools of %d, got %d", poolSize, poolSize, n)
	}

	shuffled := make([]int, n)
	copy(shuffled, regIDs)
	rng.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	// Never exceed the requested pool size: round the pool count up and let
	// the remainder shrink trailing pools by one.
	numPools := (n + poolSize - 1) / poolSize
	base := n / numPools
	extra := n % numPools

	pools := make([][]int, 0, numPools)
	idx := 0
	for p := 0; p < numPools; p++ {
		size := base
		if p < extra {
			size++
		}
		pools = append(pools, shuffled[idx:idx+size])
		idx += size
	}
	return pools, nil
}

// RoundRobinPairings generates the single round-robin schedule for one pool:
// every team plays every other team once.
func RoundRobinPairings(teamIDs []int) [][2]int {
	pairs := make([][2]int, 0, len(teamIDs)*(len(teamIDs)-1)/2)
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			pairs = append(pairs, [2]int{teamIDs[i], teamIDs[j]})
		}
	}
	return pairs
}
