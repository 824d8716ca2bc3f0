package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairWinnersEven(t *testing.T) {
	pairings, err := PairWinners([]int{10, 20, 30, 40})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	t2, ok := pairings[0].Team2.RegistrationID()
	require.True(t, ok)
	assert.Equal(t, 10, pairings[0].Team1)
	assert.Equal(t, 20, t2)

	t2, ok = pairings[1].Team2.RegistrationID()
	require.True(t, ok)
	assert.Equal(t, 30, pairings[1].Team1)
	assert.Equal(t, 40, t2)
}

func TestPairWinnersOddGrantsTrailingBye(t *testing.T) {
	pairings, err := PairWinners([]int{10, 20, 30})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	assert.False(t, pairings[0].Completed())
	assert.Equal(t, 30, pairings[1].Team1)
	assert.True(t, pairings[1].Team2.IsBye())
	assert.True(t, pairings[1].Completed())
}

func TestPairWinnersOrdersAreSequential(t *testing.T) {
	pairings, err := PairWinners([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	for i, p := range pairings {
		assert.Equal(t, i+1, p.Order)
	}
}

func TestPairWinnersRejectsFewerThanTwo(t *testing.T) {
	_, err := PairWinners([]int{99})
	assert.ErrorIs(t, err, ErrInsufficientWinners)

	_, err = PairWinners(nil)
	assert.ErrorIs(t, err, ErrInsufficientWinners)
}
