package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProcessesAllItems(t *testing.T) {
	Init(4)
	defer Init(0)

	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	var sum int64

	err := Run(items, func(i int) error {
		atomic.AddInt64(&sum, int64(i))
		return nil
	})

	require.NoError(t, err)
	assert.EqualValues(t, 36, sum)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	Init(2)
	defer Init(0)

	sentinel := assert.AnError
	err := Run([]int{1, 2, 3}, func(i int) error {
		if i == 2 {
			return sentinel
		}
		return nil
	})

	assert.ErrorIs(t, err, sentinel)
}

func TestInit_NonPositiveFallsBackToGOMAXPROCS(t *testing.T) {
	Init(-1)
	assert.Greater(t, Size(), 0)
}
