package concurrent

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sword-ecs/sword/pkg/sequence"
)

func TestForEach_VisitsEverything(t *testing.T) {
	var sum atomic.Int64
	err := ForEach(sequence.From([]int{1, 2, 3, 4, 5}), func(v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(15), sum.Load())
}

func TestForEach_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEach(sequence.From([]int{1, 2, 3}), func(v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestForEachLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	err := ForEachLimit(sequence.From(make([]int, 32)), 4, func(int) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(4))
}
