package id

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		n := gen.Number()
		require.Greater(t, n, prev)
		prev = n
	}
	require.Equal(t, strconv.FormatUint(prev+1, 10), gen.Str())
}

func TestMonotonicNonZeroID_Overflow(t *testing.T) {
	gen := monotonicNonZeroIDFrom(^uint64(0) - 1)
	require.Equal(t, ^uint64(0), gen.Number())
	require.Equal(t, uint64(1), gen.Number())
	require.Equal(t, uint64(2), gen.Number())
}

func TestMonotonicNonZeroID_Concurrent(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	require.NoError(t, err)

	const workers, perWorker = 8, 1000
	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWorker)
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, gen.Number())
			}
			lock.Lock()
			defer lock.Unlock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*perWorker)
}
