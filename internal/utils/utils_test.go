package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRange(t *testing.T) {
	start := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)
	got := TimeRange(start, start.Add(30*time.Minute), 10*time.Minute)
	require.Len(t, got, 4)
	assert.Equal(t, start.Add(30*time.Minute), got[3])

	assert.Equal(t, []time.Time{start}, TimeRange(start, start.Add(time.Hour), 0))
	assert.Empty(t, TimeRange(start, start.Add(-time.Minute), time.Minute))
}

func TestDedupe(t *testing.T) {
	a := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)
	b := a.Add(10 * time.Minute)
	got := Dedupe([]time.Time{b, a, b, a.In(time.FixedZone("CLT", -4*3600))})
	assert.Equal(t, []time.Time{a, b}, got)
}

func TestWithNetCDF_Serializes(t *testing.T) {
	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = WithNetCDF(func() error {
				mu.Lock()
				active++
				maxSeen = max(maxSeen, active)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)

	boom := errors.New("boom")
	assert.ErrorIs(t, WithGDAL(func() error { return boom }), boom)
}
