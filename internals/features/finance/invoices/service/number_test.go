package service

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberGeneratorUniqueUnderConcurrency(t *testing.T) {
	frozen := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	gen := NewNumberGenerator(func() time.Time { return frozen })

	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num := gen.Next()
			mu.Lock()
			seen[num] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for num := range seen {
		assert.True(t, strings.HasPrefix(num, "FAC-2025-"), num)
	}
}
