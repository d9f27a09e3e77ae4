package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasSequence_StartsAtT0(t *testing.T) {
	seq := NewAliasSequence()
	assert.Equal(t, 0, seq.Issued())
	assert.Equal(t, "T0", seq.Next())
	assert.Equal(t, "T1", seq.Next())
	assert.Equal(t, 2, seq.Issued())
}

func TestAliasSequence_Reset(t *testing.T) {
	seq := NewAliasSequence()
	seq.Next()
	seq.Next()

	seq.Reset()
	assert.Equal(t, 0, seq.Issued())
	assert.Equal(t, "T0", seq.Next())
}

func TestAliasSequence_ThreadSafe(t *testing.T) {
	seq := NewAliasSequence()
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]string, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]string, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = seq.Next()
			}
		}(i)
	}
	wg.Wait()

	all := make(map[string]bool)
	for _, r := range results {
		for _, alias := range r {
			require.False(t, all[alias], "duplicate alias %s", alias)
			all[alias] = true
		}
	}
	assert.Len(t, all, numGoroutines*callsPerGoroutine)
}
