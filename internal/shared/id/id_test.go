package id

import (
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixedIDs(t *testing.T) {
	ids := map[Kind]string{
		KindSession: NewSessionID().String(),
		KindWindow:  NewWindowID().String(),
		KindProject: NewProjectID().String(),
		KindRequest: NewRequestID().String(),
	}

	for want, s := range ids {
		kind, u, err := Split(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, kind)
		assert.Len(t, u.String(), 26)
	}
}

func TestSplitRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "win", "win_", "_01HZX3", "win_nope", "win_zzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, _, err := Split(s)
		assert.ErrorIs(t, err, ErrMalformed, s)
	}
}

func TestParseWindowID(t *testing.T) {
	w := NewWindowID()
	parsed, err := ParseWindowID(w.String())
	require.NoError(t, err)
	assert.Equal(t, w, parsed)

	_, err = ParseWindowID(NewSessionID().String())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWindowIDsSortInCreationOrder(t *testing.T) {
	ids := make([]string, 500)
	for i := range ids {
		ids[i] = NewWindowID().String()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestEnvelopeIDsAreFreshUUIDs(t *testing.T) {
	seen := make(map[EnvelopeID]bool)
	for i := 0; i < 1000; i++ {
		id := NewEnvelopeID()
		_, err := uuid.Parse(id.String())
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate envelope id %s", id)
		seen[id] = true
	}
}

func TestConcurrentGeneration(t *testing.T) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[SessionID]bool)
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := NewSessionID()
				mu.Lock()
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 1600)
}
