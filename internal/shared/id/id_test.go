package id

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{ItemPrefix, SessionPrefix, JobPrefix, ConnPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		require.True(t, strings.HasPrefix(id, prefix+"_"), "id %s", id)
		parts := strings.Split(id, "_")
		require.Len(t, parts, 2)
		assert.Len(t, parts[1], 26)
		assert.True(t, IsValid(parts[1]))
	}
}

func TestTypedIDGeneration(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewItemID().String(), "item_"))
	assert.True(t, strings.HasPrefix(NewSessionID().String(), "sess_"))
	assert.True(t, strings.HasPrefix(NewJobID().String(), "job_"))
	assert.True(t, strings.HasPrefix(NewConnID().String(), "conn_"))
}

func TestIsGenerated(t *testing.T) {
	assert.True(t, IsGenerated(NewItemID().String()))

	for _, s := range []string{"", "Users", "Program Files", "item_", "_" + NewGenerator().GenerateString(), "item_notaulid"} {
		assert.False(t, IsGenerated(s), "expected %q to be a non-generated id", s)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(NewGenerator().GenerateString()))

	for _, s := range []string{"", "invalid", "1234567890", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		assert.False(t, IsValid(s), "expected %q to be invalid", s)
	}
}

func TestHasPrefix(t *testing.T) {
	sid := NewSessionID().String()
	assert.True(t, HasPrefix(sid, SessionPrefix))
	assert.False(t, HasPrefix(sid, ItemPrefix))

	for _, s := range []string{"", "missing", "sess_", "sess_notaulid", "sess" + sid} {
		assert.False(t, HasPrefix(s, SessionPrefix), "expected %q to be rejected", s)
	}

	parsed, err := Parse(strings.TrimPrefix(sid, "sess_"))
	require.NoError(t, err)
	assert.Equal(t, strings.TrimPrefix(sid, "sess_"), parsed.String())
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const perGoroutine = 50

	var wg sync.WaitGroup
	ids := make(chan string, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ids <- gen.GenerateWithPrefix(ItemPrefix)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for s := range ids {
		require.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}
