package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/moviefinder/src/storage"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return map[string]Store{
		"memory": NewInMemoryStore(),
		"sqlite": NewSQLStore(db),
	}
}

func texts(turns []Turn) []string {
	out := make([]string, len(turns))
	for i, t := range turns {
		out[i] = t.Role + ":" + t.Text
	}
	return out
}

func TestStoreAppendSnapshot(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			conv := NewConversation(store, "a")

			empty, err := conv.Snapshot(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, conv.Append(ctx, UserTurn("suggest a sci-fi movie"), AssistantTurn("Try Arrival.")))
			// duplicate roles are allowed
			require.NoError(t, conv.Append(ctx, AssistantTurn("Or Dune.")))

			turns, err := conv.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{
				"user:suggest a sci-fi movie",
				"assistant:Try Arrival.",
				"assistant:Or Dune.",
			}, texts(turns))
			assert.False(t, turns[0].CreatedAt.IsZero())
		})
	}
}

func TestStoreInvalidRole(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := store.Append(ctx, "a", UserTurn("hi"), Turn{Role: "system", Text: "x"})
			assert.ErrorIs(t, err, ErrInvalidRole)

			turns, err := store.Snapshot(ctx, "a")
			require.NoError(t, err)
			assert.Empty(t, turns, "a rejected batch leaves nothing behind")
		})
	}
}

func TestStoreIsolationAndReset(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Append(ctx, "a", UserTurn("from a")))
			require.NoError(t, store.Append(ctx, "b", UserTurn("from b")))

			require.NoError(t, store.Clear(ctx, "a"))
			require.NoError(t, store.Clear(ctx, "a"))
			require.NoError(t, store.Clear(ctx, "never-seen"))

			a, err := store.Snapshot(ctx, "a")
			require.NoError(t, err)
			assert.Empty(t, a)

			b, err := store.Snapshot(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, []string{"user:from b"}, texts(b))
		})
	}
}

func TestInMemorySnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, "a", UserTurn("one")))

	snap, err := store.Snapshot(ctx, "a")
	require.NoError(t, err)
	snap[0].Text = "mutated"
	require.NoError(t, store.Append(ctx, "a", UserTurn("two")))

	again, err := store.Snapshot(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:one", "user:two"}, texts(again))
	assert.Len(t, snap, 1)
}

func TestInMemoryConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			for j := 0; j < 50; j++ {
				_ = store.Append(ctx, id, UserTurn("q"), AssistantTurn("a"))
				_, _ = store.Snapshot(ctx, id)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Sessions(), 8)
	turns, err := store.Snapshot(ctx, "s3")
	require.NoError(t, err)
	assert.Len(t, turns, 100)
}

func TestSlidingWindow(t *testing.T) {
	turns := []Turn{
		UserTurn("q1"), AssistantTurn("a1"),
		UserTurn("q2"), AssistantTurn("a2"),
		UserTurn("q3"), AssistantTurn("a3"),
	}

	assert.Len(t, SlidingWindow(0).Compact(turns), 6)
	assert.Len(t, Unbounded.Compact(turns), 6)
	assert.Len(t, SlidingWindow(10).Compact(turns), 6)

	assert.Equal(t, []string{"user:q2", "assistant:a2", "user:q3", "assistant:a3"},
		texts(SlidingWindow(4).Compact(turns)))

	// an odd window would start on an assistant turn
	assert.Equal(t, []string{"user:q2", "assistant:a2", "user:q3", "assistant:a3"},
		texts(SlidingWindow(5).Compact(turns)))

	assert.Len(t, turns, 6, "compaction never mutates the input")
}
