package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockduel/blockduel-go/internal/testutil"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	tr := New(testutil.NopLogger())
	ctx := context.Background()

	ch1, cancel1, err := tr.Subscribe(ctx, "match-1")
	require.NoError(t, err)
	defer cancel1()
	ch2, cancel2, err := tr.Subscribe(ctx, "match-1")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, tr.Publish(ctx, "match-1", []byte("hello")))

	assert.Equal(t, []byte("hello"), recv(t, ch1))
	assert.Equal(t, []byte("hello"), recv(t, ch2))
}

func TestMatchesAreIsolated(t *testing.T) {
	tr := New(testutil.NopLogger())
	ctx := context.Background()

	ch1, cancel1, err := tr.Subscribe(ctx, "match-1")
	require.NoError(t, err)
	defer cancel1()
	ch2, cancel2, err := tr.Subscribe(ctx, "match-2")
	require.NoError(t, err)
	defer cancel2()

	require.NoError(t, tr.Publish(ctx, "match-1", []byte("one")))

	assert.Equal(t, []byte("one"), recv(t, ch1))
	select {
	case msg := <-ch2:
		t.Fatalf("match-2 subscriber received %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	tr := New(testutil.NopLogger())
	ctx := context.Background()

	ch, cancel, err := tr.Subscribe(ctx, "match-1")
	require.NoError(t, err)
	cancel()

	// The channel is closed by unregistration; draining terminates.
	for range ch {
	}

	// Publishing afterwards must not panic or block.
	require.NoError(t, tr.Publish(ctx, "match-1", []byte("late")))
}

func TestCancelIsIdempotent(t *testing.T) {
	tr := New(testutil.NopLogger())

	_, cancel, err := tr.Subscribe(context.Background(), "match-1")
	require.NoError(t, err)
	cancel()
	cancel()
}

func TestCloseMatchDisconnectsSubscribers(t *testing.T) {
	tr := New(testutil.NopLogger())

	ch, cancel, err := tr.Subscribe(context.Background(), "match-1")
	require.NoError(t, err)
	defer cancel()

	tr.CloseMatch("match-1")

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestCleanupRemovesIdleHubs(t *testing.T) {
	tr := New(testutil.NopLogger())
	ctx := context.Background()

	_, cancel, err := tr.Subscribe(ctx, "match-1")
	require.NoError(t, err)
	cancel()

	// Unregistration is async; give the hub loop a moment to process it.
	assert.Eventually(t, func() bool {
		tr.mu.RLock()
		h, ok := tr.hubs["match-1"]
		tr.mu.RUnlock()
		return ok && h.subscriberCount() == 0
	}, time.Second, 10*time.Millisecond)

	tr.CleanupIdleMatches()

	tr.mu.RLock()
	_, ok := tr.hubs["match-1"]
	tr.mu.RUnlock()
	assert.False(t, ok)
}
