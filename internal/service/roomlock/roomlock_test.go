package roomlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireSerializesSameKey(t *testing.T) {
	locker := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Acquire(ctx, "room-1")
			require.NoError(t, err)
			defer unlock()

			// Non-atomic increment; only mutual exclusion keeps it correct.
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestAcquireDifferentKeysDoNotBlock(t *testing.T) {
	locker := New()
	ctx := context.Background()

	unlockA, err := locker.Acquire(ctx, "room-a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Acquire(ctx, "room-b")
		require.NoError(t, err)
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquiring a different key blocked behind room-a")
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	locker := New()

	unlock, err := locker.Acquire(context.Background(), "room-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "room-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIdleKeysAreDropped(t *testing.T) {
	locker := New()
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "room-1")
	require.NoError(t, err)
	unlock()

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.entries)
}
