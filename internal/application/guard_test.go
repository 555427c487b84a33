package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceGuardAcquireWritesOwnPID(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	guard := NewInstanceGuard(store, fakeProbe{self: 4242}, nil)

	require.NoError(t, guard.Acquire(context.Background()))

	owner, ok := guard.Owner(context.Background())
	require.True(t, ok)
	assert.Equal(t, 4242, owner)
}

func TestInstanceGuardSecondProcessFailsWhileFirstAlive(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	alive := map[int]bool{100: true, 200: true}
	first := NewInstanceGuard(store, fakeProbe{self: 100, alive: alive}, nil)
	second := NewInstanceGuard(store, fakeProbe{self: 200, alive: alive}, nil)

	require.NoError(t, first.Acquire(context.Background()))

	err := second.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyRunning))
	assert.ErrorContains(t, err, "pid 100")
	assert.Equal(t, "100", store.records[domain.LockRecordKey])
}

func TestInstanceGuardReclaimsLockOfDeadProcess(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	alive := map[int]bool{100: true, 200: true}
	first := NewInstanceGuard(store, fakeProbe{self: 100, alive: alive}, nil)
	require.NoError(t, first.Acquire(context.Background()))

	alive[100] = false
	second := NewInstanceGuard(store, fakeProbe{self: 200, alive: alive}, nil)
	require.NoError(t, second.Acquire(context.Background()))
	assert.Equal(t, "200", store.records[domain.LockRecordKey])
}

func TestInstanceGuardTreatsUnreadableRecordAsAbsent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		value string
	}{
		{name: "garbage", value: "not-a-pid"},
		{name: "empty", value: ""},
		{name: "negative", value: "-7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newInMemoryRecordStore()
			store.records[domain.LockRecordKey] = tc.value
			guard := NewInstanceGuard(store, fakeProbe{self: 300}, nil)

			require.NoError(t, guard.Acquire(context.Background()))
			assert.Equal(t, "300", store.records[domain.LockRecordKey])
		})
	}
}

func TestInstanceGuardConcurrentAcquireHasSingleWinner(t *testing.T) {
	t.Parallel()

	const contenders = 32
	store := newInMemoryRecordStore()
	alive := map[int]bool{}
	for pid := 1; pid <= contenders; pid++ {
		alive[pid] = true
	}

	var wins, refused atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for pid := 1; pid <= contenders; pid++ {
		guard := NewInstanceGuard(store, fakeProbe{self: pid, alive: alive}, discardLogger())
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := guard.Acquire(context.Background())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrAlreadyRunning):
				refused.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(contenders-1), refused.Load())
}

func TestInstanceGuardReacquireBySameProcessSucceeds(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	guard := NewInstanceGuard(store, fakeProbe{self: 9, alive: map[int]bool{9: true}}, discardLogger())

	require.NoError(t, guard.Acquire(context.Background()))
	require.NoError(t, guard.Acquire(context.Background()))
	assert.Equal(t, "9", store.records[domain.LockRecordKey])
}

func TestInstanceGuardSurfacesStoreFailure(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	store.putErr = errors.New("read-only file system")
	guard := NewInstanceGuard(store, fakeProbe{self: 9}, discardLogger())

	err := guard.Acquire(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyRunning)
	assert.ErrorContains(t, err, "write lock record")
}

func TestInstanceGuardReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	guard := NewInstanceGuard(store, fakeProbe{self: 1}, nil)
	require.NoError(t, guard.Acquire(context.Background()))

	require.NoError(t, guard.Release(context.Background()))
	require.NoError(t, guard.Release(context.Background()))
	assert.False(t, store.has(domain.LockRecordKey))
}
