package application

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDaemon(store *inMemoryRecordStore, probe fakeProbe, counter *fakeCounter, episodes EpisodeRunner) *Daemon {
	clock := newManualClock()
	suppression := NewSuppressionClock(store, clock)
	scheduler := NewScheduler(counter, suppression, episodes, SchedulerConfig{
		PollInterval: time.Hour,
		Horizon:      23 * time.Hour,
	}, WithSchedulerClock(clock), WithSchedulerLogger(discardLogger()))

	return NewDaemon(NewInstanceGuard(store, probe, discardLogger()), suppression, scheduler, discardLogger())
}

func TestDaemonExitsWithoutSideEffectsWhenAlreadyRunning(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	store.records[domain.LockRecordKey] = "77"
	store.records[domain.EpisodeRecordKey] = "1700000000"
	counter := &fakeCounter{}
	daemon := newTestDaemon(store, fakeProbe{self: 88, alive: map[int]bool{77: true}}, counter, &fakeEpisodes{})

	err := daemon.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrAlreadyRunning)
	assert.Equal(t, "77", store.records[domain.LockRecordKey])
	assert.Equal(t, "1700000000", store.records[domain.EpisodeRecordKey])
	assert.Equal(t, 0, counter.calls)
}

func TestDaemonCleansUpOnCancellation(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counter := &fakeCounter{}
	var lockHeld bool
	episodes := &fakeEpisodes{run: func(ctx context.Context) (domain.EpisodeOutcome, error) {
		lockHeld = store.has(domain.LockRecordKey)
		store.records[domain.EpisodeRecordKey] = strconv.FormatInt(time.Now().Unix(), 10)
		cancel()
		return domain.OutcomeCanceled, ctx.Err()
	}}
	daemon := newTestDaemon(store, fakeProbe{self: 12}, counter, episodes)

	require.NoError(t, daemon.Run(ctx))
	assert.True(t, lockHeld)
	assert.False(t, store.has(domain.LockRecordKey))
	assert.False(t, store.has(domain.EpisodeRecordKey))
}

func TestDaemonCleansUpOnPanic(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	episodes := &fakeEpisodes{run: func(context.Context) (domain.EpisodeOutcome, error) {
		panic("surface exploded")
	}}
	daemon := newTestDaemon(store, fakeProbe{self: 12}, &fakeCounter{}, episodes)

	assert.PanicsWithValue(t, "surface exploded", func() {
		_ = daemon.Run(context.Background())
	})
	assert.False(t, store.has(domain.LockRecordKey))
}

func TestDaemonReclaimsStaleLock(t *testing.T) {
	t.Parallel()

	store := newInMemoryRecordStore()
	store.records[domain.LockRecordKey] = "77"
	ctx, cancel := context.WithCancel(context.Background())
	counter := &fakeCounter{count: 1, onCall: func(int) { cancel() }}
	daemon := newTestDaemon(store, fakeProbe{self: 88, alive: map[int]bool{77: false}}, counter, &fakeEpisodes{})

	require.NoError(t, daemon.Run(ctx))
	assert.Equal(t, 1, counter.calls)
	assert.False(t, store.has(domain.LockRecordKey))
}
