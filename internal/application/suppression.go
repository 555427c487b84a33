package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/taskguard/internal/domain"
	"github.com/bnema/taskguard/internal/ports"
)

// SuppressionClock persists the start of the current dialog episode as a
// unix timestamp so both the scheduler and the coordinator observe the
// same value, including across daemon restarts.
type SuppressionClock struct {
	store ports.RecordStore
	clock ports.Clock
}

func NewSuppressionClock(store ports.RecordStore, clock ports.Clock) *SuppressionClock {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SuppressionClock{store: store, clock: clock}
}

func (s *SuppressionClock) MarkEpisodeStart(ctx context.Context) (time.Time, error) {
	now := s.clock.Now()
	if err := s.store.Put(ctx, domain.EpisodeRecordKey, strconv.FormatInt(now.Unix(), 10)); err != nil {
		return now, fmt.Errorf("record episode start: %w", err)
	}

	return now, nil
}

// StartedAt returns the recorded episode start. A missing or unreadable
// record yields ok=false.
func (s *SuppressionClock) StartedAt(ctx context.Context) (time.Time, bool) {
	raw, err := s.store.Get(ctx, domain.EpisodeRecordKey)
	if err != nil {
		return time.Time{}, false
	}

	seconds, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}, false
	}

	return time.Unix(seconds, 0), true
}

func (s *SuppressionClock) IsEpisodeRecent(ctx context.Context, threshold time.Duration) bool {
	start, ok := s.StartedAt(ctx)
	if !ok {
		return false
	}

	return s.clock.Now().Sub(start) < threshold
}

func (s *SuppressionClock) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, domain.EpisodeRecordKey); err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return fmt.Errorf("clear episode start: %w", err)
	}

	return nil
}
