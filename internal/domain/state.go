package domain

import "time"

// Runtime record keys. Values are plain scalars.
const (
	LockRecordKey    = "daemon.pid"
	EpisodeRecordKey = "episode.start"
)

// Snapshot is a point-in-time view used by the status command.
type Snapshot struct {
	ActionableCount int
	LockOwner       int
	LockOwnerAlive  bool
	EpisodeStart    time.Time
	Horizon         time.Duration
	PollInterval    time.Duration
}

func (s Snapshot) Satisfied() bool {
	return s.ActionableCount > 0
}
