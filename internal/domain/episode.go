package domain

type EpisodeOutcome string

const (
	// OutcomeSatisfied means an actionable task appeared during the episode.
	OutcomeSatisfied EpisodeOutcome = "satisfied"
	// OutcomeAbandoned means the inactivity timeout elapsed first.
	OutcomeAbandoned EpisodeOutcome = "abandoned"
	// OutcomeCanceled means the daemon is shutting down.
	OutcomeCanceled EpisodeOutcome = "canceled"
)

func (o EpisodeOutcome) Terminal() bool {
	return o == OutcomeSatisfied || o == OutcomeAbandoned
}
