package uow

// Outcome is how a transaction ended.
type Outcome string

const (
	OutcomeCommitted      Outcome = "committed"
	OutcomeRolledBack     Outcome = "rolled_back"
	OutcomeBeginFailed    Outcome = "begin_failed"
	OutcomeCommitFailed   Outcome = "commit_failed"
	OutcomeRollbackFailed Outcome = "rollback_failed"
)

// Hooks observe transaction outcomes, e.g. for metrics.
type Hooks struct {
	OnFinish func(Outcome)
}

func (h Hooks) observe(o Outcome) {
	if h.OnFinish != nil {
		h.OnFinish(o)
	}
}
