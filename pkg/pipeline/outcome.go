package pipeline

// Outcome is the numeric result of a pipeline run, suitable for use as a
// process exit code. Each phase that can fail has its own code so scripts
// can branch on which phase failed.
type Outcome int

const (
	// OutcomeSuccess covers both a completed run and an operator declining
	// the confirmation prompt, which is a clean abort rather than a failure.
	OutcomeSuccess Outcome = 0

	// OutcomeFatal is a configuration or planning error: the plan itself
	// cannot be trusted.
	OutcomeFatal Outcome = 101

	OutcomeCommitFailed      Outcome = 102
	OutcomePublishFailed     Outcome = 103
	OutcomeTagFailed         Outcome = 104
	OutcomePostCommitFailed  Outcome = 105
	OutcomePushFailed        Outcome = 106
	OutcomeHookFailed        Outcome = 107
	OutcomePublishTimeout    Outcome = 108
	OutcomeSharedDeviation   Outcome = 110
	OutcomeDirtyTree         Outcome = 111
	OutcomeTagExists         Outcome = 112
	OutcomeDowngrade         Outcome = 113
	OutcomeBranchNotAllowed  Outcome = 114
	OutcomeDoublePublish     Outcome = 116
	OutcomeDependentMismatch Outcome = 117

	// OutcomeDryRunFailed aggregates verification failures observed during
	// a dry-run: the run completed its preview, but an execute run would
	// have aborted.
	OutcomeDryRunFailed Outcome = 120
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFatal:
		return "fatal error"
	case OutcomeCommitFailed:
		return "commit failed"
	case OutcomePublishFailed:
		return "publish failed"
	case OutcomeTagFailed:
		return "tag failed"
	case OutcomePostCommitFailed:
		return "post-release commit failed"
	case OutcomePushFailed:
		return "push failed"
	case OutcomeHookFailed:
		return "pre-release hook failed"
	case OutcomePublishTimeout:
		return "publish timed out"
	case OutcomeSharedDeviation:
		return "shared-version deviation"
	case OutcomeDirtyTree:
		return "working tree is dirty"
	case OutcomeTagExists:
		return "tag already exists"
	case OutcomeDowngrade:
		return "planned version is a downgrade"
	case OutcomeBranchNotAllowed:
		return "branch not allowed"
	case OutcomeDoublePublish:
		return "version already published"
	case OutcomeDependentMismatch:
		return "dependent requirement mismatch"
	case OutcomeDryRunFailed:
		return "dry-run would have failed"
	default:
		return "unknown outcome"
	}
}
