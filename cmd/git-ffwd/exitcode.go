package gitffwd

import (
	"errors"
	"fmt"

	"github.com/ralismark/git-ffwd/internal/engine"
	"github.com/ralismark/git-ffwd/internal/model"
)

// Process exit codes. Reconciliation outcomes map to 0, 1, 2, or 10;
// 128 and 129 are reserved for resolution and usage failures.
const (
	// ExitSuccess covers fast-forwarded and already up-to-date refs.
	ExitSuccess = 0
	// ExitSkipped covers refs left alone on purpose (diverged, dirty tree).
	ExitSkipped = 1
	// ExitFailed covers rejected ref updates and refs that do not exist.
	ExitFailed = 2
	// ExitInternal covers unexpected backend failures.
	ExitInternal = 10
	// ExitResolution covers name resolution failures: no repository,
	// unknown branch, no upstream, unresolvable target.
	ExitResolution = 128
	// ExitUsage covers bad flags and conflicting options.
	ExitUsage = 129
)

// exitError pairs an error with the process exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

// errorExitCode extracts the exit code a command error asked for. Errors
// without one come from flag and argument parsing, which is a usage problem.
func errorExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsage
}

// singleRefExitCode maps the one outcome of a single-ref run. Unlike the
// batch fold, a branch without a usable upstream is a resolution failure
// here: the user named one ref and it cannot be reconciled.
func singleRefExitCode(report *model.Report) int {
	if len(report.Results) == 0 {
		return ExitSuccess
	}
	switch report.Results[0].Kind {
	case model.OutcomeNoUpstream, model.OutcomeUpstreamUnresolvable:
		return ExitResolution
	default:
		return report.Results[0].Kind.ExitCode()
	}
}

// reconcileErrorCode maps errors that abort a run before any report exists.
func reconcileErrorCode(err error) int {
	switch {
	case errors.Is(err, engine.ErrFetchFailed):
		return ExitFailed
	case errors.Is(err, engine.ErrNotARepo),
		errors.Is(err, engine.ErrBranchNotFound),
		errors.Is(err, engine.ErrNoCurrentBranch):
		return ExitResolution
	default:
		return ExitInternal
	}
}
