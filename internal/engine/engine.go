// Package engine implements the fast-forward decision and the batch
// reconciler that drives it. It coordinates between the vcs backend and
// the model types.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ralismark/git-ffwd/internal/model"
	"github.com/ralismark/git-ffwd/internal/vcs"
)

var (
	// ErrNotARepo reports a directory outside any repository.
	ErrNotARepo = errors.New("not a git repository")
	// ErrBranchNotFound reports a named branch that does not exist.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrNoCurrentBranch reports a detached HEAD when no branch was named.
	ErrNoCurrentBranch = errors.New("no current branch")
	// ErrFetchFailed aborts a batch whose precursor fetch failed.
	ErrFetchFailed = errors.New("fetch failed")
)

// Engine drives fast-forward reconciliation through a VCS backend.
type Engine struct {
	backend vcs.Backend
}

// New creates an Engine. A nil backend defaults to the git CLI backend.
func New(backend vcs.Backend) *Engine {
	if backend == nil {
		backend = vcs.NewGitBackend(nil)
	}
	return &Engine{backend: backend}
}

// Backend returns the engine's VCS backend.
func (e *Engine) Backend() vcs.Backend { return e.backend }

// Decide evaluates one branch against a resolved target commit and,
// unless dryRun is set, performs the fast-forward. It returns exactly
// one outcome and never mutates anything for an ineligible branch.
func (e *Engine) Decide(ctx context.Context, dir string, branch model.Branch, target string, dryRun bool) model.Result {
	res := model.Result{Branch: branch}

	base, err := e.backend.ResolveCommit(ctx, dir, branch.FullName)
	if err != nil {
		if errors.Is(err, vcs.ErrRevNotFound) {
			res.Kind = model.OutcomeRefMissing
			res.Err = err.Error()
			return res
		}
		res.Kind = model.OutcomeInternalError
		res.Err = err.Error()
		return res
	}
	res.From = base

	if base == target {
		res.Kind = model.OutcomeUpToDate
		return res
	}

	mergeBase, err := e.backend.MergeBase(ctx, dir, base, target)
	if err != nil {
		if errors.Is(err, vcs.ErrNoMergeBase) {
			res.Kind = model.OutcomeDiverged
			return res
		}
		res.Kind = model.OutcomeInternalError
		res.Err = err.Error()
		return res
	}
	if mergeBase != base {
		// The branch has commits the target lacks.
		res.Kind = model.OutcomeDiverged
		return res
	}

	if dryRun {
		res.Kind = model.OutcomeFastForwarded
		res.To = target
		return res
	}

	if branch.IsCheckedOut {
		if err := e.backend.CheckoutFastForward(ctx, dir, target); err != nil {
			res.Kind = model.OutcomeUpdateFailed
			if errors.Is(err, vcs.ErrDirtyWorktree) {
				res.Kind = model.OutcomeDirtyWorktree
			}
			res.Err = err.Error()
			return res
		}
		res.Kind = model.OutcomeFastForwarded
		res.To = target
		return res
	}

	// base doubles as the compare-and-swap guard: a concurrent move of
	// the ref fails the update instead of silently overwriting it.
	if err := e.backend.UpdateRef(ctx, dir, branch.FullName, target, base); err != nil {
		res.Kind = model.OutcomeUpdateFailed
		res.Err = err.Error()
		return res
	}
	res.Kind = model.OutcomeFastForwarded
	res.To = target
	return res
}

// ReconcileOptions configures a reconciliation run.
type ReconcileOptions struct {
	// Dir is the repository directory.
	Dir string
	// Branch is the branch to reconcile. Empty means the current branch.
	Branch string
	// Target is an explicit commit-ish. Empty means the branch upstream.
	Target string
	// All reconciles every local branch instead of a single one.
	All bool
	// Fetch runs one fetch before an --all batch.
	Fetch bool
	// Remote overrides the fetch remote. Empty uses the git default.
	Remote string
	// Match limits batch branches to those matching any glob.
	Match []string
	// Exclude drops batch branches matching any glob.
	Exclude []string
	// DryRun suppresses mutations; outcomes report what would happen.
	DryRun bool
	// CollectDiffStat attaches change summaries to fast-forwards.
	CollectDiffStat bool
}

// Reconcile runs one reconciliation pass and returns the ordered report.
// Branches are processed strictly sequentially, in enumeration order.
func (e *Engine) Reconcile(ctx context.Context, opts ReconcileOptions) (*model.Report, error) {
	ok, err := e.backend.IsRepo(ctx, opts.Dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotARepo, opts.Dir)
	}
	if opts.All {
		return e.reconcileAll(ctx, opts)
	}
	return e.reconcileOne(ctx, opts)
}

func (e *Engine) reconcileOne(ctx context.Context, opts ReconcileOptions) (*model.Report, error) {
	branches, err := e.backend.Branches(ctx, opts.Dir)
	if err != nil {
		return nil, err
	}

	name := opts.Branch
	if name == "" {
		current, err := e.backend.CurrentBranch(ctx, opts.Dir)
		if err != nil {
			return nil, err
		}
		if current == "" {
			return nil, ErrNoCurrentBranch
		}
		name = current
	}

	var branch model.Branch
	found := false
	for _, b := range branches {
		if b.Name == name {
			branch = b
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}

	report := e.newReport(opts)
	report.Results = append(report.Results, e.reconcileBranch(ctx, opts, branch, opts.Target))
	report.GeneratedAt = time.Now()
	return report, nil
}

func (e *Engine) reconcileAll(ctx context.Context, opts ReconcileOptions) (*model.Report, error) {
	if opts.Fetch {
		// One fetch for the whole batch; a failed fetch means every
		// subsequent comparison would be against stale refs, so the
		// run aborts instead of reporting misleading outcomes.
		if err := e.backend.Fetch(ctx, opts.Dir, opts.Remote); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
		}
	}

	branches, err := e.backend.Branches(ctx, opts.Dir)
	if err != nil {
		return nil, err
	}

	report := e.newReport(opts)
	for _, branch := range branches {
		if !selectBranch(branch.Name, opts.Match, opts.Exclude) {
			continue
		}
		report.Results = append(report.Results, e.reconcileBranch(ctx, opts, branch, ""))
	}
	report.GeneratedAt = time.Now()
	return report, nil
}

// reconcileBranch resolves the target for one branch and runs the
// decision. Failures are recorded in the result, never propagated, so a
// batch always produces one outcome per branch.
func (e *Engine) reconcileBranch(ctx context.Context, opts ReconcileOptions, branch model.Branch, explicitTarget string) model.Result {
	targetName := explicitTarget
	if targetName == "" {
		if !branch.HasUpstream() {
			return model.Result{Branch: branch, Kind: model.OutcomeNoUpstream}
		}
		targetName = branch.Upstream
	}

	target, err := e.backend.ResolveCommit(ctx, opts.Dir, targetName)
	if err != nil {
		kind := model.OutcomeInternalError
		if errors.Is(err, vcs.ErrRevNotFound) {
			kind = model.OutcomeUpstreamUnresolvable
		}
		return model.Result{Branch: branch, Kind: kind, Target: targetName, Err: err.Error()}
	}

	res := e.Decide(ctx, opts.Dir, branch, target, opts.DryRun)
	res.Target = targetName
	e.attachDiffStat(ctx, opts, &res)
	return res
}

// attachDiffStat adds a change summary to fast-forward results. The
// summary is informational; failures to compute it are ignored.
func (e *Engine) attachDiffStat(ctx context.Context, opts ReconcileOptions, res *model.Result) {
	if !opts.CollectDiffStat || opts.DryRun || res.Kind != model.OutcomeFastForwarded {
		return
	}
	stat, err := e.backend.DiffStat(ctx, opts.Dir, res.From, res.To)
	if err != nil {
		return
	}
	res.Diff = &stat
}

func (e *Engine) newReport(opts ReconcileOptions) *model.Report {
	return &model.Report{DryRun: opts.DryRun}
}

// selectBranch applies --match and exclude globs to a short branch name.
func selectBranch(name string, match, exclude []string) bool {
	if len(match) > 0 {
		ok := false
		for _, pattern := range match {
			if m, err := doublestar.Match(pattern, name); err == nil && m {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, pattern := range exclude {
		if m, err := doublestar.Match(pattern, name); err == nil && m {
			return false
		}
	}
	return true
}
