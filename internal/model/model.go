// Package model defines the core data types used throughout git-ffwd.
package model

import "time"

// Ref identifies a single local branch reference.
type Ref struct {
	// Name is the short branch name (for example, "main").
	Name string `json:"name" yaml:"name"`
	// FullName is the fully qualified ref name (for example, "refs/heads/main").
	FullName string `json:"full_name" yaml:"full_name"`
	// IsCheckedOut reports whether HEAD currently points at this ref.
	IsCheckedOut bool `json:"is_checked_out" yaml:"is_checked_out"`
}

// Branch is one row of a branch enumeration: a local ref together with
// its configured upstream binding, if any.
type Branch struct {
	Ref `yaml:",inline"`
	// Upstream is the short upstream name (for example, "origin/main").
	// Empty when the branch has no tracking configuration.
	Upstream string `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	// UpstreamFull is the fully qualified upstream ref
	// (for example, "refs/remotes/origin/main").
	UpstreamFull string `json:"upstream_full,omitempty" yaml:"upstream_full,omitempty"`
}

// HasUpstream reports whether the branch carries a tracking configuration.
func (b Branch) HasUpstream() bool { return b.Upstream != "" }

// ShortHash abbreviates a full commit hash for display. Short inputs are
// returned unchanged.
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// OutcomeKind enumerates the possible per-ref reconciliation outcomes.
type OutcomeKind string

const (
	// OutcomeUpToDate means the ref already pointed at the target.
	OutcomeUpToDate OutcomeKind = "up_to_date"
	// OutcomeFastForwarded means the ref was advanced (or, in dry-run
	// mode, would have been advanced) along a pure fast-forward.
	OutcomeFastForwarded OutcomeKind = "fast_forwarded"
	// OutcomeDiverged means local and target histories have both moved.
	OutcomeDiverged OutcomeKind = "diverged"
	// OutcomeDirtyWorktree means the checked-out branch could not be
	// advanced because working tree state was in the way.
	OutcomeDirtyWorktree OutcomeKind = "dirty_worktree"
	// OutcomeUpdateFailed means the ref store rejected the update,
	// for example because the ref moved after it was inspected.
	OutcomeUpdateFailed OutcomeKind = "update_failed"
	// OutcomeRefMissing means the named ref does not exist.
	OutcomeRefMissing OutcomeKind = "ref_missing"
	// OutcomeNoUpstream means the branch has no tracking configuration.
	OutcomeNoUpstream OutcomeKind = "no_upstream"
	// OutcomeUpstreamUnresolvable means the target could not be resolved
	// to a commit (deleted upstream, bad commit-ish).
	OutcomeUpstreamUnresolvable OutcomeKind = "upstream_unresolvable"
	// OutcomeInternalError covers unexpected backend failures that fit
	// none of the categories above.
	OutcomeInternalError OutcomeKind = "internal_error"
)

// ExitCode maps an outcome to its batch severity. Successes and expected
// skips are 0, policy rejections 1, errors 2, and unexpected internal
// failures 10.
func (k OutcomeKind) ExitCode() int {
	switch k {
	case OutcomeUpToDate, OutcomeFastForwarded, OutcomeNoUpstream:
		return 0
	case OutcomeDiverged, OutcomeDirtyWorktree:
		return 1
	case OutcomeUpdateFailed, OutcomeRefMissing, OutcomeUpstreamUnresolvable:
		return 2
	default:
		return 10
	}
}

// DiffStat summarizes the change introduced by a fast-forward.
type DiffStat struct {
	// FilesChanged is the number of files touched between the endpoints.
	FilesChanged int `json:"files_changed" yaml:"files_changed"`
	// Insertions is the number of added lines.
	Insertions int `json:"insertions" yaml:"insertions"`
	// Deletions is the number of removed lines.
	Deletions int `json:"deletions" yaml:"deletions"`
}

// Result records the outcome of reconciling a single branch.
type Result struct {
	// Branch is the enumeration row this result belongs to.
	Branch Branch `json:"branch" yaml:"branch"`
	// Kind is the outcome category.
	Kind OutcomeKind `json:"kind" yaml:"kind"`
	// From is the commit the ref pointed at before reconciliation.
	// Set whenever the ref resolved.
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	// To is the commit the ref points at after a fast-forward. In
	// dry-run mode it is the commit the ref would have been moved to.
	To string `json:"to,omitempty" yaml:"to,omitempty"`
	// Target names what the target commit was resolved from (an
	// upstream ref or an explicit commit-ish), for messages.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// Err holds the raw backend error text for failure outcomes.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
	// Diff is an informational change summary for fast-forwards.
	// Nil when not collected.
	Diff *DiffStat `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Report is the ordered outcome of one reconciliation run. Results appear
// in branch enumeration order.
type Report struct {
	// GeneratedAt is the timestamp when the run finished.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	// DryRun reports whether mutations were suppressed.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
	// Results holds one entry per processed branch.
	Results []Result `json:"results" yaml:"results"`
}

// ExitCode folds the per-ref outcomes into a single process exit code by
// taking the highest severity seen. An empty report is a success.
func (r *Report) ExitCode() int {
	code := 0
	for _, res := range r.Results {
		if c := res.Kind.ExitCode(); c > code {
			code = c
		}
	}
	return code
}

// Counts tallies results by outcome kind for the summary line.
func (r *Report) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int, len(r.Results))
	for _, res := range r.Results {
		counts[res.Kind]++
	}
	return counts
}
