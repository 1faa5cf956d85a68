// Package vcs abstracts the version-control operations needed to
// fast-forward branch refs, with an exec-based git implementation and a
// pure-Go one.
package vcs

import (
	"context"
	"errors"

	"github.com/ralismark/git-ffwd/internal/model"
)

var (
	// ErrRevNotFound marks a commit-ish that does not resolve to a commit.
	ErrRevNotFound = errors.New("revision not found")
	// ErrNoMergeBase marks histories that share no common ancestor.
	ErrNoMergeBase = errors.New("no merge base")
	// ErrStaleRef marks a guarded ref update that lost a race: the ref
	// no longer pointed at the expected old value.
	ErrStaleRef = errors.New("ref changed concurrently")
	// ErrDirtyWorktree marks a worktree-updating operation refused
	// because local modifications were in the way.
	ErrDirtyWorktree = errors.New("working tree is dirty")
)

// Backend defines the VCS operations the reconciler relies on. Every
// method takes the repository directory; implementations hold no
// per-repository state.
type Backend interface {
	Name() string
	// IsRepo reports whether dir is inside a repository.
	IsRepo(ctx context.Context, dir string) (bool, error)
	// ResolveCommit resolves any commit-ish to a full commit hash.
	// Unresolvable revisions return ErrRevNotFound.
	ResolveCommit(ctx context.Context, dir, rev string) (string, error)
	// Branches enumerates local branches with their upstream bindings,
	// in stable name order.
	Branches(ctx context.Context, dir string) ([]model.Branch, error)
	// CurrentBranch returns the short name of the checked-out branch,
	// or "" when HEAD is detached.
	CurrentBranch(ctx context.Context, dir string) (string, error)
	// MergeBase returns the nearest common ancestor of two commits.
	// Unrelated histories return ErrNoMergeBase.
	MergeBase(ctx context.Context, dir, a, b string) (string, error)
	// UpdateRef moves fullRef from oldHash to newHash. The update is
	// rejected with ErrStaleRef when the ref no longer points at
	// oldHash.
	UpdateRef(ctx context.Context, dir, fullRef, newHash, oldHash string) error
	// CheckoutFastForward advances the checked-out branch to hash,
	// including the working tree and index. Local modifications that
	// would be clobbered surface as ErrDirtyWorktree.
	CheckoutFastForward(ctx context.Context, dir, hash string) error
	// Fetch performs a single fetch. An empty remote uses the
	// repository default.
	Fetch(ctx context.Context, dir, remote string) error
	// DiffStat summarizes the change between two commits.
	DiffStat(ctx context.Context, dir, from, to string) (model.DiffStat, error)
}
