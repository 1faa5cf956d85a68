// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ralismark/git-ffwd/internal/model"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// ErrRevUnknown marks a revision that does not resolve to a commit.
var ErrRevUnknown = errors.New("git unknown revision")

// ErrNoCommonAncestor marks merge-base queries over unrelated histories.
var ErrNoCommonAncestor = errors.New("git no common ancestor")

// IsRepo checks whether the given path is inside a git repository,
// bare repositories included.
func IsRepo(ctx context.Context, r Runner, dir string) (bool, error) {
	_, err := r.Run(ctx, dir, "rev-parse", "--git-dir")
	if err != nil {
		return false, nil
	}
	return true, nil
}

// ResolveCommit resolves any commit-ish to its full commit hash.
// Revisions that do not name a commit return ErrRevUnknown.
func ResolveCommit(ctx context.Context, r Runner, dir, rev string) (string, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		// --quiet suppresses output for unknown revisions; anything
		// printed means a harder failure than a bad name.
		if strings.TrimSpace(out) == "" {
			return "", fmt.Errorf("%w: %s", ErrRevUnknown, rev)
		}
		return "", fmt.Errorf("git rev-parse %s: %w: %s", rev, err, out)
	}
	return strings.TrimSpace(out), nil
}

// Branches lists local branches with their upstream bindings, in
// for-each-ref order.
func Branches(ctx context.Context, r Runner, dir string) ([]model.Branch, error) {
	out, err := r.Run(ctx, dir, "for-each-ref",
		"--format=%(HEAD)|%(refname:short)|%(refname)|%(upstream:short)|%(upstream)",
		"refs/heads")
	if err != nil {
		return nil, fmt.Errorf("git for-each-ref: %w: %s", err, out)
	}
	return ParseBranchList(out), nil
}

// CurrentBranch returns the short name of the branch HEAD points at, or
// "" when HEAD is detached or unborn.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// MergeBase returns the nearest common ancestor of two commits.
// Unrelated histories return ErrNoCommonAncestor.
func MergeBase(ctx context.Context, r Runner, dir, a, b string) (string, error) {
	out, err := r.Run(ctx, dir, "merge-base", a, b)
	if err != nil {
		// Exit status 1 with no output means the histories share
		// no ancestor; anything else is a real failure.
		if strings.TrimSpace(out) == "" {
			return "", fmt.Errorf("%w: %s and %s", ErrNoCommonAncestor, a, b)
		}
		return "", fmt.Errorf("git merge-base: %w: %s", err, out)
	}
	return strings.TrimSpace(out), nil
}

// UpdateRef moves fullRef to newHash, guarded by oldHash: git refuses
// the update when the ref no longer points at oldHash.
func UpdateRef(ctx context.Context, r Runner, dir, fullRef, newHash, oldHash string) error {
	out, err := r.Run(ctx, dir, "update-ref", fullRef, newHash, oldHash)
	if err != nil {
		return fmt.Errorf("git update-ref %s: %w: %s", fullRef, err, out)
	}
	return nil
}

// MergeFastForward advances the checked-out branch to hash, updating the
// working tree and index. It refuses anything that is not a pure
// fast-forward.
func MergeFastForward(ctx context.Context, r Runner, dir, hash string) error {
	out, err := r.Run(ctx, dir, "merge", "--ff-only", "--quiet", hash)
	if err != nil {
		return fmt.Errorf("git merge --ff-only: %w: %s", err, out)
	}
	return nil
}

// Fetch runs a single fetch with submodule recursion disabled. An empty
// remote lets git pick its configured default.
func Fetch(ctx context.Context, r Runner, dir, remote string) error {
	args := []string{"-c", "fetch.recurseSubmodules=false", "fetch", "--quiet"}
	if remote != "" {
		args = append(args, remote)
	}
	out, err := r.Run(ctx, dir, args...)
	if err != nil {
		return fmt.Errorf("git fetch: %w: %s", err, out)
	}
	return nil
}

// DiffStat summarizes the change between two commits.
func DiffStat(ctx context.Context, r Runner, dir, from, to string) (model.DiffStat, error) {
	out, err := r.Run(ctx, dir, "diff", "--shortstat", from, to)
	if err != nil {
		return model.DiffStat{}, fmt.Errorf("git diff --shortstat: %w: %s", err, out)
	}
	return ParseShortStat(out), nil
}
