package vcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ralismark/git-ffwd/internal/gitx"
	"github.com/ralismark/git-ffwd/internal/model"
)

// GitBackend implements Backend using the git CLI via gitx.
type GitBackend struct {
	Runner gitx.Runner
}

func NewGitBackend(runner gitx.Runner) *GitBackend {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitBackend{Runner: runner}
}

func (g *GitBackend) Name() string { return "git" }

func (g *GitBackend) IsRepo(ctx context.Context, dir string) (bool, error) {
	return gitx.IsRepo(ctx, g.Runner, dir)
}

func (g *GitBackend) ResolveCommit(ctx context.Context, dir, rev string) (string, error) {
	hash, err := gitx.ResolveCommit(ctx, g.Runner, dir, rev)
	if err != nil {
		if errors.Is(err, gitx.ErrRevUnknown) {
			return "", fmt.Errorf("%w: %s", ErrRevNotFound, rev)
		}
		return "", err
	}
	return hash, nil
}

func (g *GitBackend) Branches(ctx context.Context, dir string) ([]model.Branch, error) {
	return gitx.Branches(ctx, g.Runner, dir)
}

func (g *GitBackend) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return gitx.CurrentBranch(ctx, g.Runner, dir)
}

func (g *GitBackend) MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	base, err := gitx.MergeBase(ctx, g.Runner, dir, a, b)
	if err != nil {
		if errors.Is(err, gitx.ErrNoCommonAncestor) {
			return "", fmt.Errorf("%w: %s and %s", ErrNoMergeBase, a, b)
		}
		return "", err
	}
	return base, nil
}

func (g *GitBackend) UpdateRef(ctx context.Context, dir, fullRef, newHash, oldHash string) error {
	err := gitx.UpdateRef(ctx, g.Runner, dir, fullRef, newHash, oldHash)
	if err == nil {
		return nil
	}
	// git reports a lost ref race as a lock failure naming the value
	// it found instead.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "cannot lock ref") || strings.Contains(msg, "but expected") {
		return fmt.Errorf("%w: %v", ErrStaleRef, err)
	}
	return err
}

func (g *GitBackend) CheckoutFastForward(ctx context.Context, dir, hash string) error {
	err := gitx.MergeFastForward(ctx, g.Runner, dir, hash)
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "would be overwritten") || strings.Contains(msg, "unmerged") || strings.Contains(msg, "local changes") {
		return fmt.Errorf("%w: %v", ErrDirtyWorktree, err)
	}
	return err
}

func (g *GitBackend) Fetch(ctx context.Context, dir, remote string) error {
	return gitx.Fetch(ctx, g.Runner, dir, remote)
}

func (g *GitBackend) DiffStat(ctx context.Context, dir, from, to string) (model.DiffStat, error) {
	return gitx.DiffStat(ctx, g.Runner, dir, from, to)
}
