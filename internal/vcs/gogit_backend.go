package vcs

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage"

	"github.com/ralismark/git-ffwd/internal/model"
	"github.com/ralismark/git-ffwd/internal/sortutil"
)

// GoGitBackend implements Backend in pure Go on top of go-git. It needs
// no git binary on PATH.
type GoGitBackend struct{}

func NewGoGitBackend() *GoGitBackend {
	return &GoGitBackend{}
}

func (g *GoGitBackend) Name() string { return "gogit" }

func (g *GoGitBackend) open(dir string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
}

func (g *GoGitBackend) IsRepo(ctx context.Context, dir string) (bool, error) {
	if _, err := g.open(dir); err != nil {
		return false, nil
	}
	return true, nil
}

func (g *GoGitBackend) ResolveCommit(ctx context.Context, dir, rev string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRevNotFound, rev)
	}
	commit, ok := peelToCommit(repo, *hash)
	if !ok {
		return "", fmt.Errorf("%w: %s does not point to a commit", ErrRevNotFound, rev)
	}
	return commit.String(), nil
}

// peelToCommit follows annotated tag chains until a commit is reached.
// Lightweight tags and branches point at a commit directly.
func peelToCommit(repo *gogit.Repository, hash plumbing.Hash) (plumbing.Hash, bool) {
	if _, err := repo.CommitObject(hash); err == nil {
		return hash, true
	}
	cur := hash
	for range 8 {
		tag, err := repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}

func (g *GoGitBackend) Branches(ctx context.Context, dir string) ([]model.Branch, error) {
	repo, err := g.open(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var head plumbing.ReferenceName
	if ref, err := repo.Reference(plumbing.HEAD, false); err == nil && ref.Type() == plumbing.SymbolicReference {
		head = ref.Target()
	}
	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()

	var branches []model.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		row := model.Branch{Ref: model.Ref{
			Name:         name.Short(),
			FullName:     name.String(),
			IsCheckedOut: name == head,
		}}
		if bc, ok := cfg.Branches[name.Short()]; ok && bc.Merge != "" {
			merge := bc.Merge
			switch bc.Remote {
			case "", ".":
				// Locally tracked branch.
				row.Upstream = merge.Short()
				row.UpstreamFull = merge.String()
			default:
				row.Upstream = bc.Remote + "/" + merge.Short()
				row.UpstreamFull = "refs/remotes/" + bc.Remote + "/" + merge.Short()
			}
		}
		branches = append(branches, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	// go-git iterates in storage order; sort to match for-each-ref.
	sortutil.SortBranches(branches)
	return branches, nil
}

func (g *GoGitBackend) CurrentBranch(ctx context.Context, dir string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", nil
	}
	if ref.Type() != plumbing.SymbolicReference || !ref.Target().IsBranch() {
		return "", nil
	}
	return ref.Target().Short(), nil
}

func (g *GoGitBackend) MergeBase(ctx context.Context, dir, a, b string) (string, error) {
	repo, err := g.open(dir)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	ca, err := repo.CommitObject(plumbing.NewHash(a))
	if err != nil {
		return "", fmt.Errorf("load commit %s: %w", a, err)
	}
	cb, err := repo.CommitObject(plumbing.NewHash(b))
	if err != nil {
		return "", fmt.Errorf("load commit %s: %w", b, err)
	}
	bases, err := ca.MergeBase(cb)
	if err != nil {
		return "", fmt.Errorf("merge base: %w", err)
	}
	if len(bases) == 0 {
		return "", fmt.Errorf("%w: %s and %s", ErrNoMergeBase, a, b)
	}
	return bases[0].Hash.String(), nil
}

func (g *GoGitBackend) UpdateRef(ctx context.Context, dir, fullRef, newHash, oldHash string) error {
	repo, err := g.open(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	name := plumbing.ReferenceName(fullRef)
	newRef := plumbing.NewHashReference(name, plumbing.NewHash(newHash))
	oldRef := plumbing.NewHashReference(name, plumbing.NewHash(oldHash))
	if err := repo.Storer.CheckAndSetReference(newRef, oldRef); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return fmt.Errorf("%w: %v", ErrStaleRef, err)
		}
		return fmt.Errorf("update ref %s: %w", fullRef, err)
	}
	return nil
}

func (g *GoGitBackend) CheckoutFastForward(ctx context.Context, dir, hash string) error {
	repo, err := g.open(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	err = wt.Reset(&gogit.ResetOptions{
		Commit: plumbing.NewHash(hash),
		Mode:   gogit.MergeReset,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrUnstagedChanges) {
			return fmt.Errorf("%w: %v", ErrDirtyWorktree, err)
		}
		return fmt.Errorf("fast-forward checkout: %w", err)
	}
	return nil
}

func (g *GoGitBackend) Fetch(ctx context.Context, dir, remote string) error {
	repo, err := g.open(dir)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	err = repo.FetchContext(ctx, &gogit.FetchOptions{RemoteName: remote})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

func (g *GoGitBackend) DiffStat(ctx context.Context, dir, from, to string) (model.DiffStat, error) {
	repo, err := g.open(dir)
	if err != nil {
		return model.DiffStat{}, fmt.Errorf("open repository: %w", err)
	}
	fromCommit, err := repo.CommitObject(plumbing.NewHash(from))
	if err != nil {
		return model.DiffStat{}, fmt.Errorf("load commit %s: %w", from, err)
	}
	toCommit, err := repo.CommitObject(plumbing.NewHash(to))
	if err != nil {
		return model.DiffStat{}, fmt.Errorf("load commit %s: %w", to, err)
	}
	patch, err := fromCommit.PatchContext(ctx, toCommit)
	if err != nil {
		return model.DiffStat{}, fmt.Errorf("diff: %w", err)
	}
	var stat model.DiffStat
	for _, fs := range patch.Stats() {
		stat.FilesChanged++
		stat.Insertions += fs.Addition
		stat.Deletions += fs.Deletion
	}
	return stat, nil
}
