package gitx_test

import (
	"context"
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ralismark/git-ffwd/internal/gitx"
)

var _ = Describe("GitRunner.Run", func() {
	var runner *gitx.GitRunner

	BeforeEach(func() {
		runner = &gitx.GitRunner{}
	})

	It("runs git version successfully", func() {
		out, err := runner.Run(context.Background(), "", "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("git version"))
	})

	It("errors for nonexistent directory", func() {
		_, err := runner.Run(context.Background(), "/nonexistent/path/xyz", "status")
		Expect(err).To(HaveOccurred())
	})

	It("respects context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := runner.Run(ctx, "", "version")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("IsRepo", func() {
	It("returns true when rev-parse finds a git dir", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --git-dir": {Output: ".git"},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("returns false on error", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --git-dir": {Err: errors.New("not a repo")},
		}}
		ok, err := gitx.IsRepo(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ResolveCommit", func() {
	const full = "0123456789abcdef0123456789abcdef01234567"

	It("resolves a commit-ish to its full hash", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --verify --quiet origin/main^{commit}": {Output: full},
		}}
		hash, err := gitx.ResolveCommit(context.Background(), mock, "/repo", "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal(full))
	})

	It("returns ErrRevUnknown for a silent rev-parse failure", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --verify --quiet nope^{commit}": {Err: errors.New("exit status 1")},
		}}
		_, err := gitx.ResolveCommit(context.Background(), mock, "/repo", "nope")
		Expect(err).To(MatchError(gitx.ErrRevUnknown))
	})

	It("keeps harder failures distinct from unknown revisions", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:rev-parse --verify --quiet HEAD^{commit}": {
				Output: "fatal: not a git repository",
				Err:    errors.New("exit status 128"),
			},
		}}
		_, err := gitx.ResolveCommit(context.Background(), mock, "/repo", "HEAD")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, gitx.ErrRevUnknown)).To(BeFalse())
	})
})

var _ = Describe("Branches", func() {
	const format = "--format=%(HEAD)|%(refname:short)|%(refname)|%(upstream:short)|%(upstream)"

	It("parses branches with upstreams in order", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:for-each-ref " + format + " refs/heads": {
				Output: "*|main|refs/heads/main|origin/main|refs/remotes/origin/main\n" +
					" |feature|refs/heads/feature||",
			},
		}}
		branches, err := gitx.Branches(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(HaveLen(2))
		Expect(branches[0].Name).To(Equal("main"))
		Expect(branches[0].IsCheckedOut).To(BeTrue())
		Expect(branches[0].Upstream).To(Equal("origin/main"))
		Expect(branches[1].Name).To(Equal("feature"))
		Expect(branches[1].IsCheckedOut).To(BeFalse())
		Expect(branches[1].HasUpstream()).To(BeFalse())
	})

	It("returns nil for a repo with no branches", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:for-each-ref " + format + " refs/heads": {Output: ""},
		}}
		branches, err := gitx.Branches(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(branches).To(BeNil())
	})

	It("propagates enumeration failures", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:for-each-ref " + format + " refs/heads": {Err: errors.New("boom")},
		}}
		_, err := gitx.Branches(context.Background(), mock, "/repo")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CurrentBranch", func() {
	It("returns the branch name for attached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Output: "main"},
		}}
		name, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("main"))
	})

	It("returns empty for detached HEAD", func() {
		mock := &MockRunner{Responses: map[string]MockResponse{
			"/repo:symbolic-ref --quiet --short HEAD": {Err: errors.New("not symbolic")},
		}}
		name, err := gitx.CurrentBranch(context.Background(), mock, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal(""))
	})
})

var _ = Describe("GitRunner with real git", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "gitx-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tmpDir)).To(Succeed())
	})

	It("detects a real git repo", func() {
		runner := &gitx.GitRunner{}
		ctx := context.Background()

		_, err := runner.Run(ctx, tmpDir, "init")
		Expect(err).NotTo(HaveOccurred())

		ok, err := gitx.IsRepo(ctx, runner, tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("reports unknown revisions in an empty repo", func() {
		runner := &gitx.GitRunner{}
		ctx := context.Background()

		_, err := runner.Run(ctx, tmpDir, "init")
		Expect(err).NotTo(HaveOccurred())

		_, err = gitx.ResolveCommit(ctx, runner, tmpDir, "HEAD")
		Expect(err).To(MatchError(gitx.ErrRevUnknown))
	})
})
