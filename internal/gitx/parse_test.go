// SPDX-License-Identifier: MIT
package gitx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ralismark/git-ffwd/internal/gitx"
)

var _ = Describe("ParseBranchList", func() {
	It("returns nil for empty output", func() {
		Expect(gitx.ParseBranchList("")).To(BeNil())
		Expect(gitx.ParseBranchList("\n\n")).To(BeNil())
	})

	It("parses a fully populated line", func() {
		out := "*|main|refs/heads/main|origin/main|refs/remotes/origin/main"
		branches := gitx.ParseBranchList(out)
		Expect(branches).To(HaveLen(1))
		b := branches[0]
		Expect(b.IsCheckedOut).To(BeTrue())
		Expect(b.Name).To(Equal("main"))
		Expect(b.FullName).To(Equal("refs/heads/main"))
		Expect(b.Upstream).To(Equal("origin/main"))
		Expect(b.UpstreamFull).To(Equal("refs/remotes/origin/main"))
	})

	It("parses branches without upstream bindings", func() {
		out := " |feature|refs/heads/feature||"
		branches := gitx.ParseBranchList(out)
		Expect(branches).To(HaveLen(1))
		Expect(branches[0].IsCheckedOut).To(BeFalse())
		Expect(branches[0].Upstream).To(Equal(""))
		Expect(branches[0].HasUpstream()).To(BeFalse())
	})

	It("preserves line order", func() {
		out := " |alpha|refs/heads/alpha||\n" +
			"*|beta|refs/heads/beta|origin/beta|refs/remotes/origin/beta\n" +
			" |gamma|refs/heads/gamma||"
		branches := gitx.ParseBranchList(out)
		Expect(branches).To(HaveLen(3))
		Expect(branches[0].Name).To(Equal("alpha"))
		Expect(branches[1].Name).To(Equal("beta"))
		Expect(branches[2].Name).To(Equal("gamma"))
	})

	It("skips blank and nameless lines", func() {
		out := " |one|refs/heads/one||\n\n |\n"
		branches := gitx.ParseBranchList(out)
		Expect(branches).To(HaveLen(1))
		Expect(branches[0].Name).To(Equal("one"))
	})
})

var _ = Describe("ParseShortStat", func() {
	It("returns zeros for an empty diff", func() {
		stat := gitx.ParseShortStat("")
		Expect(stat.FilesChanged).To(Equal(0))
		Expect(stat.Insertions).To(Equal(0))
		Expect(stat.Deletions).To(Equal(0))
	})

	It("parses all three segments", func() {
		stat := gitx.ParseShortStat(" 3 files changed, 10 insertions(+), 2 deletions(-)")
		Expect(stat.FilesChanged).To(Equal(3))
		Expect(stat.Insertions).To(Equal(10))
		Expect(stat.Deletions).To(Equal(2))
	})

	It("parses singular forms", func() {
		stat := gitx.ParseShortStat(" 1 file changed, 1 insertion(+), 1 deletion(-)")
		Expect(stat.FilesChanged).To(Equal(1))
		Expect(stat.Insertions).To(Equal(1))
		Expect(stat.Deletions).To(Equal(1))
	})

	It("handles missing segments", func() {
		stat := gitx.ParseShortStat(" 2 files changed, 5 deletions(-)")
		Expect(stat.FilesChanged).To(Equal(2))
		Expect(stat.Insertions).To(Equal(0))
		Expect(stat.Deletions).To(Equal(5))
	})

	It("ignores unparseable segments", func() {
		stat := gitx.ParseShortStat("weird output, 4 insertions(+)")
		Expect(stat.FilesChanged).To(Equal(0))
		Expect(stat.Insertions).To(Equal(4))
	})
})
