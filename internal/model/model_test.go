package model_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ralismark/git-ffwd/internal/model"
)

var _ = Describe("ShortHash", func() {
	It("abbreviates full hashes to seven characters", func() {
		Expect(model.ShortHash("0123456789abcdef0123456789abcdef01234567")).To(Equal("0123456"))
	})

	It("leaves short inputs unchanged", func() {
		Expect(model.ShortHash("abc123")).To(Equal("abc123"))
		Expect(model.ShortHash("")).To(Equal(""))
	})
})

var _ = Describe("OutcomeKind.ExitCode", func() {
	It("treats successes and expected skips as zero", func() {
		Expect(model.OutcomeUpToDate.ExitCode()).To(Equal(0))
		Expect(model.OutcomeFastForwarded.ExitCode()).To(Equal(0))
		Expect(model.OutcomeNoUpstream.ExitCode()).To(Equal(0))
	})

	It("treats policy rejections as one", func() {
		Expect(model.OutcomeDiverged.ExitCode()).To(Equal(1))
		Expect(model.OutcomeDirtyWorktree.ExitCode()).To(Equal(1))
	})

	It("treats errors as two", func() {
		Expect(model.OutcomeUpdateFailed.ExitCode()).To(Equal(2))
		Expect(model.OutcomeRefMissing.ExitCode()).To(Equal(2))
		Expect(model.OutcomeUpstreamUnresolvable.ExitCode()).To(Equal(2))
	})

	It("treats unknown kinds as ten", func() {
		Expect(model.OutcomeInternalError.ExitCode()).To(Equal(10))
		Expect(model.OutcomeKind("bogus").ExitCode()).To(Equal(10))
	})
})

var _ = Describe("Report", func() {
	branch := func(name string) model.Branch {
		return model.Branch{Ref: model.Ref{Name: name, FullName: "refs/heads/" + name}}
	}

	Describe("ExitCode", func() {
		It("returns zero for an empty report", func() {
			report := &model.Report{}
			Expect(report.ExitCode()).To(Equal(0))
		})

		It("folds to the highest severity seen", func() {
			report := &model.Report{Results: []model.Result{
				{Branch: branch("a"), Kind: model.OutcomeFastForwarded},
				{Branch: branch("b"), Kind: model.OutcomeDiverged},
				{Branch: branch("c"), Kind: model.OutcomeNoUpstream},
			}}
			Expect(report.ExitCode()).To(Equal(1))
		})

		It("lets errors dominate policy rejections", func() {
			report := &model.Report{Results: []model.Result{
				{Branch: branch("a"), Kind: model.OutcomeDiverged},
				{Branch: branch("b"), Kind: model.OutcomeUpdateFailed},
			}}
			Expect(report.ExitCode()).To(Equal(2))
		})

		It("lets internal errors dominate everything", func() {
			report := &model.Report{Results: []model.Result{
				{Branch: branch("a"), Kind: model.OutcomeUpdateFailed},
				{Branch: branch("b"), Kind: model.OutcomeInternalError},
			}}
			Expect(report.ExitCode()).To(Equal(10))
		})
	})

	Describe("Counts", func() {
		It("tallies results by kind", func() {
			report := &model.Report{Results: []model.Result{
				{Branch: branch("a"), Kind: model.OutcomeFastForwarded},
				{Branch: branch("b"), Kind: model.OutcomeFastForwarded},
				{Branch: branch("c"), Kind: model.OutcomeNoUpstream},
			}}
			counts := report.Counts()
			Expect(counts).To(HaveKeyWithValue(model.OutcomeFastForwarded, 2))
			Expect(counts).To(HaveKeyWithValue(model.OutcomeNoUpstream, 1))
			Expect(counts).NotTo(HaveKey(model.OutcomeDiverged))
		})
	})
})

var _ = Describe("Report JSON", func() {
	It("round-trips a full report", func() {
		report := model.Report{
			GeneratedAt: time.Now().UTC(),
			DryRun:      true,
			Results: []model.Result{
				{
					Branch: model.Branch{
						Ref:          model.Ref{Name: "main", FullName: "refs/heads/main", IsCheckedOut: true},
						Upstream:     "origin/main",
						UpstreamFull: "refs/remotes/origin/main",
					},
					Kind:   model.OutcomeFastForwarded,
					From:   "1111111111111111111111111111111111111111",
					To:     "2222222222222222222222222222222222222222",
					Target: "origin/main",
					Diff:   &model.DiffStat{FilesChanged: 3, Insertions: 10, Deletions: 2},
				},
			},
		}

		data, err := json.Marshal(report)
		Expect(err).NotTo(HaveOccurred())

		var decoded model.Report
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded.DryRun).To(BeTrue())
		Expect(decoded.Results).To(HaveLen(1))
		Expect(decoded.Results[0].Kind).To(Equal(model.OutcomeFastForwarded))
		Expect(decoded.Results[0].Branch.Upstream).To(Equal("origin/main"))
		Expect(decoded.Results[0].Diff).NotTo(BeNil())
		Expect(decoded.Results[0].Diff.Insertions).To(Equal(10))
	})
})
