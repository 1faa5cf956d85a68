// SPDX-License-Identifier: MIT
package gitffwd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ralismark/git-ffwd/internal/gitx"
	"github.com/ralismark/git-ffwd/internal/model"
	"github.com/ralismark/git-ffwd/internal/tableutil"
	"github.com/ralismark/git-ffwd/internal/termstyle"
	"github.com/spf13/cobra"
)

// writeReport prints one aligned line per processed branch.
func writeReport(cmd *cobra.Command, report *model.Report) {
	w := tableutil.New(cmd.OutOrStdout(), true)
	for _, res := range report.Results {
		if err := tableutil.FprintRow(w, res.Branch.Name, outcomeText(res)); err != nil {
			logOutputWriteFailure(cmd, "report row", err)
		}
	}
	if err := w.Flush(); err != nil {
		logOutputWriteFailure(cmd, "report flush", err)
	}
}

func outcomeText(res model.Result) string {
	switch res.Kind {
	case model.OutcomeFastForwarded:
		text := fmt.Sprintf("fast-forwarded: %s..%s", model.ShortHash(res.From), model.ShortHash(res.To))
		if res.Diff != nil {
			text += " " + formatDiffStat(*res.Diff)
		}
		return termstyle.Colorize(colorOutputEnabled, text, termstyle.Done)
	case model.OutcomeUpToDate:
		return termstyle.Colorize(colorOutputEnabled, "nothing to do", termstyle.Done)
	case model.OutcomeDiverged:
		return termstyle.Colorize(colorOutputEnabled, "skipped: diverged", termstyle.Skip)
	case model.OutcomeDirtyWorktree:
		return termstyle.Colorize(colorOutputEnabled, "skipped: working tree is dirty", termstyle.Skip)
	case model.OutcomeNoUpstream:
		return termstyle.Colorize(colorOutputEnabled, "skipped: no tracking branch", termstyle.Skip)
	case model.OutcomeUpstreamUnresolvable:
		return termstyle.Colorize(colorOutputEnabled, "error: upstream doesn't point to anything", termstyle.Fail)
	case model.OutcomeUpdateFailed:
		return termstyle.Colorize(colorOutputEnabled, "error: update ref failed", termstyle.Fail)
	case model.OutcomeRefMissing:
		return termstyle.Colorize(colorOutputEnabled, "error: ref doesn't exist", termstyle.Fail)
	default:
		return termstyle.Colorize(colorOutputEnabled, "error: unexpected failure", termstyle.Fail)
	}
}

// formatDiffStat renders the informational change summary appended to a
// fast-forward line, for example "(3 files, +10 -2)".
func formatDiffStat(d model.DiffStat) string {
	noun := "files"
	if d.FilesChanged == 1 {
		noun = "file"
	}
	return fmt.Sprintf("(%d %s, +%d -%d)", d.FilesChanged, noun, d.Insertions, d.Deletions)
}

var summaryOrder = []model.OutcomeKind{
	model.OutcomeFastForwarded,
	model.OutcomeUpToDate,
	model.OutcomeDiverged,
	model.OutcomeDirtyWorktree,
	model.OutcomeNoUpstream,
	model.OutcomeUpstreamUnresolvable,
	model.OutcomeUpdateFailed,
	model.OutcomeRefMissing,
	model.OutcomeInternalError,
}

func summaryLabel(kind model.OutcomeKind) string {
	switch kind {
	case model.OutcomeFastForwarded:
		return "fast-forwarded"
	case model.OutcomeUpToDate:
		return "up to date"
	case model.OutcomeDiverged:
		return "diverged"
	case model.OutcomeDirtyWorktree:
		return "dirty"
	case model.OutcomeNoUpstream:
		return "without upstream"
	case model.OutcomeUpstreamUnresolvable:
		return "unresolvable"
	case model.OutcomeUpdateFailed:
		return "failed"
	case model.OutcomeRefMissing:
		return "missing"
	default:
		return "errored"
	}
}

// writeBatchSummary emits the closing one-line tally after an --all run.
func writeBatchSummary(cmd *cobra.Command, report *model.Report) {
	counts := report.Counts()
	parts := make([]string, 0, len(counts))
	for _, kind := range summaryOrder {
		if n := counts[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, summaryLabel(kind)))
		}
	}

	noun := "branches"
	if len(report.Results) == 1 {
		noun = "branch"
	}
	line := fmt.Sprintf("reconciled %d %s", len(report.Results), noun)
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	if report.DryRun {
		line += " (dry run)"
	}
	infof(cmd, "%s", line)
}

// logFailureDetails surfaces raw backend errors for failed refs when the
// user asked for verbose output.
func logFailureDetails(cmd *cobra.Command, report *model.Report) {
	for _, res := range report.Results {
		if res.Err == "" {
			continue
		}
		class := gitx.ClassifyError(errors.New(res.Err))
		debugf(cmd, "%s: %s error: %s", res.Branch.Name, class, res.Err)
	}
}
