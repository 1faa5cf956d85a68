package gitx

import (
	"strconv"
	"strings"

	"github.com/ralismark/git-ffwd/internal/model"
)

// ParseBranchList parses the pipe-delimited output of:
//
//	git for-each-ref refs/heads --format="%(HEAD)|%(refname:short)|%(refname)|%(upstream:short)|%(upstream)"
//
// into branch enumeration rows, preserving line order.
func ParseBranchList(output string) []model.Branch {
	if strings.TrimSpace(output) == "" {
		return nil
	}
	var branches []model.Branch
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 5)
		branch := model.Branch{}
		if len(parts) > 0 {
			branch.IsCheckedOut = strings.TrimSpace(parts[0]) == "*"
		}
		if len(parts) > 1 {
			branch.Name = parts[1]
		}
		if len(parts) > 2 {
			branch.FullName = parts[2]
		}
		if len(parts) > 3 {
			branch.Upstream = parts[3]
		}
		if len(parts) > 4 {
			branch.UpstreamFull = parts[4]
		}
		if branch.Name == "" {
			continue
		}
		branches = append(branches, branch)
	}
	return branches
}

// ParseShortStat parses the output of `git diff --shortstat`, e.g.
//
//	3 files changed, 10 insertions(+), 2 deletions(-)
//
// Any of the three segments may be absent; an empty diff yields zeros.
func ParseShortStat(output string) model.DiffStat {
	var stat model.DiffStat
	output = strings.TrimSpace(output)
	if output == "" {
		return stat
	}
	for _, segment := range strings.Split(output, ",") {
		segment = strings.TrimSpace(segment)
		fields := strings.SplitN(segment, " ", 2)
		if len(fields) != 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(fields[1], "file"):
			stat.FilesChanged = n
		case strings.HasPrefix(fields[1], "insertion"):
			stat.Insertions = n
		case strings.HasPrefix(fields[1], "deletion"):
			stat.Deletions = n
		}
	}
	return stat
}
