package sortutil

import (
	"sort"

	"github.com/ralismark/git-ffwd/internal/model"
)

// SortBranches orders a branch enumeration by fully qualified ref name,
// matching the byte ordering `git for-each-ref` produces.
func SortBranches(branches []model.Branch) {
	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].FullName < branches[j].FullName
	})
}
