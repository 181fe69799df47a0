package filtering

import (
	"slices"
	"strings"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/utils"
)

type SortKey string

const (
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
	SortExperience SortKey = "experience"
	SortScore      SortKey = "score"
	SortRecent     SortKey = "recent"
)

// SortKeys lists the supported orders.
var SortKeys = []SortKey{SortRecent, SortScore, SortExperience, SortNameAsc, SortNameDesc}

var comparators = map[SortKey]func(a, b candidate.Record) int{
	SortNameAsc: func(a, b candidate.Record) int {
		return strings.Compare(utils.Fold(a.FullName), utils.Fold(b.FullName))
	},
	SortNameDesc: func(a, b candidate.Record) int {
		return strings.Compare(utils.Fold(b.FullName), utils.Fold(a.FullName))
	},
	SortExperience: func(a, b candidate.Record) int {
		return compareDesc(a.YearsOfExperience, b.YearsOfExperience)
	},
	SortScore: func(a, b candidate.Record) int {
		return compareDesc(a.Score, b.Score)
	},
	SortRecent: func(a, b candidate.Record) int {
		return b.ProcessedAt.Compare(a.ProcessedAt)
	},
}

// ValidSortKey reports whether key names a supported order.
func ValidSortKey(key SortKey) bool {
	_, ok := comparators[key]
	return ok
}

// Sort returns a stably sorted copy of pool. Unknown keys return the copy unchanged.
func Sort(pool []candidate.Record, key SortKey) []candidate.Record {
	result := append(make([]candidate.Record, 0, len(pool)), pool...)
	if cmp, ok := comparators[key]; ok {
		slices.SortStableFunc(result, cmp)
	}
	return result
}

func compareDesc[T int | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
