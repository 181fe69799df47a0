// Package similarity compares candidates by their skill sets.
package similarity

import (
	"slices"

	"github.com/spigell/resume-sieve/internal/candidate"
	"github.com/spigell/resume-sieve/internal/utils"
)

// DefaultThreshold is the minimum similarity FindSimilar keeps by default.
const DefaultThreshold = 0.3

// Match is a candidate together with its similarity to the target.
type Match struct {
	Candidate candidate.Record
	Score     float64
}

// Similarity returns the Jaccard index of the case-insensitive skill sets of a and b.
// It is 0 when either set is empty.
func Similarity(a, b candidate.Record) float64 {
	setA, setB := skillSet(a.Skills), skillSet(b.Skills)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for skill := range setA {
		if _, ok := setB[skill]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// FindSimilar returns the candidates of pool at least threshold similar to target,
// most similar first. The target itself (by id) is never included and ties keep
// pool order.
func FindSimilar(target candidate.Record, pool []candidate.Record, threshold float64) []Match {
	matches := make([]Match, 0)
	for _, rec := range pool {
		if rec.ID == target.ID {
			continue
		}
		if score := Similarity(target, rec); score >= threshold {
			matches = append(matches, Match{Candidate: rec, Score: score})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	return matches
}

func skillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		if folded := utils.Fold(skill); folded != "" {
			set[folded] = struct{}{}
		}
	}
	return set
}
