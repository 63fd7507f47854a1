// Package ranking reorders retrieved candidates: a difficulty bias toward the
// learner's level, then an optional relevance oracle.
package ranking

import (
	"math"
	"sort"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// BiasConfig controls how strongly off-level courses are penalized.
type BiasConfig struct {
	Step float64 `json:"step"` // penalty per tier of distance
	Cap  float64 `json:"cap"`  // maximum penalty
}

// DefaultBiasConfig returns step 0.25 and cap 0.60.
func DefaultBiasConfig() BiasConfig {
	return BiasConfig{Step: 0.25, Cap: 0.60}
}

// Penalty returns the fractional penalty for a course of difficulty course
// requested at level target.
func (b BiasConfig) Penalty(course, target types.Difficulty) float64 {
	distance := math.Abs(float64(course.Rank() - target.Rank()))
	return math.Min(b.Cap, b.Step*distance)
}

// BiasByLevel lowers each candidate score by penalty*|score| and re-sorts
// descending, so an off-level course never gains on a matching one whatever
// the sign of its score. The sort is stable and no candidate is removed. The
// input slice is not modified.
func BiasByLevel(cat *catalog.Catalog, candidates []types.Candidate, level types.Difficulty, cfg BiasConfig) []types.Candidate {
	out := make([]types.Candidate, len(candidates))
	for i, c := range candidates {
		course := cat.At(c.CourseIndex)
		c.Score = applyPenalty(c.Score, cfg.Penalty(course.Difficulty, level))
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func applyPenalty(score, penalty float64) float64 {
	if score >= 0 {
		return score * (1 - penalty)
	}
	return score - math.Abs(score)*penalty
}
