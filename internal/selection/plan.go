// Package selection picks the courses of a study plan from the reranked
// candidates, covering missing skills first.
package selection

import (
	"sort"
	"strings"

	"github.com/jonathan/upskill-advisor/internal/skills"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// MaxPlanItems is the maximum number of courses in a plan.
const MaxPlanItems = 3

// maxExtraSkills caps covered_skills for items that close no gap.
const maxExtraSkills = 4

const (
	whyCoversPrefix   = "Covers missing JD skills: "
	whyHighRelevance  = "High overall relevance"
	confidenceMatch   = 1.0
	confidenceGeneric = 0.5
)

// CourseLookup resolves course ids.
type CourseLookup interface {
	Course(id string) (*types.Course, bool)
}

// PreferredLevels returns the order in which difficulty buckets are visited
// for a learner level. Unknown levels use the beginner order.
func PreferredLevels(level types.Difficulty) []types.Difficulty {
	switch types.ParseDifficulty(string(level)) {
	case types.DifficultyIntermediate:
		return []types.Difficulty{types.DifficultyIntermediate, types.DifficultyBeginner, types.DifficultyAdvanced}
	case types.DifficultyAdvanced:
		return []types.Difficulty{types.DifficultyAdvanced, types.DifficultyIntermediate, types.DifficultyBeginner}
	default:
		return []types.Difficulty{types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced}
	}
}

// ChooseThreeOrdered greedily picks up to MaxPlanItems courses. Difficulty
// buckets are visited in PreferredLevels order and, within a bucket, courses
// in rankedIDs order. Each pick claims the missing skills it newly covers, so
// no skill is credited to two items. Ids unknown to the lookup are skipped.
func ChooseThreeOrdered(lookup CourseLookup, rankedIDs []string, missing []string, level types.Difficulty) []types.PlanItem {
	missingSet := make(map[string]bool, len(missing))
	for _, m := range missing {
		missingSet[m] = true
	}

	picked := make([]types.PlanItem, 0, MaxPlanItems)
	seen := make(map[string]bool, len(rankedIDs))
	covered := make(map[string]bool)

	for _, bucket := range PreferredLevels(level) {
		for _, id := range rankedIDs {
			if len(picked) == MaxPlanItems {
				return picked
			}
			if seen[id] {
				continue
			}
			course, ok := lookup.Course(id)
			if !ok || course.Difficulty != bucket {
				continue
			}

			hit := newlyCovered(course, missingSet, covered)
			item := types.PlanItem{
				CourseID:   course.CourseID,
				Title:      course.Title,
				Difficulty: course.Difficulty,
				Citations:  Citations(course, missingSet),
			}
			if len(hit) > 0 {
				item.Why = whyCoversPrefix + strings.Join(hit, ", ")
				item.CoveredSkills = hit
			} else {
				item.Why = whyHighRelevance
				item.CoveredSkills = extraSkills(course, covered)
			}

			picked = append(picked, item)
			seen[id] = true
			for _, h := range hit {
				covered[h] = true
			}
		}
	}
	return picked
}

// newlyCovered returns the sorted normalized skills of course that are
// missing and not yet covered.
func newlyCovered(course *types.Course, missing, covered map[string]bool) []string {
	set := make(map[string]bool)
	for _, s := range course.Skills {
		key := skills.Normalize(s)
		if missing[key] && !covered[key] {
			set[key] = true
		}
	}
	hit := make([]string, 0, len(set))
	for key := range set {
		hit = append(hit, key)
	}
	sort.Strings(hit)
	return hit
}

// extraSkills returns up to maxExtraSkills of the course's own skill labels
// whose normalized form is not yet covered.
func extraSkills(course *types.Course, covered map[string]bool) []string {
	out := make([]string, 0, maxExtraSkills)
	for _, s := range course.Skills {
		if len(out) == maxExtraSkills {
			break
		}
		if !covered[skills.Normalize(s)] {
			out = append(out, s)
		}
	}
	return out
}

// Citations cites every skill or outcome of course whose normalized form is
// missing. When nothing matches, the course title is cited with lower
// confidence, so the result is never empty.
func Citations(course *types.Course, missing map[string]bool) []types.Citation {
	var out []types.Citation
	for _, spans := range [][]string{course.Skills, course.Outcomes} {
		for _, span := range spans {
			if missing[skills.Normalize(span)] {
				out = append(out, types.Citation{
					SourceID:    course.CourseID,
					MatchedSpan: span,
					Confidence:  confidenceMatch,
				})
			}
		}
	}
	if len(out) == 0 {
		out = append(out, types.Citation{
			SourceID:    course.CourseID,
			MatchedSpan: course.Title,
			Confidence:  confidenceGeneric,
		})
	}
	return out
}
