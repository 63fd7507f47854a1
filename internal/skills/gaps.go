package skills

import (
	"github.com/jonathan/upskill-advisor/internal/types"
)

// RoleLookup resolves a role name to its requirement document.
type RoleLookup interface {
	Role(name string) (*types.RoleRequirement, bool)
}

// gapMarker is the value stored in the gap map for every missing skill.
const gapMarker = 1

// ComputeGaps returns the skills required by role that are absent from userSkills.
//
// MissingSkills keeps requirement order and holds each normalized key once.
// GapMap is keyed by the label used in the requirement document; when two
// labels normalize to the same key the first one wins. Skills the learner
// already has never appear in either field.
func ComputeGaps(userSkills []string, role *types.RoleRequirement) types.GapResult {
	result := types.GapResult{
		MissingSkills: []string{},
		GapMap:        map[string]int{},
	}
	if role == nil {
		return result
	}

	have := NormalizeSet(userSkills)
	seen := make(map[string]bool, len(role.SkillsRequired))
	for _, req := range role.SkillsRequired {
		key := Normalize(req.Skill)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			continue
		}
		result.MissingSkills = append(result.MissingSkills, key)
		result.GapMap[req.Skill] = gapMarker
	}
	return result
}

// AnalyzeGaps looks up goalRole and computes the gaps against it. The boolean
// is false when no requirement document matches; the result is then empty.
func AnalyzeGaps(lookup RoleLookup, userSkills []string, goalRole string) (types.GapResult, bool) {
	role, ok := lookup.Role(goalRole)
	if !ok {
		return ComputeGaps(userSkills, nil), false
	}
	return ComputeGaps(userSkills, role), true
}
