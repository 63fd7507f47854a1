package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/upskill-advisor/internal/types"
)

type fakeRoles map[string]*types.RoleRequirement

func (f fakeRoles) Role(name string) (*types.RoleRequirement, bool) {
	r, ok := f[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

func sdetRole() *types.RoleRequirement {
	return &types.RoleRequirement{
		Role: "SDET",
		SkillsRequired: []types.RequiredSkill{
			{Skill: "python", Level: 1},
			{Skill: "manual testing", Level: 1},
			{Skill: "test automation", Level: 1},
		},
	}
}

func TestComputeGaps_SDETExample(t *testing.T) {
	got := ComputeGaps([]string{"python", "manual testing"}, sdetRole())

	assert.Equal(t, []string{"testautomation"}, got.MissingSkills)
	assert.Equal(t, map[string]int{"test automation": 1}, got.GapMap)
}

func TestComputeGaps_NilRole(t *testing.T) {
	got := ComputeGaps([]string{"python"}, nil)

	assert.Empty(t, got.MissingSkills)
	assert.NotNil(t, got.GapMap)
	assert.Empty(t, got.GapMap)
}

func TestComputeGaps_UsesRequirementCasing(t *testing.T) {
	role := &types.RoleRequirement{
		Role: "Backend",
		SkillsRequired: []types.RequiredSkill{
			{Skill: "Node.js", Level: 2},
			{Skill: "PostgreSQL", Level: 1},
		},
	}

	got := ComputeGaps([]string{"NODEJS"}, role)

	assert.Equal(t, []string{"postgresql"}, got.MissingSkills)
	assert.Equal(t, map[string]int{"PostgreSQL": 1}, got.GapMap)
}

func TestComputeGaps_FirstLabelWinsForDuplicates(t *testing.T) {
	role := &types.RoleRequirement{
		Role: "Frontend",
		SkillsRequired: []types.RequiredSkill{
			{Skill: "React.js", Level: 1},
			{Skill: "reactjs", Level: 2},
			{Skill: "CSS", Level: 1},
		},
	}

	got := ComputeGaps(nil, role)

	assert.Equal(t, []string{"reactjs", "css"}, got.MissingSkills)
	assert.Equal(t, map[string]int{"React.js": 1, "CSS": 1}, got.GapMap)
}

func TestComputeGaps_NeverReportsDeclaredSkills(t *testing.T) {
	role := sdetRole()
	declared := []string{"Python ", "TEST-AUTOMATION", "Manual Testing"}

	got := ComputeGaps(declared, role)

	assert.Empty(t, got.MissingSkills)
	assert.Empty(t, got.GapMap)
}

func TestAnalyzeGaps(t *testing.T) {
	roles := fakeRoles{"sdet": sdetRole()}

	t.Run("known role", func(t *testing.T) {
		got, found := AnalyzeGaps(roles, []string{"python"}, "sdet")
		assert.True(t, found)
		assert.Equal(t, []string{"manualtesting", "testautomation"}, got.MissingSkills)
	})

	t.Run("unknown role", func(t *testing.T) {
		got, found := AnalyzeGaps(roles, []string{"python"}, "Chief Wizard")
		assert.False(t, found)
		assert.Empty(t, got.MissingSkills)
		assert.Empty(t, got.GapMap)
	})
}
