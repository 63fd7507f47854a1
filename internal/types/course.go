// Package types provides type definitions for structured data used throughout the upskill advisor.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Difficulty is the tier of a course or the level a learner declares.
type Difficulty string

// Difficulty tiers, ordered from easiest to hardest.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Difficulties lists all known tiers in ascending order.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// ParseDifficulty lowercases and trims s. Unknown values are returned as-is
// so callers can decide how to treat them.
func ParseDifficulty(s string) Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Rank orders tiers for level-distance computations: beginner 0,
// intermediate 1, advanced 2. Unknown values rank as intermediate.
func (d Difficulty) Rank() int {
	switch ParseDifficulty(string(d)) {
	case DifficultyBeginner:
		return 0
	case DifficultyAdvanced:
		return 2
	default:
		return 1
	}
}

// Course is a single catalog entry. Courses are immutable once the catalog is loaded.
type Course struct {
	CourseID      string     `json:"course_id"`
	Title         string     `json:"title"`
	Skills        []string   `json:"skills"`
	Difficulty    Difficulty `json:"difficulty"`
	DurationWeeks int        `json:"duration_weeks"`
	Prerequisites []string   `json:"prerequisites"`
	Outcomes      []string   `json:"outcomes"`
}

// RequiredSkill is one (skill, minimum level) pair of a role requirement.
type RequiredSkill struct {
	Skill string `json:"skill"`
	Level int    `json:"level"`
}

// RoleRequirement describes the skills needed for a target job role (a "JD").
type RoleRequirement struct {
	Role           string          `json:"role"`
	SkillsRequired []RequiredSkill `json:"skills_required"`
	NiceToHave     []string        `json:"nice_to_have,omitempty"`
}
