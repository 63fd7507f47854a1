package catalog

import (
	"fmt"
	"strings"

	"github.com/jonathan/upskill-advisor/internal/types"
)

// Catalog is the read-only set of courses and role requirements for the
// lifetime of the process. It is built once and safe for concurrent reads.
type Catalog struct {
	courses []types.Course
	byID    map[string]int
	roles   []types.RoleRequirement
	byRole  map[string]int
}

// New builds a catalog from already-decoded records. Course ids and role
// names must be unique; difficulty is normalized to lowercase and must be one
// of the known tiers; durations must be positive. Empty inputs are allowed.
func New(courses []types.Course, roles []types.RoleRequirement) (*Catalog, error) {
	c := &Catalog{
		courses: make([]types.Course, 0, len(courses)),
		byID:    make(map[string]int, len(courses)),
		roles:   make([]types.RoleRequirement, 0, len(roles)),
		byRole:  make(map[string]int, len(roles)),
	}

	for _, course := range courses {
		if course.CourseID == "" {
			return nil, &Error{Message: fmt.Sprintf("course %q has an empty course_id", course.Title)}
		}
		if _, dup := c.byID[course.CourseID]; dup {
			return nil, &Error{Message: fmt.Sprintf("duplicate course_id %q", course.CourseID)}
		}
		course.Difficulty = types.ParseDifficulty(string(course.Difficulty))
		if !course.Difficulty.Valid() {
			return nil, &Error{Message: fmt.Sprintf("course %q has unknown difficulty %q", course.CourseID, course.Difficulty)}
		}
		if course.DurationWeeks <= 0 {
			return nil, &Error{Message: fmt.Sprintf("course %q has non-positive duration_weeks %d", course.CourseID, course.DurationWeeks)}
		}
		course.Skills = cloneStrings(course.Skills)
		course.Outcomes = cloneStrings(course.Outcomes)
		course.Prerequisites = cloneStrings(course.Prerequisites)

		c.byID[course.CourseID] = len(c.courses)
		c.courses = append(c.courses, course)
	}

	for _, role := range roles {
		key := roleKey(role.Role)
		if key == "" {
			return nil, &Error{Message: "role requirement with empty role name"}
		}
		if _, dup := c.byRole[key]; dup {
			return nil, &Error{Message: fmt.Sprintf("duplicate role %q", role.Role)}
		}
		role.SkillsRequired = append([]types.RequiredSkill(nil), role.SkillsRequired...)
		role.NiceToHave = cloneStrings(role.NiceToHave)

		c.byRole[key] = len(c.roles)
		c.roles = append(c.roles, role)
	}

	return c, nil
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// Courses returns the courses in insertion order. Callers must not modify them.
func (c *Catalog) Courses() []types.Course {
	return c.courses
}

// At returns the course at catalog index i.
func (c *Catalog) At(i int) *types.Course {
	return &c.courses[i]
}

// Course looks up a course by id.
func (c *Catalog) Course(id string) (*types.Course, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.courses[i], true
}

// IndexOf returns the catalog index of a course id.
func (c *Catalog) IndexOf(id string) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// CourseIDs returns all course ids in insertion order.
func (c *Catalog) CourseIDs() []string {
	ids := make([]string, len(c.courses))
	for i := range c.courses {
		ids[i] = c.courses[i].CourseID
	}
	return ids
}

// Role finds the requirement document for a role name. Matching is exact
// after trimming and lowercasing; there is no fuzzy fallback.
func (c *Catalog) Role(name string) (*types.RoleRequirement, bool) {
	i, ok := c.byRole[roleKey(name)]
	if !ok {
		return nil, false
	}
	return &c.roles[i], true
}

// Roles returns the role names in insertion order.
func (c *Catalog) Roles() []string {
	names := make([]string, len(c.roles))
	for i := range c.roles {
		names[i] = c.roles[i].Role
	}
	return names
}

func roleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
