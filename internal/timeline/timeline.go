// Package timeline lays selected courses out on a week-by-week schedule.
package timeline

import "github.com/jonathan/upskill-advisor/internal/types"

// DefaultWeeks is used for a plan item whose course is not in the catalog.
const DefaultWeeks = 3

// CourseLookup resolves course ids.
type CourseLookup interface {
	Course(id string) (*types.Course, bool)
}

func weeksOf(lookup CourseLookup, courseID string) int {
	if c, ok := lookup.Course(courseID); ok && c.DurationWeeks > 0 {
		return c.DurationWeeks
	}
	return DefaultWeeks
}

// BuildStructuredTimeline schedules items back to back in plan order,
// starting at week 1. Each entry spans the course's duration_weeks.
func BuildStructuredTimeline(lookup CourseLookup, items []types.PlanItem) []types.ScheduleEntry {
	schedule := make([]types.ScheduleEntry, 0, len(items))
	week := 1
	for _, item := range items {
		weeks := weeksOf(lookup, item.CourseID)
		title := item.Title
		if title == "" {
			title = item.CourseID
		}
		difficulty := item.Difficulty
		if difficulty == "" {
			difficulty = types.DifficultyIntermediate
		}
		schedule = append(schedule, types.ScheduleEntry{
			CourseID:   item.CourseID,
			Title:      title,
			Difficulty: difficulty,
			Weeks:      weeks,
			StartWeek:  week,
			EndWeek:    week + weeks - 1,
		})
		week += weeks
	}
	return schedule
}

// EstimateTimeline returns the total number of weeks of items.
func EstimateTimeline(lookup CourseLookup, items []types.PlanItem) int {
	total := 0
	for _, item := range items {
		total += weeksOf(lookup, item.CourseID)
	}
	return total
}

// Build returns the full timeline of items.
func Build(lookup CourseLookup, items []types.PlanItem) types.Timeline {
	return types.Timeline{
		Weeks:    EstimateTimeline(lookup, items),
		Schedule: BuildStructuredTimeline(lookup, items),
	}
}
