package types

// Candidate is a course scored during one retrieval pass. Scores are only
// comparable within the same pipeline run.
type Candidate struct {
	CourseIndex int     `json:"-"`
	CourseID    string  `json:"course_id"`
	Score       float64 `json:"score"`
}

// GapResult is the outcome of comparing learner skills with a role requirement.
type GapResult struct {
	// MissingSkills holds normalized skill keys in requirement order.
	MissingSkills []string `json:"missing_skills"`
	// GapMap maps the requirement's display label of each missing skill to 1.
	GapMap map[string]int `json:"gap_map"`
}

// Citation points at the course field that justifies a recommendation.
type Citation struct {
	SourceID    string  `json:"source_id"`
	MatchedSpan string  `json:"matched_span"`
	Confidence  float64 `json:"confidence"`
}

// PlanItem is one selected course with its justification.
type PlanItem struct {
	CourseID      string     `json:"course_id"`
	Title         string     `json:"title"`
	Why           string     `json:"why"`
	Citations     []Citation `json:"citations"`
	Difficulty    Difficulty `json:"difficulty"`
	CoveredSkills []string   `json:"covered_skills"`
}

// ScheduleEntry places one plan item on the weekly timeline. Weeks are 1-indexed.
type ScheduleEntry struct {
	CourseID   string     `json:"course_id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Weeks      int        `json:"weeks"`
	StartWeek  int        `json:"start_week"`
	EndWeek    int        `json:"end_week"`
}

// Timeline is the total plan duration plus the per-course schedule.
type Timeline struct {
	Weeks    int             `json:"weeks"`
	Schedule []ScheduleEntry `json:"schedule"`
}
