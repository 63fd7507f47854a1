package types

import (
	"github.com/go-playground/validator/v10"
)

// AdviseRequest is the learner profile submitted for a study plan.
type AdviseRequest struct {
	Skills   []string       `json:"skills" validate:"max=100,dive,max=200"`
	Level    Difficulty     `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	GoalRole string         `json:"goal_role" validate:"required,min=1,max=200"`
	Prefs    map[string]any `json:"prefs,omitempty"`
}

// Validate validates the AdviseRequest using the validator.
func (r *AdviseRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RetrievalUsage reports how many courses flowed through retrieval and reranking.
type RetrievalUsage struct {
	Candidates int `json:"candidates"`
	Reranked   int `json:"reranked"`
}

// ModelUsage names the models behind the optional backends.
type ModelUsage struct {
	Embed    string `json:"embed"`
	Reranker string `json:"reranker"`
}

// Usage describes how a plan was produced.
type Usage struct {
	Retrieval RetrievalUsage `json:"retrieval"`
	Models    ModelUsage     `json:"models"`
	JDFound   bool           `json:"jd_found"`
	Degraded  []string       `json:"degraded"`
}

// AdviseResponse is the full study plan returned to the learner.
type AdviseResponse struct {
	Plan      []PlanItem     `json:"plan"`
	GapMap    map[string]int `json:"gap_map"`
	Timeline  Timeline       `json:"timeline"`
	Notes     string         `json:"notes"`
	Usage     Usage          `json:"usage"`
	LatencyMS int64          `json:"latency_ms,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
}
