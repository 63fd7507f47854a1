package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdviseRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     AdviseRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req:  AdviseRequest{Skills: []string{"python"}, Level: DifficultyBeginner, GoalRole: "SDET"},
		},
		{
			name: "empty skills are allowed",
			req:  AdviseRequest{Skills: []string{}, Level: DifficultyAdvanced, GoalRole: "DevOps Engineer"},
		},
		{
			name:    "missing level",
			req:     AdviseRequest{Skills: []string{"python"}, GoalRole: "SDET"},
			wantErr: true,
		},
		{
			name:    "unknown level",
			req:     AdviseRequest{Skills: []string{"python"}, Level: "expert", GoalRole: "SDET"},
			wantErr: true,
		},
		{
			name:    "missing goal role",
			req:     AdviseRequest{Skills: []string{"python"}, Level: DifficultyBeginner},
			wantErr: true,
		},
		{
			name:    "skill label too long",
			req:     AdviseRequest{Skills: []string{strings.Repeat("x", 201)}, Level: DifficultyBeginner, GoalRole: "SDET"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAdviseResponse_JSONShape(t *testing.T) {
	resp := AdviseResponse{
		Plan:     []PlanItem{},
		GapMap:   map[string]int{},
		Timeline: Timeline{Schedule: []ScheduleEntry{}},
		Usage:    Usage{Degraded: []string{}},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"plan":[]`)
	assert.Contains(t, s, `"gap_map":{}`)
	assert.Contains(t, s, `"retrieval":{"candidates":0,"reranked":0}`)
	assert.Contains(t, s, `"degraded":[]`)
	assert.NotContains(t, s, "run_id")
	assert.NotContains(t, s, "latency_ms")
}
