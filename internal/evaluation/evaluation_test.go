package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]types.Course{
		{CourseID: "py-101", Title: "Python", Skills: []string{"Python", "scripting"}, Difficulty: "beginner", DurationWeeks: 4},
		{CourseID: "qa-150", Title: "Automation", Skills: []string{"test automation", "python"}, Difficulty: "beginner", DurationWeeks: 4},
		{CourseID: "ci-200", Title: "CI", Skills: []string{"ci/cd"}, Difficulty: "intermediate", DurationWeeks: 3},
		{CourseID: "empty", Title: "Nothing", Skills: []string{}, Difficulty: "beginner", DurationWeeks: 1},
	}, []types.RoleRequirement{
		{Role: "SDET", SkillsRequired: []types.RequiredSkill{
			{Skill: "python", Level: 2},
			{Skill: "test automation", Level: 2},
			{Skill: "ci/cd", Level: 1},
			{Skill: "api testing", Level: 1},
		}},
		{Role: "Empty Role"},
	})
	require.NoError(t, err)
	return cat
}

// scriptedTarget returns the plan for every call and fails the calls whose
// 0-based index is listed in failOn.
type scriptedTarget struct {
	plan   []string
	failOn map[int]bool
	calls  int
}

func (s *scriptedTarget) Advise(context.Context, *types.AdviseRequest) (*types.AdviseResponse, error) {
	i := s.calls
	s.calls++
	if s.failOn[i] {
		return nil, errors.New("backend unavailable")
	}
	resp := &types.AdviseResponse{Plan: []types.PlanItem{}}
	for _, id := range s.plan {
		resp.Plan = append(resp.Plan, types.PlanItem{CourseID: id})
	}
	return resp, nil
}

func sdetPersona() Persona {
	return Persona{
		Name:    "sdet",
		Profile: types.AdviseRequest{Skills: []string{"python"}, Level: types.DifficultyBeginner, GoalRole: "SDET"},
	}
}

func TestP95(t *testing.T) {
	ms := func(v ...int) []time.Duration {
		out := make([]time.Duration, len(v))
		for i, n := range v {
			out[i] = time.Duration(n) * time.Millisecond
		}
		return out
	}

	tests := []struct {
		name string
		in   []time.Duration
		want time.Duration
	}{
		{"empty", nil, 0},
		{"single", ms(40), 40 * time.Millisecond},
		{"five samples picks the max", ms(30, 10, 50, 20, 40), 50 * time.Millisecond},
		{"twenty one samples picks index 19", ms(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21), 20 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, P95(tt.in))
		})
	}
}

func TestP95_DoesNotReorderInput(t *testing.T) {
	in := []time.Duration{3, 1, 2}
	P95(in)
	assert.Equal(t, []time.Duration{3, 1, 2}, in)
}

func TestCoverage(t *testing.T) {
	cat := testCatalog(t)

	pct, ok := Coverage(cat, []string{"py-101", "qa-150", "ci-200"}, "sdet")
	require.True(t, ok)
	assert.InDelta(t, 75.0, pct, 1e-9)

	pct, ok = Coverage(cat, []string{"py-101"}, "SDET")
	require.True(t, ok)
	assert.InDelta(t, 25.0, pct, 1e-9)

	_, ok = Coverage(cat, []string{"py-101"}, "Generative AI Engineer")
	assert.False(t, ok)

	_, ok = Coverage(cat, []string{"py-101"}, "Empty Role")
	assert.False(t, ok)
}

func TestDiversity(t *testing.T) {
	cat := testCatalog(t)

	// {python, scripting} vs {test automation, python}: 1 shared of 3.
	assert.InDelta(t, 1-1.0/3, Diversity(cat, []string{"py-101", "qa-150"}), 1e-9)
	assert.InDelta(t, 1.0, Diversity(cat, []string{"py-101", "ci-200"}), 1e-9)
	assert.InDelta(t, 1.0, Diversity(cat, []string{"py-101"}), 1e-9)
	assert.InDelta(t, 1.0, Diversity(cat, []string{"py-101", "empty", "unknown"}), 1e-9)

	// pairs: 2/3, 1, 1
	assert.InDelta(t, (2.0/3+1+1)/3, Diversity(cat, []string{"py-101", "qa-150", "ci-200"}), 1e-9)
}

func TestRunner_RunPersona(t *testing.T) {
	target := &scriptedTarget{plan: []string{"py-101", "qa-150", "ci-200"}, failOn: map[int]bool{2: true}}
	r := NewRunner(target, testCatalog(t), Options{Repeats: 4, Warmup: true})

	res := r.RunPersona(context.Background(), sdetPersona())

	assert.Equal(t, 5, target.calls, "warmup plus four measured calls")
	assert.Equal(t, 4, res.Calls)
	assert.Equal(t, 3, res.Successes)
	assert.InDelta(t, 0.25, res.ErrorRate, 1e-12)
	assert.Equal(t, "backend unavailable", res.LastError)
	assert.Equal(t, []string{"py-101", "qa-150", "ci-200"}, res.PlanIDs)
	require.NotNil(t, res.Coverage)
	assert.InDelta(t, 75.0, *res.Coverage, 1e-9)
	require.NotNil(t, res.Diversity)
}

func TestRunner_RunPersona_AllFailures(t *testing.T) {
	target := &scriptedTarget{failOn: map[int]bool{0: true, 1: true}}
	r := NewRunner(target, testCatalog(t), Options{Repeats: 2})

	res := r.RunPersona(context.Background(), sdetPersona())

	assert.Equal(t, 0, res.Successes)
	assert.Equal(t, 1.0, res.ErrorRate)
	assert.Empty(t, res.PlanIDs)
	assert.Nil(t, res.Coverage)
	assert.Nil(t, res.Diversity)
}

func TestRunner_Run_Bars(t *testing.T) {
	cat := testCatalog(t)
	opts := Options{Repeats: 2, P95Bar: time.Minute, ErrorBudget: 0.1}

	ok, err := NewRunner(&scriptedTarget{plan: []string{"py-101"}}, cat, opts).
		Run(context.Background(), []Persona{sdetPersona(), sdetPersona()})
	require.NoError(t, err)
	assert.Len(t, ok.Results, 2)
	assert.True(t, ok.PassLatency)
	assert.True(t, ok.PassErrors)
	assert.True(t, ok.Passed())

	failing, err := NewRunner(&scriptedTarget{plan: []string{"py-101"}, failOn: map[int]bool{0: true}}, cat, opts).
		Run(context.Background(), []Persona{sdetPersona()})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, failing.AvgErrorRate, 1e-12)
	assert.False(t, failing.PassErrors)
	assert.False(t, failing.Passed())

	none, err := NewRunner(&scriptedTarget{failOn: map[int]bool{0: true, 1: true}}, cat, opts).
		Run(context.Background(), []Persona{sdetPersona()})
	require.NoError(t, err)
	assert.False(t, none.PassLatency, "no successful call means no latency evidence")
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(&scriptedTarget{}, testCatalog(t), DefaultOptions()).Run(ctx, DefaultPersonas())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPTarget(t *testing.T) {
	var gotReq types.AdviseRequest
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		if gotReq.GoalRole == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Potentially unsafe input"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plan":[{"course_id":"qa-101"}],"notes":"ok"}`))
	}))
	defer srv.Close()

	target := NewHTTPTarget(srv.URL, 5*time.Second)

	resp, err := target.Advise(context.Background(), &types.AdviseRequest{Skills: []string{"python"}, Level: "beginner", GoalRole: "SDET"})
	require.NoError(t, err)
	require.Len(t, resp.Plan, 1)
	assert.Equal(t, "qa-101", resp.Plan[0].CourseID)
	assert.Equal(t, "SDET", gotReq.GoalRole)
	assert.NotEmpty(t, gotID)

	_, err = target.Advise(context.Background(), &types.AdviseRequest{Level: "beginner", GoalRole: "broken"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "unsafe input")
}

func TestReport_WriteCSV(t *testing.T) {
	cov, div := 75.0, 0.5
	report := &Report{Results: []Result{
		{Persona: "sdet", ErrorRate: 0.25, LatencyP95: 42 * time.Millisecond, PlanIDs: []string{"a", "b"}, Coverage: &cov, Diversity: &div},
		{Persona: "unknown", ErrorRate: 0, PlanIDs: []string{}},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	assert.Equal(t,
		"persona,latency_p95_ms,error_rate,coverage_pct,diversity,plan_ids\n"+
			"sdet,42,0.2500,75,0.50,a|b\n"+
			"unknown,0,0.0000,,,\n",
		buf.String())
}

func TestReport_WriteSummary(t *testing.T) {
	cov := 75.0
	report := &Report{
		Results: []Result{
			{Persona: "sdet", Successes: 2, LatencyP95: 12 * time.Millisecond, PlanIDs: []string{"qa-101"}, Coverage: &cov},
			{Persona: "down", LastError: "advise returned 503: unavailable"},
		},
		WorstP95:    12 * time.Millisecond,
		PassLatency: true,
		PassErrors:  true,
	}

	var buf bytes.Buffer
	report.WriteSummary(&buf, DefaultOptions())
	out := buf.String()

	assert.Contains(t, out, "Persona: sdet")
	assert.Contains(t, out, "p95 latency: 12 ms")
	assert.Contains(t, out, "coverage   : 75%")
	assert.Contains(t, out, "n/a (no successful calls)")
	assert.Contains(t, out, "last error : advise returned 503")
	assert.Contains(t, out, "12 ms  [PASS]  (bar <= 2500 ms)")
	assert.Contains(t, out, "[PASS]  (bar <= 0.50%)")
}
