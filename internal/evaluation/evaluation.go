// Package evaluation replays learner personas against an advisor and checks
// the results against latency and error-rate bars. Plans are also scored for
// role skill coverage and skill diversity.
package evaluation

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/pipeline"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Persona is a named learner profile to replay.
type Persona struct {
	Name    string              `json:"name"`
	Profile types.AdviseRequest `json:"profile"`
}

// DefaultPersonas returns the stock personas: one with a known role and one
// whose role has no requirements in the bundled catalog.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name: "QA_to_SDET_beginner",
			Profile: types.AdviseRequest{
				Skills:   []string{"python", "manual testing"},
				Level:    types.DifficultyBeginner,
				GoalRole: "SDET",
			},
		},
		{
			Name: "ManualQA_to_GenAIEngineer_beginner",
			Profile: types.AdviseRequest{
				Skills:   []string{"manual testing"},
				Level:    types.DifficultyBeginner,
				GoalRole: "Generative AI Engineer",
			},
		},
	}
}

// Target answers advise requests. An error counts against the error budget.
type Target interface {
	Advise(ctx context.Context, req *types.AdviseRequest) (*types.AdviseResponse, error)
}

// AdvisorTarget runs requests through an in-process advisor.
type AdvisorTarget struct {
	Advisor *pipeline.Advisor
}

// Advise validates req and runs the pipeline on a copy of it.
func (t AdvisorTarget) Advise(ctx context.Context, req *types.AdviseRequest) (*types.AdviseResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := *req
	return t.Advisor.Advise(ctx, &cp), nil
}

// Options sets the replay count and the quality bars.
type Options struct {
	Repeats     int           // measured calls per persona
	Warmup      bool          // one unmeasured call first
	P95Bar      time.Duration // worst persona p95 must not exceed this
	ErrorBudget float64       // mean error rate must not exceed this
}

// DefaultOptions returns 5 repeats with warmup, a 2.5s p95 bar and a 0.5%
// error budget.
func DefaultOptions() Options {
	return Options{
		Repeats:     5,
		Warmup:      true,
		P95Bar:      2500 * time.Millisecond,
		ErrorBudget: 0.005,
	}
}

// Result summarizes the calls made for one persona. Coverage and Diversity
// are nil when they cannot be computed.
type Result struct {
	Persona    string
	Calls      int
	Successes  int
	ErrorRate  float64
	LatencyP95 time.Duration
	PlanIDs    []string
	Coverage   *float64
	Diversity  *float64
	LastError  string
}

// Report aggregates every persona against the bars.
type Report struct {
	Results      []Result
	WorstP95     time.Duration
	AvgErrorRate float64
	PassLatency  bool
	PassErrors   bool
}

// Passed reports whether both bars were met.
func (r *Report) Passed() bool {
	return r.PassLatency && r.PassErrors
}

// Runner replays personas against a target.
type Runner struct {
	target Target
	cat    *catalog.Catalog
	opts   Options
}

// NewRunner creates a runner. cat is used for coverage and diversity only.
func NewRunner(target Target, cat *catalog.Catalog, opts Options) *Runner {
	if opts.Repeats <= 0 {
		opts.Repeats = 1
	}
	return &Runner{target: target, cat: cat, opts: opts}
}

// Run replays every persona in order. It stops early only when ctx ends.
func (r *Runner) Run(ctx context.Context, personas []Persona) (*Report, error) {
	report := &Report{Results: make([]Result, 0, len(personas))}
	for _, p := range personas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.RunPersona(ctx, p)
		logging.Ctx(ctx).Info().
			Str("persona", res.Persona).
			Dur("p95", res.LatencyP95).
			Float64("error_rate", res.ErrorRate).
			Strs("plan", res.PlanIDs).
			Msg("persona evaluated")
		report.Results = append(report.Results, res)
	}
	report.finish(r.opts)
	return report, nil
}

// RunPersona makes the warmup call, if any, then Repeats measured calls. The
// plan of the last successful call is scored.
func (r *Runner) RunPersona(ctx context.Context, p Persona) Result {
	if r.opts.Warmup {
		_, _ = r.target.Advise(ctx, &p.Profile)
	}

	res := Result{Persona: p.Name, Calls: r.opts.Repeats, PlanIDs: []string{}}
	latencies := make([]time.Duration, 0, r.opts.Repeats)
	var last *types.AdviseResponse
	for range r.opts.Repeats {
		start := time.Now()
		resp, err := r.target.Advise(ctx, &p.Profile)
		elapsed := time.Since(start)
		if err != nil {
			res.LastError = err.Error()
			continue
		}
		latencies = append(latencies, elapsed)
		last = resp
	}

	res.Successes = len(latencies)
	res.ErrorRate = float64(res.Calls-res.Successes) / float64(res.Calls)
	res.LatencyP95 = P95(latencies)
	if last != nil {
		for _, item := range last.Plan {
			res.PlanIDs = append(res.PlanIDs, item.CourseID)
		}
	}
	if len(res.PlanIDs) > 0 {
		if cov, ok := Coverage(r.cat, res.PlanIDs, p.Profile.GoalRole); ok {
			res.Coverage = &cov
		}
		div := Diversity(r.cat, res.PlanIDs)
		res.Diversity = &div
	}
	return res
}

func (r *Report) finish(opts Options) {
	measured := false
	var errSum float64
	for _, res := range r.Results {
		errSum += res.ErrorRate
		if res.Successes == 0 {
			continue
		}
		measured = true
		r.WorstP95 = max(r.WorstP95, res.LatencyP95)
	}
	if n := len(r.Results); n > 0 {
		r.AvgErrorRate = errSum / float64(n)
	}
	r.PassLatency = measured && r.WorstP95 <= opts.P95Bar
	r.PassErrors = r.AvgErrorRate <= opts.ErrorBudget
}

// P95 returns the nearest-rank 95th percentile, index round(0.95*(n-1)) of
// the sorted latencies. It returns 0 for no samples.
func P95(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Round(0.95 * float64(len(sorted)-1)))
	return sorted[idx]
}

// Coverage returns the percentage of the role's required skills taught by
// at least one planned course. ok is false when the role is unknown or has
// no requirements.
func Coverage(cat *catalog.Catalog, planIDs []string, goalRole string) (pct float64, ok bool) {
	role, found := cat.Role(goalRole)
	if !found || len(role.SkillsRequired) == 0 {
		return 0, false
	}
	required := make(map[string]struct{}, len(role.SkillsRequired))
	for _, rs := range role.SkillsRequired {
		required[strings.ToLower(rs.Skill)] = struct{}{}
	}

	have := planSkills(cat, planIDs)
	covered := 0
	for skill := range required {
		if _, ok := have[skill]; ok {
			covered++
		}
	}
	return 100 * float64(covered) / float64(len(required)), true
}

// Diversity returns the mean pairwise Jaccard distance between the skill
// sets of the planned courses. Plans with fewer than two non-empty skill
// sets score 1.
func Diversity(cat *catalog.Catalog, planIDs []string) float64 {
	var sets []map[string]struct{}
	for _, id := range planIDs {
		if s := planSkills(cat, []string{id}); len(s) > 0 {
			sets = append(sets, s)
		}
	}
	if len(sets) < 2 {
		return 1
	}

	var total float64
	pairs := 0
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			inter, union := 0, len(sets[j])
			for s := range sets[i] {
				if _, ok := sets[j][s]; ok {
					inter++
				} else {
					union++
				}
			}
			total += 1 - float64(inter)/float64(union)
			pairs++
		}
	}
	return total / float64(pairs)
}

func planSkills(cat *catalog.Catalog, ids []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, id := range ids {
		course, ok := cat.Course(id)
		if !ok {
			continue
		}
		for _, s := range course.Skills {
			out[strings.ToLower(s)] = struct{}{}
		}
	}
	return out
}
