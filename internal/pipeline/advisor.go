// Package pipeline orchestrates the advise flow: gap analysis, hybrid
// retrieval, level bias, rerank, plan selection and timeline.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/metrics"
	"github.com/jonathan/upskill-advisor/internal/ranking"
	"github.com/jonathan/upskill-advisor/internal/retrieval"
	"github.com/jonathan/upskill-advisor/internal/selection"
	"github.com/jonathan/upskill-advisor/internal/skills"
	"github.com/jonathan/upskill-advisor/internal/timeline"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Step names reported through ProgressCallback.
const (
	StepGaps     = "gaps"
	StepRetrieve = "retrieve"
	StepRerank   = "rerank"
	StepSelect   = "select"
	StepTimeline = "timeline"
)

// ProgressEvent represents a progress update during an advise run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds the tunables of an Advisor.
type Options struct {
	RetrievalK     int
	RerankK        int
	Bias           ranking.BiasConfig
	EmbeddingModel string // reported in usage when the semantic index is configured
}

// DefaultOptions retrieves 20 candidates and reranks the top 10.
func DefaultOptions() Options {
	return Options{
		RetrievalK: 20,
		RerankK:    10,
		Bias:       ranking.DefaultBiasConfig(),
	}
}

// Advisor produces study plans. It holds only read-only state and is safe
// for concurrent use.
type Advisor struct {
	cat        *catalog.Catalog
	retriever  *retrieval.Retriever
	reranker   *ranking.Reranker
	opts       Options
	onProgress ProgressCallback
}

// NewAdvisor wires the pipeline stages together.
func NewAdvisor(cat *catalog.Catalog, retriever *retrieval.Retriever, reranker *ranking.Reranker, opts Options) *Advisor {
	return &Advisor{cat: cat, retriever: retriever, reranker: reranker, opts: opts}
}

// WithProgress returns a copy of the advisor that reports each step to fn.
func (a *Advisor) WithProgress(fn ProgressCallback) *Advisor {
	cp := *a
	cp.onProgress = fn
	return &cp
}

// Catalog returns the catalog the advisor plans from.
func (a *Advisor) Catalog() *catalog.Catalog {
	return a.cat
}

func (a *Advisor) emit(step, message string, content any) {
	if a.onProgress != nil {
		a.onProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Advise runs the full pipeline for req. The request is assumed valid. An
// unknown goal role is a normal outcome: the plan is empty and the notes say
// so. Backend failures degrade the result but never fail the call.
func (a *Advisor) Advise(ctx context.Context, req *types.AdviseRequest) *types.AdviseResponse {
	start := time.Now()
	log := logging.Ctx(ctx)
	level := types.ParseDifficulty(string(req.Level))

	gaps, found := skills.AnalyzeGaps(a.cat, req.Skills, req.GoalRole)
	if !found {
		log.Info().Str("goal_role", req.GoalRole).Msg("no role requirement found")
		resp := noRoleResponse(req.GoalRole, a.modelUsage())
		resp.LatencyMS = time.Since(start).Milliseconds()
		metrics.RecordAdvise(metrics.OutcomeNoRole, time.Since(start))
		return resp
	}
	a.emit(StepGaps, fmt.Sprintf("%d missing skills", len(gaps.MissingSkills)), gaps)

	query := MakeQuery(req.Skills, req.GoalRole, gaps.MissingSkills)
	candidates, stats := a.retriever.Hybrid(ctx, query, a.opts.RetrievalK)
	candidates = ranking.BiasByLevel(a.cat, candidates, level, a.opts.Bias)
	a.emit(StepRetrieve, fmt.Sprintf("%d candidates (%d lexical, %d semantic)", len(candidates), stats.Lexical, stats.Semantic), candidates)

	rankedIDs, rerankDegraded := a.reranker.Rerank(ctx, query, candidates, a.opts.RerankK)
	a.emit(StepRerank, fmt.Sprintf("%d reranked", len(rankedIDs)), rankedIDs)

	plan := selection.ChooseThreeOrdered(a.cat, rankedIDs, gaps.MissingSkills, level)
	a.emit(StepSelect, fmt.Sprintf("%d courses selected", len(plan)), plan)

	tl := timeline.Build(a.cat, plan)
	a.emit(StepTimeline, fmt.Sprintf("%d weeks", tl.Weeks), tl)

	degraded := []string{}
	if stats.SemanticDegraded {
		degraded = append(degraded, metrics.BackendSemantic)
	}
	if rerankDegraded {
		degraded = append(degraded, metrics.BackendReranker)
	}

	resp := &types.AdviseResponse{
		Plan:     plan,
		GapMap:   gaps.GapMap,
		Timeline: tl,
		Notes:    Notes(level, gaps.MissingSkills),
		Usage: types.Usage{
			Retrieval: types.RetrievalUsage{Candidates: len(candidates), Reranked: len(rankedIDs)},
			Models:    a.modelUsage(),
			JDFound:   true,
			Degraded:  degraded,
		},
	}

	elapsed := time.Since(start)
	resp.LatencyMS = elapsed.Milliseconds()
	metrics.RecordAdvise(metrics.OutcomePlanned, elapsed)
	log.Info().
		Str("goal_role", req.GoalRole).
		Int("plan_items", len(plan)).
		Int("weeks", tl.Weeks).
		Strs("degraded", degraded).
		Int64("latency_ms", resp.LatencyMS).
		Msg("advise completed")
	return resp
}

func (a *Advisor) modelUsage() types.ModelUsage {
	embed := "none"
	if a.retriever.SemanticAvailable() && a.opts.EmbeddingModel != "" {
		embed = a.opts.EmbeddingModel
	}
	return types.ModelUsage{Embed: embed, Reranker: a.reranker.ModelName()}
}

func noRoleResponse(goalRole string, models types.ModelUsage) *types.AdviseResponse {
	return &types.AdviseResponse{
		Plan:     []types.PlanItem{},
		GapMap:   map[string]int{},
		Timeline: types.Timeline{Weeks: 0, Schedule: []types.ScheduleEntry{}},
		Notes:    fmt.Sprintf("No JD available for role '%s'. Please choose a supported role.", goalRole),
		Usage: types.Usage{
			Retrieval: types.RetrievalUsage{},
			Models:    models,
			JDFound:   false,
			Degraded:  []string{},
		},
	}
}

// MakeQuery builds the retrieval query text from the learner profile.
func MakeQuery(userSkills []string, goalRole string, missing []string) string {
	return fmt.Sprintf("Goal:%s. Missing:%s. User:%s",
		goalRole, strings.Join(missing, ", "), strings.Join(userSkills, ", "))
}

// Notes returns the human-readable summary: one sentence for the learner
// level and one for the gap situation.
func Notes(level types.Difficulty, missing []string) string {
	var notes []string
	switch level {
	case types.DifficultyBeginner:
		notes = append(notes, "Starting from fundamentals; courses are biased to beginner tracks.")
	case types.DifficultyIntermediate:
		notes = append(notes, "Assumes foundations; mixes depth with breadth.")
	default:
		notes = append(notes, "Geared to advanced topics and performance/architecture.")
	}

	if len(missing) > 0 {
		notes = append(notes, "Plan prioritizes missing JD skills; later courses add breadth.")
	} else {
		notes = append(notes, "You already cover most JD skills; plan builds tooling and depth.")
	}
	return strings.Join(notes, " ")
}
