package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/metrics"
	"github.com/jonathan/upskill-advisor/internal/resilience"
	"github.com/jonathan/upskill-advisor/internal/retrieval"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Oracle scores (query, document) pairs for relevance; higher is better.
// Implementations that are not configured report Available() == false.
type Oracle interface {
	Available() bool
	Name() string
	Score(ctx context.Context, query string, documents []string) ([]float64, error)
}

// DisabledOracle is the "not configured" relevance oracle.
type DisabledOracle struct{}

// Available always reports false.
func (DisabledOracle) Available() bool { return false }

// Name returns "none".
func (DisabledOracle) Name() string { return "none" }

// Score always fails; callers check Available first.
func (DisabledOracle) Score(context.Context, string, []string) ([]float64, error) {
	return nil, fmt.Errorf("rerank oracle not configured")
}

// RerankOptions configures a Reranker.
type RerankOptions struct {
	Timeout time.Duration
	Breaker resilience.BreakerConfig
}

// DefaultRerankOptions returns a 5s timeout and the default breaker.
func DefaultRerankOptions() RerankOptions {
	return RerankOptions{
		Timeout: 5 * time.Second,
		Breaker: resilience.DefaultBreakerConfig("rerank-oracle"),
	}
}

// Reranker reorders candidates with an Oracle, falling back to the input
// order whenever the oracle is absent, slow or failing.
type Reranker struct {
	cat     *catalog.Catalog
	oracle  Oracle
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]float64]
}

// NewReranker creates a reranker. A nil oracle behaves like DisabledOracle.
func NewReranker(cat *catalog.Catalog, oracle Oracle, opts RerankOptions) *Reranker {
	if oracle == nil {
		oracle = DisabledOracle{}
	}
	return &Reranker{
		cat:     cat,
		oracle:  oracle,
		timeout: opts.Timeout,
		breaker: resilience.NewBreaker[[]float64](opts.Breaker),
	}
}

// Available reports whether an oracle is configured.
func (r *Reranker) Available() bool {
	return r.oracle.Available()
}

// ModelName returns the oracle name for usage reporting.
func (r *Reranker) ModelName() string {
	return r.oracle.Name()
}

// Rerank returns at most k course ids. With an oracle, candidates are stably
// sorted by oracle score; otherwise, or when the oracle fails or times out,
// the input order is kept. degraded reports a configured oracle that failed.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []types.Candidate, k int) (ids []string, degraded bool) {
	if k <= 0 || len(candidates) == 0 {
		return []string{}, false
	}
	if !r.oracle.Available() {
		return passThrough(candidates, k), false
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = retrieval.CourseDocument(r.cat.At(c.CourseIndex))
	}

	scores, err := r.score(ctx, query, docs)
	if err == nil && len(scores) != len(candidates) {
		err = fmt.Errorf("oracle returned %d scores for %d documents", len(scores), len(candidates))
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("oracle", r.oracle.Name()).Msg("rerank unavailable, keeping retrieval order")
		metrics.RecordDegraded(metrics.BackendReranker)
		return passThrough(candidates, k), true
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > k {
		order = order[:k]
	}
	ids = make([]string, len(order))
	for j, i := range order {
		ids[j] = candidates[i].CourseID
	}
	return ids, false
}

// score calls the oracle through the breaker and abandons it when the
// timeout expires, even if the oracle ignores its context.
func (r *Reranker) score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	type result struct {
		scores []float64
		err    error
	}
	done := make(chan result, 1)
	go func() {
		scores, err := r.breaker.Execute(func() ([]float64, error) {
			return r.oracle.Score(ctx, query, docs)
		})
		done <- result{scores, err}
	}()

	select {
	case res := <-done:
		return res.scores, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("rerank oracle: %w", ctx.Err())
	}
}

func passThrough(candidates []types.Candidate, k int) []string {
	n := min(k, len(candidates))
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = candidates[i].CourseID
	}
	return ids
}
