package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/metrics"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Options tunes score fusion.
type Options struct {
	LexicalWeight   float64
	VectorWeight    float64
	SemanticTimeout time.Duration
}

// DefaultOptions weights both sources equally.
func DefaultOptions() Options {
	return Options{
		LexicalWeight:   0.5,
		VectorWeight:    0.5,
		SemanticTimeout: 3 * time.Second,
	}
}

// Stats describes one hybrid retrieval.
type Stats struct {
	Lexical          int
	Semantic         int
	SemanticDegraded bool // semantic index configured but failed or timed out
}

// Retriever fuses lexical and semantic candidates.
type Retriever struct {
	lexical  *LexicalIndex
	semantic SemanticIndex
	opts     Options
}

// NewRetriever creates a hybrid retriever. A nil semantic index behaves like
// DisabledSemanticIndex.
func NewRetriever(lexical *LexicalIndex, semantic SemanticIndex, opts Options) *Retriever {
	if semantic == nil {
		semantic = DisabledSemanticIndex{}
	}
	return &Retriever{lexical: lexical, semantic: semantic, opts: opts}
}

// SemanticAvailable reports whether a semantic index is configured.
func (r *Retriever) SemanticAvailable() bool {
	return r.semantic.Available()
}

// Hybrid returns at most k candidates ordered by
// LexicalWeight*lexical + VectorWeight*vector, descending. A course absent
// from one source contributes 0 for it. Ties keep catalog order.
//
// The two sources are queried concurrently. Semantic failures and timeouts
// are logged and treated as an empty result.
func (r *Retriever) Hybrid(ctx context.Context, query string, k int) ([]types.Candidate, Stats) {
	var stats Stats
	if k <= 0 {
		return []types.Candidate{}, stats
	}

	var lexical, semantic []types.Candidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = r.lexical.TopK(query, k)
		return nil
	})
	if r.semantic.Available() {
		g.Go(func() error {
			res, err := r.searchSemantic(gctx, query, k)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("semantic retrieval unavailable, using lexical only")
				metrics.RecordDegraded(metrics.BackendSemantic)
				stats.SemanticDegraded = true
				return nil
			}
			semantic = res
			return nil
		})
	}
	_ = g.Wait()

	stats.Lexical = len(lexical)
	stats.Semantic = len(semantic)
	metrics.RecordCandidates("lexical", stats.Lexical)
	metrics.RecordCandidates("semantic", stats.Semantic)

	fused := r.fuse(lexical, semantic)
	if len(fused) > k {
		fused = fused[:k]
	}
	metrics.RecordCandidates("fused", len(fused))
	return fused, stats
}

// searchSemantic bounds the semantic query by SemanticTimeout. A backend
// that ignores its context is abandoned once the deadline passes.
func (r *Retriever) searchSemantic(ctx context.Context, query string, k int) ([]types.Candidate, error) {
	if r.opts.SemanticTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.SemanticTimeout)
		defer cancel()
	}

	type result struct {
		candidates []types.Candidate
		err        error
	}
	done := make(chan result, 1)
	go func() {
		res, err := r.semantic.Search(ctx, query, k)
		done <- result{res, err}
	}()

	select {
	case res := <-done:
		return res.candidates, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("semantic search: %w", ctx.Err())
	}
}

func (r *Retriever) fuse(lexical, semantic []types.Candidate) []types.Candidate {
	byIndex := make(map[int]*types.Candidate, len(lexical)+len(semantic))
	add := func(c types.Candidate, weight float64) {
		entry, ok := byIndex[c.CourseIndex]
		if !ok {
			entry = &types.Candidate{CourseIndex: c.CourseIndex, CourseID: c.CourseID}
			byIndex[c.CourseIndex] = entry
		}
		entry.Score += weight * c.Score
	}
	for _, c := range lexical {
		add(c, r.opts.LexicalWeight)
	}
	for _, c := range semantic {
		add(c, r.opts.VectorWeight)
	}

	out := make([]types.Candidate, 0, len(byIndex))
	for _, c := range byIndex {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CourseIndex < out[j].CourseIndex
	})
	return out
}
