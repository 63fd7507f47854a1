package ranking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/upskill-advisor/internal/resilience"
	"github.com/jonathan/upskill-advisor/internal/types"
)

type fakeOracle struct {
	scores func(docs []string) ([]float64, error)
	block  bool
	calls  int
}

func (f *fakeOracle) Available() bool { return true }

func (f *fakeOracle) Name() string { return "fake-oracle" }

func (f *fakeOracle) Score(ctx context.Context, _ string, docs []string) ([]float64, error) {
	f.calls++
	if f.block {
		time.Sleep(time.Second)
	}
	return f.scores(docs)
}

func testRerankOptions() RerankOptions {
	return RerankOptions{
		Timeout: time.Second,
		Breaker: resilience.BreakerConfig{Name: "test-rerank", FailureThreshold: 2, OpenTimeout: time.Minute},
	}
}

func testCandidates() []types.Candidate {
	return []types.Candidate{cand(0, "b-1", 0.9), cand(1, "i-1", 0.8), cand(2, "a-1", 0.7), cand(3, "b-2", 0.6)}
}

func TestRerank_WithoutOracleKeepsOrder(t *testing.T) {
	r := NewReranker(testCatalog(t), nil, testRerankOptions())

	ids, degraded := r.Rerank(context.Background(), "q", testCandidates(), 2)
	assert.Equal(t, []string{"b-1", "i-1"}, ids)
	assert.False(t, degraded)
	assert.False(t, r.Available())
	assert.Equal(t, "none", r.ModelName())
}

func TestRerank_SortsByOracleScore(t *testing.T) {
	oracle := &fakeOracle{scores: func(docs []string) ([]float64, error) {
		out := make([]float64, len(docs))
		for i, d := range docs {
			if strings.HasPrefix(d, "Advanced One") {
				out[i] = 0.9
			}
			if strings.HasPrefix(d, "Beginner Two") {
				out[i] = 0.9
			}
		}
		return out, nil
	}}
	r := NewReranker(testCatalog(t), oracle, testRerankOptions())

	ids, degraded := r.Rerank(context.Background(), "q", testCandidates(), 3)
	assert.False(t, degraded)
	// ties keep input order: a-1 before b-2, then b-1 before i-1
	assert.Equal(t, []string{"a-1", "b-2", "b-1"}, ids)
}

func TestRerank_OracleFailurePassesThrough(t *testing.T) {
	oracle := &fakeOracle{scores: func([]string) ([]float64, error) {
		return nil, errors.New("quota exceeded")
	}}
	r := NewReranker(testCatalog(t), oracle, testRerankOptions())

	ids, degraded := r.Rerank(context.Background(), "q", testCandidates(), 10)
	assert.Equal(t, []string{"b-1", "i-1", "a-1", "b-2"}, ids)
	assert.True(t, degraded)
}

func TestRerank_ScoreCountMismatchPassesThrough(t *testing.T) {
	oracle := &fakeOracle{scores: func([]string) ([]float64, error) {
		return []float64{1}, nil
	}}
	r := NewReranker(testCatalog(t), oracle, testRerankOptions())

	ids, degraded := r.Rerank(context.Background(), "q", testCandidates(), 2)
	assert.Equal(t, []string{"b-1", "i-1"}, ids)
	assert.True(t, degraded)
}

func TestRerank_TimeoutPassesThrough(t *testing.T) {
	oracle := &fakeOracle{block: true, scores: func(docs []string) ([]float64, error) {
		return make([]float64, len(docs)), nil
	}}
	opts := testRerankOptions()
	opts.Timeout = 20 * time.Millisecond
	r := NewReranker(testCatalog(t), oracle, opts)

	start := time.Now()
	ids, degraded := r.Rerank(context.Background(), "q", testCandidates(), 2)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, []string{"b-1", "i-1"}, ids)
	assert.True(t, degraded)
}

func TestRerank_BreakerSkipsOracleWhenOpen(t *testing.T) {
	oracle := &fakeOracle{scores: func([]string) ([]float64, error) {
		return nil, errors.New("down")
	}}
	r := NewReranker(testCatalog(t), oracle, testRerankOptions())

	for i := 0; i < 3; i++ {
		_, degraded := r.Rerank(context.Background(), "q", testCandidates(), 2)
		assert.True(t, degraded)
	}
	assert.Equal(t, 2, oracle.calls)
}

func TestRerank_EdgeCases(t *testing.T) {
	r := NewReranker(testCatalog(t), nil, testRerankOptions())

	ids, _ := r.Rerank(context.Background(), "q", nil, 5)
	assert.Empty(t, ids)

	ids, _ = r.Rerank(context.Background(), "q", testCandidates(), 0)
	assert.Empty(t, ids)
}
