package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/upskill-advisor/internal/types"
)

func TestRetriever_LexicalOnlyWhenSemanticDisabled(t *testing.T) {
	cat := testCatalog(t)
	lex := NewLexicalIndex(cat)
	r := NewRetriever(lex, nil, DefaultOptions())

	assert.False(t, r.SemanticAvailable())

	got, stats := r.Hybrid(context.Background(), "sql", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "sql-101", got[0].CourseID)
	assert.Equal(t, 2, stats.Lexical)
	assert.Equal(t, 0, stats.Semantic)
	assert.False(t, stats.SemanticDegraded)

	want := lex.TopK("sql", 1)[0].Score * 0.5
	assert.InDelta(t, want, got[0].Score, 1e-12)
}

func TestRetriever_FusesWeightedScores(t *testing.T) {
	cat := testCatalog(t)
	sem := &fakeSemantic{results: []types.Candidate{
		{CourseIndex: 3, CourseID: "k8s-201", Score: 0.9},
		{CourseIndex: 2, CourseID: "sql-101", Score: 0.1},
	}}
	opts := Options{LexicalWeight: 0.3, VectorWeight: 0.7}
	lex := NewLexicalIndex(cat)
	r := NewRetriever(lex, sem, opts)

	got, stats := r.Hybrid(context.Background(), "sql", 4)
	require.Len(t, got, 4)

	sqlLex := lex.Scores("sql")[2]
	scores := map[string]float64{}
	for _, c := range got {
		scores[c.CourseID] = c.Score
	}
	assert.InDelta(t, 0.3*sqlLex+0.7*0.1, scores["sql-101"], 1e-12)
	assert.InDelta(t, 0.7*0.9, scores["k8s-201"], 1e-12)
	assert.Equal(t, 0.0, scores["py-101"])
	assert.Equal(t, 2, stats.Semantic)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestRetriever_TiesKeepCatalogOrder(t *testing.T) {
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), nil, DefaultOptions())

	got, _ := r.Hybrid(context.Background(), "nothing-matches-this", 4)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"py-101", "qa-150", "sql-101", "k8s-201"}, candidateIDs(got))
}

func TestRetriever_TruncatesToK(t *testing.T) {
	sem := &fakeSemantic{results: []types.Candidate{
		{CourseIndex: 3, CourseID: "k8s-201", Score: 0.9},
	}}
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), sem, DefaultOptions())

	got, _ := r.Hybrid(context.Background(), "python", 1)
	assert.Len(t, got, 1)

	got, _ = r.Hybrid(context.Background(), "python", 0)
	assert.Empty(t, got)
}

func TestRetriever_SemanticFailureDegradesToLexical(t *testing.T) {
	sem := &fakeSemantic{err: errors.New("vector store down")}
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), sem, DefaultOptions())

	got, stats := r.Hybrid(context.Background(), "python", 3)
	require.Len(t, got, 3)
	assert.Equal(t, "py-101", got[0].CourseID)
	assert.True(t, stats.SemanticDegraded)
	assert.Equal(t, 0, stats.Semantic)
}

func TestRetriever_SemanticTimeout(t *testing.T) {
	sem := &fakeSemantic{block: true}
	opts := DefaultOptions()
	opts.SemanticTimeout = 20 * time.Millisecond
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), sem, opts)

	start := time.Now()
	got, stats := r.Hybrid(context.Background(), "python", 2)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Len(t, got, 2)
	assert.True(t, stats.SemanticDegraded)
}

func TestRetriever_SemanticTimeoutIgnoredContext(t *testing.T) {
	sem := &fakeSemantic{
		stall:   1500 * time.Millisecond,
		results: []types.Candidate{{CourseIndex: 3, CourseID: "k8s-201", Score: 1}},
	}
	opts := DefaultOptions()
	opts.SemanticTimeout = 20 * time.Millisecond
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), sem, opts)

	start := time.Now()
	got, stats := r.Hybrid(context.Background(), "python", 2)
	assert.Less(t, time.Since(start), time.Second)
	require.NotEmpty(t, got)
	assert.Equal(t, "py-101", got[0].CourseID)
	assert.True(t, stats.SemanticDegraded)
	assert.Equal(t, 0, stats.Semantic)
}

func TestRetriever_Deterministic(t *testing.T) {
	sem := &fakeSemantic{results: []types.Candidate{
		{CourseIndex: 1, CourseID: "qa-150", Score: 0.4},
		{CourseIndex: 0, CourseID: "py-101", Score: 0.4},
	}}
	r := NewRetriever(NewLexicalIndex(testCatalog(t)), sem, DefaultOptions())

	first, _ := r.Hybrid(context.Background(), "automation python", 4)
	for i := 0; i < 5; i++ {
		again, _ := r.Hybrid(context.Background(), "automation python", 4)
		assert.Equal(t, first, again)
	}
}

func candidateIDs(cs []types.Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.CourseID
	}
	return ids
}
