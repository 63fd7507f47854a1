package retrieval

import (
	"context"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/logging"
	"github.com/jonathan/upskill-advisor/internal/resilience"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Embedder turns text into a fixed-length vector. It must be deterministic
// for identical text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is an external nearest-neighbor store of course embeddings.
type VectorStore interface {
	CountCourseVectors(ctx context.Context) (int, error)
	UpsertCourseVectors(ctx context.Context, vectors []types.CourseVector) error
	NearestCourses(ctx context.Context, query []float32, k int) ([]types.VectorMatch, error)
}

// SemanticIndex answers embedding-similarity queries over course documents.
// Implementations that are not configured report Available() == false.
type SemanticIndex interface {
	Available() bool
	Search(ctx context.Context, query string, k int) ([]types.Candidate, error)
}

// DisabledSemanticIndex is the "not configured" semantic index. It never
// returns candidates.
type DisabledSemanticIndex struct{}

// Available always reports false.
func (DisabledSemanticIndex) Available() bool { return false }

// Search always returns no candidates.
func (DisabledSemanticIndex) Search(context.Context, string, int) ([]types.Candidate, error) {
	return nil, nil
}

// VectorIndex is a SemanticIndex backed by an Embedder and a VectorStore.
type VectorIndex struct {
	cat      *catalog.Catalog
	embedder Embedder
	store    VectorStore
	breaker  *gobreaker.CircuitBreaker[[]types.VectorMatch]
}

// NewVectorIndex creates a semantic index over cat. Search calls go through a
// circuit breaker so a failing store is skipped quickly.
func NewVectorIndex(cat *catalog.Catalog, embedder Embedder, store VectorStore, breakerCfg resilience.BreakerConfig) *VectorIndex {
	return &VectorIndex{
		cat:      cat,
		embedder: embedder,
		store:    store,
		breaker:  resilience.NewBreaker[[]types.VectorMatch](breakerCfg),
	}
}

// Available reports whether both the embedder and the store are configured.
func (v *VectorIndex) Available() bool {
	return v != nil && v.embedder != nil && v.store != nil
}

// Search embeds query and returns up to k catalog courses by similarity.
// Hits for course ids unknown to the catalog (a stale store) are dropped.
func (v *VectorIndex) Search(ctx context.Context, query string, k int) ([]types.Candidate, error) {
	if !v.Available() || k <= 0 {
		return nil, nil
	}

	matches, err := v.breaker.Execute(func() ([]types.VectorMatch, error) {
		vec, err := v.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		return v.store.NearestCourses(ctx, vec, k)
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.Candidate, 0, len(matches))
	for _, m := range matches {
		idx, ok := v.cat.IndexOf(m.CourseID)
		if !ok {
			logging.Ctx(ctx).Debug().Str("course_id", m.CourseID).Msg("vector hit not in catalog, skipping")
			continue
		}
		out = append(out, types.Candidate{CourseIndex: idx, CourseID: m.CourseID, Score: m.Similarity})
		if len(out) == k {
			break
		}
	}
	return out, nil
}

// Bootstrap embeds and stores every catalog course, but only when the store
// holds no course vectors yet. It is safe to call on every startup and
// returns the number of vectors written.
func (v *VectorIndex) Bootstrap(ctx context.Context) (int, error) {
	if !v.Available() {
		return 0, nil
	}

	count, err := v.store.CountCourseVectors(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count course vectors: %w", err)
	}
	if count > 0 {
		logging.Ctx(ctx).Info().Int("existing", count).Msg("semantic index already populated")
		return 0, nil
	}

	courses := v.cat.Courses()
	vectors := make([]types.CourseVector, 0, len(courses))
	for i := range courses {
		doc := CourseDocument(&courses[i])
		values, err := v.embedder.Embed(ctx, doc)
		if err != nil {
			return 0, fmt.Errorf("failed to embed course %s: %w", courses[i].CourseID, err)
		}
		vectors = append(vectors, types.CourseVector{
			CourseID: courses[i].CourseID,
			Title:    courses[i].Title,
			Document: doc,
			Values:   values,
		})
	}
	if len(vectors) == 0 {
		return 0, nil
	}

	if err := v.store.UpsertCourseVectors(ctx, vectors); err != nil {
		return 0, fmt.Errorf("failed to store course vectors: %w", err)
	}
	logging.Ctx(ctx).Info().Int("courses", len(vectors)).Msg("semantic index bootstrapped")
	return len(vectors), nil
}
