package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/types"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]types.Course{
		{CourseID: "py-101", Title: "Python Fundamentals", Skills: []string{"python"}, Difficulty: "beginner", DurationWeeks: 4, Outcomes: []string{"write scripts"}},
		{CourseID: "qa-150", Title: "Test Automation Intro", Skills: []string{"test automation", "selenium"}, Difficulty: "beginner", DurationWeeks: 4},
		{CourseID: "sql-101", Title: "SQL Basics", Skills: []string{"sql"}, Difficulty: "beginner", DurationWeeks: 3},
		{CourseID: "k8s-201", Title: "Kubernetes", Skills: []string{"kubernetes", "docker"}, Difficulty: "intermediate", DurationWeeks: 5},
	}, nil)
	require.NoError(t, err)
	return cat
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type fakeStore struct {
	count    int
	countErr error
	matches  []types.VectorMatch
	queryErr error
	upserted []types.CourseVector
}

func (f *fakeStore) CountCourseVectors(context.Context) (int, error) {
	return f.count, f.countErr
}

func (f *fakeStore) UpsertCourseVectors(_ context.Context, vectors []types.CourseVector) error {
	f.upserted = append(f.upserted, vectors...)
	f.count += len(vectors)
	return nil
}

func (f *fakeStore) NearestCourses(_ context.Context, _ []float32, k int) ([]types.VectorMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > k {
		return f.matches[:k], nil
	}
	return f.matches, nil
}

type fakeSemantic struct {
	results []types.Candidate
	err     error
	block   bool
	stall   time.Duration // sleeps without watching ctx
}

func (f *fakeSemantic) Available() bool { return true }

func (f *fakeSemantic) Search(ctx context.Context, _ string, _ int) ([]types.Candidate, error) {
	if f.stall > 0 {
		time.Sleep(f.stall)
		return f.results, f.err
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.results, f.err
}
