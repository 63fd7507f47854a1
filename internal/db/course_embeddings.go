package db

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/jonathan/upskill-advisor/internal/types"
)

// CountCourseVectors returns the number of stored course embeddings.
func (db *DB) CountCourseVectors(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM course_embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count course embeddings: %w", err)
	}
	return n, nil
}

// UpsertCourseVectors writes all vectors in one transaction.
func (db *DB) UpsertCourseVectors(ctx context.Context, vectors []types.CourseVector) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, v := range vectors {
		_, err = tx.Exec(ctx,
			`INSERT INTO course_embeddings (course_id, title, document, embedding)
			 VALUES ($1, $2, $3, $4::vector)
			 ON CONFLICT (course_id) DO UPDATE SET
			     title = $2, document = $3, embedding = $4::vector, updated_at = NOW()`,
			v.CourseID, v.Title, v.Document, embeddingParam(v.Values),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert embedding for %s: %w", v.CourseID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit course embeddings: %w", err)
	}
	return nil
}

// NearestCourses returns up to k courses by cosine similarity to query,
// most similar first. Ties are broken by course_id.
func (db *DB) NearestCourses(ctx context.Context, query []float32, k int) ([]types.VectorMatch, error) {
	if k <= 0 || len(query) == 0 {
		return []types.VectorMatch{}, nil
	}

	rows, err := db.pool.Query(ctx,
		`SELECT course_id, 1 - (embedding <=> $1::vector) AS similarity
		 FROM course_embeddings
		 ORDER BY embedding <=> $1::vector, course_id
		 LIMIT $2`,
		embeddingParam(query), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest courses: %w", err)
	}
	defer rows.Close()

	matches := make([]types.VectorMatch, 0, k)
	for rows.Next() {
		var m types.VectorMatch
		if err := rows.Scan(&m.CourseID, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan nearest course: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nearest courses: %w", err)
	}
	return matches, nil
}

// embeddingParam wraps values for a vector-typed query parameter. pgx sends
// it through pgvector's text encoding, so no type registration is needed
// before the extension exists.
func embeddingParam(values []float32) pgvector.Vector {
	return pgvector.NewVector(values)
}
