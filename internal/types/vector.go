package types

// CourseVector is the embedding of one course document as stored in a
// nearest-neighbor store.
type CourseVector struct {
	CourseID string
	Title    string
	Document string
	Values   []float32
}

// VectorMatch is one nearest-neighbor hit. Similarity is higher-is-better.
type VectorMatch struct {
	CourseID   string
	Similarity float64
}
