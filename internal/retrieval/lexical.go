package retrieval

import (
	"math"
	"sort"

	"github.com/jonathan/upskill-advisor/internal/catalog"
	"github.com/jonathan/upskill-advisor/internal/types"
)

// Okapi BM25 parameters.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25 // negative IDFs are floored to epsilon * average IDF
)

// LexicalIndex is an Okapi BM25 index over catalog course documents. It is
// built once and read-only afterwards.
type LexicalIndex struct {
	ids       []string
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// NewLexicalIndex indexes every course of the catalog in catalog order.
func NewLexicalIndex(cat *catalog.Catalog) *LexicalIndex {
	courses := cat.Courses()
	docs := make([]string, len(courses))
	ids := make([]string, len(courses))
	for i := range courses {
		docs[i] = CourseDocument(&courses[i])
		ids[i] = courses[i].CourseID
	}
	return newLexicalIndex(ids, docs)
}

func newLexicalIndex(ids, docs []string) *LexicalIndex {
	idx := &LexicalIndex{
		ids:       ids,
		termFreqs: make([]map[string]int, len(docs)),
		docLens:   make([]int, len(docs)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			docFreq[term]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}
	if len(docs) == 0 {
		return idx
	}
	idx.avgDocLen = float64(totalLen) / float64(len(docs))

	n := float64(len(docs))
	idfSum := 0.0
	var negative []string
	for term, df := range docFreq {
		v := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idx.idf[term] = v
		idfSum += v
		if v < 0 {
			negative = append(negative, term)
		}
	}
	floor := bm25Epsilon * idfSum / float64(len(idx.idf))
	for _, term := range negative {
		idx.idf[term] = floor
	}
	return idx
}

// Len returns the number of indexed documents.
func (l *LexicalIndex) Len() int {
	return len(l.ids)
}

// Scores returns the BM25 score of every document for query, in catalog
// order. Repeated query terms contribute once per occurrence.
func (l *LexicalIndex) Scores(query string) []float64 {
	scores := make([]float64, len(l.ids))
	if len(l.ids) == 0 || l.avgDocLen == 0 {
		return scores
	}
	for _, term := range Tokenize(query) {
		idf, ok := l.idf[term]
		if !ok {
			continue
		}
		for i, tf := range l.termFreqs {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			norm := bm25K1 * (1 - bm25B + bm25B*float64(l.docLens[i])/l.avgDocLen)
			scores[i] += idf * freq * (bm25K1 + 1) / (freq + norm)
		}
	}
	return scores
}

// TopK returns the k highest scoring documents, zero scores included, with
// ties kept in catalog order.
func (l *LexicalIndex) TopK(query string, k int) []types.Candidate {
	if k <= 0 {
		return nil
	}
	scores := l.Scores(query)
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > k {
		order = order[:k]
	}

	out := make([]types.Candidate, len(order))
	for j, i := range order {
		out[j] = types.Candidate{CourseIndex: i, CourseID: l.ids[i], Score: scores[i]}
	}
	return out
}
