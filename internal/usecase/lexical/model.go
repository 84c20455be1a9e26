package lexical

import (
	"cmp"
	"math"
	"slices"

	"github.com/econext/catalog-engine/internal/numeric"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

type weight struct {
	term  int
	value float64
}

// Model is a fitted TF-IDF index over an ordered document set. Immutable after Build.
type Model struct {
	vocab map[string]int
	idf   []float64
	rows  [][]weight
}

// Hit is a scored document position within the model.
type Hit struct {
	Doc   int
	Score float64
}

// Build fits vocabulary, IDF weights and L2-normalized rows over texts.
// maxFeatures <= 0 falls back to DefaultMaxFeatures.
func Build(texts []string, maxFeatures int) *Model {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	a := NewAnalyzer()
	docTerms := make([]map[string]int, len(texts))
	corpus := make(map[string]int)
	df := make(map[string]int)
	for i, text := range texts {
		counts := make(map[string]int)
		for _, t := range a.Terms(text) {
			counts[t]++
		}
		for t, c := range counts {
			corpus[t] += c
			df[t]++
		}
		docTerms[i] = counts
	}

	terms := make([]string, 0, len(corpus))
	for t := range corpus {
		terms = append(terms, t)
	}
	// Highest corpus frequency wins; ties broken alphabetically.
	slices.SortFunc(terms, func(x, y string) int {
		if c := cmp.Compare(corpus[y], corpus[x]); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	slices.Sort(terms)

	n := float64(len(texts))
	m := &Model{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
		rows:  make([][]weight, len(texts)),
	}
	for i, t := range terms {
		m.vocab[t] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	for i, counts := range docTerms {
		m.rows[i] = m.vectorize(counts)
	}
	return m
}

// vectorize weights term counts against the fitted vocabulary, sorted by term index and unit length.
func (m *Model) vectorize(counts map[string]int) []weight {
	row := make([]weight, 0, len(counts))
	for t, c := range counts {
		idx, ok := m.vocab[t]
		if !ok {
			continue
		}
		row = append(row, weight{term: idx, value: float64(c) * m.idf[idx]})
	}
	slices.SortFunc(row, func(x, y weight) int { return cmp.Compare(x.term, y.term) })

	values := make([]float64, len(row))
	for i, w := range row {
		values[i] = w.value
	}
	numeric.L2Normalize(values)
	for i := range row {
		row[i].value = values[i]
	}
	return row
}

// Len returns the number of indexed documents.
func (m *Model) Len() int { return len(m.rows) }

// VocabularySize returns the number of fitted terms.
func (m *Model) VocabularySize() int { return len(m.vocab) }

// Score returns the cosine similarity of text against every document, in document order.
func (m *Model) Score(text string) []float64 {
	counts := make(map[string]int)
	for _, t := range NewAnalyzer().Terms(text) {
		counts[t]++
	}
	q := m.vectorize(counts)

	scores := make([]float64, len(m.rows))
	if len(q) == 0 {
		return scores
	}
	for i, row := range m.rows {
		scores[i] = numeric.Clamp01(dot(q, row))
	}
	return scores
}

// Query ranks documents by similarity (ties keep document order), keeps the best topK,
// then drops hits scoring below minScore.
func (m *Model) Query(text string, topK int, minScore float64) []Hit {
	scores := m.Score(text)
	scored := make([]numeric.Scored[int], len(scores))
	for i, s := range scores {
		scored[i] = numeric.Scored[int]{Item: i, Score: s}
	}

	hits := make([]Hit, 0, max(topK, 0))
	for _, s := range numeric.TopK(scored, topK) {
		if s.Score < minScore {
			continue
		}
		hits = append(hits, Hit{Doc: s.Item, Score: s.Score})
	}
	return hits
}

// dot multiplies two sparse rows sorted by term index.
func dot(a, b []weight) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].term == b[j].term:
			sum += a[i].value * b[j].value
			i++
			j++
		case a[i].term < b[j].term:
			i++
		default:
			j++
		}
	}
	return sum
}
