package memory

import (
	"fmt"
	"math"
	"sync"

	"ragchat/internal/domain"
	"ragchat/internal/vectorstore"
)

var _ domain.VectorStore = (*Store)(nil)

// Store is an in-memory vector store using brute-force cosine similarity.
// texts[i] and embeddings[i] always describe the same record. Queries scan
// every record.
type Store struct {
	mu         sync.RWMutex
	texts      []string
	embeddings [][]float64
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Restore loads a store persisted with Persist. Undecodable files are
// reported as *domain.CorruptStateError.
func Restore(path string) (*Store, error) {
	texts, embeddings, err := vectorstore.Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{texts: texts, embeddings: embeddings}, nil
}

// Append adds one record at the end. Duplicate texts are allowed.
func (s *Store) Append(text string, embedding []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.embeddings) > 0 && len(embedding) != len(s.embeddings[0]) {
		return fmt.Errorf("%w: got %d, store has %d", domain.ErrDimensionMismatch, len(embedding), len(s.embeddings[0]))
	}
	s.texts = append(s.texts, text)
	s.embeddings = append(s.embeddings, cloneVec(embedding))
	return nil
}

// ReplaceAll swaps the entire content of the store in one step.
func (s *Store) ReplaceAll(texts []string, embeddings [][]float64) error {
	if len(texts) != len(embeddings) {
		return fmt.Errorf("%w: %d texts, %d embeddings", domain.ErrLengthMismatch, len(texts), len(embeddings))
	}
	newTexts := append([]string(nil), texts...)
	newEmbeddings := make([][]float64, len(embeddings))
	for i, v := range embeddings {
		if len(v) != len(embeddings[0]) {
			return fmt.Errorf("%w: record %d has %d, want %d", domain.ErrDimensionMismatch, i, len(v), len(embeddings[0]))
		}
		newEmbeddings[i] = cloneVec(v)
	}
	s.mu.Lock()
	s.texts, s.embeddings = newTexts, newEmbeddings
	s.mu.Unlock()
	return nil
}

// Persist writes the whole store to path, overwriting any existing file.
func (s *Store) Persist(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vectorstore.Save(path, s.texts, s.embeddings)
}

// BestMatch returns the record most similar to query. Exact ties go to the
// lowest index. An empty store yields domain.ErrEmptyStore.
func (s *Store) BestMatch(query []float64) (domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.embeddings) == 0 {
		return domain.Match{}, domain.ErrEmptyStore
	}
	if len(query) != len(s.embeddings[0]) {
		return domain.Match{}, fmt.Errorf("%w: query has %d, store has %d", domain.ErrDimensionMismatch, len(query), len(s.embeddings[0]))
	}
	qn := norm(query)
	best := domain.Match{Index: 0, Score: math.Inf(-1)}
	for i, v := range s.embeddings {
		score := cosine(query, qn, v)
		if score > best.Score {
			best.Index, best.Score = i, score
		}
	}
	best.Text = s.texts[best.Index]
	return best, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.texts)
}

// Texts returns a copy of the stored texts in order.
func (s *Store) Texts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.texts...)
}

// Embeddings returns a deep copy of the stored embeddings in order.
func (s *Store) Embeddings() [][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]float64, len(s.embeddings))
	for i, v := range s.embeddings {
		out[i] = cloneVec(v)
	}
	return out
}

// CosineSimilarity is dot(a,b)/(|a||b|). A zero-magnitude operand yields 0.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	return cosine(a, norm(a), b), nil
}

func cosine(q []float64, qn float64, v []float64) float64 {
	vn := norm(v)
	if qn == 0 || vn == 0 {
		return 0
	}
	s := dot(q, v) / (qn * vn)
	if math.IsNaN(s) {
		return 0
	}
	return s
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(v []float64) float64 { return math.Sqrt(dot(v, v)) }

func cloneVec(v []float64) []float64 { return append([]float64(nil), v...) }
