package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"ai-workspace/internal/vectorstore"
)

var _ vectorstore.Store = (*Store)(nil)

// Store is an in-memory vector store with an exact cosine scan. It backs
// tests and small single-process deployments where running Qdrant is not
// worth it.
type Store struct {
	mu      sync.RWMutex
	records map[string]entry
}

type entry struct {
	content  string
	metadata map[string]any
	vector   []float32
}

func New() *Store {
	return &Store{records: make(map[string]entry)}
}

func (s *Store) Upsert(_ context.Context, id, content string, metadata map[string]any, vector []float32) error {
	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	s.mu.Lock()
	s.records[id] = entry{content: content, metadata: meta, vector: vec}
	s.mu.Unlock()
	return nil
}

func (s *Store) Query(_ context.Context, vector []float32, topK int, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []vectorstore.Record
	for id, e := range s.records {
		if !filter.Matches(e.metadata) {
			continue
		}
		records = append(records, vectorstore.Record{
			ID:       id,
			Content:  e.content,
			Metadata: copyMeta(e.metadata),
			Distance: cosineDistance(vector, e.vector),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Distance < records[j].Distance
	})
	if len(records) > topK {
		records = records[:topK]
	}
	return records, nil
}

func (s *Store) Get(_ context.Context, filter *vectorstore.Filter, limit int) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []vectorstore.Record
	for id, e := range s.records {
		if !filter.Matches(e.metadata) {
			continue
		}
		records = append(records, vectorstore.Record{
			ID:       id,
			Content:  e.content,
			Metadata: copyMeta(e.metadata),
		})
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

func (s *Store) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.records, id)
	}
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
