package vectorstore

import (
	"context"
	"errors"
	"strings"
)

// ErrStore marks a vector index backend failure. Callers must surface it
// rather than silently dropping the write.
var ErrStore = errors.New("vector store backend error")

// Record is one stored chunk. Distance is cosine distance (lower = more
// similar); it is only meaningful on Query results.
type Record struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Distance float64        `json:"distance"`
}

// Store persists (id, content, metadata, vector) records and answers
// nearest-neighbour queries with optional metadata filters.
type Store interface {
	// Upsert inserts or replaces the record with the given id.
	Upsert(ctx context.Context, id, content string, metadata map[string]any, vector []float32) error
	// Query returns at most topK records ordered by ascending distance.
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Record, error)
	// Get returns matching records without ranking, up to limit (0 = all).
	Get(ctx context.Context, filter *Filter, limit int) ([]Record, error)
	// Delete removes records by id; missing ids are not errors.
	Delete(ctx context.Context, ids []string) error
}

// Op is a filter condition operator.
type Op int

const (
	OpEq Op = iota
	OpContains
	OpGte
	OpLte
)

// Cond is a single metadata condition.
type Cond struct {
	Key   string
	Op    Op
	Value any
}

// Filter is a conjunction of metadata conditions.
type Filter struct {
	conds []Cond
}

func NewFilter() *Filter {
	return &Filter{}
}

// Eq adds an exact-equality condition.
func (f *Filter) Eq(key string, value any) *Filter {
	f.conds = append(f.conds, Cond{Key: key, Op: OpEq, Value: value})
	return f
}

// Contains adds a case-insensitive substring condition on a string field.
func (f *Filter) Contains(key, substr string) *Filter {
	f.conds = append(f.conds, Cond{Key: key, Op: OpContains, Value: substr})
	return f
}

// Gte adds a numeric >= condition.
func (f *Filter) Gte(key string, value float64) *Filter {
	f.conds = append(f.conds, Cond{Key: key, Op: OpGte, Value: value})
	return f
}

// Lte adds a numeric <= condition.
func (f *Filter) Lte(key string, value float64) *Filter {
	f.conds = append(f.conds, Cond{Key: key, Op: OpLte, Value: value})
	return f
}

func (f *Filter) Empty() bool {
	return f == nil || len(f.conds) == 0
}

// Conds exposes the conditions for adapters that push them down to the
// backend's own filter syntax.
func (f *Filter) Conds() []Cond {
	if f == nil {
		return nil
	}
	return f.conds
}

// Matches reports whether the metadata satisfies every condition.
func (f *Filter) Matches(metadata map[string]any) bool {
	if f.Empty() {
		return true
	}
	for _, c := range f.conds {
		v, ok := metadata[c.Key]
		if !ok {
			return false
		}
		switch c.Op {
		case OpEq:
			if !equalValue(v, c.Value) {
				return false
			}
		case OpContains:
			s, ok := v.(string)
			if !ok {
				return false
			}
			if !strings.Contains(strings.ToLower(s), strings.ToLower(c.Value.(string))) {
				return false
			}
		case OpGte:
			n, ok := toFloat(v)
			if !ok || n < c.Value.(float64) {
				return false
			}
		case OpLte:
			n, ok := toFloat(v)
			if !ok || n > c.Value.(float64) {
				return false
			}
		}
	}
	return true
}

func equalValue(a, b any) bool {
	if a == b {
		return true
	}
	// Numeric metadata round-trips through JSON as float64; compare
	// numerically so int64 epoch values still match.
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return aok && bok && af == bf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
