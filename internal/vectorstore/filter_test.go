package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	t.Parallel()

	meta := map[string]any{
		"source":  "gmail",
		"from":    "Alice Example <alice@example.com>",
		"date":    int64(1700000000000),
		"chunk_i": 3,
	}

	t.Run("eq matches exact value", func(t *testing.T) {
		t.Parallel()
		assert.True(t, NewFilter().Eq("source", "gmail").Matches(meta))
		assert.False(t, NewFilter().Eq("source", "slack").Matches(meta))
	})

	t.Run("eq on missing key fails", func(t *testing.T) {
		t.Parallel()
		assert.False(t, NewFilter().Eq("missing", "x").Matches(meta))
	})

	t.Run("contains is case insensitive substring", func(t *testing.T) {
		t.Parallel()
		assert.True(t, NewFilter().Contains("from", "ALICE").Matches(meta))
		assert.True(t, NewFilter().Contains("from", "example.com").Matches(meta))
		assert.False(t, NewFilter().Contains("from", "bob").Matches(meta))
	})

	t.Run("gte and lte coerce numeric types", func(t *testing.T) {
		t.Parallel()
		assert.True(t, NewFilter().Gte("date", 1699999999999).Matches(meta))
		assert.False(t, NewFilter().Gte("date", 1800000000000).Matches(meta))
		assert.True(t, NewFilter().Lte("chunk_i", 3.0).Matches(meta))
		assert.False(t, NewFilter().Lte("chunk_i", 2).Matches(meta))
	})

	t.Run("conditions are conjunctive", func(t *testing.T) {
		t.Parallel()
		f := NewFilter().Eq("source", "gmail").Contains("from", "alice").Gte("date", 0)
		assert.True(t, f.Matches(meta))

		f = NewFilter().Eq("source", "gmail").Contains("from", "bob")
		assert.False(t, f.Matches(meta))
	})

	t.Run("nil and empty filters match everything", func(t *testing.T) {
		t.Parallel()
		var f *Filter
		assert.True(t, f.Matches(meta))
		assert.True(t, NewFilter().Matches(meta))
		assert.True(t, NewFilter().Empty())
	})
}
