package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-workspace/internal/vectorstore/memory"
)

func seededQueryService(t *testing.T) (*QueryService, *memory.Store, *fakeEmbedder, *fakeAnswerer) {
	t.Helper()
	store := memory.New()
	embedder := newFakeEmbedder()
	answerer := &fakeAnswerer{answer: "the meeting is at noon"}
	svc := NewQueryService(store, embedder, answerer)
	return svc, store, embedder, answerer
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := seededQueryService(t)

	_, err := svc.Search(context.Background(), "   ", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearchReturnsNearestChunk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, embedder, _ := seededQueryService(t)

	embedder.fixed["hello world"] = []float32{1, 0, 0, 0}
	embedder.fixed["unrelated"] = []float32{0, 1, 0, 0}
	embedder.fixed["hello"] = []float32{0.9, 0.1, 0, 0}

	require.NoError(t, store.Upsert(ctx, "notes.txt_0", "hello world", map[string]any{"source": "notes.txt"}, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, "other.txt_0", "unrelated", map[string]any{"source": "other.txt"}, []float32{0, 1, 0, 0}))

	results, err := svc.Search(ctx, "hello", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.txt_0", results[0].ID)
	assert.Less(t, results[0].Distance, 0.5)
}

func TestSearchAllSkipsEmbedding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, embedder, _ := seededQueryService(t)

	embedder.fail = true
	require.NoError(t, store.Upsert(ctx, "a", "one", map[string]any{"source": "x"}, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, "b", "two", map[string]any{"source": "y"}, []float32{0, 1, 0, 0}))

	results, err := svc.Search(ctx, "all", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestAnswerFallsBackWhenModelFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, answerer := seededQueryService(t)

	answerer.err = errors.New("model unreachable")
	require.NoError(t, store.Upsert(ctx, "notes.txt_0", "the meeting is at noon", map[string]any{"source": "notes.txt"}, []float32{1, 0, 0, 0}))

	answer, results, err := svc.Answer(ctx, "when is the meeting", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.NotEmpty(t, answer)
	assert.Contains(t, answer, "the meeting is at noon")
}

func TestAnswerWithNoResults(t *testing.T) {
	t.Parallel()
	svc, _, _, answerer := seededQueryService(t)

	answer, results, err := svc.Answer(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotEmpty(t, answer)
	assert.Zero(t, answerer.calls)
}

func TestAnswerGroundsPromptInRetrievedContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, answerer := seededQueryService(t)

	require.NoError(t, store.Upsert(ctx, "notes.txt_0", "project kickoff on friday", map[string]any{"source": "notes.txt"}, []float32{1, 0, 0, 0}))

	answer, _, err := svc.Answer(ctx, "when is kickoff", 3)
	require.NoError(t, err)
	assert.Equal(t, "the meeting is at noon", answer)
	assert.Contains(t, answerer.lastUser, "project kickoff on friday")
	assert.Contains(t, answerer.lastUser, "when is kickoff")
}

func TestSearchEmailsFiltersToGmailSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := seededQueryService(t)

	now := time.Now().UnixMilli()
	require.NoError(t, store.Upsert(ctx, "email_1", "From: alice\n\nlunch plans", map[string]any{
		"source": "gmail", "from": "alice@example.com", "subject": "lunch", "date": now,
	}, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, "notes.txt_0", "lunch notes", map[string]any{
		"source": "notes.txt",
	}, []float32{1, 0, 0, 0}))

	results, err := svc.SearchEmails(ctx, EmailSearchParams{Query: "all", TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "email_1", results[0].ID)
}

func TestSearchEmailsAppliesStructuredFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := seededQueryService(t)

	now := time.Now().UnixMilli()
	old := time.Now().AddDate(0, 0, -30).UnixMilli()

	require.NoError(t, store.Upsert(ctx, "email_new", "recent mail", map[string]any{
		"source": "gmail", "from": "Alice <alice@example.com>", "subject": "status update", "date": now,
	}, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, "email_old", "old mail", map[string]any{
		"source": "gmail", "from": "alice@example.com", "subject": "status update", "date": old,
	}, []float32{1, 0, 0, 0}))
	require.NoError(t, store.Upsert(ctx, "email_other", "other sender", map[string]any{
		"source": "gmail", "from": "bob@example.com", "subject": "status update", "date": now,
	}, []float32{1, 0, 0, 0}))

	results, err := svc.SearchEmails(ctx, EmailSearchParams{Query: "all", From: "ALICE", Days: 7, TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "email_new", results[0].ID)
}

func TestSearchEmailsRecoversMissingFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := seededQueryService(t)

	content := "From: carol.smith@example.com\nSubject: quarterly numbers\n\nthe numbers look good"
	require.NoError(t, store.Upsert(ctx, "email_1", content, map[string]any{
		"source": "gmail", "date": time.Now().UnixMilli(),
	}, []float32{1, 0, 0, 0}))

	results, err := svc.SearchEmails(ctx, EmailSearchParams{Query: "all", TopK: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Carol Smith", results[0].Metadata["from"])
	assert.Equal(t, "quarterly numbers", results[0].Metadata["subject"])
}

func TestAnswerEmailsCountsForFilterOnlyQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, answerer := seededQueryService(t)

	require.NoError(t, store.Upsert(ctx, "email_1", "mail", map[string]any{
		"source": "gmail", "from": "alice@example.com", "subject": "x", "date": time.Now().UnixMilli(),
	}, []float32{1, 0, 0, 0}))

	answer, results, err := svc.AnswerEmails(ctx, EmailSearchParams{From: "alice"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, answer, "1")
	assert.Zero(t, answerer.calls)
}
