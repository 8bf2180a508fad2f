package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-workspace/internal/model"
)

func writeEmail(t *testing.T, dir string, e model.StoredEmail) {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, e.MessageID+".json"), data, 0o644))
}

func TestEmailFileSearchMatchesSubstrings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	now := time.Now().UnixMilli()

	writeEmail(t, dir, model.StoredEmail{MessageID: "m1", From: "Alice <alice@example.com>", Subject: "lunch plans", Body: "noon?", Date: now})
	writeEmail(t, dir, model.StoredEmail{MessageID: "m2", From: "bob@example.com", Subject: "status", Body: "all green", Date: now})

	search := NewEmailFileSearch(dir)

	results, err := search.Search(EmailSearchParams{From: "ALICE"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].MessageID)

	results, err = search.Search(EmailSearchParams{Query: "green"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m2", results[0].MessageID)
}

func TestEmailFileSearchNewestFirstAndLimited(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	for i, id := range []string{"m1", "m2", "m3"} {
		writeEmail(t, dir, model.StoredEmail{
			MessageID: id,
			From:      "alice@example.com",
			Date:      time.Now().AddDate(0, 0, -i).UnixMilli(),
		})
	}

	search := NewEmailFileSearch(dir)
	results, err := search.Search(EmailSearchParams{From: "alice", TopK: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "m1", results[0].MessageID)
	assert.Equal(t, "m2", results[1].MessageID)
}

func TestEmailFileSearchDaysCutoff(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeEmail(t, dir, model.StoredEmail{MessageID: "recent", From: "a@x.com", Date: time.Now().UnixMilli()})
	writeEmail(t, dir, model.StoredEmail{MessageID: "ancient", From: "a@x.com", Date: time.Now().AddDate(0, 0, -60).UnixMilli()})

	search := NewEmailFileSearch(dir)
	results, err := search.Search(EmailSearchParams{Days: 7})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "recent", results[0].MessageID)
}

func TestEmailFileSearchSkipsCorruptFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeEmail(t, dir, model.StoredEmail{MessageID: "ok", From: "a@x.com", Date: time.Now().UnixMilli()})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("plain"), 0o644))

	search := NewEmailFileSearch(dir)
	results, err := search.Search(EmailSearchParams{})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestEmailFileSearchMissingDir(t *testing.T) {
	t.Parallel()

	search := NewEmailFileSearch(filepath.Join(t.TempDir(), "does-not-exist"))
	results, err := search.Search(EmailSearchParams{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
