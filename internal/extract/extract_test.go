package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChunksTextFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "notes.txt", "hello world")
	chunks, err := Chunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunksUnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "image.png", "not really an image")
	_, err := Chunks(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".txt")
}

func TestChunksExtensionIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "NOTES.TXT", "upper case name")
	chunks, err := Chunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
}

func TestChunksPlainEmail(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: alice@example.com",
		"To: bob@example.com",
		"Subject: lunch",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"see you at noon",
	}, "\r\n")

	path := writeFile(t, "mail.eml", raw)
	chunks, err := Chunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "see you at noon")
}

func TestChunksMultipartEmailPrefersPlainText(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"From: alice@example.com",
		"Subject: multipart",
		`Content-Type: multipart/alternative; boundary="xyz"`,
		"",
		"--xyz",
		"Content-Type: text/html",
		"",
		"<p>html body</p>",
		"--xyz",
		"Content-Type: text/plain",
		"",
		"plain body",
		"--xyz--",
	}, "\r\n")

	path := writeFile(t, "mail.eml", raw)
	chunks, err := Chunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "plain body")
	assert.NotContains(t, chunks[0], "<p>")
}

func TestChunksMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Chunks(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
