// Package googledocs imports Google Docs by URL into the index, caching the
// extracted text locally.
package googledocs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"ai-workspace/internal/app"
	"ai-workspace/internal/connector/gmail"
	"ai-workspace/internal/model"
)

var ErrInvalidURL = errors.New("invalid google docs url")

var docPathRE = regexp.MustCompile(`/document/d/([a-zA-Z0-9_-]+)`)

// ExtractDocumentID resolves the two URL shapes Docs links come in:
// "/document/d/<id>/..." and "...?id=<id>".
func ExtractDocumentID(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidURL
	}
	if m := docPathRE.FindStringSubmatch(parsed.Path); m != nil {
		return m[1], nil
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id, nil
	}
	return "", ErrInvalidURL
}

type Importer struct {
	ingest   *app.IngestService
	oauth    *oauth2.Config
	tokens   *gmail.TokenStore
	cacheDir string
}

func NewImporter(ingest *app.IngestService, oauth *oauth2.Config, tokens *gmail.TokenStore, cacheDir string) *Importer {
	return &Importer{
		ingest:   ingest,
		oauth:    oauth,
		tokens:   tokens,
		cacheDir: cacheDir,
	}
}

// ImportResult reports what one import stored.
type ImportResult struct {
	Title    string `json:"title"`
	Chunks   int    `json:"chunks"`
	CacheTxt string `json:"cache_file"`
}

// Import fetches a document with the account's Google credential, caches
// the extracted text, and indexes it as a single chunk.
func (i *Importer) Import(ctx context.Context, account, rawURL string) (*ImportResult, error) {
	docID, err := ExtractDocumentID(rawURL)
	if err != nil {
		return nil, err
	}

	token, err := i.tokens.Load(account)
	if err != nil {
		return nil, err
	}
	source := i.oauth.TokenSource(ctx, token)

	docsService, err := docsapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("build docs client failed: %w", err)
	}
	doc, err := docsService.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch document failed: %w", err)
	}

	text := documentText(doc)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document %q has no extractable text", doc.Title)
	}

	modified := i.modifiedTime(ctx, source, docID)

	cachePath, err := i.writeCache(doc.Title, text)
	if err != nil {
		return nil, err
	}

	meta := model.GoogleDocMeta{
		Title:    doc.Title,
		URL:      rawURL,
		FilePath: cachePath,
	}
	extra := meta.Map()
	if modified != "" {
		extra["modified_time"] = modified
	}
	stored := i.ingest.IngestChunks(ctx, []string{text}, "google_doc_"+sanitizeTitle(doc.Title), extra)

	return &ImportResult{
		Title:    doc.Title,
		Chunks:   stored,
		CacheTxt: cachePath,
	}, nil
}

// modifiedTime is best effort; a missing Drive scope should not block the
// import.
func (i *Importer) modifiedTime(ctx context.Context, source oauth2.TokenSource, docID string) string {
	driveService, err := driveapi.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return ""
	}
	file, err := driveService.Files.Get(docID).Fields("modifiedTime").Context(ctx).Do()
	if err != nil {
		return ""
	}
	return file.ModifiedTime
}

func (i *Importer) writeCache(title, text string) (string, error) {
	if err := os.MkdirAll(i.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir failed: %w", err)
	}
	path := filepath.Join(i.cacheDir, "google_doc_"+sanitizeTitle(title)+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write cache file failed: %w", err)
	}
	return path, nil
}

// documentText walks the document body collecting paragraph text runs.
func documentText(doc *docsapi.Document) string {
	if doc.Body == nil {
		return ""
	}
	var b strings.Builder
	for _, element := range doc.Body.Content {
		if element.Paragraph == nil {
			continue
		}
		for _, pe := range element.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
	}
	return b.String()
}

var unsafeTitleRE = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeTitle(title string) string {
	cleaned := unsafeTitleRE.ReplaceAllString(title, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "untitled"
	}
	return cleaned
}
