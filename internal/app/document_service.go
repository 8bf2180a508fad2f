package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"ai-workspace/internal/pkg/pdfextract"
)

const previewLimit = 1000

// DocumentInfo describes one uploaded file for listing endpoints. The ID is
// derived from the filename so it stays stable across restarts.
type DocumentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Uploaded string `json:"uploaded"`
	Preview  string `json:"preview,omitempty"`
}

type DocumentService struct {
	uploadDir string
}

func NewDocumentService(uploadDir string) *DocumentService {
	return &DocumentService{uploadDir: uploadDir}
}

// List returns one page of uploaded documents, newest first.
func (s *DocumentService) List(page, pageSize int) ([]DocumentInfo, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read upload dir: %w", err)
	}

	var docs []DocumentInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, DocumentInfo{
			ID:       documentID(entry.Name()),
			Filename: entry.Name(),
			Size:     info.Size(),
			Uploaded: info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Uploaded > docs[j].Uploaded })

	total := len(docs)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return docs[start:end], total, nil
}

// Preview returns the head of a document's text: whole-file prefix for text
// files, the first two pages for PDFs.
func (s *DocumentService) Preview(filename string) (string, error) {
	filename = filepath.Base(filename)
	path := filepath.Join(s.uploadDir, filename)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: document %q", ErrNotFound, filename)
			}
			return "", err
		}
		defer f.Close()
		text, err := pdfextract.Text(f, 2)
		if err != nil {
			return "", fmt.Errorf("extract pdf preview: %w", err)
		}
		return truncate(text, previewLimit), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: document %q", ErrNotFound, filename)
			}
			return "", err
		}
		return truncate(string(data), previewLimit), nil
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// documentID hashes the filename into a stable UUID.
func documentID(filename string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(filename)).String()
}
