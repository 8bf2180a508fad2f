package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ai-workspace/internal/vectorstore"
)

// deleteFields are the metadata fields a document name can refer to. A chunk
// belongs to the named document when any of them matches, so chunks written
// by different connectors under different field names all go together.
var deleteFields = []string{"original_filename", "source", "filename", "file_path", "title"}

const deleteScanLimit = 10000

type DeleteService struct {
	store     vectorstore.Store
	uploadDir string
}

func NewDeleteService(store vectorstore.Store, uploadDir string) *DeleteService {
	return &DeleteService{store: store, uploadDir: uploadDir}
}

// DeleteByName removes every chunk belonging to the named document and then
// best-effort removes the raw file from the upload directory. A name matches
// a chunk when any candidate field equals it exactly or has it as the path
// basename.
func (s *DeleteService) DeleteByName(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty document name", ErrInvalidInput)
	}

	records, err := s.store.Get(ctx, nil, deleteScanLimit)
	if err != nil {
		return 0, fmt.Errorf("scan chunks: %w", err)
	}

	var ids []string
	var sourceFile string
	for _, rec := range records {
		if !matchesName(rec.Metadata, name) {
			continue
		}
		ids = append(ids, rec.ID)
		if sourceFile == "" {
			if src, ok := rec.Metadata["source"].(string); ok {
				sourceFile = src
			}
		}
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: document %q", ErrNotFound, name)
	}

	if err := s.store.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}

	// The on-disk filename comes from the first match's source metadata;
	// the requested name may have matched a different field.
	if sourceFile == "" {
		sourceFile = name
	}
	path := filepath.Join(s.uploadDir, filepath.Base(sourceFile))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove uploaded file %s: %v", path, err)
	}

	return len(ids), nil
}

func matchesName(meta map[string]any, name string) bool {
	for _, field := range deleteFields {
		value, ok := meta[field].(string)
		if !ok || value == "" {
			continue
		}
		if value == name || filepath.Base(value) == name {
			return true
		}
	}
	return false
}
