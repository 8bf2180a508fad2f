package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-workspace/internal/extract"
	"ai-workspace/internal/model"
	"ai-workspace/internal/vectorstore"
)

// IngestService turns raw content into embedded chunks in the vector store.
type IngestService struct {
	store    vectorstore.Store
	embedder Embedder
}

func NewIngestService(store vectorstore.Store, embedder Embedder) *IngestService {
	return &IngestService{store: store, embedder: embedder}
}

// IngestChunks embeds and upserts each chunk under the id
// "{sourceLabel}_{index}", merging extra metadata with the source tag and
// chunk index. A failing chunk is logged and skipped; the count of chunks
// actually stored is returned. Re-ingesting the same source overwrites the
// same ids.
func (s *IngestService) IngestChunks(ctx context.Context, chunks []string, sourceLabel string, extra map[string]any) int {
	var indices []int
	var texts []string
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		indices = append(indices, i)
		texts = append(texts, chunk)
	}

	vectors := s.embedAll(ctx, texts)

	stored := 0
	for j, i := range indices {
		metadata := map[string]any{
			model.MetaSource:     sourceLabel,
			model.MetaChunkIndex: i,
		}
		for k, v := range extra {
			metadata[k] = v
		}

		id := fmt.Sprintf("%s_%d", sourceLabel, i)
		if err := s.store.Upsert(ctx, id, texts[j], metadata, vectors[j]); err != nil {
			log.Printf("ingest: upsert chunk %s failed: %v", id, err)
			continue
		}
		stored++
	}
	return stored
}

// embedAll prefers one batch request when the provider supports it, falling
// back to per-chunk embedding with zero-vector degradation.
func (s *IngestService) embedAll(ctx context.Context, texts []string) [][]float32 {
	if batch, ok := s.embedder.(BatchEmbedder); ok && len(texts) > 1 {
		vectors, err := batch.EmbedBatch(ctx, texts)
		if err == nil && len(vectors) == len(texts) {
			return vectors
		}
		if err != nil {
			log.Printf("ingest: batch embedding failed, falling back per chunk: %v", err)
		}
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = s.EmbedOrZero(ctx, text)
	}
	return vectors
}

// IngestOne stores a single chunk under an explicit id (connectors derive
// ids from their own identifiers, e.g. "email_{msgid}").
func (s *IngestService) IngestOne(ctx context.Context, id, content string, metadata map[string]any) error {
	if strings.TrimSpace(content) == "" {
		return ErrInvalidInput
	}
	if err := s.store.Upsert(ctx, id, content, metadata, s.EmbedOrZero(ctx, content)); err != nil {
		return fmt.Errorf("store chunk %s failed: %w", id, err)
	}
	return nil
}

// IngestFile extracts the file at path and ingests the chunks under
// sourceLabel. Extraction failures abort before anything is stored.
func (s *IngestService) IngestFile(ctx context.Context, path, sourceLabel string, extra map[string]any) (int, error) {
	chunks, err := extract.Chunks(path)
	if err != nil {
		return 0, err
	}
	return s.IngestChunks(ctx, chunks, sourceLabel, extra), nil
}

// EmbedOrZero returns the embedding for text, degrading to a zero vector of
// the provider's dimensionality on failure. An all-zero vector is
// semantically meaningless but keeps batch ingestion moving.
func (s *IngestService) EmbedOrZero(ctx context.Context, text string) []float32 {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("ingest: embedding failed, storing zero vector: %v", err)
		return make([]float32, s.embedder.Dimension())
	}
	return vec
}
