package app

import (
	"context"
	"errors"

	"ai-workspace/internal/ai"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// BatchEmbedder is implemented by providers that can embed several texts
// in one request.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// AnswerModel generates a grounded natural-language answer.
type AnswerModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type aiEmbedder struct {
	client *ai.Client
	cfg    ai.EmbeddingConfig
}

// NewAIEmbedder wraps the OpenAI-compatible client as an Embedder.
func NewAIEmbedder(client *ai.Client, cfg ai.EmbeddingConfig) Embedder {
	return &aiEmbedder{client: client, cfg: cfg}
}

func (e *aiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}

func (e *aiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbedBatch(ctx, e.cfg, texts)
}

func (e *aiEmbedder) Dimension() int {
	return e.cfg.Dimension
}

type aiAnswerModel struct {
	client *ai.Client
	cfg    ai.ChatConfig
}

// NewAIAnswerModel wraps the OpenAI-compatible client as an AnswerModel.
func NewAIAnswerModel(client *ai.Client, cfg ai.ChatConfig) AnswerModel {
	return &aiAnswerModel{client: client, cfg: cfg}
}

func (m *aiAnswerModel) Complete(ctx context.Context, system, user string) (string, error) {
	return m.client.Complete(ctx, m.cfg, []ai.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
}
