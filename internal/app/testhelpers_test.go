package app

import (
	"context"
	"errors"
)

// fakeEmbedder hashes text into a tiny deterministic vector so similarity
// tests stay stable without a model server.
type fakeEmbedder struct {
	dim  int
	fail bool
	// fixed overrides the derived vector per input when set.
	fixed map[string][]float32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dim: 4, fixed: map[string][]float32{}}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	if vec, ok := f.fixed[text]; ok {
		return vec, nil
	}
	vec := make([]float32, f.dim)
	for i, r := range text {
		vec[i%f.dim] += float32(r % 13)
	}
	return vec, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

// fakeBatchEmbedder additionally serves multi-chunk ingestion in one call,
// counting how each path is exercised.
type fakeBatchEmbedder struct {
	fakeEmbedder
	batchCalls int
	batchErr   error
	singles    int
}

func newFakeBatchEmbedder() *fakeBatchEmbedder {
	return &fakeBatchEmbedder{fakeEmbedder: *newFakeEmbedder()}
}

func (f *fakeBatchEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.singles++
	return f.fakeEmbedder.Embed(ctx, text)
}

func (f *fakeBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.fakeEmbedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

type fakeAnswerer struct {
	answer string
	err    error
	calls  int
	// lastUser captures the prompt for assertions on context assembly.
	lastSystem string
	lastUser   string
}

func (f *fakeAnswerer) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}
