package services

import (
	"context"
	"sync"

	"github.com/kbase-labs/kbase/internal/core/domain"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
)

// fakeEmbedder assigns each distinct text its own unit basis vector, so
// identical texts embed identically and distinct texts are orthogonal.
// Call counts expose whether the provider was touched.
type fakeEmbedder struct {
	mu         sync.Mutex
	dim        int
	name       string
	assigned   map[string]int
	embedCalls int
	failWith   error
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{dim: dim, name: "fake-embed", assigned: make(map[string]int)}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	idx, ok := f.assigned[text]
	if !ok {
		idx = len(f.assigned) % f.dim
		f.assigned[text] = idx
	}
	v := make([]float32, f.dim)
	v[idx] = 1
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dim }

func (f *fakeEmbedder) ModelName() string { return f.name }

func (f *fakeEmbedder) Ping(context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.embedCalls
}

// fakeLLM replays a script of per-call errors, then answers with a
// fixed response once the script runs out or hits a nil entry.
type fakeLLM struct {
	mu            sync.Mutex
	script        []error
	response      string
	summary       string
	pingErr       error
	generateCalls int
	lastPrompt    string
}

var _ driven.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.generateCalls
	f.generateCalls++
	f.lastPrompt = prompt
	if call < len(f.script) && f.script[call] != nil {
		return "", f.script[call]
	}
	return f.response, nil
}

func (f *fakeLLM) Summarise(_ context.Context, _ string, _ int) (string, error) {
	return f.summary, nil
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Ping(context.Context) error { return f.pingErr }

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls
}

// fakeHistory records journal entries in memory.
type fakeHistory struct {
	mu      sync.Mutex
	records []domain.IngestRecord
}

var _ driven.IngestHistory = (*fakeHistory)(nil)

func (f *fakeHistory) Record(_ context.Context, rec domain.IngestRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]domain.IngestRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.IngestRecord, n)
	for i := 0; i < n; i++ {
		out[i] = f.records[len(f.records)-1-i]
	}
	return out, nil
}

func (f *fakeHistory) Close() error { return nil }
