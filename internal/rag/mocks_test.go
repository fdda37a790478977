package rag_test

import (
	"context"
	"sync"

	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
)

// MockVectorDB implements vectorDB.DataProcessor
type MockVectorDB struct {
	OnSearch           func(ctx context.Context, vectorVal []float32, limit uint64) ([]commonModels.Reference, error)
	OnGetCachedAnswer  func(ctx context.Context, queryVector []float32) (string, bool, error)
	OnSaveToCache      func(ctx context.Context, id string, vector []float32, question string, answer string) error
	OnCreateCollection func(ctx context.Context, name string) error
	OnUpsertBatch      func(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error

	mu          sync.Mutex
	cacheWrites int
}

func (m *MockVectorDB) Search(ctx context.Context, v []float32, limit uint64) ([]commonModels.Reference, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, v, limit)
	}
	return []commonModels.Reference{{Content: "default context", DocName: "Handbook", PageNum: 1}}, nil
}

func (m *MockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	if m.OnGetCachedAnswer != nil {
		return m.OnGetCachedAnswer(ctx, v)
	}
	return "", false, nil
}

func (m *MockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, q string, a string) error {
	m.mu.Lock()
	m.cacheWrites++
	m.mu.Unlock()
	if m.OnSaveToCache != nil {
		return m.OnSaveToCache(ctx, id, v, q, a)
	}
	return nil
}

func (m *MockVectorDB) CacheWrites() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cacheWrites
}

func (m *MockVectorDB) CreateCollection(ctx context.Context, name string) error {
	if m.OnCreateCollection != nil {
		return m.OnCreateCollection(ctx, name)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, name, chunks, vectors)
	}
	return nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error)
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string, isHuge bool) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks, isHuge)
	}
	return make([][]float32, len(chunks)), nil
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "Answer: mocked llm response", nil
}

type MockRecorder struct {
	mu      sync.Mutex
	Records []commonModels.Consultation
}

func (m *MockRecorder) Record(ctx context.Context, c commonModels.Consultation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, c)
	return nil
}
