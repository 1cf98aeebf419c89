package chunkstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/domain"
)

// wordEmbedder produces deterministic 3-dimensional vectors so tests can
// reason about which chunk is nearest.
type wordEmbedder struct {
	calls int
}

func (e *wordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	var vec [3]float32
	for _, w := range strings.Fields(strings.ToLower(text)) {
		switch {
		case strings.Contains(w, "rate"):
			vec[0]++
		case strings.Contains(w, "carrier"):
			vec[1]++
		default:
			vec[2]++
		}
	}
	return domain.EmbeddingResult{Embedding: vec[:], TotalTokens: len(text)}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New("provider down")
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	return New(path, "test-model", &wordEmbedder{}, zap.NewNop())
}

func TestQuery_NoSnapshot_ReturnsNoDocuments(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Query(context.Background(), "anything", 3)
	if !errors.Is(err, domain.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestRebuildThenQuery(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Rebuild(context.Background(), []domain.Chunk{
		{ID: "1", Text: "rate rate rate", Source: "rc.pdf"},
		{ID: "2", Text: "carrier carrier carrier", Source: "rc.pdf"},
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != 2 {
		t.Fatalf("Rebuild indexed %d chunks, want 2", n)
	}

	hits, err := s.Query(context.Background(), "rate", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.ID != "1" {
		t.Fatalf("expected chunk 1 as best hit, got %+v", hits)
	}
}

func TestRebuild_ReplacesNotMerges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Rebuild(ctx, []domain.Chunk{
		{ID: "a1", Text: "rate confirmation from document a", Source: "a.pdf"},
	}); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	if _, err := s.Rebuild(ctx, []domain.Chunk{
		{ID: "b1", Text: "carrier invoice from document b", Source: "b.pdf"},
	}); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	hits, err := s.Query(ctx, "rate confirmation", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, h := range hits {
		if h.Chunk.Source == "a.pdf" {
			t.Fatalf("retrieved chunk from replaced document: %+v", h.Chunk)
		}
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly the 1 chunk from document b, got %d", len(hits))
	}
}

func TestQuery_LazyLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	logger := zap.NewNop()

	first := New(path, "test-model", &wordEmbedder{}, logger)
	if _, err := first.Rebuild(context.Background(), []domain.Chunk{
		{ID: "1", Text: "carrier name MAQ TRANS", Source: "rc.pdf"},
	}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// A fresh handle simulates a process restart: only the snapshot survives.
	second := New(path, "test-model", &wordEmbedder{}, logger)
	hits, err := second.Query(context.Background(), "carrier", 5)
	if err != nil {
		t.Fatalf("Query after restart: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.Text != "carrier name MAQ TRANS" {
		t.Fatalf("unexpected hits after reload: %+v", hits)
	}
}

func TestQuery_EmbedderFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	good := New(path, "test-model", &wordEmbedder{}, zap.NewNop())
	if _, err := good.Rebuild(context.Background(), []domain.Chunk{
		{ID: "1", Text: "rate", Source: "rc.pdf"},
	}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	bad := New(path, "test-model", failingEmbedder{}, zap.NewNop())
	if _, err := bad.Query(context.Background(), "rate", 1); err == nil {
		t.Fatal("expected embedder failure to propagate")
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); !errors.Is(err, domain.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments before any upload, got %v", err)
	}

	if _, err := s.Rebuild(context.Background(), []domain.Chunk{
		{ID: "1", Text: "rate", Source: "rc.pdf"},
	}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping after rebuild: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}
