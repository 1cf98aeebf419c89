// Package chunkstore owns the process-wide chunk index: an in-memory
// vector index snapshotted to a single file on disk. Callers receive an
// injected *Store handle instead of reaching into ambient state.
package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/domain"
	"github.com/haulware/loadlens/internal/index"
)

// Store answers nearest-neighbour queries over the current chunk set.
// An upload rebuilds the index wholesale; the snapshot on disk is the
// only persisted state. Query takes the read lock, Rebuild the write
// lock, so a query observes either the old or the new index, never a
// partial one.
type Store struct {
	mu       sync.RWMutex
	path     string
	model    string
	embedder domain.Embedder
	logger   *zap.Logger

	idx    *index.Index // nil until first load or rebuild
	loaded bool         // disk load attempted
}

// New creates a store handle. path is the snapshot location, model the
// embedding model name recorded in snapshots.
func New(path, model string, embedder domain.Embedder, logger *zap.Logger) *Store {
	return &Store{path: path, model: model, embedder: embedder, logger: logger}
}

// Query embeds text and returns up to k chunks ordered by increasing
// distance. Returns domain.ErrNoDocuments when nothing has ever been
// indexed.
func (s *Store) Query(ctx context.Context, text string, k int) ([]domain.Retrieved, error) {
	idx, err := s.current()
	if err != nil {
		return nil, err
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Search(res.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// Rebuild embeds the chunks, replaces the whole index and persists the
// new snapshot. Returns the number of indexed chunks.
func (s *Store) Rebuild(ctx context.Context, chunks []domain.Chunk) (int, error) {
	entries := make([]index.Entry, 0, len(chunks))
	for i, c := range chunks {
		res, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		entries = append(entries, index.Entry{Chunk: c, Embedding: res.Embedding})
	}

	idx, err := index.Build(entries)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := index.Save(idx, s.model, s.path); err != nil {
		return 0, fmt.Errorf("persist index: %w", err)
	}
	s.idx = idx
	s.loaded = true

	s.logger.Info("Chunk index rebuilt",
		zap.Int("chunks", idx.Len()),
		zap.Int("dimensions", idx.Dimensions()),
		zap.String("path", s.path),
	)
	return idx.Len(), nil
}

// Len reports the number of indexed chunks, 0 when nothing is loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return 0
	}
	return s.idx.Len()
}

// Ping reports whether the store is usable: an index is loaded or a
// snapshot exists on disk.
func (s *Store) Ping(_ context.Context) error {
	if _, err := s.current(); err != nil {
		return err
	}
	return nil
}

// current returns the live index, lazily loading the snapshot from disk
// on first access after process start.
func (s *Store) current() (*index.Index, error) {
	s.mu.RLock()
	if s.idx != nil {
		idx := s.idx
		s.mu.RUnlock()
		return idx, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx != nil {
		return s.idx, nil
	}
	if s.loaded {
		return nil, domain.ErrNoDocuments
	}

	idx, model, err := index.Load(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil, domain.ErrNoDocuments
		}
		return nil, fmt.Errorf("load index snapshot: %w", err)
	}
	s.loaded = true

	if model != s.model {
		s.logger.Warn("Index snapshot was built with a different embedding model",
			zap.String("snapshot_model", model),
			zap.String("configured_model", s.model),
		)
	}

	s.logger.Info("Chunk index loaded from disk",
		zap.Int("chunks", idx.Len()),
		zap.String("path", s.path),
	)
	s.idx = idx
	return s.idx, nil
}
