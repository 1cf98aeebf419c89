// Package ingest handles document upload: parse to text, chunk, and
// rebuild the chunk store. An upload replaces the indexed document set
// wholesale rather than merging into it.
package ingest

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/docparse"
	"github.com/haulware/loadlens/internal/domain"
	"github.com/haulware/loadlens/internal/logger"
)

// Service turns an uploaded document into the new chunk store contents.
type Service struct {
	store        Rebuilder
	chunkWords   int
	overlapWords int
}

// New creates an ingest service with the configured chunking window.
func New(store Rebuilder, chunkWords, overlapWords int) *Service {
	return &Service{store: store, chunkWords: chunkWords, overlapWords: overlapWords}
}

// Upload parses the document, chunks its text and rebuilds the store.
// Returns the number of indexed chunks. Unrecognized extensions surface
// domain.ErrUnsupportedFormat.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (int, error) {
	text, err := docparse.Parse(filename, r)
	if err != nil {
		return 0, fmt.Errorf("parse document: %w", err)
	}

	chunks := docparse.Chunk(text, filename, s.chunkWords, s.overlapWords)
	if len(chunks) == 0 {
		return 0, domain.ErrEmptyDocument
	}

	n, err := s.store.Rebuild(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("rebuild store: %w", err)
	}

	logger.FromContext(ctx).Info("Document ingested",
		zap.String("filename", filename),
		zap.Int("chunks", n),
	)
	return n, nil
}
