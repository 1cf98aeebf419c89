package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haulware/loadlens/internal/domain"
)

// snapshot is the on-disk representation of an index.
type snapshot struct {
	Model      string          `json:"model"`
	Dimensions int             `json:"dimensions"`
	Chunks     []snapshotChunk `json:"chunks"`
}

type snapshotChunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding"`
}

// Save writes the index to path atomically (temp file + rename).
// model records which embedding model produced the vectors.
func Save(x *Index, model, path string) error {
	snap := snapshot{
		Model:      model,
		Dimensions: x.Dimensions(),
		Chunks:     make([]snapshotChunk, 0, x.Len()),
	}
	for _, e := range x.Entries() {
		snap.Chunks = append(snap.Chunks, snapshotChunk{
			ID:        e.Chunk.ID,
			Text:      e.Chunk.Text,
			Source:    e.Chunk.Source,
			Embedding: e.Embedding,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads an index snapshot from path. Returns the index and the
// embedding model name recorded at save time.
func Load(path string) (*Index, string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", fmt.Errorf("decode snapshot: %w", err)
	}

	entries := make([]Entry, 0, len(snap.Chunks))
	for _, c := range snap.Chunks {
		entries = append(entries, Entry{
			Chunk:     domain.Chunk{ID: c.ID, Text: c.Text, Source: c.Source},
			Embedding: c.Embedding,
		})
	}

	x, err := Build(entries)
	if err != nil {
		return nil, "", fmt.Errorf("rebuild index from snapshot: %w", err)
	}
	return x, snap.Model, nil
}
