package docparse

import (
	"strings"

	"github.com/google/uuid"

	"github.com/haulware/loadlens/internal/domain"
)

// Chunk splits text into overlapping word windows of size words, tagged
// with the source document name. overlap words are carried between
// consecutive chunks so sentences cut at a boundary stay retrievable.
func Chunk(text, source string, words, overlap int) []domain.Chunk {
	if words <= 0 {
		words = 220
	}
	if overlap < 0 || overlap >= words {
		overlap = 0
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	step := words - overlap
	var chunks []domain.Chunk
	for start := 0; start < len(fields); start += step {
		end := start + words
		if end > len(fields) {
			end = len(fields)
		}
		chunks = append(chunks, domain.Chunk{
			ID:     uuid.NewString(),
			Text:   strings.Join(fields[start:end], " "),
			Source: source,
		})
		if end == len(fields) {
			break
		}
	}
	return chunks
}
