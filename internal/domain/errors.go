package domain

import "errors"

var (
	// ErrNoDocuments signals that no documents have ever been indexed.
	// Distinct from a search that found nothing relevant.
	ErrNoDocuments = errors.New("no documents uploaded")
	// ErrGenerationFailed signals that the answer generator was
	// unreachable or returned an error. Retryable by the caller.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingFailed signals an embedding provider failure.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrUnsupportedFormat signals an unrecognized document file extension.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDocument signals that parsing yielded no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)
