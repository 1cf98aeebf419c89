// Package answer implements grounded question answering over uploaded
// logistics documents: retrieval, the similarity gate, prompt assembly
// and confidence scoring.
package answer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/haulware/loadlens/internal/domain"
	"github.com/haulware/loadlens/internal/logger"

	"go.uber.org/zap"
)

// chunkSeparator joins retrieved chunk texts into one context block. The
// marker line keeps the generator from reading a chunk boundary as content.
const chunkSeparator = "\n---\n"

const systemPrompt = `You are a highly accurate Logistics Data Analyst. Your task is to answer questions based on provided shipping documents (Rate Confirmations, Invoices, BOLs, and Emails).

CRITICAL INSTRUCTIONS:
1. Multi-Document Awareness: One document may contain an Invoice on page 1 and a BOL on page 7. Search the entire context for the answer.
2. Synonym Matching: Logistics terms vary. Look for these equivalents:
   - Shipment ID: Load ID, PO#, Ref#, Booking#, Job ID.
   - Shipper: Origin, Pickup, From, Loading point.
   - Consignee: Destination, Receiver, Drop-off, Unloading point, To.
   - Delivery Date: Drop Date, Arrival Date, Scheduled Unload, POD Date.
3. Precision: If a date has a time associated with it (e.g., 01-23-2026 10:00), include the time.
4. Fact-Check: If you find conflicting information, prioritize the 'Bill of Lading' (BOL) or 'Proof of Delivery' (POD) for actual dates/weights, and the 'Rate Confirmation' for pricing.
5. If the information is truly missing, say: 'I'm sorry, that information is not specified in the document.'`

// Confidence blend weights: retrieval relevance is the more reliable
// signal, the grounding heuristic is deliberately capped.
const (
	similarityWeight = 0.7
	groundingWeight  = 0.3
)

// groundingTokenLimit caps how many leading answer tokens the grounding
// heuristic inspects.
const groundingTokenLimit = 10

// Service is the query answering engine.
type Service struct {
	retriever Retriever
	generator Generator
	topK      int
	threshold float64
}

// New creates an answering service. topK and threshold are process-wide
// retrieval settings shared by every caller.
func New(retriever Retriever, generator Generator, topK int, threshold float64) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		topK:      topK,
		threshold: threshold,
	}
}

// Ask answers a question grounded in the uploaded documents.
//
// Retrieval runs first; when the best-match similarity is below the
// configured threshold the engine fails closed with the canonical
// not-found answer and never calls the generator. A store that has never
// been populated surfaces domain.ErrNoDocuments instead. Generation
// failures propagate wrapped in domain.ErrGenerationFailed so the caller
// can retry rather than receive a fabricated answer.
func (s *Service) Ask(ctx context.Context, question string) (domain.Answer, error) {
	hits, err := s.retriever.Query(ctx, question, s.topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve context: %w", err)
	}

	best := domain.BestSimilarity(hits)
	if best < s.threshold {
		logger.FromContext(ctx).Info("Similarity gate failed closed",
			zap.Float64("best_similarity", best),
			zap.Float64("threshold", s.threshold),
			zap.Int("hits", len(hits)),
		)
		return domain.NewNotFoundAnswer(), nil
	}

	sources := make([]string, len(hits))
	for i, h := range hits {
		sources[i] = h.Chunk.Text
	}
	contextBlock := strings.Join(sources, chunkSeparator)

	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, question)
	text, err := s.generator.Generate(ctx, systemPrompt, user)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	bonus := groundingBonus(text, contextBlock)
	confidence := round2(similarityWeight*domain.MeanSimilarity(hits) + groundingWeight*bonus)

	return domain.Answer{
		Answer:               text,
		SupportingSourceText: sources,
		ConfidenceScore:      confidence,
	}, nil
}

// groundingBonus is a cheap, no-extra-call check for whether the answer
// appears to quote the retrieved context: 1.0 if any of the first ten
// case-folded answer tokens occurs in the case-folded context, else 0.5.
// One matching token suffices, which is lenient on purpose; the blend
// weight caps its influence.
func groundingBonus(answerText, contextBlock string) float64 {
	tokens := strings.Fields(answerText)
	if len(tokens) > groundingTokenLimit {
		tokens = tokens[:groundingTokenLimit]
	}

	haystack := strings.ToLower(contextBlock)
	for _, tok := range tokens {
		if strings.Contains(haystack, strings.ToLower(tok)) {
			return 1.0
		}
	}
	return 0.5
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
