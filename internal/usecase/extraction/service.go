// Package extraction pulls the fixed shipment schema out of whatever
// documents are currently indexed: schema-directed prompting, robust
// JSON recovery from the generator output, and an all-absent fallback
// record when the output cannot be trusted.
package extraction

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/haulware/loadlens/internal/domain"
	"github.com/haulware/loadlens/internal/logger"
	"github.com/haulware/loadlens/internal/metrics"
)

// retrievalQuery is a keyword pseudo-query covering the extraction
// schema's vocabulary; it stands in for a real "extract shipment data"
// query embedding. TODO: accept a document identifier once uploads keep
// per-document chunk sets instead of one rebuilt store.
const retrievalQuery = "shipment details load ID rate confirmation carrier shipper consignee weight equipment"

// topK is fixed: extraction always works from the 6 nearest chunks.
const topK = 6

const chunkSeparator = "\n---\n"

const systemPrompt = `You are a logistics data extraction specialist. Your goal is to extract shipment details into a valid JSON object. Follow these rules strictly:
1. Use 'null' if a field is not found.
2. Ensure currency is an ISO code (e.g., USD). Default to USD if '$' is used.
3. Extract the 'rate' as a raw number without symbols.
4. For 'mode', identify if it is FTL (Full Truckload) or LTL.
5. The output must be ONLY a JSON object, no conversational filler.`

const fieldInstructions = `Extract the following fields:
- shipment_id (Look for 'Load ID', 'PO/LOAD #', or 'Reference ID')
- shipper (Origin company)
- consignee (Destination company)
- pickup_datetime
- delivery_datetime
- equipment_type (e.g., Van, Straight Box Truck, Reefer)
- mode (FTL/LTL)
- rate (Total agreed amount)
- currency (Default to USD if '$' is used)
- weight (Include units, e.g., '40000 lbs')
- carrier_name

Resulting JSON:`

// Service is the extraction engine.
type Service struct {
	retriever Retriever
	generator Generator
}

// New creates an extraction service.
func New(retriever Retriever, generator Generator) *Service {
	return &Service{retriever: retriever, generator: generator}
}

// Extract produces a ShipmentExtraction from the current chunk store.
//
// There is no similarity gate: a "cannot extract" outcome is itself
// representable as the all-absent record, so generation is always
// attempted once context exists. Generation failures and malformed
// output degrade to the fallback record instead of failing the caller;
// only domain.ErrNoDocuments is surfaced, because "nothing to extract
// from" is actionable by the user while a flaky model is not.
func (s *Service) Extract(ctx context.Context) (domain.ShipmentExtraction, error) {
	hits, err := s.retriever.Query(ctx, retrievalQuery, topK)
	if err != nil {
		return domain.ShipmentExtraction{}, fmt.Errorf("retrieve context: %w", err)
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Chunk.Text
	}
	contextBlock := strings.Join(texts, chunkSeparator)

	user := fmt.Sprintf("Context from documents:\n%s\n\n%s", contextBlock, fieldInstructions)

	log := logger.FromContext(ctx)

	raw, err := s.generator.Generate(ctx, systemPrompt, user)
	if err != nil {
		log.Warn("Extraction generation failed, returning empty record", zap.Error(err))
		metrics.ExtractionFallbacksTotal.WithLabelValues("generation").Inc()
		return domain.EmptyShipmentExtraction(), nil
	}

	record, err := parseShipment(raw)
	if err != nil {
		log.Warn("Extraction output rejected, returning empty record",
			zap.Error(err),
			zap.Int("output_len", len(raw)),
		)
		metrics.ExtractionFallbacksTotal.WithLabelValues("malformed").Inc()
		return domain.EmptyShipmentExtraction(), nil
	}

	return record, nil
}
