package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ticketbot/internal/classifier"
	"ticketbot/internal/domain"
)

// Prioritized response fields. Which list applies depends on whether the
// ticket's marker field carried a value (the primary status vocabulary).
var (
	primaryFields   = []string{"loan_status", "repayment_status", "last_stage_checklist"}
	secondaryFields = []string{"lr_status", "disbursement_completion_date"}
)

// Engine embeds a query, searches the category's collection top-k, and
// extracts a response value via the prioritized field list.
type Engine struct {
	embedder domain.Embedder
	store    domain.VectorIndex
	table    map[string]string
	topK     int
}

func NewEngine(embedder domain.Embedder, store domain.VectorIndex, sanitizationTable map[string]string, topK int) *Engine {
	if sanitizationTable == nil {
		sanitizationTable = classifier.DefaultSanitizationTable()
	}
	if topK < 1 {
		topK = 1
	}
	return &Engine{
		embedder: embedder,
		store:    store,
		table:    sanitizationTable,
		topK:     topK,
	}
}

// Retrieve returns the best-matching knowledge row for the category. An
// empty collection or no candidate yields an empty SearchResult, not an
// error. A candidate whose fields carry no usable response value sets
// FieldMissing, which the composer resolves via template fallback.
// ErrCollectionNotFound and ErrBackendUnavailable are terminal for the
// current ticket.
func (e *Engine) Retrieve(ctx context.Context, category, queryText string, usingPrimaryKeys bool) (domain.RetrievalOutcome, error) {
	outcome := domain.RetrievalOutcome{Category: category}

	name := classifier.CanonicalCategory(category, e.table)
	if name == "" {
		return outcome, fmt.Errorf("%w: category %q resolves to no collection", domain.ErrCollectionNotFound, category)
	}
	exists, err := e.store.HasCollection(ctx, name)
	if err != nil {
		return outcome, fmt.Errorf("checking collection %s: %w", name, err)
	}
	if !exists {
		return outcome, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	vectors, err := e.embedder.Encode(ctx, []string{queryText})
	if err != nil {
		return outcome, fmt.Errorf("embedding query for %s: %w", name, err)
	}

	hits, err := e.store.Search(ctx, name, vectors[0], e.topK)
	if err != nil {
		return outcome, fmt.Errorf("searching collection %s: %w", name, err)
	}
	if len(hits) == 0 {
		log.Printf("retrieval collection=%s hits=0", name)
		return outcome, nil
	}

	top := hits[0]
	outcome.Result = domain.SearchResult{
		Found:  true,
		Score:  top.Score,
		Fields: top.Fields,
	}

	field, value, ok := extractResponse(top.Fields, usingPrimaryKeys)
	if !ok {
		log.Printf("retrieval collection=%s score=%.4f response_field=none", name, top.Score)
		outcome.FieldMissing = true
		return outcome, nil
	}

	log.Printf("retrieval collection=%s score=%.4f response_field=%s", name, top.Score, field)
	outcome.Response = value
	outcome.MatchedField = field
	return outcome, nil
}

// extractResponse scans the priority list in order and returns the first
// field holding a non-empty, non-"nan" value.
func extractResponse(fields map[string]string, usingPrimaryKeys bool) (string, string, bool) {
	keys := secondaryFields
	if usingPrimaryKeys {
		keys = primaryFields
	}
	for _, key := range keys {
		v := strings.TrimSpace(fields[key])
		if v == "" || strings.EqualFold(v, "nan") {
			continue
		}
		return key, v, true
	}
	return "", "", false
}

// UsePrimaryKeys reports which field-priority list applies for a ticket:
// primary when the marker field carries a value.
func UsePrimaryKeys(rec domain.TicketRecord) bool {
	v := strings.TrimSpace(rec[classifier.ColMarker])
	return v != "" && !strings.EqualFold(v, "nan")
}
