package domain

// TicketRecord is one raw row from the ticket metadata source: column name
// to raw value, immutable once read. The identifier may appear under either
// "Ticket ID" or "ticket_id".
type TicketRecord map[string]string

// Classification is the canonical status token plus category identifier
// derived from a ticket record.
type Classification struct {
	Status   string
	Category string
}

// NotFoundSentinel is returned for both fields when no row matches the
// ticket identifier under either accepted column.
const NotFoundSentinel = "not_found"

// SearchResult is the top-1 candidate from a collection search. Found is
// false for the expected "no knowledge" outcome (empty collection or no
// candidate), which is not an error.
type SearchResult struct {
	Found  bool
	Score  float64
	Fields map[string]string
}

// RetrievalOutcome is what the retrieval engine hands to the composer: the
// raw search result plus the response value extracted via the prioritized
// field list, when one matched.
type RetrievalOutcome struct {
	Category     string
	Result       SearchResult
	Response     string
	MatchedField string
	// FieldMissing is set when a candidate existed but no configured
	// response field carried a usable value. It triggers template fallback.
	FieldMissing bool
}

// DraftStatus tags a ResponseDraft.
type DraftStatus string

const (
	DraftSuccess DraftStatus = "success"
	DraftError   DraftStatus = "error"
)

// ResponseDraft is the composer's tagged result: either final reply text or
// a human-readable failure reason. Source records which path produced the
// text ("template", "generated", "no_knowledge").
type ResponseDraft struct {
	Status DraftStatus
	Text   string
	Reason string
	Source string
}

// TicketContext carries the per-ticket inputs the composer needs for
// prompt construction.
type TicketContext struct {
	TicketID string
	Subject  string
	Body     string
	Status   string
	Category string
}

// ResultRow is one persisted row of the batch result store. Exactly one row
// exists per processed ticket, holding either a complete response or a
// failure reason in Response.
type ResultRow struct {
	TicketID  string
	Subject   string
	EmailBody string
	Response  string
	Category  string
	Source    string
}
