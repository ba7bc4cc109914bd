package classifier

import (
	"log"
	"regexp"
	"strings"

	"ticketbot/internal/domain"
)

// Ticket metadata column names. The identifier is accepted under either of
// the first two.
const (
	ColTicketID    = "Ticket ID"
	ColTicketIDAlt = "ticket_id"
	ColMarker      = "data_from_IM_pls"
	ColLoanStatus  = "Loan Status"
	ColRepayment   = "repayment_status"
	ColLRStatus    = "lr_status"
	ColCategory    = "new"
)

// MaxCategoryLen bounds canonical category identifiers, matching the
// truncated values in the sanitization table.
const MaxCategoryLen = 31

var loanBuckets = map[string]string{
	"DISBURSED":    "disbursed",
	"CLOSED":       "closed",
	"UNDER_REVIEW": "under_review",
	"REJECTED":     "rejected",
	"EXPIRED":      "expired",
}

var repaymentBuckets = map[string]string{
	"REGULAR":     "regular",
	"DELAYED_1":   "delayed_1",
	"DELAYED_3":   "delayed_3",
	"WRITTEN_OFF": "written_off",
}

// RowSource resolves a ticket identifier to its metadata record.
type RowSource interface {
	Lookup(ticketID string) (domain.TicketRecord, bool)
}

// Classifier derives the canonical status token and category identifier
// from a ticket record. It is a pure function of the row plus the injected
// sanitization table.
type Classifier struct {
	rows  RowSource
	table map[string]string
}

func New(rows RowSource, sanitizationTable map[string]string) *Classifier {
	if sanitizationTable == nil {
		sanitizationTable = DefaultSanitizationTable()
	}
	return &Classifier{rows: rows, table: sanitizationTable}
}

// Classify returns the sentinel pair when no row matches the identifier
// under either accepted column. It never returns an error: classification
// failures degrade to the sentinel and are recorded by the caller.
func (c *Classifier) Classify(ticketID string) domain.Classification {
	rec, ok := c.rows.Lookup(ticketID)
	if !ok {
		log.Printf("classify ticket=%s result=not_found", ticketID)
		return domain.Classification{
			Status:   domain.NotFoundSentinel,
			Category: domain.NotFoundSentinel,
		}
	}

	return domain.Classification{
		Status:   c.statusToken(rec),
		Category: c.CanonicalCategory(rec[ColCategory]),
	}
}

func (c *Classifier) statusToken(rec domain.TicketRecord) string {
	marker := strings.TrimSpace(rec[ColMarker])
	if absent(marker) {
		return markerAbsentStatus(rec)
	}

	prefix := strings.ToLower(strings.ReplaceAll(marker, "+", "_"))

	statuses := gatherStatuses(rec, ColLoanStatus, ColRepayment)
	if len(statuses) == 0 {
		statuses = gatherStatuses(rec, ColLRStatus)
	}

	var loan, repayment string
	for _, s := range statuses {
		key := strings.ToUpper(s)
		if b, ok := loanBuckets[key]; ok && loan == "" {
			loan = b
		}
		if b, ok := repaymentBuckets[key]; ok && repayment == "" {
			repayment = b
		}
	}

	// A repayment bucket only ever qualifies a disbursed loan; without a
	// loan bucket the token is nostatus regardless of repayment.
	base := loan
	switch {
	case loan == "disbursed" && repayment != "":
		base = loan + repayment
	case loan == "":
		base = "nostatus"
	}
	return prefix + base
}

// markerAbsentStatus uses the lr-status field directly, with any trailing
// numeric disambiguation suffix stripped.
func markerAbsentStatus(rec domain.TicketRecord) string {
	lr := strings.TrimSpace(rec[ColLRStatus])
	if absent(lr) {
		return "nostatus"
	}
	return trailingDigitsRe.ReplaceAllString(strings.ToLower(lr), "")
}

var trailingDigitsRe = regexp.MustCompile(`_[0-9]+$`)

func gatherStatuses(rec domain.TicketRecord, cols ...string) []string {
	var out []string
	for _, col := range cols {
		v := strings.TrimSpace(rec[col])
		if absent(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// absent is the one canonical predicate for missing values: blank,
// whitespace-only, or a case-insensitive "nan" (the spreadsheet sources
// serialize missing cells that way).
func absent(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "nan")
}

// CanonicalCategory maps a raw category label to its canonical identifier
// using the classifier's injected table.
func (c *Classifier) CanonicalCategory(raw string) string {
	return CanonicalCategory(raw, c.table)
}

// CanonicalCategory maps a raw category label to its canonical identifier:
// the lookup table wins for known labels, everything else is sanitized to
// [a-z0-9_] and length-bounded. Ingestion and retrieval resolve collection
// names through this same rule.
func CanonicalCategory(raw string, table map[string]string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if absent(raw) {
		return ""
	}
	if mapped, ok := table[raw]; ok {
		return mapped
	}
	return Sanitize(raw)
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9_]+`)
var multiUnderscoreRe = regexp.MustCompile(`_+`)

// Sanitize lower-cases, replaces runs of characters outside [a-z0-9_] with a
// single underscore, collapses repeats, trims edge underscores, and bounds
// the length. The same rule names collections at ingestion and retrieval.
func Sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnumRe.ReplaceAllString(name, "_")
	name = multiUnderscoreRe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if len(name) > MaxCategoryLen {
		name = strings.TrimRight(name[:MaxCategoryLen], "_")
	}
	return name
}
