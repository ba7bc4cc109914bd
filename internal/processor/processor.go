package processor

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"ticketbot/internal/classifier"
	"ticketbot/internal/domain"
	"ticketbot/internal/retrieval"
	"ticketbot/internal/storage/sqlite"
)

// TicketClassifier derives the canonical status/category pair for a ticket.
type TicketClassifier interface {
	Classify(ticketID string) domain.Classification
}

// Retriever finds the best-matching knowledge row for a category.
type Retriever interface {
	Retrieve(ctx context.Context, category, queryText string, usingPrimaryKeys bool) (domain.RetrievalOutcome, error)
}

// ReplyComposer turns a retrieval outcome into the final reply draft.
type ReplyComposer interface {
	Compose(ctx context.Context, outcome domain.RetrievalOutcome, ticket domain.TicketContext) domain.ResponseDraft
}

// Processor sequences classify -> retrieve -> compose per ticket over a
// batch. Tickets are processed one at a time, in input order; a failure at
// any stage produces a per-ticket error row and never aborts the batch.
type Processor struct {
	classifier      TicketClassifier
	rows            classifier.RowSource
	retriever       Retriever
	composer        ReplyComposer
	db              *sql.DB
	snapshotPath    string
	skipCategories  map[string]bool
	categoryAliases map[string]string
	statusAliases   map[string]string
}

type Config struct {
	Classifier        TicketClassifier
	Rows              classifier.RowSource
	Retriever         Retriever
	Composer          ReplyComposer
	DB                *sql.DB
	SnapshotPath      string
	SkipCategories    []string
	CategoryAliases   map[string]string
	StatusAliases     map[string]string
	SanitizationTable map[string]string
}

// New canonicalizes the skip-list and category-alias keys through the same
// rule the classifier applies to raw labels, so operators configure the raw
// spreadsheet labels and matching still happens on canonical identifiers.
func New(cfg Config) *Processor {
	table := cfg.SanitizationTable
	if table == nil {
		table = classifier.DefaultSanitizationTable()
	}

	skip := make(map[string]bool, len(cfg.SkipCategories))
	for _, c := range cfg.SkipCategories {
		if name := classifier.CanonicalCategory(c, table); name != "" {
			skip[name] = true
		}
	}
	aliases := make(map[string]string, len(cfg.CategoryAliases))
	for raw, target := range cfg.CategoryAliases {
		key := classifier.CanonicalCategory(raw, table)
		to := classifier.CanonicalCategory(target, table)
		if key == "" || to == "" || key == to {
			continue
		}
		aliases[key] = to
	}

	return &Processor{
		classifier:      cfg.Classifier,
		rows:            cfg.Rows,
		retriever:       cfg.Retriever,
		composer:        cfg.Composer,
		db:              cfg.DB,
		snapshotPath:    cfg.SnapshotPath,
		skipCategories:  skip,
		categoryAliases: aliases,
		statusAliases:   cfg.StatusAliases,
	}
}

// Run processes a batch. With resume set, ticket identifiers already
// present in the result store are skipped. After every ticket the full
// accumulated result set is re-written to the snapshot, so an interrupted
// run restarts where it stopped.
func (p *Processor) Run(ctx context.Context, tickets []BatchTicket, resume bool) ([]domain.ResultRow, error) {
	processed := map[string]bool{}
	if resume {
		var err error
		processed, err = sqlite.ProcessedTicketIDs(p.db)
		if err != nil {
			return nil, fmt.Errorf("loading processed tickets: %w", err)
		}
		log.Printf("batch resume enabled already_processed=%d", len(processed))
	}

	var rows []domain.ResultRow
	for _, t := range tickets {
		if resume && processed[t.TicketID] {
			log.Printf("batch ticket=%s action=resume_skip", t.TicketID)
			continue
		}

		row := p.processTicket(ctx, t)
		rows = append(rows, row)

		if err := sqlite.UpsertResult(p.db, row); err != nil {
			return rows, fmt.Errorf("persisting result for ticket %s: %w", t.TicketID, err)
		}
		all, err := sqlite.GetResults(p.db)
		if err != nil {
			return rows, fmt.Errorf("reading accumulated results: %w", err)
		}
		if err := WriteSnapshot(p.snapshotPath, all); err != nil {
			return rows, fmt.Errorf("writing snapshot after ticket %s: %w", t.TicketID, err)
		}
	}
	return rows, nil
}

func (p *Processor) processTicket(ctx context.Context, t BatchTicket) domain.ResultRow {
	row := domain.ResultRow{
		TicketID:  t.TicketID,
		Subject:   t.Subject,
		EmailBody: t.EmailBody,
	}

	cls := p.classifier.Classify(t.TicketID)
	status := cls.Status
	if alias, ok := p.statusAliases[status]; ok {
		log.Printf("batch ticket=%s status_alias %s=%s", t.TicketID, status, alias)
		status = alias
	}
	category := cls.Category
	if alias, ok := p.categoryAliases[category]; ok {
		log.Printf("batch ticket=%s category_alias %s=%s", t.TicketID, category, alias)
		category = alias
	}
	row.Category = category

	if p.skipCategories[category] {
		log.Printf("batch ticket=%s action=skip category=%s", t.TicketID, category)
		row.Response = fmt.Sprintf("Skipped search for category: %s", category)
		row.Source = "skipped"
		return row
	}
	if category == domain.NotFoundSentinel {
		row.Response = "Failed at category check: no metadata row for ticket"
		row.Source = "error"
		return row
	}
	if category == "" {
		row.Response = "Failed at category check: category is empty"
		row.Source = "error"
		return row
	}

	queryText := t.Subject
	if body := strings.TrimSpace(t.EmailBody); body != "" {
		queryText = t.Subject + " " + body
	}

	usingPrimary := false
	if rec, ok := p.rows.Lookup(t.TicketID); ok {
		usingPrimary = retrieval.UsePrimaryKeys(rec)
	}

	outcome, err := p.retriever.Retrieve(ctx, category, queryText, usingPrimary)
	if err != nil {
		log.Printf("batch ticket=%s retrieval error: %v", t.TicketID, err)
		row.Response = fmt.Sprintf("Failed at retrieval: %v", err)
		row.Source = "error"
		return row
	}

	draft := p.composer.Compose(ctx, outcome, domain.TicketContext{
		TicketID: t.TicketID,
		Subject:  t.Subject,
		Body:     t.EmailBody,
		Status:   status,
		Category: category,
	})
	if draft.Status != domain.DraftSuccess {
		log.Printf("batch ticket=%s composition error: %s", t.TicketID, draft.Reason)
		row.Response = "Failed at composition: " + draft.Reason
		row.Source = "error"
		return row
	}
	row.Response = draft.Text
	row.Source = draft.Source
	return row
}
