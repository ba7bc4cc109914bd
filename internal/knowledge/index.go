package knowledge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"ticketbot/internal/classifier"
	"ticketbot/internal/domain"
)

// Required columns for a knowledge sheet; checked explicitly once per
// ingest, after header sanitization.
const (
	ColSubject   = "subject"
	ColEmailBody = "email_body"
)

// Index builds per-category collections from knowledge sheets. Ingestion is
// a destructive replace: an existing collection for the category is dropped
// and rebuilt from the current sheet contents.
type Index struct {
	embedder    domain.Embedder
	store       domain.VectorIndex
	table       map[string]string
	maxFieldLen int
}

func NewIndex(embedder domain.Embedder, store domain.VectorIndex, sanitizationTable map[string]string, maxFieldLen int) *Index {
	if sanitizationTable == nil {
		sanitizationTable = classifier.DefaultSanitizationTable()
	}
	return &Index{
		embedder:    embedder,
		store:       store,
		table:       sanitizationTable,
		maxFieldLen: maxFieldLen,
	}
}

// Ingest replaces the collection for the sheet's category. A sheet missing
// a required column still gets an empty collection: empty is a valid,
// queryable state yielding zero results, never an error. The collection is
// queryable before Ingest returns.
func (ix *Index) Ingest(ctx context.Context, sheet Sheet) error {
	name := classifier.CanonicalCategory(sheet.Category, ix.table)
	if name == "" {
		return fmt.Errorf("%w: sheet %q yields an empty collection name", domain.ErrMalformedInput, sheet.Category)
	}

	exists, err := ix.store.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", name, err)
	}
	if exists {
		log.Printf("knowledge ingest collection=%s action=drop_and_recreate", name)
		if err := ix.store.DropCollection(ctx, name); err != nil {
			return fmt.Errorf("dropping collection %s: %w", name, err)
		}
	}
	if err := ix.store.CreateCollection(ctx, name, ix.embedder.Dimension()); err != nil {
		return fmt.Errorf("creating collection %s: %w", name, err)
	}

	if missing := missingRequiredColumns(sheet); len(missing) > 0 {
		log.Printf("knowledge ingest collection=%s skipped=insert missing_columns=%s", name, strings.Join(missing, ","))
		return nil
	}
	if len(sheet.Rows) == 0 {
		log.Printf("knowledge ingest collection=%s rows=0", name)
		return nil
	}

	texts := make([]string, len(sheet.Rows))
	for i, row := range sheet.Rows {
		texts[i] = row[ColSubject] + " " + row[ColEmailBody]
	}
	vectors, err := ix.embedder.Encode(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d rows for %s: %w", len(texts), name, err)
	}

	points := make([]domain.Point, len(sheet.Rows))
	for i, row := range sheet.Rows {
		fields := make(map[string]string, len(row))
		for col, v := range row {
			fields[col] = truncate(v, ix.maxFieldLen)
		}
		points[i] = domain.Point{
			ID:     uint64(i + 1),
			Vector: vectors[i],
			Fields: fields,
		}
	}
	if err := ix.store.Insert(ctx, name, points); err != nil {
		return fmt.Errorf("inserting %d points into %s: %w", len(points), name, err)
	}

	count, err := ix.store.Count(ctx, name)
	if err != nil {
		return fmt.Errorf("verifying collection %s: %w", name, err)
	}
	log.Printf("knowledge ingest collection=%s rows=%d stored=%d fields=%d", name, len(sheet.Rows), count, len(sheet.Columns))
	return nil
}

// IngestDir ingests every sheet in a directory. One failing sheet does not
// stop the rest; the first error is reported after all sheets ran.
func (ix *Index) IngestDir(ctx context.Context, dir string) error {
	sheets, err := LoadSheetDir(dir)
	if err != nil {
		return err
	}

	var firstErr error
	for _, sheet := range sheets {
		if err := ix.Ingest(ctx, sheet); err != nil {
			log.Printf("knowledge ingest sheet=%s error: %v", sheet.Category, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	log.Printf("knowledge ingest dir=%s sheets=%d", dir, len(sheets))
	return firstErr
}

func missingRequiredColumns(sheet Sheet) []string {
	present := make(map[string]bool, len(sheet.Columns))
	for _, col := range sheet.Columns {
		present[col] = true
	}
	var missing []string
	for _, col := range []string{ColSubject, ColEmailBody} {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// truncate bounds s to maxLen bytes without splitting a multi-byte rune.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
