package processor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ticketbot/internal/domain"
)

// BatchTicket is one input row of a batch run.
type BatchTicket struct {
	TicketID  string
	Subject   string
	EmailBody string
}

// LoadBatch reads the batch input CSV. Missing required columns are a
// batch-level MalformedInput error: the whole batch aborts before any
// ticket is processed.
func LoadBatch(path string) ([]BatchTicket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch input: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read batch input %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: batch input %s has no header row", domain.ErrMalformedInput, path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"ticket", "subject"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: batch input %s missing required column %q", domain.ErrMalformedInput, path, required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var tickets []BatchTicket
	for _, row := range records[1:] {
		t := BatchTicket{
			TicketID:  cell(row, "ticket"),
			Subject:   cell(row, "subject"),
			EmailBody: cell(row, "email_body"),
		}
		if t.TicketID == "" {
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// WriteSnapshot rewrites the full result set as CSV via
// write-temp-then-rename, so a crash mid-write cannot corrupt previously
// committed results.
func WriteSnapshot(path string, rows []domain.ResultRow) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".results-*.csv")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write([]string{"ticket", "subject", "email_body", "response", "category", "source"}); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write([]string{r.TicketID, r.Subject, r.EmailBody, r.Response, r.Category, r.Source}); err != nil {
			tmp.Close()
			return fmt.Errorf("write snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
