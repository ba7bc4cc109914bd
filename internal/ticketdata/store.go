package ticketdata

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"

	"ticketbot/internal/classifier"
	"ticketbot/internal/domain"
)

// Store holds the ticket metadata table, loaded once per process. Records
// are immutable after load.
type Store struct {
	rows    []domain.TicketRecord
	byID    map[string]int
	byAltID map[string]int
}

// Load reads the ticket metadata CSV. The header row names the columns;
// rows shorter than the header are padded with empty values.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticket db: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ticket db: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: ticket db %s has no header row", domain.ErrMalformedInput, path)
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	s := &Store{
		byID:    make(map[string]int),
		byAltID: make(map[string]int),
	}
	for _, raw := range records[1:] {
		rec := make(domain.TicketRecord, len(header))
		for i, col := range header {
			if i < len(raw) {
				rec[col] = raw[i]
			} else {
				rec[col] = ""
			}
		}
		idx := len(s.rows)
		s.rows = append(s.rows, rec)
		if id := strings.TrimSpace(rec[classifier.ColTicketID]); id != "" {
			if _, exists := s.byID[id]; !exists {
				s.byID[id] = idx
			}
		}
		if id := strings.TrimSpace(rec[classifier.ColTicketIDAlt]); id != "" {
			if _, exists := s.byAltID[id]; !exists {
				s.byAltID[id] = idx
			}
		}
	}

	log.Printf("ticketdata loaded path=%s rows=%d", path, len(s.rows))
	return s, nil
}

// Lookup resolves a ticket identifier, trying the primary identifier column
// first and the secondary column name second.
func (s *Store) Lookup(ticketID string) (domain.TicketRecord, bool) {
	ticketID = strings.TrimSpace(ticketID)
	if idx, ok := s.byID[ticketID]; ok {
		return s.rows[idx], true
	}
	if idx, ok := s.byAltID[ticketID]; ok {
		return s.rows[idx], true
	}
	return nil, false
}

// Len reports the number of loaded rows.
func (s *Store) Len() int {
	return len(s.rows)
}
