package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"ticketbot/internal/domain"
)

// InitDB opens the batch result store and ensures its schema. One row per
// processed ticket; re-running a ticket replaces its row.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS batch_results (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id  TEXT NOT NULL UNIQUE,
		subject    TEXT NOT NULL DEFAULT '',
		email_body TEXT NOT NULL DEFAULT '',
		response   TEXT NOT NULL DEFAULT '',
		category   TEXT NOT NULL DEFAULT '',
		source     TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_batch_results_category ON batch_results(category);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func UpsertResult(db *sql.DB, row domain.ResultRow) error {
	_, err := db.Exec(
		`INSERT INTO batch_results (ticket_id, subject, email_body, response, category, source)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(ticket_id) DO UPDATE SET
		 subject = excluded.subject,
		 email_body = excluded.email_body,
		 response = excluded.response,
		 category = excluded.category,
		 source = excluded.source`,
		row.TicketID, row.Subject, row.EmailBody, row.Response, row.Category, row.Source,
	)
	return err
}

// GetResults returns all result rows in insertion order.
func GetResults(db *sql.DB) ([]domain.ResultRow, error) {
	rows, err := db.Query(
		`SELECT ticket_id, subject, email_body, response, category, source
		 FROM batch_results ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ResultRow
	for rows.Next() {
		var r domain.ResultRow
		if err := rows.Scan(&r.TicketID, &r.Subject, &r.EmailBody, &r.Response, &r.Category, &r.Source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProcessedTicketIDs returns the identifiers already present in the store,
// for resuming a batch.
func ProcessedTicketIDs(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT ticket_id FROM batch_results`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
