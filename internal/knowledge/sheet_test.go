package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSheet(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing sheet: %v", err)
	}
	return path
}

func TestLoadSheet(t *testing.T) {
	dir := t.TempDir()
	path := writeSheet(t, dir, "General Query.csv", `Subject,Email Body,Loan Status
Refund delay,Please check my refund,DISBURSED
nan,nan,nan
Card blocked,,
`)
	sheet, err := LoadSheet(path)
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if sheet.Category != "General Query" {
		t.Fatalf("Category = %q", sheet.Category)
	}
	if len(sheet.Columns) != 3 || sheet.Columns[0] != "subject" || sheet.Columns[1] != "email_body" || sheet.Columns[2] != "loan_status" {
		t.Fatalf("Columns = %v", sheet.Columns)
	}
	// the all-nan row is dropped
	if len(sheet.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0]["subject"] != "Refund delay" || sheet.Rows[0]["email_body"] != "Please check my refund" {
		t.Fatalf("row 0 = %v", sheet.Rows[0])
	}
	// short row padded, empty cells blank
	if sheet.Rows[1]["subject"] != "Card blocked" || sheet.Rows[1]["loan_status"] != "" {
		t.Fatalf("row 1 = %v", sheet.Rows[1])
	}
}

func TestLoadSheetNanCellsBlanked(t *testing.T) {
	dir := t.TempDir()
	path := writeSheet(t, dir, "cat.csv", `Subject,Email Body
Works,NaN
`)
	sheet, err := LoadSheet(path)
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if sheet.Rows[0]["email_body"] != "" {
		t.Fatalf("nan cell not blanked: %q", sheet.Rows[0]["email_body"])
	}
}

func TestLoadSheetDir(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "b.csv", "Subject,Email Body\nhi,there\n")
	writeSheet(t, dir, "a.csv", "Subject,Email Body\nyo,here\n")
	writeSheet(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	sheets, err := LoadSheetDir(dir)
	if err != nil {
		t.Fatalf("LoadSheetDir: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(sheets))
	}
	if sheets[0].Category != "a" || sheets[1].Category != "b" {
		t.Fatalf("order = %q, %q", sheets[0].Category, sheets[1].Category)
	}
}
