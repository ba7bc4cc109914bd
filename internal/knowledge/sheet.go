package knowledge

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ticketbot/internal/classifier"
)

// Sheet is one tabular knowledge source: pre-authored answers for a single
// category. The file stem is the raw category label; column names are
// sanitized on load.
type Sheet struct {
	Category string
	Columns  []string
	Rows     []map[string]string
}

// LoadSheet reads one CSV knowledge sheet. Rows shorter than the header are
// padded; fully empty rows are dropped.
func LoadSheet(path string) (Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("open knowledge sheet: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("read knowledge sheet %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet := Sheet{Category: stem}
	if len(records) == 0 {
		return sheet, nil
	}

	for _, col := range records[0] {
		sheet.Columns = append(sheet.Columns, classifier.Sanitize(col))
	}
	for _, raw := range records[1:] {
		row := make(map[string]string, len(sheet.Columns))
		empty := true
		for i, col := range sheet.Columns {
			v := ""
			if i < len(raw) {
				v = strings.TrimSpace(raw[i])
			}
			if v != "" && !strings.EqualFold(v, "nan") {
				empty = false
			} else {
				v = ""
			}
			row[col] = v
		}
		if empty {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// LoadSheetDir loads every CSV file in a directory, one sheet per file,
// in stable name order.
func LoadSheetDir(dir string) ([]Sheet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read knowledge dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		sheet, err := LoadSheet(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
