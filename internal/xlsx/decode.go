// Package xlsx decodes uploaded spreadsheets into raw rows for the
// reconciliation engine.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
)

// Decode reads the first sheet of an xlsx document. The first non-empty row
// is the header; every following non-empty row becomes one RawRow keyed by
// the header labels, in file order. Cells beyond the header width and columns
// with a blank header are dropped.
func Decode(r io.Reader) ([]engine.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	header, start := findHeader(rows)
	if header == nil {
		return nil, errors.New("spreadsheet has no header row")
	}

	var out []engine.RawRow
	for _, cells := range rows[start:] {
		if isEmpty(cells) {
			continue
		}
		raw := make(engine.RawRow, len(header))
		for i, label := range header {
			if label == "" || i >= len(cells) {
				continue
			}
			raw[label] = cells[i]
		}
		out = append(out, raw)
	}
	return out, nil
}

// findHeader returns the trimmed labels of the first non-empty row and the
// index of the row after it.
func findHeader(rows [][]string) ([]string, int) {
	for i, cells := range rows {
		if isEmpty(cells) {
			continue
		}
		header := make([]string, len(cells))
		for j, c := range cells {
			header[j] = strings.TrimSpace(c)
		}
		return header, i + 1
	}
	return nil, 0
}

func isEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
