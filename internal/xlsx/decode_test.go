package xlsx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetBytes builds an in-memory xlsx with the given rows on the first sheet.
func sheetBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"קוד", "שם", "סטטוס", "פעולה נדרשת"},
		{"CAT001", "חולצות", "פעיל", "הוספה"},
		{"CAT002", "מכנסיים", "פעיל", ""},
	})

	rows, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["קוד"] != "CAT001" || rows[0]["שם"] != "חולצות" {
		t.Errorf("row[0] = %v", rows[0])
	}
	if rows[1]["קוד"] != "CAT002" {
		t.Errorf("row[1] = %v", rows[1])
	}
}

func TestDecodeSkipsLeadingAndBlankRows(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"", "", ""},
		{"code", "name"},
		{"", ""},
		{"MAT001", "כותנה"},
	})

	rows, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0]["code"] != "MAT001" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestDecodeShortRows(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"code", "name", "status"},
		{"SUP001"},
	})

	rows, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rows[0]["code"] != "SUP001" {
		t.Errorf("row = %v", rows[0])
	}
	if _, ok := rows[0]["name"]; ok {
		t.Error("missing trailing cells must not appear in the row")
	}
}

func TestDecodeNotASpreadsheet(t *testing.T) {
	_, err := Decode(strings.NewReader("not an xlsx file"))
	if err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
}

func TestDecodeNumericCells(t *testing.T) {
	data := sheetBytes(t, [][]any{
		{"sku", "units_per_pack", "price_per_unit"},
		{"HY1001", 12, 39.9},
	})

	rows, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rows[0]["units_per_pack"] != "12" {
		t.Errorf("units cell = %q, want string \"12\"", rows[0]["units_per_pack"])
	}
	if rows[0]["price_per_unit"] != "39.9" {
		t.Errorf("price cell = %q, want string \"39.9\"", rows[0]["price_per_unit"])
	}
}
