package engine

// normalize.go maps the human-edited spreadsheet headers onto canonical field
// keys and coerces cells into typed values. The header aliases cover the
// production Hebrew templates alongside the canonical English keys, so a file
// exported from either template round-trips. Unmapped headers are ignored.
//
// Normalization is a pure function of the row: no repository access, no state.

import (
	"strconv"
	"strings"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

// Canonical field keys produced by normalization.
const (
	FieldCode           = "code"
	FieldName           = "name"
	FieldDescription    = "description"
	FieldParent         = "parent"
	FieldHex            = "hex_code"
	FieldCategory       = "category"
	FieldSupplier       = "supplier"
	FieldContactName    = "contact_name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldStatus         = "status"
	FieldSKU            = "sku"
	FieldColors         = "colors"
	FieldSizes          = "sizes"
	FieldUnitsPerPack   = "units_per_pack"
	FieldPackingInfo    = "packing_info"
	FieldUnitsPerCarton = "units_per_carton"
	FieldPricePerUnit   = "price_per_unit"
)

// cellType is the coercion applied to a mapped cell.
type cellType int

const (
	cellText cellType = iota
	cellInt
	cellDecimal
)

// fieldSpec binds a canonical key to its header spellings and cell type.
type fieldSpec struct {
	Key    string
	Labels []string
	Type   cellType
}

// actionLabels are the recognized header spellings of the action column.
var actionLabels = []string{"פעולה נדרשת", "action", "required action"}

// kindFields lists the recognized columns per entity kind, Hebrew template
// label first. The "מספר" running-number column is deliberately absent: it is
// presentation only and normalization drops it with the other unmapped headers.
var kindFields = map[catalog.Kind][]fieldSpec{
	catalog.Categories: {
		{Key: FieldCode, Labels: []string{"קוד", "code"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldDescription, Labels: []string{"תיאור", "description"}},
		{Key: FieldParent, Labels: []string{"קטגוריית אב", "parent", "parent category"}},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
	catalog.Colors: {
		{Key: FieldCode, Labels: []string{"קוד", "code"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldHex, Labels: []string{"קוד צבע", "hex_code", "hex"}},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
	catalog.Sizes: {
		{Key: FieldCode, Labels: []string{"קוד", "code"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldDescription, Labels: []string{"תיאור", "description"}},
		{Key: FieldCategory, Labels: []string{"קטגוריה", "category"}},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
	catalog.Materials: {
		{Key: FieldCode, Labels: []string{"קוד", "code"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldDescription, Labels: []string{"תיאור", "description"}},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
	catalog.Suppliers: {
		{Key: FieldCode, Labels: []string{"קוד", "code"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldContactName, Labels: []string{"איש קשר", "contact_name", "contact"}},
		{Key: FieldEmail, Labels: []string{"אימייל", "email"}},
		{Key: FieldPhone, Labels: []string{"טלפון", "phone"}},
		{Key: FieldAddress, Labels: []string{"כתובת", "address"}},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
	catalog.Products: {
		{Key: FieldSKU, Labels: []string{"מק\"ט", "sku"}},
		{Key: FieldName, Labels: []string{"שם", "name"}},
		{Key: FieldDescription, Labels: []string{"תיאור", "description"}},
		{Key: FieldCategory, Labels: []string{"קטגוריה", "category"}},
		{Key: FieldSupplier, Labels: []string{"ספק", "supplier"}},
		{Key: FieldColors, Labels: []string{"צבעים", "colors"}},
		{Key: FieldSizes, Labels: []string{"מידות", "sizes"}},
		{Key: FieldUnitsPerPack, Labels: []string{"כמות באריזה", "units_per_pack"}, Type: cellInt},
		{Key: FieldPackingInfo, Labels: []string{"הוראות אריזה", "packing_info"}},
		{Key: FieldUnitsPerCarton, Labels: []string{"כמות בקרטון", "units_per_carton"}, Type: cellInt},
		{Key: FieldPricePerUnit, Labels: []string{"מחיר ליחידה", "price_per_unit"}, Type: cellDecimal},
		{Key: FieldStatus, Labels: []string{"סטטוס", "status"}},
	},
}

// ParseAction maps an action cell to its ActionCode. Real input files rely on
// the Add default for unknown or missing values, so the fallthrough to
// ActionAdd is intentional contract, not an accident.
func ParseAction(s string) ActionCode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "עדכון", "update":
		return ActionUpdate
	case "מחיקה", "delete":
		return ActionDelete
	case "ללא שינוי", "no change", "no_change", "nochange":
		return ActionNoChange
	default:
		return ActionAdd
	}
}

// NormalizeRow converts one raw spreadsheet row into a typed Row for the given
// kind. line is the 1-based data row number used in outcomes. Returns a
// *NormalizationError when a numeric cell cannot be parsed; the Row returned
// alongside the error still carries the parsed action, so the failure is
// reported against the action the file actually asked for.
func NormalizeRow(kind catalog.Kind, line int, raw RawRow) (Row, error) {
	row := Row{
		Line:   line,
		Action: ActionAdd,
		Text:   make(map[string]string),
		Int:    make(map[string]int),
		Dec:    make(map[string]float64),
	}

	// Lowercased label -> cell, so header matching is case-insensitive.
	cells := make(map[string]string, len(raw))
	for label, value := range raw {
		cells[strings.ToLower(strings.TrimSpace(label))] = strings.TrimSpace(value)
	}

	for _, label := range actionLabels {
		if v, ok := cells[strings.ToLower(label)]; ok {
			row.Action = ParseAction(v)
			break
		}
	}

	for _, spec := range kindFields[kind] {
		value, ok := lookupCell(cells, spec.Labels)
		if !ok || value == "" {
			continue
		}
		switch spec.Type {
		case cellInt:
			n, err := parseInt(value)
			if err != nil {
				return row, &NormalizationError{Field: spec.Key, Value: value, Want: "integer"}
			}
			row.Int[spec.Key] = n
		case cellDecimal:
			d, err := parseDecimal(value)
			if err != nil {
				return row, &NormalizationError{Field: spec.Key, Value: value, Want: "number"}
			}
			row.Dec[spec.Key] = d
		default:
			row.Text[spec.Key] = value
		}
	}

	return row, nil
}

func lookupCell(cells map[string]string, labels []string) (string, bool) {
	for _, label := range labels {
		if v, ok := cells[strings.ToLower(label)]; ok {
			return v, true
		}
	}
	return "", false
}

// parseInt is a strict integer parse after stripping thousands separators.
// "5.0" style spreadsheet exports are accepted when the fraction is zero.
func parseInt(s string) (int, error) {
	s = cleanNumber(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

// parseDecimal is a strict decimal parse after stripping currency symbols and
// thousands separators. Non-numeric content is an error, never a silent zero.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(cleanNumber(s), 64)
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	for _, sym := range []string{"₪", "$", "€", "£", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	return strings.TrimSpace(s)
}
