package engine

// validate.go turns a normalized Row into a catalog entity, enforcing the
// per-kind business rules. Failures are collected, not short-circuited, so a
// row's outcome lists every problem at once.

import (
	"regexp"
	"strings"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// BuildEntity validates a normalized row for the given kind and returns the
// entity ready for referential resolution. On failure it returns a
// *ValidationError carrying every field-level problem.
func BuildEntity(kind catalog.Kind, row Row) (catalog.Entity, error) {
	switch kind {
	case catalog.Categories:
		return buildCategory(row)
	case catalog.Colors:
		return buildColor(row)
	case catalog.Sizes:
		return buildSize(row)
	case catalog.Materials:
		return buildMaterial(row)
	case catalog.Suppliers:
		return buildSupplier(row)
	case catalog.Products:
		return buildProduct(row)
	default:
		return nil, &ValidationError{Fields: []FieldError{{Message: "unknown entity kind"}}}
	}
}

// BuildReference builds the code-only entity a delete row carries. Delete
// rows identify their target by natural key alone, so none of the other
// per-kind rules apply to them.
func BuildReference(kind catalog.Kind, row Row) (catalog.Entity, error) {
	var errs errList
	var entity catalog.Entity
	switch kind {
	case catalog.Categories:
		entity = catalog.Category{Code: errs.require(row, FieldCode)}
	case catalog.Colors:
		entity = catalog.Color{Code: errs.require(row, FieldCode)}
	case catalog.Sizes:
		entity = catalog.Size{Code: errs.require(row, FieldCode)}
	case catalog.Materials:
		entity = catalog.Material{Code: errs.require(row, FieldCode)}
	case catalog.Suppliers:
		entity = catalog.Supplier{Code: errs.require(row, FieldCode)}
	case catalog.Products:
		entity = catalog.Product{SKU: errs.require(row, FieldSKU)}
	default:
		return nil, &ValidationError{Fields: []FieldError{{Message: "unknown entity kind"}}}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return entity, nil
}

// errList accumulates field failures for one row.
type errList struct {
	fields []FieldError
}

func (e *errList) add(field, message string) {
	e.fields = append(e.fields, FieldError{Field: field, Message: message})
}

func (e *errList) require(row Row, field string) string {
	v := row.Str(field)
	if v == "" {
		e.add(field, "required field is missing")
	}
	return v
}

func (e *errList) err() error {
	if len(e.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: e.fields}
}

func buildCategory(row Row) (catalog.Entity, error) {
	var errs errList
	c := catalog.Category{
		Code:        errs.require(row, FieldCode),
		Name:        errs.require(row, FieldName),
		Description: row.Str(FieldDescription),
		ParentCode:  row.Str(FieldParent),
		Status:      catalog.ParseStatus(row.Str(FieldStatus)),
	}
	// Parent existence is resolved at the referential-integrity step, not here.
	if err := errs.err(); err != nil {
		return nil, err
	}
	return c, nil
}

func buildColor(row Row) (catalog.Entity, error) {
	var errs errList
	c := catalog.Color{
		Code:   errs.require(row, FieldCode),
		Name:   errs.require(row, FieldName),
		Hex:    errs.require(row, FieldHex),
		Status: catalog.ParseStatus(row.Str(FieldStatus)),
	}
	if c.Hex != "" && !hexColorRegex.MatchString(c.Hex) {
		errs.add(FieldHex, "must be a #RRGGBB hex value")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return c, nil
}

func buildSize(row Row) (catalog.Entity, error) {
	var errs errList
	s := catalog.Size{
		Code:        errs.require(row, FieldCode),
		Name:        errs.require(row, FieldName),
		Description: row.Str(FieldDescription),
		Category:    row.Str(FieldCategory),
		Status:      catalog.ParseStatus(row.Str(FieldStatus)),
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildMaterial(row Row) (catalog.Entity, error) {
	var errs errList
	m := catalog.Material{
		Code:        errs.require(row, FieldCode),
		Name:        errs.require(row, FieldName),
		Description: row.Str(FieldDescription),
		Status:      catalog.ParseStatus(row.Str(FieldStatus)),
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return m, nil
}

func buildSupplier(row Row) (catalog.Entity, error) {
	var errs errList
	s := catalog.Supplier{
		Code:        errs.require(row, FieldCode),
		Name:        errs.require(row, FieldName),
		ContactName: row.Str(FieldContactName),
		Email:       row.Str(FieldEmail),
		Phone:       row.Str(FieldPhone),
		Address:     row.Str(FieldAddress),
		Status:      catalog.ParseStatus(row.Str(FieldStatus)),
	}
	if s.Email != "" && !validEmail(s.Email) {
		errs.add(FieldEmail, "must be a valid email address")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildProduct(row Row) (catalog.Entity, error) {
	var errs errList
	p := catalog.Product{
		SKU:          errs.require(row, FieldSKU),
		Name:         errs.require(row, FieldName),
		Description:  row.Str(FieldDescription),
		CategoryCode: errs.require(row, FieldCategory),
		SupplierCode: errs.require(row, FieldSupplier),
		Colors:       splitList(row.Str(FieldColors)),
		Sizes:        splitList(row.Str(FieldSizes)),
		PackingInfo:  row.Str(FieldPackingInfo),
		Status:       catalog.ParseStatus(row.Str(FieldStatus)),
	}

	var ok bool
	if p.UnitsPerPack, ok = row.Int[FieldUnitsPerPack]; !ok {
		errs.add(FieldUnitsPerPack, "required field is missing")
	} else if p.UnitsPerPack < 1 {
		errs.add(FieldUnitsPerPack, "must be at least 1")
	}
	if p.UnitsPerCarton, ok = row.Int[FieldUnitsPerCarton]; !ok {
		errs.add(FieldUnitsPerCarton, "required field is missing")
	} else if p.UnitsPerCarton < 1 {
		errs.add(FieldUnitsPerCarton, "must be at least 1")
	}
	if p.PricePerUnit, ok = row.Dec[FieldPricePerUnit]; !ok {
		errs.add(FieldPricePerUnit, "required field is missing")
	} else if p.PricePerUnit < 0 {
		errs.add(FieldPricePerUnit, "must not be negative")
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// validEmail checks for an @ followed by a domain with a dot. Deliberately
// loose: the spreadsheet's own template validation is the first line of
// defense and the mail system is the last.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}

// splitList splits a comma-separated template cell ("שחור,לבן") into values.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
