// Package catalog defines the canonical catalog entity model shared by the
// reconciliation engine and the persistence layer. Every entity is scoped to a
// tenant and addressed by a natural key (the code, or SKU for products) that is
// unique per (tenant, kind).
package catalog

import "strings"

// Kind identifies one of the importable entity kinds.
type Kind string

const (
	Categories Kind = "categories"
	Colors     Kind = "colors"
	Sizes      Kind = "sizes"
	Materials  Kind = "materials"
	Suppliers  Kind = "suppliers"
	Products   Kind = "products"
)

// ParseKind returns the Kind for a string, or false for anything unknown.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Categories:
		return Categories, true
	case Colors:
		return Colors, true
	case Sizes:
		return Sizes, true
	case Materials:
		return Materials, true
	case Suppliers:
		return Suppliers, true
	case Products:
		return Products, true
	}
	return "", false
}

// AllKinds lists every importable kind in a stable order.
func AllKinds() []Kind {
	return []Kind{Categories, Colors, Sizes, Materials, Suppliers, Products}
}

// Status is the lifecycle state of a catalog entity.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus maps a cell value (Hebrew template labels included) to a Status.
// Empty and unrecognized values default to active, matching the import templates.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inactive", "לא פעיל":
		return StatusInactive
	default:
		return StatusActive
	}
}

// Entity is the tagged variant over the importable catalog record types.
// NaturalKey returns the tenant-scoped unique code (SKU for products).
type Entity interface {
	EntityKind() Kind
	NaturalKey() string
}

// Category is a product grouping. Categories form a tree via ParentCode;
// ParentID is filled in once the parent has been resolved against the store.
type Category struct {
	Code        string
	Name        string
	Description string
	ParentCode  string
	ParentID    string
	Status      Status
}

func (Category) EntityKind() Kind     { return Categories }
func (c Category) NaturalKey() string { return c.Code }

// Color is a named color swatch with a #RRGGBB hex value.
type Color struct {
	Code   string
	Name   string
	Hex    string
	Status Status
}

func (Color) EntityKind() Kind     { return Colors }
func (c Color) NaturalKey() string { return c.Code }

// Size is a sizing label. Category is free text carried from the template.
type Size struct {
	Code        string
	Name        string
	Description string
	Category    string
	Status      Status
}

func (Size) EntityKind() Kind     { return Sizes }
func (s Size) NaturalKey() string { return s.Code }

// Material is a fabric or raw-material entry.
type Material struct {
	Code        string
	Name        string
	Description string
	Status      Status
}

func (Material) EntityKind() Kind     { return Materials }
func (m Material) NaturalKey() string { return m.Code }

// Supplier is a vendor with optional contact details.
type Supplier struct {
	Code        string
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	Status      Status
}

func (Supplier) EntityKind() Kind     { return Suppliers }
func (s Supplier) NaturalKey() string { return s.Code }

// Product is a sellable item. CategoryCode and SupplierCode are the natural
// keys given in the spreadsheet; CategoryID and SupplierID are filled in by
// referential resolution before the record is persisted.
type Product struct {
	SKU            string
	Name           string
	Description    string
	CategoryCode   string
	CategoryID     string
	SupplierCode   string
	SupplierID     string
	Colors         []string
	Sizes          []string
	UnitsPerPack   int
	UnitsPerCarton int
	PricePerUnit   float64
	PackingInfo    string
	Status         Status
}

func (Product) EntityKind() Kind     { return Products }
func (p Product) NaturalKey() string { return p.SKU }
