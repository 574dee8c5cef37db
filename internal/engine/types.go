// Package engine implements the bulk reconciliation engine: it takes an
// uploaded spreadsheet's rows (plus an optional image archive) and reconciles
// them against the live catalog, row by row, producing a durable ledger entry
// and one outcome per input row.
//
// The engine is written against the Repository and LedgerStore interfaces and
// has no knowledge of the database, the spreadsheet format, or the blob store.
package engine

import (
	"context"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

// ActionCode is the per-row directive from the spreadsheet's action column.
type ActionCode string

const (
	ActionAdd      ActionCode = "add"
	ActionUpdate   ActionCode = "update"
	ActionDelete   ActionCode = "delete"
	ActionNoChange ActionCode = "no_change"
)

// RawRow is one spreadsheet row as decoded upstream: column label → cell text.
type RawRow map[string]string

// Blob is a binary attachment extracted from the companion archive.
type Blob struct {
	Data      []byte
	MediaType string
}

// Batch is one import invocation. Rows keep file order; Images maps the base
// filename (without extension) to the file content. A batch is immutable once
// built and is consumed by exactly one Executor run.
type Batch struct {
	Tenant   string
	Kind     catalog.Kind
	FileName string
	Rows     []RawRow
	Images   map[string]Blob
}

// Row is a normalized record: canonical field keys mapped to typed values.
// Numeric fields live in Int/Dec; everything else in Text.
type Row struct {
	Line   int
	Action ActionCode
	Text   map[string]string
	Int    map[string]int
	Dec    map[string]float64
}

// Str returns the text value for a canonical key, or "" when absent.
func (r Row) Str(key string) string { return r.Text[key] }

// Existing is the lightweight view of a stored entity that referential checks
// need: identity, natural key, and (for categories) the parent link.
type Existing struct {
	ID       string
	Code     string
	Name     string
	Status   catalog.Status
	ParentID string
}

// Repository is the persistence capability set the engine consumes. FindByCode
// returns (nil, nil) when no entity matches; implementations scope every
// operation to the given tenant.
type Repository interface {
	FindByCode(ctx context.Context, tenant string, kind catalog.Kind, code string) (*Existing, error)
	FindChildren(ctx context.Context, tenant, categoryID string) ([]Existing, error)
	HasDependents(ctx context.Context, tenant string, kind catalog.Kind, id string) (bool, error)
	Create(ctx context.Context, tenant string, entity catalog.Entity) (string, error)
	Replace(ctx context.Context, tenant, id string, entity catalog.Entity) error
	Remove(ctx context.Context, tenant string, kind catalog.Kind, id string) error
	AttachImage(ctx context.Context, tenant string, kind catalog.Kind, id string, image Blob) error
}

// LedgerStatus is the lifecycle of a batch's ledger entry.
type LedgerStatus string

const (
	LedgerProcessing          LedgerStatus = "processing"
	LedgerCompleted           LedgerStatus = "completed"
	LedgerCompletedWithErrors LedgerStatus = "completed_with_errors"
	LedgerRejected            LedgerStatus = "rejected"
)

// Summary is the per-batch counter set persisted with the ledger entry.
// TotalRows always equals Added+Updated+Deleted+Skipped+Errors.
type Summary struct {
	TotalRows int
	Added     int
	Updated   int
	Deleted   int
	Skipped   int
	Errors    int
	Status    LedgerStatus
}

// LedgerStore persists batch summaries for audit. Open writes the entry in the
// processing state; Finalize is called exactly once per opened entry.
type LedgerStore interface {
	Open(ctx context.Context, tenant string, kind catalog.Kind, fileName string, totalRows int) (string, error)
	Finalize(ctx context.Context, ledgerID string, sum Summary) error
}

// OutcomeStatus classifies what happened to a single row.
type OutcomeStatus string

const (
	OutcomeAdded   OutcomeStatus = "added"
	OutcomeUpdated OutcomeStatus = "updated"
	OutcomeDeleted OutcomeStatus = "deleted"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the result for one input row. Reason is set for failed rows;
// Warning carries non-fatal notices (best-effort image attach failures).
type Outcome struct {
	Line          int
	Code          string
	Action        ActionCode
	Status        OutcomeStatus
	EntityID      string
	ImageAttached bool
	Reason        string
	Warning       string
}

// BatchResult is what one Executor run hands back to the caller: the ledger
// entry id, the final counters, and the ordered per-row outcomes.
type BatchResult struct {
	LedgerID string
	Summary  Summary
	Outcomes []Outcome
}
