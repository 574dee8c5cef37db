package engine

// executor.go drives one batch: normalize → validate → resolve references →
// route → persist → record, strictly in file order. Rows are processed one at
// a time because later rows may depend on state earlier rows created (a child
// category naming a parent added two rows up). One bad row never aborts the
// batch; only structural problems detected before the loop do.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

// Executor reconciles import batches against the catalog.
type Executor struct {
	repo   Repository
	ledger LedgerStore
}

// NewExecutor wires an executor to its repository and ledger store.
func NewExecutor(repo Repository, ledger LedgerStore) *Executor {
	return &Executor{repo: repo, ledger: ledger}
}

// Run processes the whole batch and returns the ledger summary plus one
// outcome per input row, in file order. The only error Run returns is a
// *BatchError for structural rejection (unknown kind, empty row set, or a
// ledger that could not be opened); every row-level failure is folded into
// the outcomes instead.
//
// There is no cancellation mid-batch: once the loop starts it runs over all
// rows so the ledger reflects exactly what was attempted.
func (x *Executor) Run(ctx context.Context, batch Batch) (*BatchResult, error) {
	structural := checkStructure(batch)

	ledger, err := OpenLedger(ctx, x.ledger, batch)
	if err != nil {
		return nil, &BatchError{Reason: "open import ledger", Err: err}
	}

	log := slog.Default().With(
		"ledger_id", ledger.ID(),
		"tenant", batch.Tenant,
		"kind", string(batch.Kind),
		"file", batch.FileName,
	)

	if structural != nil {
		if err := ledger.Reject(ctx); err != nil {
			log.Error("failed to reject import ledger entry", "error", err)
		}
		log.Warn("import batch rejected", "reason", structural.Reason)
		return nil, structural
	}

	log.Info("import batch started", "rows", len(batch.Rows))

	outcomes := make([]Outcome, 0, len(batch.Rows))
	for i, raw := range batch.Rows {
		out := x.processRow(ctx, batch, i+1, raw)
		ledger.Record(out)
		outcomes = append(outcomes, out)
		if out.Status == OutcomeFailed {
			log.Debug("import row failed", "line", out.Line, "code", out.Code, "reason", out.Reason)
		}
	}

	sum, err := ledger.Finalize(ctx)
	if err != nil {
		// The mutations are already committed row by row; losing the summary
		// write must not un-report them. Surface it loudly and return the
		// in-memory summary.
		log.Error("failed to finalize import ledger entry", "error", err)
	}

	log.Info("import batch finished",
		"status", string(sum.Status),
		"added", sum.Added,
		"updated", sum.Updated,
		"deleted", sum.Deleted,
		"skipped", sum.Skipped,
		"errors", sum.Errors,
	)

	return &BatchResult{LedgerID: ledger.ID(), Summary: sum, Outcomes: outcomes}, nil
}

// checkStructure returns the structural rejection for a batch, or nil.
func checkStructure(batch Batch) *BatchError {
	if _, ok := catalog.ParseKind(string(batch.Kind)); !ok {
		return &BatchError{Reason: fmt.Sprintf("unrecognized entity kind %q", batch.Kind)}
	}
	if len(batch.Rows) == 0 {
		return &BatchError{Reason: "file contains no data rows"}
	}
	return nil
}

// processRow runs the full pipeline for one row. Every stage failure is
// converted into a failed outcome here; nothing propagates.
func (x *Executor) processRow(ctx context.Context, batch Batch, line int, raw RawRow) Outcome {
	row, err := NormalizeRow(batch.Kind, line, raw)
	if err != nil {
		return failedOutcome(line, "", row.Action, err)
	}

	if row.Action == ActionNoChange {
		return Outcome{Line: line, Action: ActionNoChange, Status: OutcomeSkipped}
	}

	// A delete row only needs to name its target; the full per-kind rules
	// apply to the actions that write entity data.
	var entity catalog.Entity
	if row.Action == ActionDelete {
		entity, err = BuildReference(batch.Kind, row)
	} else {
		entity, err = BuildEntity(batch.Kind, row)
	}
	if err != nil {
		return failedOutcome(line, "", row.Action, err)
	}
	code := entity.NaturalKey()

	entity, existing, err := x.checker().Check(ctx, batch.Tenant, row.Action, entity)
	if err != nil {
		return failedOutcome(line, code, row.Action, err)
	}

	intent := Route(row.Action, entity, existing)
	out := Outcome{Line: line, Code: code, Action: row.Action}

	switch intent.Op {
	case OpCreate:
		id, err := x.repo.Create(ctx, batch.Tenant, intent.Entity)
		if err != nil {
			return failedOutcome(line, code, row.Action, &PersistenceError{Op: "create " + kindNoun(batch.Kind), Err: err})
		}
		out.Status = OutcomeAdded
		out.EntityID = id
	case OpReplace:
		if err := x.repo.Replace(ctx, batch.Tenant, intent.ExistingID, intent.Entity); err != nil {
			return failedOutcome(line, code, row.Action, &PersistenceError{Op: "update " + kindNoun(batch.Kind), Err: err})
		}
		out.Status = OutcomeUpdated
		out.EntityID = intent.ExistingID
	case OpRemove:
		if err := x.repo.Remove(ctx, batch.Tenant, batch.Kind, intent.ExistingID); err != nil {
			return failedOutcome(line, code, row.Action, &PersistenceError{Op: "delete " + kindNoun(batch.Kind), Err: err})
		}
		out.Status = OutcomeDeleted
		out.EntityID = intent.ExistingID
	default:
		out.Status = OutcomeSkipped
		return out
	}

	// Image attachment is best-effort: a failure downgrades to a warning and
	// never flips an otherwise successful row.
	if batch.Kind == catalog.Products && (intent.Op == OpCreate || intent.Op == OpReplace) {
		if blob, ok := ResolveImage(code, batch.Images); ok {
			if err := x.repo.AttachImage(ctx, batch.Tenant, batch.Kind, out.EntityID, blob); err != nil {
				attachErr := &ImageAttachError{SKU: code, Err: err}
				out.Warning = attachErr.Error()
				slog.Warn("product image attach failed", "sku", code, "error", err)
			} else {
				out.ImageAttached = true
			}
		}
	}

	return out
}

func (x *Executor) checker() *IntegrityChecker {
	return &IntegrityChecker{repo: x.repo}
}

// failedOutcome builds the outcome for a row-scoped failure, keeping the
// typed-error classification visible in the recorded reason.
func failedOutcome(line int, code string, action ActionCode, err error) Outcome {
	return Outcome{
		Line:   line,
		Code:   code,
		Action: action,
		Status: OutcomeFailed,
		Reason: classify(err) + ": " + err.Error(),
	}
}

// classify names the error category for the outcome reason prefix.
func classify(err error) string {
	var (
		normErr      *NormalizationError
		validErr     *ValidationError
		integrityErr *IntegrityError
		persistErr   *PersistenceError
	)
	switch {
	case errors.As(err, &normErr):
		return "normalization"
	case errors.As(err, &validErr):
		return "validation"
	case errors.As(err, &integrityErr):
		return "integrity"
	case errors.As(err, &persistErr):
		return "persistence"
	default:
		return "error"
	}
}
