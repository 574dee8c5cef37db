package engine

// ledger.go maintains the running counters for one batch and writes the
// durable summary through the LedgerStore. The engine only ever writes ledger
// entries; reading old entries for history views belongs to the caller.

import "context"

// Ledger tracks one batch's counters from open to finalize.
type Ledger struct {
	store LedgerStore
	id    string
	sum   Summary
}

// OpenLedger writes the batch's ledger entry in the processing state and
// returns the tracker for it.
func OpenLedger(ctx context.Context, store LedgerStore, batch Batch) (*Ledger, error) {
	id, err := store.Open(ctx, batch.Tenant, batch.Kind, batch.FileName, len(batch.Rows))
	if err != nil {
		return nil, err
	}
	return &Ledger{
		store: store,
		id:    id,
		sum:   Summary{TotalRows: len(batch.Rows), Status: LedgerProcessing},
	}, nil
}

// ID returns the durable ledger entry id.
func (l *Ledger) ID() string { return l.id }

// Record folds one row outcome into the counters.
func (l *Ledger) Record(out Outcome) {
	switch out.Status {
	case OutcomeAdded:
		l.sum.Added++
	case OutcomeUpdated:
		l.sum.Updated++
	case OutcomeDeleted:
		l.sum.Deleted++
	case OutcomeSkipped:
		l.sum.Skipped++
	case OutcomeFailed:
		l.sum.Errors++
	}
}

// Summary returns the counters accumulated so far.
func (l *Ledger) Summary() Summary { return l.sum }

// Finalize writes the terminal summary exactly once: completed when no row
// failed, completed_with_errors otherwise. A partial batch is never "failed";
// that status path is reserved for structural rejection via Reject.
func (l *Ledger) Finalize(ctx context.Context) (Summary, error) {
	if l.sum.Errors == 0 {
		l.sum.Status = LedgerCompleted
	} else {
		l.sum.Status = LedgerCompletedWithErrors
	}
	return l.sum, l.store.Finalize(ctx, l.id, l.sum)
}

// Reject marks the entry rejected after a structural failure; no rows were
// processed and the counters stay zero so the audit trail shows the attempt.
func (l *Ledger) Reject(ctx context.Context) error {
	l.sum.Status = LedgerRejected
	return l.store.Finalize(ctx, l.id, l.sum)
}
