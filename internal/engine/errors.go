package engine

// errors.go defines the engine's error taxonomy. Every stage returns a typed
// error value; the executor classifies them at its boundary and converts them
// into row outcomes. Only BatchError escapes to the caller.

import (
	"fmt"
	"strings"
)

// NormalizationError reports a cell that could not be coerced to its expected
// type. Row-scoped and recoverable.
type NormalizationError struct {
	Field string
	Value string
	Want  string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("field %q: %q is not a valid %s", e.Field, e.Value, e.Want)
}

// FieldError is a single validation failure for one field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field-level failure for a row so the ledger
// metadata shows the complete picture, not just the first problem.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

// IntegrityReason names the referential rule a row violated.
type IntegrityReason string

const (
	ReasonDuplicateCode  IntegrityReason = "duplicate_code"
	ReasonNotFound       IntegrityReason = "not_found"
	ReasonParentNotFound IntegrityReason = "parent_not_found"
	ReasonSelfParent     IntegrityReason = "self_parent"
	ReasonCycle          IntegrityReason = "cycle"
	ReasonHasDependents  IntegrityReason = "has_dependents"
	ReasonMissingRef     IntegrityReason = "missing_reference"
)

// IntegrityError reports a cross-entity reference violation.
type IntegrityError struct {
	Reason IntegrityReason
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// PersistenceError wraps a failed repository mutation. Row-scoped, but callers
// may want to surface it prominently since it can indicate a systemic issue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// ImageAttachError is the best-effort failure attaching a resolved image.
// It downgrades to a warning on an otherwise successful row.
type ImageAttachError struct {
	SKU string
	Err error
}

func (e *ImageAttachError) Error() string {
	return fmt.Sprintf("attach image for %s: %v", e.SKU, e.Err)
}
func (e *ImageAttachError) Unwrap() error { return e.Err }

// BatchError is a structural failure that aborts the whole batch before any
// row is processed: unrecognized entity kind, empty row set, or a ledger that
// could not be opened.
type BatchError struct {
	Reason string
	Err    error
}

func (e *BatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}
func (e *BatchError) Unwrap() error { return e.Err }
