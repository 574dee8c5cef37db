package engine

// router.go maps a row's action code to the persistence intent the executor
// carries out. Routing is a pure mapping with no I/O; existence has already
// been established by the integrity check.

import "github.com/kobimazuz/pi-order-system-sub000/internal/catalog"

// IntentOp is the repository mutation a routed row asks for.
type IntentOp int

const (
	OpSkip IntentOp = iota
	OpCreate
	OpReplace
	OpRemove
)

// Intent is the persistence instruction for one row. ExistingID is set for
// Replace and Remove; Entity is nil for Remove and Skip.
type Intent struct {
	Op         IntentOp
	Entity     catalog.Entity
	ExistingID string
}

// Route maps an action code onto a persistence intent. existing is the stored
// record located by the integrity check (nil for Add).
func Route(action ActionCode, entity catalog.Entity, existing *Existing) Intent {
	switch action {
	case ActionAdd:
		return Intent{Op: OpCreate, Entity: entity}
	case ActionUpdate:
		return Intent{Op: OpReplace, Entity: entity, ExistingID: existing.ID}
	case ActionDelete:
		return Intent{Op: OpRemove, ExistingID: existing.ID}
	default:
		return Intent{Op: OpSkip}
	}
}
