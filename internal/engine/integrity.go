package engine

// integrity.go resolves cross-entity references against the repository and
// enforces the rules that keep the catalog consistent: unique codes per
// (tenant, kind), an acyclic category tree, and no deletion of records that
// something else still points at.
//
// Processing is single-pass in file order, so a row may reference anything an
// earlier row created but never anything a later row will create; a forward
// reference fails here with a not-found error.

import (
	"context"
	"fmt"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

// IntegrityChecker validates references for one row at a time.
type IntegrityChecker struct {
	repo Repository
}

// NewIntegrityChecker returns a checker reading through the given repository.
func NewIntegrityChecker(repo Repository) *IntegrityChecker {
	return &IntegrityChecker{repo: repo}
}

// Check resolves the entity's references for the given action and returns the
// stored record the action targets (nil for Add). The entity may be rewritten
// with resolved internal ids (category parent, product category/supplier).
// All failures are *IntegrityError; repository read failures come back as
// *PersistenceError.
func (c *IntegrityChecker) Check(ctx context.Context, tenant string, action ActionCode, entity catalog.Entity) (catalog.Entity, *Existing, error) {
	kind := entity.EntityKind()
	code := entity.NaturalKey()

	existing, err := c.repo.FindByCode(ctx, tenant, kind, code)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "find " + string(kind) + " by code", Err: err}
	}

	switch action {
	case ActionAdd:
		if existing != nil {
			return nil, nil, &IntegrityError{
				Reason: ReasonDuplicateCode,
				Detail: fmt.Sprintf("%s %q already exists; use an update action", kindNoun(kind), code),
			}
		}
		existing = nil
	case ActionUpdate, ActionDelete:
		if existing == nil {
			return nil, nil, &IntegrityError{
				Reason: ReasonNotFound,
				Detail: fmt.Sprintf("%s %q was not found", kindNoun(kind), code),
			}
		}
	}

	if action == ActionDelete {
		if err := c.checkDeletable(ctx, tenant, kind, existing); err != nil {
			return nil, nil, err
		}
		return entity, existing, nil
	}

	switch e := entity.(type) {
	case catalog.Category:
		resolved, err := c.resolveParent(ctx, tenant, e, existing)
		if err != nil {
			return nil, nil, err
		}
		return resolved, existing, nil
	case catalog.Product:
		resolved, err := c.resolveProductRefs(ctx, tenant, e)
		if err != nil {
			return nil, nil, err
		}
		return resolved, existing, nil
	}

	return entity, existing, nil
}

// resolveParent looks up the parent category by code and refuses self-parent
// and one-level cycles. Descendants are computed by a single child lookup:
// parents change one edit at a time and the check reruns on every edit, so a
// deeper search buys nothing.
func (c *IntegrityChecker) resolveParent(ctx context.Context, tenant string, cat catalog.Category, existing *Existing) (catalog.Category, error) {
	if cat.ParentCode == "" {
		return cat, nil
	}

	parent, err := c.repo.FindByCode(ctx, tenant, catalog.Categories, cat.ParentCode)
	if err != nil {
		return cat, &PersistenceError{Op: "find parent category", Err: err}
	}
	if parent == nil {
		return cat, &IntegrityError{
			Reason: ReasonParentNotFound,
			Detail: fmt.Sprintf("parent category %q was not found", cat.ParentCode),
		}
	}

	if existing != nil {
		if parent.ID == existing.ID {
			return cat, &IntegrityError{
				Reason: ReasonSelfParent,
				Detail: fmt.Sprintf("category %q cannot be its own parent", cat.Code),
			}
		}
		children, err := c.repo.FindChildren(ctx, tenant, existing.ID)
		if err != nil {
			return cat, &PersistenceError{Op: "find child categories", Err: err}
		}
		for _, child := range children {
			if child.ID == parent.ID {
				return cat, &IntegrityError{
					Reason: ReasonCycle,
					Detail: fmt.Sprintf("category %q cannot become a child of its own child %q", cat.Code, cat.ParentCode),
				}
			}
		}
	}

	cat.ParentID = parent.ID
	return cat, nil
}

// resolveProductRefs resolves the product's category and supplier codes.
// Inactive targets still resolve; only absence is an error.
func (c *IntegrityChecker) resolveProductRefs(ctx context.Context, tenant string, p catalog.Product) (catalog.Product, error) {
	category, err := c.repo.FindByCode(ctx, tenant, catalog.Categories, p.CategoryCode)
	if err != nil {
		return p, &PersistenceError{Op: "find product category", Err: err}
	}
	if category == nil {
		return p, &IntegrityError{
			Reason: ReasonMissingRef,
			Detail: fmt.Sprintf("category %q was not found", p.CategoryCode),
		}
	}

	supplier, err := c.repo.FindByCode(ctx, tenant, catalog.Suppliers, p.SupplierCode)
	if err != nil {
		return p, &PersistenceError{Op: "find product supplier", Err: err}
	}
	if supplier == nil {
		return p, &IntegrityError{
			Reason: ReasonMissingRef,
			Detail: fmt.Sprintf("supplier %q was not found", p.SupplierCode),
		}
	}

	p.CategoryID = category.ID
	p.SupplierID = supplier.ID
	return p, nil
}

// checkDeletable refuses deleting a record something still depends on:
// products referencing the record for every kind except products themselves,
// plus child categories for categories.
func (c *IntegrityChecker) checkDeletable(ctx context.Context, tenant string, kind catalog.Kind, existing *Existing) error {
	if kind != catalog.Products {
		dependent, err := c.repo.HasDependents(ctx, tenant, kind, existing.ID)
		if err != nil {
			return &PersistenceError{Op: "check dependents", Err: err}
		}
		if dependent {
			return &IntegrityError{
				Reason: ReasonHasDependents,
				Detail: fmt.Sprintf("%s %q still has products referencing it", kindNoun(kind), existing.Code),
			}
		}
	}

	if kind == catalog.Categories {
		children, err := c.repo.FindChildren(ctx, tenant, existing.ID)
		if err != nil {
			return &PersistenceError{Op: "find child categories", Err: err}
		}
		if len(children) > 0 {
			return &IntegrityError{
				Reason: ReasonHasDependents,
				Detail: fmt.Sprintf("category %q still has child categories", existing.Code),
			}
		}
	}

	return nil
}

// kindNoun is the singular noun used in row failure reasons.
func kindNoun(kind catalog.Kind) string {
	switch kind {
	case catalog.Categories:
		return "category"
	case catalog.Colors:
		return "color"
	case catalog.Sizes:
		return "size"
	case catalog.Materials:
		return "material"
	case catalog.Suppliers:
		return "supplier"
	case catalog.Products:
		return "product"
	default:
		return string(kind)
	}
}
