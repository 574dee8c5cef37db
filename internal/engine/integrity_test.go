package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

func integrityReason(t *testing.T, err error) IntegrityReason {
	t.Helper()
	var iErr *IntegrityError
	if !errors.As(err, &iErr) {
		t.Fatalf("err = %v, want *IntegrityError", err)
	}
	return iErr.Reason
}

func TestCheckDuplicateAdd(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(catalog.Supplier{Code: "SUP001", Name: "אקמה", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	_, _, err := checker.Check(context.Background(), "t1", ActionAdd,
		catalog.Supplier{Code: "SUP001", Name: "אקמה"})
	if got := integrityReason(t, err); got != ReasonDuplicateCode {
		t.Errorf("reason = %q, want %q", got, ReasonDuplicateCode)
	}
}

func TestCheckUpdateAndDeleteRequireExisting(t *testing.T) {
	checker := NewIntegrityChecker(newFakeRepo())
	for _, action := range []ActionCode{ActionUpdate, ActionDelete} {
		_, _, err := checker.Check(context.Background(), "t1", action,
			catalog.Color{Code: "CLR404", Name: "x", Hex: "#000000"})
		if got := integrityReason(t, err); got != ReasonNotFound {
			t.Errorf("%s: reason = %q, want %q", action, got, ReasonNotFound)
		}
	}
}

func TestCheckResolvesCategoryParent(t *testing.T) {
	repo := newFakeRepo()
	parentID := repo.seed(catalog.Category{Code: "CAT000", Name: "הלבשה", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	entity, existing, err := checker.Check(context.Background(), "t1", ActionAdd,
		catalog.Category{Code: "CAT001", Name: "חולצות", ParentCode: "CAT000"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if existing != nil {
		t.Errorf("existing = %+v, want nil for add", existing)
	}
	if got := entity.(catalog.Category).ParentID; got != parentID {
		t.Errorf("ParentID = %q, want %q", got, parentID)
	}
}

func TestCheckParentNotFound(t *testing.T) {
	checker := NewIntegrityChecker(newFakeRepo())
	_, _, err := checker.Check(context.Background(), "t1", ActionAdd,
		catalog.Category{Code: "CAT001", Name: "חולצות", ParentCode: "CAT999"})
	if got := integrityReason(t, err); got != ReasonParentNotFound {
		t.Errorf("reason = %q, want %q", got, ReasonParentNotFound)
	}
}

func TestCheckSelfParent(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(catalog.Category{Code: "CAT001", Name: "חולצות", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	_, _, err := checker.Check(context.Background(), "t1", ActionUpdate,
		catalog.Category{Code: "CAT001", Name: "חולצות", ParentCode: "CAT001"})
	if got := integrityReason(t, err); got != ReasonSelfParent {
		t.Errorf("reason = %q, want %q", got, ReasonSelfParent)
	}
}

func TestCheckParentCycle(t *testing.T) {
	repo := newFakeRepo()
	parentID := repo.seed(catalog.Category{Code: "CAT001", Name: "אב", Status: catalog.StatusActive})
	repo.seed(catalog.Category{Code: "CAT002", Name: "בן", ParentID: parentID, Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	// Re-parenting CAT001 under its own child CAT002 would close a loop.
	_, _, err := checker.Check(context.Background(), "t1", ActionUpdate,
		catalog.Category{Code: "CAT001", Name: "אב", ParentCode: "CAT002"})
	if got := integrityReason(t, err); got != ReasonCycle {
		t.Errorf("reason = %q, want %q", got, ReasonCycle)
	}
}

func TestCheckDeleteWithDependents(t *testing.T) {
	repo := newFakeRepo()
	catID := repo.seed(catalog.Category{Code: "CAT001", Name: "חולצות", Status: catalog.StatusActive})
	supID := repo.seed(catalog.Supplier{Code: "SUP001", Name: "אקמה", Status: catalog.StatusActive})
	repo.seed(catalog.Product{
		SKU: "HY1001", Name: "פולו",
		CategoryID: catID, SupplierID: supID,
		CategoryCode: "CAT001", SupplierCode: "SUP001",
		UnitsPerPack: 1, UnitsPerCarton: 1,
		Status: catalog.StatusActive,
	})
	checker := NewIntegrityChecker(repo)

	for _, entity := range []catalog.Entity{
		catalog.Category{Code: "CAT001", Name: "חולצות"},
		catalog.Supplier{Code: "SUP001", Name: "אקמה"},
	} {
		_, _, err := checker.Check(context.Background(), "t1", ActionDelete, entity)
		if got := integrityReason(t, err); got != ReasonHasDependents {
			t.Errorf("%s: reason = %q, want %q", entity.EntityKind(), got, ReasonHasDependents)
		}
	}
}

func TestCheckDeleteCategoryWithChildren(t *testing.T) {
	repo := newFakeRepo()
	parentID := repo.seed(catalog.Category{Code: "CAT001", Name: "אב", Status: catalog.StatusActive})
	repo.seed(catalog.Category{Code: "CAT002", Name: "בן", ParentID: parentID, Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	_, _, err := checker.Check(context.Background(), "t1", ActionDelete,
		catalog.Category{Code: "CAT001", Name: "אב"})
	if got := integrityReason(t, err); got != ReasonHasDependents {
		t.Errorf("reason = %q, want %q", got, ReasonHasDependents)
	}
}

func TestCheckDeleteUnreferenced(t *testing.T) {
	repo := newFakeRepo()
	id := repo.seed(catalog.Material{Code: "MAT001", Name: "כותנה", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	_, existing, err := checker.Check(context.Background(), "t1", ActionDelete,
		catalog.Material{Code: "MAT001", Name: "כותנה"})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if existing == nil || existing.ID != id {
		t.Errorf("existing = %+v, want id %q", existing, id)
	}
}

func TestCheckResolvesProductRefs(t *testing.T) {
	repo := newFakeRepo()
	catID := repo.seed(catalog.Category{Code: "CAT001", Name: "חולצות", Status: catalog.StatusActive})
	supID := repo.seed(catalog.Supplier{Code: "SUP001", Name: "אקמה", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	entity, _, err := checker.Check(context.Background(), "t1", ActionAdd, catalog.Product{
		SKU: "HY1001", Name: "פולו",
		CategoryCode: "CAT001", SupplierCode: "SUP001",
		UnitsPerPack: 1, UnitsPerCarton: 1,
	})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	p := entity.(catalog.Product)
	if p.CategoryID != catID || p.SupplierID != supID {
		t.Errorf("resolved ids = (%q, %q), want (%q, %q)", p.CategoryID, p.SupplierID, catID, supID)
	}
}

func TestCheckProductMissingRefs(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(catalog.Category{Code: "CAT001", Name: "חולצות", Status: catalog.StatusActive})
	checker := NewIntegrityChecker(repo)

	_, _, err := checker.Check(context.Background(), "t1", ActionAdd, catalog.Product{
		SKU: "HY1001", Name: "פולו",
		CategoryCode: "CAT001", SupplierCode: "SUP404",
		UnitsPerPack: 1, UnitsPerCarton: 1,
	})
	if got := integrityReason(t, err); got != ReasonMissingRef {
		t.Errorf("reason = %q, want %q", got, ReasonMissingRef)
	}
}
