package engine

// In-memory Repository and LedgerStore doubles shared by the engine tests.
// The repository keeps real state so multi-row batches exercise ordering
// effects the way the live store would.

import (
	"context"
	"fmt"
	"strings"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
)

type storedRecord struct {
	id       string
	kind     catalog.Kind
	code     string
	name     string
	status   catalog.Status
	parentID string
	entity   catalog.Entity
}

type fakeRepo struct {
	seq     int
	records map[string]*storedRecord // id -> record
	// deps marks ids that products reference through free-text fields
	// (colors, sizes, materials), which the fake cannot derive.
	deps map[string]bool

	attached  map[string]Blob // entity id -> attached image
	attachErr error
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:  make(map[string]*storedRecord),
		deps:     make(map[string]bool),
		attached: make(map[string]Blob),
	}
}

// seed inserts an entity directly, bypassing the engine, and returns its id.
func (f *fakeRepo) seed(entity catalog.Entity) string {
	id, err := f.Create(context.Background(), "t1", entity)
	if err != nil {
		panic(err)
	}
	return id
}

func (f *fakeRepo) lookup(kind catalog.Kind, code string) *storedRecord {
	for _, r := range f.records {
		if r.kind == kind && r.code == code {
			return r
		}
	}
	return nil
}

func (f *fakeRepo) FindByCode(ctx context.Context, tenant string, kind catalog.Kind, code string) (*Existing, error) {
	r := f.lookup(kind, code)
	if r == nil {
		return nil, nil
	}
	return &Existing{ID: r.id, Code: r.code, Name: r.name, Status: r.status, ParentID: r.parentID}, nil
}

func (f *fakeRepo) FindChildren(ctx context.Context, tenant, categoryID string) ([]Existing, error) {
	var out []Existing
	for _, r := range f.records {
		if r.kind == catalog.Categories && r.parentID == categoryID {
			out = append(out, Existing{ID: r.id, Code: r.code, ParentID: r.parentID})
		}
	}
	return out, nil
}

func (f *fakeRepo) HasDependents(ctx context.Context, tenant string, kind catalog.Kind, id string) (bool, error) {
	if f.deps[id] {
		return true, nil
	}
	for _, r := range f.records {
		p, ok := r.entity.(catalog.Product)
		if !ok {
			continue
		}
		if p.CategoryID == id || p.SupplierID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Create(ctx context.Context, tenant string, entity catalog.Entity) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.seq++
	id := fmt.Sprintf("id-%d", f.seq)
	f.records[id] = recordFor(id, entity)
	return id, nil
}

func (f *fakeRepo) Replace(ctx context.Context, tenant, id string, entity catalog.Entity) error {
	if _, ok := f.records[id]; !ok {
		return fmt.Errorf("no record %s", id)
	}
	f.records[id] = recordFor(id, entity)
	return nil
}

func (f *fakeRepo) Remove(ctx context.Context, tenant string, kind catalog.Kind, id string) error {
	if _, ok := f.records[id]; !ok {
		return fmt.Errorf("no record %s", id)
	}
	delete(f.records, id)
	return nil
}

func (f *fakeRepo) AttachImage(ctx context.Context, tenant string, kind catalog.Kind, id string, image Blob) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached[id] = image
	return nil
}

func recordFor(id string, entity catalog.Entity) *storedRecord {
	r := &storedRecord{id: id, kind: entity.EntityKind(), code: entity.NaturalKey(), entity: entity}
	switch e := entity.(type) {
	case catalog.Category:
		r.name, r.status, r.parentID = e.Name, e.Status, e.ParentID
	case catalog.Color:
		r.name, r.status = e.Name, e.Status
	case catalog.Size:
		r.name, r.status = e.Name, e.Status
	case catalog.Material:
		r.name, r.status = e.Name, e.Status
	case catalog.Supplier:
		r.name, r.status = e.Name, e.Status
	case catalog.Product:
		r.name, r.status = e.Name, e.Status
	}
	return r
}

type openedEntry struct {
	tenant    string
	kind      catalog.Kind
	fileName  string
	totalRows int
}

type fakeLedgerStore struct {
	opened      []openedEntry
	finalized   map[string]Summary
	openErr     error
	finalizeErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{finalized: make(map[string]Summary)}
}

func (f *fakeLedgerStore) Open(ctx context.Context, tenant string, kind catalog.Kind, fileName string, totalRows int) (string, error) {
	if f.openErr != nil {
		return "", f.openErr
	}
	f.opened = append(f.opened, openedEntry{tenant: tenant, kind: kind, fileName: fileName, totalRows: totalRows})
	return fmt.Sprintf("ledger-%d", len(f.opened)), nil
}

func (f *fakeLedgerStore) Finalize(ctx context.Context, ledgerID string, sum Summary) error {
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.finalized[ledgerID] = sum
	return nil
}

// reasonContains reports whether a failed outcome's reason mentions want.
func reasonContains(out Outcome, want string) bool {
	return strings.Contains(out.Reason, want)
}
