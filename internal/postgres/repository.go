// Package postgres implements the engine's persistence interfaces over
// PostgreSQL using pgx. All tables are tenant-scoped through a user_id column
// and every code is unique per (user_id, table).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
)

// ImageStore writes a product image blob and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, mediaType string) (string, error)
}

// Repository is the pgx-backed catalog store. images may be nil, in which
// case AttachImage reports storage as unconfigured and the engine downgrades
// the attachment to a row warning.
type Repository struct {
	pool   *pgxpool.Pool
	images ImageStore
}

// NewRepository wires a repository to its connection pool and blob store.
func NewRepository(pool *pgxpool.Pool, images ImageStore) *Repository {
	return &Repository{pool: pool, images: images}
}

// tableInfo describes the per-kind storage shape: table name and the column
// holding the natural key.
type tableInfo struct {
	name    string
	codeCol string
}

var tables = map[catalog.Kind]tableInfo{
	catalog.Categories: {name: "categories", codeCol: "code"},
	catalog.Colors:     {name: "colors", codeCol: "code"},
	catalog.Sizes:      {name: "sizes", codeCol: "code"},
	catalog.Materials:  {name: "materials", codeCol: "code"},
	catalog.Suppliers:  {name: "suppliers", codeCol: "code"},
	catalog.Products:   {name: "products", codeCol: "sku"},
}

func tableFor(kind catalog.Kind) (tableInfo, error) {
	t, ok := tables[kind]
	if !ok {
		return tableInfo{}, fmt.Errorf("no table for kind %q", kind)
	}
	return t, nil
}

// FindByCode returns the stored record with the given natural key, or
// (nil, nil) when none exists.
func (r *Repository) FindByCode(ctx context.Context, tenant string, kind catalog.Kind, code string) (*engine.Existing, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	parentCol := "''"
	if kind == catalog.Categories {
		parentCol = "COALESCE(parent_id, '')"
	}
	query := fmt.Sprintf(
		"SELECT id, %s, name, status, %s FROM %s WHERE user_id = $1 AND %s = $2",
		t.codeCol, parentCol, t.name, t.codeCol,
	)

	var ex engine.Existing
	var status string
	err = r.pool.QueryRow(ctx, query, tenant, code).Scan(&ex.ID, &ex.Code, &ex.Name, &status, &ex.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by code: %w", t.name, err)
	}
	ex.Status = catalog.Status(status)
	return &ex, nil
}

// FindChildren returns the categories whose parent is categoryID.
func (r *Repository) FindChildren(ctx context.Context, tenant, categoryID string) ([]engine.Existing, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, code, name, status, COALESCE(parent_id, '') FROM categories WHERE user_id = $1 AND parent_id = $2",
		tenant, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("find child categories: %w", err)
	}
	defer rows.Close()

	var out []engine.Existing
	for rows.Next() {
		var ex engine.Existing
		var status string
		if err := rows.Scan(&ex.ID, &ex.Code, &ex.Name, &status, &ex.ParentID); err != nil {
			return nil, fmt.Errorf("scan child category: %w", err)
		}
		ex.Status = catalog.Status(status)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// HasDependents reports whether any product still references the record.
// Categories and suppliers are referenced by foreign key; colors and sizes by
// name inside the product's free-text lists. Materials are not referenced by
// the product template and never block deletion.
func (r *Repository) HasDependents(ctx context.Context, tenant string, kind catalog.Kind, id string) (bool, error) {
	var query string
	switch kind {
	case catalog.Categories:
		query = "SELECT EXISTS(SELECT 1 FROM products WHERE user_id = $1 AND category_id = $2)"
	case catalog.Suppliers:
		query = "SELECT EXISTS(SELECT 1 FROM products WHERE user_id = $1 AND supplier_id = $2)"
	case catalog.Colors:
		query = `SELECT EXISTS(
			SELECT 1 FROM products p, colors c
			WHERE c.user_id = $1 AND c.id = $2 AND p.user_id = $1 AND c.name = ANY(p.colors))`
	case catalog.Sizes:
		query = `SELECT EXISTS(
			SELECT 1 FROM products p, sizes s
			WHERE s.user_id = $1 AND s.id = $2 AND p.user_id = $1 AND s.name = ANY(p.sizes))`
	default:
		return false, nil
	}

	var dependent bool
	if err := r.pool.QueryRow(ctx, query, tenant, id).Scan(&dependent); err != nil {
		return false, fmt.Errorf("check %s dependents: %w", kind, err)
	}
	return dependent, nil
}

// Create inserts a new record and returns its id.
func (r *Repository) Create(ctx context.Context, tenant string, entity catalog.Entity) (string, error) {
	id := uuid.New().String()

	var err error
	switch e := entity.(type) {
	case catalog.Category:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO categories (id, user_id, code, name, description, parent_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, now(), now())`,
			id, tenant, e.Code, e.Name, e.Description, e.ParentID, string(e.Status))
	case catalog.Color:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO colors (id, user_id, code, name, hex_code, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
			id, tenant, e.Code, e.Name, e.Hex, string(e.Status))
	case catalog.Size:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO sizes (id, user_id, code, name, description, category, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
			id, tenant, e.Code, e.Name, e.Description, e.Category, string(e.Status))
	case catalog.Material:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO materials (id, user_id, code, name, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())`,
			id, tenant, e.Code, e.Name, e.Description, string(e.Status))
	case catalog.Supplier:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO suppliers (id, user_id, code, name, contact_name, email, phone, address, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
			id, tenant, e.Code, e.Name, e.ContactName, e.Email, e.Phone, e.Address, string(e.Status))
	case catalog.Product:
		_, err = r.pool.Exec(ctx, `
			INSERT INTO products (id, user_id, sku, name, description, category_id, supplier_id,
				colors, sizes, units_per_pack, units_per_carton, price_per_unit, packing_info, status,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`,
			id, tenant, e.SKU, e.Name, e.Description, e.CategoryID, e.SupplierID,
			e.Colors, e.Sizes, e.UnitsPerPack, e.UnitsPerCarton, e.PricePerUnit, e.PackingInfo, string(e.Status))
	default:
		return "", fmt.Errorf("unsupported entity type %T", entity)
	}

	if err != nil {
		return "", fmt.Errorf("insert %s: %w", entity.EntityKind(), err)
	}
	return id, nil
}

// Replace overwrites every mutable field of the record with the given id.
func (r *Repository) Replace(ctx context.Context, tenant, id string, entity catalog.Entity) error {
	var err error
	switch e := entity.(type) {
	case catalog.Category:
		_, err = r.pool.Exec(ctx, `
			UPDATE categories SET name = $3, description = $4, parent_id = NULLIF($5, ''), status = $6, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.Description, e.ParentID, string(e.Status))
	case catalog.Color:
		_, err = r.pool.Exec(ctx, `
			UPDATE colors SET name = $3, hex_code = $4, status = $5, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.Hex, string(e.Status))
	case catalog.Size:
		_, err = r.pool.Exec(ctx, `
			UPDATE sizes SET name = $3, description = $4, category = $5, status = $6, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.Description, e.Category, string(e.Status))
	case catalog.Material:
		_, err = r.pool.Exec(ctx, `
			UPDATE materials SET name = $3, description = $4, status = $5, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.Description, string(e.Status))
	case catalog.Supplier:
		_, err = r.pool.Exec(ctx, `
			UPDATE suppliers SET name = $3, contact_name = $4, email = $5, phone = $6, address = $7, status = $8, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.ContactName, e.Email, e.Phone, e.Address, string(e.Status))
	case catalog.Product:
		_, err = r.pool.Exec(ctx, `
			UPDATE products SET name = $3, description = $4, category_id = $5, supplier_id = $6,
				colors = $7, sizes = $8, units_per_pack = $9, units_per_carton = $10,
				price_per_unit = $11, packing_info = $12, status = $13, updated_at = now()
			WHERE user_id = $1 AND id = $2`,
			tenant, id, e.Name, e.Description, e.CategoryID, e.SupplierID,
			e.Colors, e.Sizes, e.UnitsPerPack, e.UnitsPerCarton, e.PricePerUnit, e.PackingInfo, string(e.Status))
	default:
		return fmt.Errorf("unsupported entity type %T", entity)
	}

	if err != nil {
		return fmt.Errorf("update %s: %w", entity.EntityKind(), err)
	}
	return nil
}

// Remove deletes the record with the given id.
func (r *Repository) Remove(ctx context.Context, tenant string, kind catalog.Kind, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND id = $2", t.name),
		tenant, id,
	); err != nil {
		return fmt.Errorf("delete from %s: %w", t.name, err)
	}
	return nil
}

// AttachImage uploads the blob keyed by tenant and SKU, then stores the
// resulting public URL on the product row.
func (r *Repository) AttachImage(ctx context.Context, tenant string, kind catalog.Kind, id string, image engine.Blob) error {
	if kind != catalog.Products {
		return fmt.Errorf("images are only attached to products, not %s", kind)
	}
	if r.images == nil {
		return errors.New("image storage is not configured")
	}

	var sku string
	err := r.pool.QueryRow(ctx,
		"SELECT sku FROM products WHERE user_id = $1 AND id = $2", tenant, id,
	).Scan(&sku)
	if err != nil {
		return fmt.Errorf("look up product sku: %w", err)
	}

	url, err := r.images.Put(ctx, tenant+"/"+sku, image.Data, image.MediaType)
	if err != nil {
		return fmt.Errorf("store product image: %w", err)
	}

	if _, err := r.pool.Exec(ctx,
		"UPDATE products SET image_url = $3, updated_at = now() WHERE user_id = $1 AND id = $2",
		tenant, id, url,
	); err != nil {
		return fmt.Errorf("save product image url: %w", err)
	}
	return nil
}
