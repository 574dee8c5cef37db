package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kobimazuz/pi-order-system-sub000/internal/catalog"
	"github.com/kobimazuz/pi-order-system-sub000/internal/engine"
)

// LedgerStore persists import batch summaries in the import_logs table.
// One row is written per import attempt, including rejected ones, so the
// history view shows everything that was ever submitted.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore returns a ledger store on the given pool.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// ledgerMetadata is the JSON breakdown stored alongside the counters.
type ledgerMetadata struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// Open inserts the ledger entry in the processing state and returns its id.
func (s *LedgerStore) Open(ctx context.Context, tenant string, kind catalog.Kind, fileName string, totalRows int) (string, error) {
	id := uuid.New().String()
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO import_logs (id, user_id, type, filename, total_rows, success, errors, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, now(), now())`,
		id, tenant, string(kind), fileName, totalRows, string(engine.LedgerProcessing),
	); err != nil {
		return "", fmt.Errorf("insert import log: %w", err)
	}
	return id, nil
}

// Finalize writes the terminal counters and status. success is persisted as
// added plus updated; deletes and skips live in the metadata breakdown.
func (s *LedgerStore) Finalize(ctx context.Context, ledgerID string, sum engine.Summary) error {
	meta, err := json.Marshal(ledgerMetadata{
		Added:   sum.Added,
		Updated: sum.Updated,
		Deleted: sum.Deleted,
		Skipped: sum.Skipped,
	})
	if err != nil {
		return fmt.Errorf("encode import log metadata: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `
		UPDATE import_logs SET success = $2, errors = $3, status = $4, metadata = $5, updated_at = now()
		WHERE id = $1`,
		ledgerID, sum.Added+sum.Updated, sum.Errors, string(sum.Status), meta,
	); err != nil {
		return fmt.Errorf("finalize import log: %w", err)
	}
	return nil
}

// ImportRecord is one history row for the web layer.
type ImportRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	FileName  string    `json:"file_name"`
	TotalRows int       `json:"total_rows"`
	Success   int       `json:"success"`
	Errors    int       `json:"errors"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListRecent returns the tenant's newest import attempts, newest first.
func (s *LedgerStore) ListRecent(ctx context.Context, tenant string, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, filename, total_rows, success, errors, status, created_at
		FROM import_logs WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		tenant, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var rec ImportRecord
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.FileName, &rec.TotalRows,
			&rec.Success, &rec.Errors, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan import log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
