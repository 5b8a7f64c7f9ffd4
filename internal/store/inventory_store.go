package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scanstock/internal/domain"
)

type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

// Get returns the inventory record for code. A missing row is not an error:
// it means "never stocked yet" and a zero record is synthesized, so callers
// never see an absent counter.
func (s *InventoryStore) Get(ctx context.Context, code string) (domain.InventoryRecord, error) {
	rec := domain.InventoryRecord{Code: code}
	err := s.db.QueryRowContext(ctx, `
		SELECT code, current_quantity, last_updated FROM inventory WHERE code = ?
	`, code).Scan(&rec.Code, &rec.CurrentQuantity, &rec.LastUpdated)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.InventoryRecord{Code: code}, nil
	}
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("failed to get inventory: %w", err)
	}

	return rec, nil
}

// Set writes the quantity counter for code as a single upsert statement, so
// a transactional backend can replace it without changing the contract.
func (s *InventoryStore) Set(ctx context.Context, code string, quantity int, ts time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (code, current_quantity, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET current_quantity = excluded.current_quantity, last_updated = excluded.last_updated
	`, code, quantity, ts)
	if err != nil {
		return fmt.Errorf("failed to set inventory: %w", err)
	}

	return nil
}

// WithStock lists every record with a positive quantity, largest first.
func (s *InventoryStore) WithStock(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, current_quantity, last_updated FROM inventory
		WHERE current_quantity > 0 ORDER BY current_quantity DESC, code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory with stock: %w", err)
	}

	return scanInventoryRows(rows)
}

// Top lists the records with the highest quantities, largest first.
func (s *InventoryStore) Top(ctx context.Context, limit int) ([]domain.InventoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, current_quantity, last_updated FROM inventory
		WHERE current_quantity > 0 ORDER BY current_quantity DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top inventory: %w", err)
	}

	return scanInventoryRows(rows)
}

// Stats aggregates the inventory collection. A record counts as low stock
// when its quantity is positive but below lowStockBelow.
func (s *InventoryStore) Stats(ctx context.Context, lowStockBelow int) (domain.Stats, error) {
	var st domain.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(current_quantity), 0),
		       COALESCE(SUM(current_quantity > 0), 0),
		       COALESCE(SUM(current_quantity > 0 AND current_quantity < ?), 0)
		FROM inventory
	`, lowStockBelow).Scan(&st.TotalUnits, &st.ProductsWithStock, &st.LowStockCount)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to aggregate inventory stats: %w", err)
	}

	return st, nil
}

func scanInventoryRows(rows *sql.Rows) ([]domain.InventoryRecord, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []domain.InventoryRecord
	for rows.Next() {
		var rec domain.InventoryRecord
		if err := rows.Scan(&rec.Code, &rec.CurrentQuantity, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan inventory record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory records: %w", err)
	}

	return records, nil
}
