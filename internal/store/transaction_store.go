package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"scanstock/internal/domain"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Append writes one immutable log entry and returns it with its assigned ID.
// Records are never updated or deleted.
func (s *TransactionStore) Append(ctx context.Context, rec domain.TransactionRecord) (*domain.TransactionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ProductName == "" {
		rec.ProductName = "Unknown Product"
	}
	if rec.ActorID == "" {
		rec.ActorID = "anonymous"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, code, product_name, type, quantity, timestamp, actor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Code, rec.ProductName, string(rec.Type), rec.Quantity, rec.Timestamp, rec.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	return &rec, nil
}

// Recent returns the newest entries, most recent first.
func (s *TransactionStore) Recent(ctx context.Context, limit int) ([]*domain.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, product_name, type, quantity, timestamp, actor_id
		FROM transactions ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	return scanTransactionRows(rows)
}

// ByType returns the newest entries of one transaction type.
func (s *TransactionStore) ByType(ctx context.Context, t domain.TransactionType, limit int) ([]*domain.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, product_name, type, quantity, timestamp, actor_id
		FROM transactions WHERE type = ? ORDER BY timestamp DESC LIMIT ?
	`, string(t), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by type: %w", err)
	}

	return scanTransactionRows(rows)
}

func scanTransactionRows(rows *sql.Rows) ([]*domain.TransactionRecord, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var records []*domain.TransactionRecord
	for rows.Next() {
		rec := &domain.TransactionRecord{}
		var typ string
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.ProductName, &typ, &rec.Quantity, &rec.Timestamp, &rec.ActorID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		rec.Type = domain.TransactionType(typ)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return records, nil
}
