package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scanstock/internal/domain"
)

type ProductStore struct {
	db *sql.DB
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// Get returns the product for code, or (nil, nil) when no product exists.
func (s *ProductStore) Get(ctx context.Context, code string) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, brand, category FROM products WHERE code = ?
	`, code).Scan(&p.Code, &p.Name, &p.Brand, &p.Category)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// Put inserts or replaces a catalog entry. The catalog is maintained
// externally; this exists for seeding and tests.
func (s *ProductStore) Put(ctx context.Context, p *domain.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (code, name, brand, category) VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name, brand = excluded.brand, category = excluded.category
	`, p.Code, p.Name, p.Brand, p.Category)
	if err != nil {
		return fmt.Errorf("failed to put product: %w", err)
	}

	return nil
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Random returns an arbitrary catalog product, or (nil, nil) when the
// catalog is empty. Used by the label generator.
func (s *ProductStore) Random(ctx context.Context) (*domain.Product, error) {
	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, brand, category FROM products ORDER BY RANDOM() LIMIT 1
	`).Scan(&p.Code, &p.Name, &p.Brand, &p.Category)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random product: %w", err)
	}

	return p, nil
}

// RandomInStock returns an arbitrary product that currently has stock,
// together with its quantity, or (nil, 0, nil) when nothing is in stock.
func (s *ProductStore) RandomInStock(ctx context.Context) (*domain.Product, int, error) {
	p := &domain.Product{}
	var qty int
	err := s.db.QueryRowContext(ctx, `
		SELECT p.code, p.name, p.brand, p.category, i.current_quantity
		FROM products p
		JOIN inventory i ON i.code = p.code
		WHERE i.current_quantity > 0
		ORDER BY RANDOM() LIMIT 1
	`).Scan(&p.Code, &p.Name, &p.Brand, &p.Category, &qty)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get random in-stock product: %w", err)
	}

	return p, qty, nil
}
