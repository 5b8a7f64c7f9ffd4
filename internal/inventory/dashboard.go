package inventory

import (
	"context"
	"fmt"

	"scanstock/internal/domain"
)

const (
	recentTransactionCount = 20
	topProductCount        = 10
)

// productReader is the subset of store.ProductStore that Dashboard requires.
type productReader interface {
	Get(ctx context.Context, code string) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
}

// inventoryReader is the subset of store.InventoryStore that Dashboard requires.
type inventoryReader interface {
	WithStock(ctx context.Context) ([]domain.InventoryRecord, error)
	Top(ctx context.Context, limit int) ([]domain.InventoryRecord, error)
	Stats(ctx context.Context, lowStockBelow int) (domain.Stats, error)
}

// transactionReader is the subset of store.TransactionStore that Dashboard requires.
type transactionReader interface {
	Recent(ctx context.Context, limit int) ([]*domain.TransactionRecord, error)
}

// TopProduct is an in-stock product joined with its quantity for ranking.
type TopProduct struct {
	Product         domain.Product
	CurrentQuantity int
}

type DashboardData struct {
	TotalProducts      int64
	Stats              domain.Stats
	RecentTransactions []*domain.TransactionRecord
	TopProducts        []TopProduct
}

// Dashboard assembles the KPI snapshot: catalog size, stock aggregates,
// recent transactions, and the highest-stocked products.
type Dashboard struct {
	products      productReader
	inventory     inventoryReader
	transactions  transactionReader
	lowStockBelow int
}

func NewDashboard(products productReader, inventory inventoryReader, transactions transactionReader, lowStockBelow int) *Dashboard {
	return &Dashboard{
		products:      products,
		inventory:     inventory,
		transactions:  transactions,
		lowStockBelow: lowStockBelow,
	}
}

func (d *Dashboard) Load(ctx context.Context) (*DashboardData, error) {
	count, err := d.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	stats, err := d.inventory.Stats(ctx, d.lowStockBelow)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory stats: %w", err)
	}

	recent, err := d.transactions.Recent(ctx, recentTransactionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	top, err := d.inventory.Top(ctx, topProductCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load top inventory: %w", err)
	}

	topProducts, err := d.joinProducts(ctx, top)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		TotalProducts:      count,
		Stats:              stats,
		RecentTransactions: recent,
		TopProducts:        topProducts,
	}, nil
}

// StockList returns every stocked product joined with its catalog entry,
// highest quantity first.
func (d *Dashboard) StockList(ctx context.Context) ([]TopProduct, error) {
	records, err := d.inventory.WithStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stocked inventory: %w", err)
	}
	return d.joinProducts(ctx, records)
}

func (d *Dashboard) joinProducts(ctx context.Context, records []domain.InventoryRecord) ([]TopProduct, error) {
	joined := make([]TopProduct, 0, len(records))
	for _, rec := range records {
		product, err := d.products.Get(ctx, rec.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", rec.Code, err)
		}
		// Inventory rows whose product left the catalog are skipped.
		if product == nil {
			continue
		}
		joined = append(joined, TopProduct{Product: *product, CurrentQuantity: rec.CurrentQuantity})
	}
	return joined, nil
}
