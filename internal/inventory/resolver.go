package inventory

import (
	"context"
	"errors"
	"fmt"

	"scanstock/internal/domain"
)

// ErrProductNotFound means the code decoded cleanly but no catalog product
// matches it. Distinct from transient store failures: the caller may re-scan
// immediately and no session opens.
var ErrProductNotFound = errors.New("product not found")

// productGetter is the subset of store.ProductStore that Resolver requires.
type productGetter interface {
	Get(ctx context.Context, code string) (*domain.Product, error)
}

// inventoryGetter is the subset of store.InventoryStore that Resolver requires.
type inventoryGetter interface {
	Get(ctx context.Context, code string) (domain.InventoryRecord, error)
}

// Resolution pairs a catalog product with its current inventory snapshot.
type Resolution struct {
	Product   *domain.Product
	Inventory domain.InventoryRecord
}

// Resolver classifies a decoded code: found (product + inventory snapshot),
// unknown code, or transient store failure.
type Resolver struct {
	products  productGetter
	inventory inventoryGetter
}

func NewResolver(products productGetter, inventory inventoryGetter) *Resolver {
	return &Resolver{products: products, inventory: inventory}
}

func (r *Resolver) Resolve(ctx context.Context, code string) (*Resolution, error) {
	product, err := r.products.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", code, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	// Absent inventory is "never stocked yet"; the store synthesizes a zero
	// record so there is no second not-found path here.
	rec, err := r.inventory.Get(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory %s: %w", code, err)
	}

	return &Resolution{Product: product, Inventory: rec}, nil
}
