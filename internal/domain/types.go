package domain

import "time"

// TransactionType classifies an inventory action.
type TransactionType string

const (
	TransactionReceive TransactionType = "receive"
	TransactionRemove  TransactionType = "remove"
	TransactionConsult TransactionType = "consult"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionReceive, TransactionRemove, TransactionConsult:
		return true
	}
	return false
}

// Product is catalog reference data keyed by its GTIN/barcode payload.
// Scanning and inventory actions never mutate it.
type Product struct {
	Code     string
	Name     string
	Brand    string
	Category string
}

// InventoryRecord holds the stock counter for one product code.
// CurrentQuantity is never negative.
type InventoryRecord struct {
	Code            string
	CurrentQuantity int
	LastUpdated     time.Time
}

// TransactionRecord is an append-only audit log entry. Quantity is the
// requested amount (0 for consult), not the delivered amount.
type TransactionRecord struct {
	ID          string
	Code        string
	ProductName string
	Type        TransactionType
	Quantity    int
	Timestamp   time.Time
	ActorID     string
}

// Bounds for the per-action quantity input.
const (
	MinActionQuantity = 1
	MaxActionQuantity = 100
)

// ClampQuantity bounds n to [MinActionQuantity, MaxActionQuantity].
func ClampQuantity(n int) int {
	if n < MinActionQuantity {
		return MinActionQuantity
	}
	if n > MaxActionQuantity {
		return MaxActionQuantity
	}
	return n
}

// Stats summarizes the inventory collection for the dashboard.
type Stats struct {
	TotalUnits        int
	ProductsWithStock int
	LowStockCount     int
}
