package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scanstock/internal/domain"
)

// inventoryRepository is the subset of store.InventoryStore that Engine requires.
type inventoryRepository interface {
	Get(ctx context.Context, code string) (domain.InventoryRecord, error)
	Set(ctx context.Context, code string, quantity int, ts time.Time) error
}

// transactionAppender is the subset of store.TransactionStore that Engine requires.
type transactionAppender interface {
	Append(ctx context.Context, rec domain.TransactionRecord) (*domain.TransactionRecord, error)
}

// Result reports the outcome of one applied action.
//
// Clamped means a remove ran into the zero floor and delivered fewer units
// than requested. Unlogged means the quantity write succeeded but the audit
// append failed; the stock number is authoritative and is not rolled back.
type Result struct {
	NewQuantity int
	Clamped     bool
	Unlogged    bool
}

// Engine performs the read-clamp-write-record cycle for one product counter.
// The read and write are not isolated from writers on other devices; the
// deployment accepts last-write-wins convergence. The whole cycle sits
// behind Apply so a transactional backend can be substituted.
type Engine struct {
	inventory    inventoryRepository
	transactions transactionAppender
	actorID      string
	now          func() time.Time
	logger       *slog.Logger
}

func NewEngine(inventory inventoryRepository, transactions transactionAppender, actorID string, logger *slog.Logger) *Engine {
	return &Engine{
		inventory:    inventory,
		transactions: transactions,
		actorID:      actorID,
		now:          time.Now,
		logger:       logger,
	}
}

// Apply executes one action against the counter for code and appends the
// matching transaction record. quantity is re-clamped to the action bounds
// before use; consult ignores it. The logged quantity is the requested
// amount, not the delivered one (consult logs 0).
func (e *Engine) Apply(ctx context.Context, code, productName string, quantity int, kind domain.TransactionType) (Result, error) {
	rec, err := e.inventory.Get(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read inventory: %w", err)
	}

	res := Result{NewQuantity: rec.CurrentQuantity}
	logged := 0

	switch kind {
	case domain.TransactionConsult:
		// No mutation; the record is appended for audit only.
	case domain.TransactionReceive:
		quantity = domain.ClampQuantity(quantity)
		logged = quantity
		res.NewQuantity = rec.CurrentQuantity + quantity
	case domain.TransactionRemove:
		quantity = domain.ClampQuantity(quantity)
		logged = quantity
		if quantity > rec.CurrentQuantity {
			// Removal below zero floors at zero. Lossy but safe.
			res.Clamped = true
			res.NewQuantity = 0
		} else {
			res.NewQuantity = rec.CurrentQuantity - quantity
		}
	default:
		return Result{}, fmt.Errorf("unknown transaction type %q", kind)
	}

	if kind != domain.TransactionConsult {
		if err := e.inventory.Set(ctx, code, res.NewQuantity, e.now()); err != nil {
			return Result{}, fmt.Errorf("failed to write inventory: %w", err)
		}
		e.logger.Info("inventory updated",
			"code", code, "type", kind, "quantity", logged, "new_quantity", res.NewQuantity, "clamped", res.Clamped)
	}

	_, err = e.transactions.Append(ctx, domain.TransactionRecord{
		Code:        code,
		ProductName: productName,
		Type:        kind,
		Quantity:    logged,
		Timestamp:   e.now(),
		ActorID:     e.actorID,
	})
	if err != nil {
		if kind == domain.TransactionConsult {
			return Result{}, fmt.Errorf("failed to record consult: %w", err)
		}
		// The counter already holds the new value; rolling it back would lose
		// real stock movement. Surface the gap instead.
		e.logger.Warn("quantity written but transaction not logged", "code", code, "type", kind, "error", err)
		res.Unlogged = true
	}

	return res, nil
}
