package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scanstock/internal/domain"
	"scanstock/internal/inventory"
)

// State is the per-scan session phase. At most one session is ever open.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateProductOpen
	StateActionInFlight
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateProductOpen:
		return "product-open"
	case StateActionInFlight:
		return "action-in-flight"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionBusy means a session is open or resolving; the decode event
	// is dropped, not queued.
	ErrSessionBusy = errors.New("a product session is already open")
	// ErrDuplicateScan means the debouncer suppressed the event.
	ErrDuplicateScan = errors.New("duplicate scan suppressed")
	// ErrNoSession means an action or quantity change arrived with nothing open.
	ErrNoSession = errors.New("no product session is open")
	// ErrActionInFlight means a repeat action arrived before the previous one
	// finished; it is ignored, not queued.
	ErrActionInFlight = errors.New("an action is already in flight")
)

const (
	successDismissAfter = 3 * time.Second
	errorDismissAfter   = 4 * time.Second
	historySize         = 5
)

// Notice is a transient banner shown to the worker, auto-dismissed after a
// fixed delay.
type Notice struct {
	Level   string // "success" or "error"
	Message string
}

// HistoryEntry is one accepted scan, newest kept first, capped at historySize.
type HistoryEntry struct {
	Code        string
	ProductName string
	At          time.Time
}

// View is the presentation snapshot consumed by the rendering layer.
type View struct {
	State     string
	Product   *domain.Product
	Inventory *domain.InventoryRecord
	Quantity  int
	Notice    *Notice
	History   []HistoryEntry
}

// resolver is the subset of inventory.Resolver that Controller requires.
type resolver interface {
	Resolve(ctx context.Context, code string) (*inventory.Resolution, error)
}

// engine is the subset of inventory.Engine that Controller requires.
type engine interface {
	Apply(ctx context.Context, code, productName string, quantity int, kind domain.TransactionType) (inventory.Result, error)
}

// Controller sequences the scan pipeline: debounced decode events open a
// session, the worker adjusts a pending quantity and invokes actions, and
// the session closes back to idle. It guarantees at most one open session
// and never queues events or commands.
type Controller struct {
	mu          sync.Mutex
	state       State
	epoch       uint64 // bumped by Close so stale continuations cannot resurrect a dismissed session
	product     *domain.Product
	inv         domain.InventoryRecord
	quantity    int
	notice      *Notice
	noticeTimer *time.Timer
	history     []HistoryEntry

	debouncer *Debouncer
	resolver  resolver
	engine    engine
	now       func() time.Time
	logger    *slog.Logger
}

func NewController(debouncer *Debouncer, resolver resolver, engine engine, logger *slog.Logger) *Controller {
	return &Controller{
		state:     StateIdle,
		quantity:  domain.MinActionQuantity,
		debouncer: debouncer,
		resolver:  resolver,
		engine:    engine,
		now:       time.Now,
		logger:    logger,
	}
}

// HandleScan is the pipeline entry for every decode event: stream frames,
// still images, and manual entry. While a session is open or resolving all
// events are dropped, so a scan storm cannot clobber an in-progress action.
func (c *Controller) HandleScan(ctx context.Context, code string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionBusy
	}
	if !c.debouncer.Accept(code) {
		c.mu.Unlock()
		return ErrDuplicateScan
	}
	c.state = StateResolving
	epoch := c.epoch
	c.mu.Unlock()

	res, err := c.resolver.Resolve(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateResolving || c.epoch != epoch {
		// Close won the race while the lookup was running; the result is
		// discarded and the controller stays as Close left it.
		return err
	}
	if err != nil {
		c.state = StateIdle
		// Both not-found and transient failures leave the path clear for an
		// immediate retry of the same code.
		c.debouncer.Reset()
		if errors.Is(err, inventory.ErrProductNotFound) {
			c.setNotice("error", fmt.Sprintf("Product not found: %s", code), errorDismissAfter)
			return err
		}
		c.logger.Error("lookup failed", "code", code, "error", err)
		c.setNotice("error", "Lookup failed, please try again", errorDismissAfter)
		return err
	}

	c.product = res.Product
	c.inv = res.Inventory
	c.quantity = domain.MinActionQuantity
	c.state = StateProductOpen

	c.history = append([]HistoryEntry{{Code: code, ProductName: res.Product.Name, At: c.now()}}, c.history...)
	if len(c.history) > historySize {
		c.history = c.history[:historySize]
	}

	c.logger.Info("product session opened", "code", code, "name", res.Product.Name, "quantity", c.inv.CurrentQuantity)
	return nil
}

// SetQuantity sets the pending quantity, clamped to the action bounds, and
// returns the value in effect. Outside an open session it is a no-op.
func (c *Controller) SetQuantity(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateProductOpen {
		return c.quantity
	}
	c.quantity = domain.ClampQuantity(n)
	return c.quantity
}

// Act applies the chosen action with the pending quantity. A repeat request
// while one is in flight is ignored. On success the session re-opens with
// refreshed inventory and the quantity reset to 1 (consult keeps it); on
// failure the quantity is preserved so the worker can retry.
func (c *Controller) Act(ctx context.Context, kind domain.TransactionType) (inventory.Result, error) {
	c.mu.Lock()
	switch c.state {
	case StateActionInFlight:
		c.mu.Unlock()
		return inventory.Result{}, ErrActionInFlight
	case StateProductOpen:
	default:
		c.mu.Unlock()
		return inventory.Result{}, ErrNoSession
	}
	code := c.product.Code
	name := c.product.Name
	quantity := c.quantity
	c.state = StateActionInFlight
	epoch := c.epoch
	c.mu.Unlock()

	res, err := c.engine.Apply(ctx, code, name, quantity, kind)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActionInFlight || c.epoch != epoch {
		// Close won the race. The mutation already happened and stands; only
		// the session must not reopen over the dismissal.
		return res, err
	}
	c.state = StateProductOpen
	if err != nil {
		c.setNotice("error", fmt.Sprintf("Failed to %s: %v", kind, err), errorDismissAfter)
		return inventory.Result{}, err
	}

	c.inv.CurrentQuantity = res.NewQuantity
	c.inv.LastUpdated = c.now()
	if kind != domain.TransactionConsult {
		c.quantity = domain.MinActionQuantity
		c.setNotice("success", successMessage(kind, quantity, res), successDismissAfter)
	}
	return res, nil
}

// Close dismisses the session: notices and their timers are cleared, state
// returns to idle, and the debouncer is re-armed for a fresh first scan. A
// lookup or action in flight completes, but its result cannot reopen the
// dismissed session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
		c.noticeTimer = nil
	}
	c.notice = nil
	c.product = nil
	c.inv = domain.InventoryRecord{}
	c.quantity = domain.MinActionQuantity
	c.state = StateIdle
	c.epoch++
	c.debouncer.Reset()
}

// Snapshot returns the current presentation view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := View{
		State:    c.state.String(),
		Quantity: c.quantity,
		History:  append([]HistoryEntry(nil), c.history...),
	}
	if c.product != nil {
		product := *c.product
		inv := c.inv
		view.Product = &product
		view.Inventory = &inv
	}
	if c.notice != nil {
		notice := *c.notice
		view.Notice = &notice
	}
	return view
}

// setNotice replaces the current notice and schedules its dismissal.
// Callers hold c.mu.
func (c *Controller) setNotice(level, message string, after time.Duration) {
	if c.noticeTimer != nil {
		c.noticeTimer.Stop()
	}
	notice := &Notice{Level: level, Message: message}
	c.notice = notice
	c.noticeTimer = time.AfterFunc(after, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer notice may have replaced this one already.
		if c.notice == notice {
			c.notice = nil
		}
	})
}

func successMessage(kind domain.TransactionType, quantity int, res inventory.Result) string {
	unit := "units"
	if quantity == 1 {
		unit = "unit"
	}
	verb := "added to"
	if kind == domain.TransactionRemove {
		verb = "removed from"
	}
	msg := fmt.Sprintf("%d %s %s inventory. New total: %d", quantity, unit, verb, res.NewQuantity)
	if res.Clamped {
		msg += " (stock ran out before the full amount)"
	}
	if res.Unlogged {
		msg += ". Warning: not recorded in the transaction log"
	}
	return msg
}
