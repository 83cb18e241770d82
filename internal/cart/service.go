package cart

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// CartStore persists carts per session.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ProductLookup resolves catalog products.
type ProductLookup interface {
	Get(ctx context.Context, commerceID, id int64) (catalog.Product, error)
}

// ClientLookup resolves the client attached to a sale.
type ClientLookup interface {
	Get(ctx context.Context, commerceID, id int64) (clients.Client, error)
}

// OrderWriter appends orders to the ledger.
type OrderWriter interface {
	Create(ctx context.Context, order orders.Order, opts orders.CreateOptions) (orders.Order, error)
}

// KeyLedger reports idempotency keys already used by a stored order.
type KeyLedger interface {
	Claimed(ctx context.Context, key, module string) (bool, error)
}

// Invalidator drops cached report data of a tenant.
type Invalidator interface {
	Bump(ctx context.Context, commerceID int64) error
}

// CheckoutObserver records checkout outcomes.
type CheckoutObserver interface {
	ObserveCheckout(ok bool, total float64)
}

// Options are the sale settings chosen at the till.
type Options struct {
	TaxEnabled bool   `json:"tax_enabled"`
	ClientID   *int64 `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	ClientName string `json:"client_name" validate:"max=120"`
}

// CheckoutRequest carries everything checkout needs besides the cart itself.
type CheckoutRequest struct {
	SessionID      string
	CommerceID     int64
	CashierID      int64
	Tendered       decimal.Decimal
	IdempotencyKey string
}

// Service manages session carts and checkout.
type Service struct {
	store    CartStore
	products ProductLookup
	clients  ClientLookup
	orders   OrderWriter
	keys     KeyLedger
	cache    Invalidator
	metrics  CheckoutObserver
	logger   *slog.Logger
}

// ServiceParams groups Service dependencies. Keys, Cache and Metrics are optional.
type ServiceParams struct {
	Store    CartStore
	Products ProductLookup
	Clients  ClientLookup
	Orders   OrderWriter
	Keys     KeyLedger
	Cache    Invalidator
	Metrics  CheckoutObserver
	Logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(p ServiceParams) *Service {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    p.Store,
		products: p.Products,
		clients:  p.Clients,
		orders:   p.Orders,
		keys:     p.Keys,
		cache:    p.Cache,
		metrics:  p.Metrics,
		logger:   logger,
	}
}

// Get returns the session cart for the tenant.
func (s *Service) Get(ctx context.Context, sessionID string, commerceID int64) (*Cart, error) {
	return s.load(ctx, sessionID, commerceID)
}

// AddItem adds quantity units of a catalog product.
func (s *Service) AddItem(ctx context.Context, sessionID string, commerceID, productID int64, quantity int) (*Cart, error) {
	if quantity <= 0 {
		quantity = 1
	}
	product, err := s.products.Get(ctx, commerceID, productID)
	if err != nil {
		return nil, err
	}
	c, err := s.load(ctx, sessionID, commerceID)
	if err != nil {
		return nil, err
	}
	if quantity > MaxLineQuantity-c.Quantity(product.ID) {
		return nil, ErrQuantityLimit
	}
	c.AddItem(product)
	if quantity > 1 {
		if err := c.UpdateQuantity(product.ID, quantity-1); err != nil {
			return nil, err
		}
	}
	return c, s.store.Save(ctx, sessionID, c)
}

// UpdateQuantity adjusts a line by delta, removing it at zero.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, commerceID, productID int64, delta int) (*Cart, error) {
	c, err := s.load(ctx, sessionID, commerceID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(productID, delta); err != nil {
		return nil, err
	}
	return c, s.store.Save(ctx, sessionID, c)
}

// RemoveItem drops a line.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, commerceID, productID int64) (*Cart, error) {
	c, err := s.load(ctx, sessionID, commerceID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	return c, s.store.Save(ctx, sessionID, c)
}

// Clear discards the session cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// SetOptions updates tax and client selection. A client id takes its name
// from the client ledger; otherwise the free text name is kept.
func (s *Service) SetOptions(ctx context.Context, sessionID string, commerceID int64, opts Options) (*Cart, error) {
	c, err := s.load(ctx, sessionID, commerceID)
	if err != nil {
		return nil, err
	}
	c.TaxEnabled = opts.TaxEnabled
	c.ClientID = nil
	c.ClientName = strings.TrimSpace(opts.ClientName)
	if opts.ClientID != nil {
		client, err := s.clients.Get(ctx, commerceID, *opts.ClientID)
		if err != nil {
			return nil, err
		}
		id := client.ID
		c.ClientID = &id
		c.ClientName = client.Name
	}
	return c, s.store.Save(ctx, sessionID, c)
}

// Checkout turns the session cart into an order. The cart is cleared only
// after the order is stored. A key that already produced an order is a
// conflict even though that checkout left the cart empty.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (orders.Order, error) {
	c, err := s.load(ctx, req.SessionID, req.CommerceID)
	if err != nil {
		return orders.Order{}, err
	}
	if req.IdempotencyKey != "" && s.keys != nil {
		claimed, err := s.keys.Claimed(ctx, req.IdempotencyKey, orders.IdempotencyModule)
		if err != nil {
			return orders.Order{}, err
		}
		if claimed {
			s.observe(false, decimal.Zero)
			return orders.Order{}, shared.ErrIdempotencyConflict
		}
	}
	if c.IsEmpty() {
		s.observe(false, decimal.Zero)
		return orders.Order{}, ErrEmptyCart
	}
	if req.CommerceID <= 0 || req.CashierID <= 0 {
		s.observe(false, decimal.Zero)
		return orders.Order{}, ErrMissingIdentity
	}
	if req.Tendered.IsNegative() {
		return orders.Order{}, fmt.Errorf("%w: tendered amount must not be negative", httpx.ErrValidation)
	}

	order := BuildOrder(c, req.CommerceID, req.CashierID, req.Tendered)
	stored, err := s.orders.Create(ctx, order, orders.CreateOptions{
		IdempotencyKey: req.IdempotencyKey,
		DecrementStock: true,
	})
	if err != nil {
		s.observe(false, order.Total)
		return orders.Order{}, err
	}
	s.observe(true, stored.Total)

	if s.cache != nil {
		if err := s.cache.Bump(ctx, req.CommerceID); err != nil {
			s.logger.Warn("checkout cache bump", slog.Int64("commerce_id", req.CommerceID), slog.Any("error", err))
		}
	}
	if err := s.store.Delete(ctx, req.SessionID); err != nil {
		s.logger.Warn("checkout clear cart", slog.Int64("order_id", stored.ID), slog.Any("error", err))
	}
	return stored, nil
}

// BuildOrder snapshots a cart into an unsaved order.
func BuildOrder(c *Cart, commerceID, cashierID int64, tendered decimal.Decimal) orders.Order {
	totals := c.Totals()
	lines := make([]orders.Line, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = orders.Line{ProductID: l.ProductID, Name: l.Name, Price: l.Price, Quantity: l.Quantity}
	}
	var clientID *int64
	if c.ClientID != nil {
		id := *c.ClientID
		clientID = &id
	}
	return orders.Order{
		CommerceID: commerceID,
		CashierID:  cashierID,
		ClientID:   clientID,
		ClientName: c.ClientName,
		TaxEnabled: c.TaxEnabled,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Tendered:   tendered,
		ChangeDue:  ChangeDue(tendered, totals.Total),
		Lines:      lines,
	}
}

// load returns the session cart, discarding one that belongs to another tenant.
func (s *Service) load(ctx context.Context, sessionID string, commerceID int64) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: no session", httpx.ErrUnauthorized)
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.CommerceID != commerceID {
		*c = Cart{CommerceID: commerceID}
	}
	return c, nil
}

func (s *Service) observe(ok bool, total decimal.Decimal) {
	if s.metrics != nil {
		s.metrics.ObserveCheckout(ok, total.InexactFloat64())
	}
}
