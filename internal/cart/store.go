// Package cart mirrors the signed-in user's server-side cart. Mutations are
// applied locally only after the backend confirms them; totals are always
// derived from the items.
package cart

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/agentfashion/storefront/internal/transport"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/types"
	"github.com/agentfashion/storefront/pkg/validation"
)

type api interface {
	Do(ctx context.Context, method, path string, body any, shape transport.Shape, out any, opts ...transport.RequestOption) error
}

// Snapshot is a consistent copy of the cart.
type Snapshot struct {
	Items       []types.CartItem
	TotalAmount decimal.Decimal
	TotalCount  int
}

// IsEmpty reports whether the cart has no items.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

type Store struct {
	api  api
	logg *logger.Logger

	mu      sync.RWMutex
	items   []types.CartItem
	loading bool
	lastErr error
	// gen is bumped by Clear; responses issued under an older generation are dropped.
	gen uint64
}

func NewStore(client api, logg *logger.Logger) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{api: client, logg: logg}, nil
}

// Snapshot returns the items with freshly computed totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	items := append([]types.CartItem(nil), s.items...)
	s.mu.RUnlock()

	total, count := Totals(items)
	return Snapshot{Items: items, TotalAmount: total, TotalCount: count}
}

// Totals returns Σ unit_price×quantity and Σ quantity.
func Totals(items []types.CartItem) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.LineTotal())
		count += item.Quantity
	}
	return total, count
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last failed operation, cleared by the next success.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Clear drops every item locally. Used when the session ends. Requests still
// in flight when Clear runs do not touch the store when they complete.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.lastErr = nil
	s.loading = false
	s.gen++
	s.mu.Unlock()
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// apply runs fn under the write lock when gen is still current.
func (s *Store) apply(ctx context.Context, gen uint64, fn func()) bool {
	s.mu.Lock()
	current := s.gen == gen
	if current {
		fn()
	}
	s.mu.Unlock()
	if !current {
		s.logg.Debug(ctx, "cart cleared while request was in flight; response dropped")
	}
	return current
}

// FetchCart replaces the local items with the server's cart.
func (s *Store) FetchCart(ctx context.Context, userID string) error {
	if userID == "" {
		return s.record(ctx, pkgerrors.New(pkgerrors.CodeValidation, "user id is required"))
	}
	s.mu.Lock()
	s.loading = true
	gen := s.gen
	s.mu.Unlock()

	ctx = s.logg.WithUserID(ctx, userID)
	var items []types.CartItem
	err := s.api.Do(ctx, http.MethodGet, "/v1/cart/"+userID, nil, transport.Payload("cart_items"), &items)

	current := s.apply(ctx, gen, func() {
		s.loading = false
		if err == nil {
			s.items = items
			s.lastErr = nil
		}
	})
	if err != nil {
		err = translate(err, "Could not load your cart")
		if !current {
			return err
		}
		return s.record(ctx, err)
	}
	return nil
}

// AddToCart adds quantity of variantID. The backend merges repeated variants;
// the returned line replaces any local line with the same cart_item_id.
func (s *Store) AddToCart(ctx context.Context, userID, variantID string, quantity int) (types.CartItem, error) {
	req := types.AddToCartRequest{UserID: userID, VariantID: variantID, Quantity: quantity}
	if err := validation.Struct(req); err != nil {
		return types.CartItem{}, s.record(ctx, err)
	}

	gen := s.generation()
	var item types.CartItem
	if err := s.api.Do(ctx, http.MethodPost, "/v1/cart", req, transport.Payload("cart_item"), &item); err != nil {
		return types.CartItem{}, s.recordAt(ctx, gen, translate(err, "Could not add the item to your cart"))
	}

	s.apply(ctx, gen, func() {
		s.items = upsert(s.items, item)
		s.lastErr = nil
	})
	return item, nil
}

// UpdateQuantity sets the line's quantity, clamping anything below 1 to 1.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) (types.CartItem, error) {
	if cartItemID == "" {
		return types.CartItem{}, s.record(ctx, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required"))
	}
	if quantity < 1 {
		quantity = 1
	}

	ctx = s.logg.WithCartItemID(ctx, cartItemID)
	gen := s.generation()
	var item types.CartItem
	err := s.api.Do(ctx, http.MethodPut, "/v1/cart/items/"+cartItemID,
		types.UpdateQuantityRequest{Quantity: quantity}, transport.Payload("cart_item"), &item)
	if err != nil {
		return types.CartItem{}, s.recordAt(ctx, gen, translate(err, "Could not update the quantity"))
	}
	if item.CartItemID == "" {
		item.CartItemID = cartItemID
	}

	s.apply(ctx, gen, func() {
		s.items = upsert(s.items, item)
		s.lastErr = nil
	})
	return item, nil
}

// RemoveItem deletes the line on the server, then locally.
func (s *Store) RemoveItem(ctx context.Context, cartItemID string) error {
	if cartItemID == "" {
		return s.record(ctx, pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required"))
	}
	ctx = s.logg.WithCartItemID(ctx, cartItemID)
	gen := s.generation()
	if err := s.api.Do(ctx, http.MethodDelete, "/v1/cart/items/"+cartItemID, nil, transport.Discard(), nil); err != nil {
		return s.recordAt(ctx, gen, translate(err, "Could not remove the item"))
	}

	s.apply(ctx, gen, func() {
		kept := make([]types.CartItem, 0, len(s.items))
		for _, item := range s.items {
			if item.CartItemID != cartItemID {
				kept = append(kept, item)
			}
		}
		s.items = kept
		s.lastErr = nil
	})
	return nil
}

// CheckoutInput is what the user supplies at checkout.
type CheckoutInput struct {
	ShippingAddress string
	PaymentMethod   string
}

// Checkout places an order for the current cart. The local cart is emptied once
// the backend accepts the order.
func (s *Store) Checkout(ctx context.Context, userID string, in CheckoutInput) (types.Order, error) {
	if s.Snapshot().IsEmpty() {
		return types.Order{}, s.record(ctx, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty"))
	}
	req := types.CheckoutRequest{UserID: userID, ShippingAddress: in.ShippingAddress, PaymentMethod: in.PaymentMethod}
	if err := validation.Struct(req); err != nil {
		return types.Order{}, s.record(ctx, err)
	}

	var order types.Order
	if err := s.api.Do(ctx, http.MethodPost, "/v1/orders", req, transport.Payload("order"), &order); err != nil {
		return types.Order{}, s.record(ctx, translate(err, "Checkout failed"))
	}

	s.Clear()
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.OrderID), "order placed")
	return order, nil
}

func upsert(items []types.CartItem, item types.CartItem) []types.CartItem {
	out := append([]types.CartItem(nil), items...)
	for i := range out {
		if out[i].CartItemID == item.CartItemID {
			out[i] = item
			return out
		}
	}
	return append(out, item)
}

func (s *Store) record(ctx context.Context, err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart operation failed")
	return err
}

// recordAt records err only when the cart has not been cleared since gen.
func (s *Store) recordAt(ctx context.Context, gen uint64, err error) error {
	if s.generation() != gen {
		return err
	}
	return s.record(ctx, err)
}

// translate keeps the transport error in the chain and picks a message the user
// can read: the backend detail, the network message, or fallback.
func translate(err error, fallback string) error {
	if httpErr, ok := pkgerrors.AsHTTP(err); ok {
		msg := httpErr.Detail
		if msg == "" {
			msg = fallback
		}
		return pkgerrors.Wrap(httpErr.Code(), err, msg)
	}
	if pkgerrors.IsNetwork(err) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
}
