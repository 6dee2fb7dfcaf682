package backend

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

// Checkout turns the user's cart into a pending order and empties the cart.
func (s *Service) Checkout(_ context.Context, req types.CheckoutRequest) (types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[req.UserID]
	if len(items) == 0 {
		return types.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
	}

	total := decimal.Zero
	lines := make([]types.CartItem, len(items))
	copy(lines, items)
	for _, item := range lines {
		total = total.Add(item.LineTotal())
	}

	order := types.Order{
		OrderID:         uuid.NewString(),
		UserID:          req.UserID,
		Status:          enums.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Items:           lines,
	}
	s.orders[req.UserID] = append(s.orders[req.UserID], order)
	delete(s.carts, req.UserID)
	return order, nil
}

// Orders lists the orders placed by userID, oldest first.
func (s *Service) Orders(_ context.Context, userID string) []types.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Order, len(s.orders[userID]))
	copy(out, s.orders[userID])
	return out
}
