package backend

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

// Cart returns userID's cart lines in insertion order.
func (s *Service) Cart(_ context.Context, userID string) []types.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.carts[userID]
	out := make([]types.CartItem, len(items))
	copy(out, items)
	return out
}

// AddToCart adds quantity of a variant, merging into an existing line for the
// same variant.
func (s *Service) AddToCart(_ context.Context, req types.AddToCartRequest) (types.CartItem, error) {
	if req.Quantity < 1 {
		return types.CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.UserID]; !ok {
		return types.CartItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	product, variant, ok := s.findVariantLocked(req.VariantID)
	if !ok {
		return types.CartItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "Variant not found")
	}

	items := s.carts[req.UserID]
	for i := range items {
		if items[i].VariantID == req.VariantID {
			items[i].Quantity += req.Quantity
			return items[i], nil
		}
	}
	item := types.CartItem{
		CartItemID:   uuid.NewString(),
		ProductID:    product.ProductID,
		VariantID:    variant.VariantID,
		Color:        variant.Color,
		Size:         variant.Size,
		UnitPrice:    variant.Price,
		Quantity:     req.Quantity,
		ProductName:  product.Name,
		BrandName:    product.BrandName,
		CategoryName: product.CategoryName,
		ImageURL:     product.ImageURL,
	}
	s.carts[req.UserID] = append(items, item)
	return item, nil
}

// UpdateCartItem sets the quantity of a line owned by userID.
func (s *Service) UpdateCartItem(_ context.Context, userID, cartItemID string, quantity int) (types.CartItem, error) {
	if quantity < 1 {
		return types.CartItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userID]
	for i := range items {
		if items[i].CartItemID == cartItemID {
			items[i].Quantity = quantity
			return items[i], nil
		}
	}
	return types.CartItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
}

// RemoveCartItem deletes a line owned by userID.
func (s *Service) RemoveCartItem(_ context.Context, userID, cartItemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[userID]
	for i := range items {
		if items[i].CartItemID == cartItemID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "Cart item not found")
}
