package types

import (
	"github.com/agentfashion/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// CartItem is one product-variant line of a user's cart.
type CartItem struct {
	CartItemID   string          `json:"cart_item_id"`
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	Color        string          `json:"color,omitempty"`
	Size         string          `json:"size,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	ProductName  string          `json:"product_name"`
	BrandName    string          `json:"brand_name"`
	CategoryName string          `json:"category_name"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// LineTotal returns unit_price x quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// AddToCartRequest is the body of POST /v1/cart.
type AddToCartRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the body of PUT /v1/cart/items/{id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CheckoutRequest is the body of POST /v1/orders.
type CheckoutRequest struct {
	UserID          string `json:"user_id" validate:"required"`
	ShippingAddress string `json:"shipping_address" validate:"required,min=5"`
	PaymentMethod   string `json:"payment_method,omitempty"`
}

type Order struct {
	OrderID         string            `json:"order_id"`
	UserID          string            `json:"user_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	ShippingAddress string            `json:"shipping_address"`
	Items           []CartItem        `json:"items"`
}
