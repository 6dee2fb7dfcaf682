package types

import "github.com/shopspring/decimal"

type Variant struct {
	VariantID string          `json:"variant_id"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type Product struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	BrandID      string          `json:"brand_id"`
	BrandName    string          `json:"brand_name"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ImageURL     string          `json:"image_url,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Variants     []Variant       `json:"variants,omitempty"`
}

// VariantByID returns the variant with the given id.
func (p Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.VariantID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type Brand struct {
	BrandID     string `json:"brand_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Category struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// BrandPage is the info object of the paginated brand listing.
type BrandPage struct {
	Brands []Brand `json:"brands"`
	PageInfo
}

// BrandCreated is returned when a brand is created.
type BrandCreated struct {
	BrandID string `json:"brand_id"`
	Success bool   `json:"success"`
}
