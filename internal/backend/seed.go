package backend

import (
	"github.com/shopspring/decimal"

	"github.com/agentfashion/storefront/pkg/types"
)

// SeedCatalog loads a small fixed catalog. It replaces anything loaded before.
func (s *Service) SeedCatalog() {
	categories := []types.Category{
		{CategoryID: "cat-tops", Name: "Tops"},
		{CategoryID: "cat-bottoms", Name: "Bottoms"},
		{CategoryID: "cat-shoes", Name: "Shoes"},
	}
	brands := []types.Brand{
		{BrandID: "brand-northwind", Name: "Northwind", Description: "Everyday basics"},
		{BrandID: "brand-lumen", Name: "Lumen", Description: "Minimal tailoring"},
		{BrandID: "brand-stride", Name: "Stride", Description: "Running and street shoes"},
	}
	products := []types.Product{
		seedProduct("prod-oxford", "Oxford Shirt", brands[1], categories[0], "350000",
			seedVariant("var-oxford-white-m", "white", "M", "350000", 12),
			seedVariant("var-oxford-blue-l", "blue", "L", "350000", 8),
		),
		seedProduct("prod-tee", "Cotton Tee", brands[0], categories[0], "120000",
			seedVariant("var-tee-black-m", "black", "M", "120000", 40),
			seedVariant("var-tee-grey-s", "grey", "S", "120000", 25),
		),
		seedProduct("prod-chino", "Slim Chino", brands[1], categories[1], "420000",
			seedVariant("var-chino-khaki-32", "khaki", "32", "420000", 10),
		),
		seedProduct("prod-runner", "Road Runner", brands[2], categories[2], "890000",
			seedVariant("var-runner-white-42", "white", "42", "890000", 6),
			seedVariant("var-runner-black-43", "black", "43", "910000", 4),
		),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
	s.brands = brands
	s.products = products
}

func seedProduct(id, name string, brand types.Brand, category types.Category, price string, variants ...types.Variant) types.Product {
	return types.Product{
		ProductID:    id,
		Name:         name,
		Description:  name + " by " + brand.Name,
		BrandID:      brand.BrandID,
		BrandName:    brand.Name,
		CategoryID:   category.CategoryID,
		CategoryName: category.Name,
		ImageURL:     "https://images.agentfashion.local/" + id + ".jpg",
		Price:        decimal.RequireFromString(price),
		Variants:     variants,
	}
}

func seedVariant(id, color, size, price string, stock int) types.Variant {
	return types.Variant{
		VariantID: id,
		Color:     color,
		Size:      size,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
	}
}
