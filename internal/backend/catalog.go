package backend

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/pagination"
	"github.com/agentfashion/storefront/pkg/types"
)

// BrandQuery filters and pages the brand listing. A nil Page lists every match.
type BrandQuery struct {
	Page       *pagination.Params
	NameSearch string
	SortBy     string
	SortOrder  enums.SortOrder
}

// CreateBrandRequest is the body of POST /v1/brands.
type CreateBrandRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

func (s *Service) ListProducts(_ context.Context) []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) GetProduct(_ context.Context, productID string) (types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return types.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func (s *Service) ListCategories(_ context.Context) []types.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// ListBrands returns the matching brands with listing metadata.
func (s *Service) ListBrands(_ context.Context, q BrandQuery) (types.BrandPage, error) {
	sortBy := strings.TrimSpace(q.SortBy)
	if sortBy == "" {
		sortBy = "name"
	}
	if sortBy != "name" && sortBy != "brand_id" {
		return types.BrandPage{}, pkgerrors.New(pkgerrors.CodeValidation, "sort_by must be one of name brand_id")
	}

	s.mu.RLock()
	matched := make([]types.Brand, 0, len(s.brands))
	needle := strings.ToLower(strings.TrimSpace(q.NameSearch))
	for _, b := range s.brands {
		if needle == "" || strings.Contains(strings.ToLower(b.Name), needle) {
			matched = append(matched, b)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i].Name, matched[j].Name
		if sortBy == "brand_id" {
			a, b = matched[i].BrandID, matched[j].BrandID
		}
		if q.SortOrder == enums.SortOrderDesc {
			return strings.ToLower(a) > strings.ToLower(b)
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})

	if q.Page == nil {
		return types.BrandPage{
			Brands: matched,
			PageInfo: types.PageInfo{
				TotalCount:  len(matched),
				CurrentPage: 1,
				TotalPages:  1,
			},
		}, nil
	}
	start, end := q.Page.Window(len(matched))
	return types.BrandPage{
		Brands:   matched[start:end],
		PageInfo: q.Page.Info(len(matched)),
	}, nil
}

func (s *Service) CreateBrand(_ context.Context, req CreateBrandRequest) (types.BrandCreated, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return types.BrandCreated{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.brands {
		if strings.EqualFold(b.Name, name) {
			return types.BrandCreated{}, pkgerrors.New(pkgerrors.CodeConflict, "Brand already exists")
		}
	}
	brand := types.Brand{BrandID: uuid.NewString(), Name: name, Description: strings.TrimSpace(req.Description)}
	s.brands = append(s.brands, brand)
	return types.BrandCreated{BrandID: brand.BrandID, Success: true}, nil
}

// DeleteBrand removes a brand that no product references.
func (s *Service) DeleteBrand(_ context.Context, brandID string) (types.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, b := range s.brands {
		if b.BrandID == brandID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Status{}, pkgerrors.New(pkgerrors.CodeNotFound, "Brand not found")
	}
	for _, p := range s.products {
		if p.BrandID == brandID {
			return types.Status{}, pkgerrors.New(pkgerrors.CodeConflict, "Brand still has products")
		}
	}
	s.brands = append(s.brands[:idx], s.brands[idx+1:]...)
	return types.Status{Success: true, Message: "Brand deleted"}, nil
}

func (s *Service) findVariantLocked(variantID string) (types.Product, types.Variant, bool) {
	for _, p := range s.products {
		if v, ok := p.VariantByID(variantID); ok {
			return p, v, true
		}
	}
	return types.Product{}, types.Variant{}, false
}
