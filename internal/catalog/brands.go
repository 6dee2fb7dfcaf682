package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentfashion/storefront/internal/transport"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/pagination"
	"github.com/agentfashion/storefront/pkg/types"
	"github.com/agentfashion/storefront/pkg/validation"
)

// BrandQuery filters and pages the admin brand listing.
type BrandQuery struct {
	Page       int
	PageSize   int
	NameSearch string
	SortBy     string
	SortOrder  enums.SortOrder
}

func (q BrandQuery) options() []transport.RequestOption {
	values := pagination.Params{Page: q.Page, PageSize: q.PageSize}.Values()
	if search := strings.TrimSpace(q.NameSearch); search != "" {
		values.Set("name_search", search)
	}
	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sort_order", q.SortOrder.String())
	}
	return []transport.RequestOption{transport.WithQuery(values)}
}

// ListBrands returns one page of brands with its pagination metadata.
func (s *Store) ListBrands(ctx context.Context, q BrandQuery) (types.BrandPage, error) {
	if q.SortOrder != "" && !q.SortOrder.IsValid() {
		return types.BrandPage{}, pkgerrors.New(pkgerrors.CodeValidation, "sort order must be asc or desc")
	}
	var page types.BrandPage
	if err := s.api.Do(ctx, http.MethodGet, "/v1/brands", nil, transport.Info(), &page, q.options()...); err != nil {
		return types.BrandPage{}, translate(err, "Could not load brands")
	}
	return page, nil
}

type createBrandRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// CreateBrand creates a brand and adds it to the cache.
func (s *Store) CreateBrand(ctx context.Context, name, description string) (types.BrandCreated, error) {
	req := createBrandRequest{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	if err := validation.Struct(req); err != nil {
		return types.BrandCreated{}, err
	}
	var created types.BrandCreated
	if err := s.api.Do(ctx, http.MethodPost, "/v1/brands", req, transport.Info(), &created); err != nil {
		return types.BrandCreated{}, translate(err, "Could not create the brand")
	}

	s.mu.Lock()
	s.brands = append(s.brands, types.Brand{BrandID: created.BrandID, Name: req.Name, Description: req.Description})
	s.mu.Unlock()
	return created, nil
}

// DeleteBrand deletes a brand and drops it from the cache.
func (s *Store) DeleteBrand(ctx context.Context, id string) (types.Status, error) {
	if strings.TrimSpace(id) == "" {
		return types.Status{}, pkgerrors.New(pkgerrors.CodeValidation, "brand id is required")
	}
	var status types.Status
	if err := s.api.Do(ctx, http.MethodDelete, "/v1/brands/"+id, nil, transport.Info(), &status); err != nil {
		return types.Status{}, translate(err, "Could not delete the brand")
	}

	s.mu.Lock()
	kept := make([]types.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		if b.BrandID != id {
			kept = append(kept, b)
		}
	}
	s.brands = kept
	s.mu.Unlock()
	return status, nil
}
