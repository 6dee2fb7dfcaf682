package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentfashion/storefront/api/responses"
	"github.com/agentfashion/storefront/api/validators"
	"github.com/agentfashion/storefront/internal/backend"
	"github.com/agentfashion/storefront/pkg/enums"
	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/logger"
	"github.com/agentfashion/storefront/pkg/pagination"
	"github.com/agentfashion/storefront/pkg/types"
)

const maxNameSearchLen = 100

type CatalogService interface {
	ListProducts(ctx context.Context) []types.Product
	GetProduct(ctx context.Context, productID string) (types.Product, error)
	ListCategories(ctx context.Context) []types.Category
	ListBrands(ctx context.Context, q backend.BrandQuery) (types.BrandPage, error)
	CreateBrand(ctx context.Context, req backend.CreateBrandRequest) (types.BrandCreated, error)
	DeleteBrand(ctx context.Context, brandID string) (types.Status, error)
}

func ProductList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products := svc.ListProducts(r.Context())
		responses.WriteSuccess(w, http.StatusOK, "Products fetched", map[string]any{"products": products})
	}
}

func ProductDetail(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, "Product fetched", map[string]any{"product": product})
	}
}

func CategoryList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories := svc.ListCategories(r.Context())
		responses.WriteSuccess(w, http.StatusOK, "Categories fetched", map[string]any{"categories": categories})
	}
}

// BrandList serves the brand listing. Without page or page_size every match is
// returned on a single page.
func BrandList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := backend.BrandQuery{
			NameSearch: validators.SanitizeString(r.URL.Query().Get("name_search"), maxNameSearchLen),
			SortBy:     r.URL.Query().Get("sort_by"),
		}

		order, err := enums.ParseSortOrder(r.URL.Query().Get("sort_order"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sort_order must be asc or desc"))
			return
		}
		query.SortOrder = order

		if validators.HasQuery(r, "page", "page_size") {
			page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			size, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			query.Page = &pagination.Params{Page: page, PageSize: size}
		}

		result, err := svc.ListBrands(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, "Brands fetched", result)
	}
}

func BrandCreate(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body backend.CreateBrandRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateBrand(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusCreated, "Brand created", result)
	}
}

func BrandDelete(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.DeleteBrand(r.Context(), chi.URLParam(r, "brandId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, http.StatusOK, result.Message, result)
	}
}
