package controllers

import (
	"net/http"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/api/validators"
	categorysvc "github.com/stockbar/stockbar-backend/internal/categories"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

type createCategoryRequest struct {
	Name           string `json:"name" validate:"required"`
	DynamicPricing *bool  `json:"dynamic_pricing,omitempty"`
}

type updateCategoryRequest struct {
	Name           *string `json:"name,omitempty"`
	DynamicPricing *bool   `json:"dynamic_pricing,omitempty"`
}

// CategoryCreate adds a product category.
func CategoryCreate(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Dynamic pricing defaults on for new categories.
		dynamic := true
		if payload.DynamicPricing != nil {
			dynamic = *payload.DynamicPricing
		}

		category, err := svc.Create(r.Context(), identity.OrganizationID, categorysvc.CreateInput{
			Name:           payload.Name,
			DynamicPricing: dynamic,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// CategoryList returns the organization's categories.
func CategoryList(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), identity.OrganizationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CategoryUpdate renames a category or toggles its pricing mode.
func CategoryUpdate(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.URLParamInt64(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), identity.OrganizationID, categoryID, categorysvc.UpdateInput{
			Name:           payload.Name,
			DynamicPricing: payload.DynamicPricing,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// CategoryDelete removes an unused category.
func CategoryDelete(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.URLParamInt64(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := svc.Delete(r.Context(), identity.OrganizationID, categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}
