package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/api/validators"
	orgsvc "github.com/stockbar/stockbar-backend/internal/organizations"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

type updateOrganizationRequest struct {
	Name              *string          `json:"name,omitempty"`
	PriceIncreaseStep *decimal.Decimal `json:"price_increase_step,omitempty"`
	PriceDecreaseStep *decimal.Decimal `json:"price_decrease_step,omitempty"`
	CurrencyCode      *string          `json:"currency_code,omitempty"`
}

// OrganizationGet returns the caller's organization.
func OrganizationGet(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		org, err := svc.Get(r.Context(), identity.OrganizationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}

// OrganizationUpdate changes the organization name or pricing policy.
func OrganizationUpdate(svc orgsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrganizationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Update(r.Context(), identity.OrganizationID, orgsvc.UpdateInput{
			Name:              payload.Name,
			PriceIncreaseStep: payload.PriceIncreaseStep,
			PriceDecreaseStep: payload.PriceDecreaseStep,
			CurrencyCode:      payload.CurrencyCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}
