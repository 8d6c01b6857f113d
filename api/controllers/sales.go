package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/api/validators"
	salesvc "github.com/stockbar/stockbar-backend/internal/sales"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

type saleItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

type createSaleRequest struct {
	Items     []saleItemRequest `json:"items" validate:"required,min=1,dive"`
	StationID *int64            `json:"station_id,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
}

// SaleCreate processes one point-of-sale checkout.
func SaleCreate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]salesvc.SaleItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, salesvc.SaleItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.ProcessSale(r.Context(), identity.OrganizationID, identity.UserID, salesvc.SaleInput{
			Items:     items,
			StationID: payload.StationID,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
