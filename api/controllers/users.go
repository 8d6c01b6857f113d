package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/api/validators"
	authsvc "github.com/stockbar/stockbar-backend/internal/auth"
	usersvc "github.com/stockbar/stockbar-backend/internal/users"
	"github.com/stockbar/stockbar-backend/pkg/enums"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// UserList returns the organization's staff.
func UserList(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

// UserSetRole changes a staff member's role.
func UserSetRole(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userID, err := userParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setRoleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(payload.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown role"))
			return
		}

		user, err := svc.SetRole(r.Context(), identity.OrganizationID, userID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UserSetActive enables or disables a staff account.
func UserSetActive(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userID, err := userParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setActiveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.SetActive(r.Context(), identity.OrganizationID, userID, payload.IsActive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func userParams(r *http.Request) (*authsvc.Identity, uuid.UUID, error) {
	caller, err := callerIdentity(r)
	if err != nil {
		return nil, uuid.Nil, err
	}
	userID, parseErr := uuid.Parse(chi.URLParam(r, "userId"))
	if parseErr != nil {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id")
	}
	return caller, userID, nil
}
