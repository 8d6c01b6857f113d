package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/api/validators"
	authsvc "github.com/stockbar/stockbar-backend/internal/auth"
	stationsvc "github.com/stockbar/stockbar-backend/internal/stations"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

type createStationRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type updateStationRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type stationUserRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// StationCreate adds a point-of-sale station.
func StationCreate(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createStationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		station, err := svc.Create(r.Context(), identity.OrganizationID, stationsvc.CreateInput{
			Name:        payload.Name,
			Description: payload.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, station)
	}
}

// StationList returns the organization's stations.
func StationList(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

// StationUpdate changes station master data.
func StationUpdate(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stationID, err := validators.URLParamInt64(r, "stationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		station, err := svc.Update(r.Context(), identity.OrganizationID, stationID, stationsvc.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, station)
	}
}

// StationAssignUser links a staff member to a station.
func StationAssignUser(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, stationID, userID, err := stationUserParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.AssignUser(r.Context(), identity.OrganizationID, stationID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "assigned"})
	}
}

// StationUnassignUser removes a staff member from a station.
func StationUnassignUser(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, stationID, userID, err := stationUserParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UnassignUser(r.Context(), identity.OrganizationID, stationID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unassigned"})
	}
}

// StationUsers lists the staff assigned to a station.
func StationUsers(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stationID, err := validators.URLParamInt64(r, "stationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		users, err := svc.ListUsers(r.Context(), identity.OrganizationID, stationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, users)
	}
}

// MyStations lists the stations the caller is assigned to.
func MyStations(svc stationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := callerIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForUser(r.Context(), identity.OrganizationID, identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func stationUserParams(r *http.Request) (identity *authsvc.Identity, stationID int64, userID uuid.UUID, err error) {
	caller, err := callerIdentity(r)
	if err != nil {
		return nil, 0, uuid.Nil, err
	}
	stationID, err = validators.URLParamInt64(r, "stationId")
	if err != nil {
		return nil, 0, uuid.Nil, err
	}

	var payload stationUserRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, 0, uuid.Nil, err
	}
	userID, parseErr := uuid.Parse(payload.UserID)
	if parseErr != nil {
		return nil, 0, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id")
	}
	return caller, stationID, userID, nil
}
