package controllers

import (
	"net/http"

	"github.com/stockbar/stockbar-backend/api/middleware"
	authsvc "github.com/stockbar/stockbar-backend/internal/auth"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
)

// callerIdentity returns the authenticated caller seeded by the auth
// middleware.
func callerIdentity(r *http.Request) (*authsvc.Identity, error) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return identity, nil
}
