package middleware

import (
	"net/http"
	"strings"

	"github.com/stockbar/stockbar-backend/api/responses"
	"github.com/stockbar/stockbar-backend/internal/auth"
	pkgerrors "github.com/stockbar/stockbar-backend/pkg/errors"
	"github.com/stockbar/stockbar-backend/pkg/logger"
)

// TokenVerifier checks a bearer token and returns the caller it names.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Identity, error)
}

// Auth validates a bearer token and seeds the request context with the
// caller identity.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID.String())
				ctx = logg.WithOrganizationID(ctx, identity.OrganizationID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
