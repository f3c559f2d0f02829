package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	pkgAuth "github.com/angelmondragon/fooddash-backend/pkg/auth"
	"github.com/angelmondragon/fooddash-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
)

const bearerScheme = "bearer"

// Auth admits requests carrying an access token signed with cfg and records
// who is calling on the request context.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			userID, role := claims.UserID.String(), string(claims.Role)
			ctx = WithRole(WithUserID(ctx, userID), role)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, userID), role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" in any case, or a bare token.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, bearerScheme) {
		header = strings.TrimSpace(rest)
	} else if strings.EqualFold(header, bearerScheme) {
		header = ""
	}
	if header == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return header, nil
}
