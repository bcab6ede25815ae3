package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/storefront/internal/utils"
)

// TokenHeader is the header the storefront front end sends its token in.
const TokenHeader = "token"

// TokenFromRequest reads the token header, falling back to a bearer
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}

	auth := r.Header.Get("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware rejects requests without a valid token and stores the
// claims in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				utils.JSONError(w, http.StatusUnauthorized, "missing token")
				return
			}

			claims, err := utils.VerifyToken(token, secret)
			if err != nil {
				LoggerFrom(r.Context()).Debug().Err(err).Msg("token rejected")
				utils.JSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), utils.CtxClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware, or nil.
func ClaimsFrom(ctx context.Context) *utils.UserClaims {
	if c, ok := ctx.Value(utils.CtxClaimsKey).(*utils.UserClaims); ok {
		return c
	}
	return nil
}
