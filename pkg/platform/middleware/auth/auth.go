// Package auth provides bearer-token middleware for staff-only endpoints.
// Claim and reissue are info-desk operations; kiosks and attendee-facing
// endpoints stay unauthenticated.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Middleware verifies an HS256 staff token and injects the staff subject into
// the request context.
func Middleware(signingKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "staff token required"))
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid staff token"))
				return
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "staff token missing subject"))
				return
			}

			ctx := requestcontext.WithStaffID(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
