package util

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"ecomm/api-gateway/internal/envelope"
)

// JWTAuth protects the admin surface with Bearer JWT (HS256), the same
// gate the teacher's admin API uses. Unlike the teacher's dev
// pass-through, an empty secret here always rejects: the admin surface
// has no safe default-open mode on a gateway that forwards traffic to
// live backends.
func JWTAuth(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				WriteJSON(w, http.StatusServiceUnavailable, envelope.Failure("ADMIN_AUTH_UNCONFIGURED", "admin auth secret is not set"))
				return
			}
			tok := readBearer(r)
			if tok == "" {
				WriteJSON(w, http.StatusUnauthorized, envelope.Failure("UNAUTHORIZED", "missing bearer token"))
				return
			}
			_, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
				if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil {
				WriteJSON(w, http.StatusUnauthorized, envelope.Failure("UNAUTHORIZED", "invalid bearer token"))
				return
			}
			next(w, r)
		}
	}
}

func readBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}
