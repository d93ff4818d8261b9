package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lending-service/pkg/utils"
)

type contextKey string

// OperatorIDKey is the request-context key the authenticated operator's ID is
// stored under.
const OperatorIDKey contextKey = "operator_id"

// AuthMiddleware verifies the HMAC-signed bearer token on back-office routes
// and puts the operator_id claim on the request context.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			// JSON numbers decode as float64.
			operatorID, ok := claims["operator_id"].(float64)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing operator_id claim")
				return
			}

			ctx := context.WithValue(r.Context(), OperatorIDKey, int(operatorID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
