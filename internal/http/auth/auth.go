// Package auth verifies cashier session tokens and exposes the
// cashier's identity to handlers. Tokens are issued by the clinic's
// staff portal; billing only verifies them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey int

const cashierKey contextKey = iota

var ErrNoToken = errors.New("missing bearer token")

type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Middleware rejects requests without a valid token and stores the
// cashier name in the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, err := verify(r, secret)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), cashierKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(r *http.Request, secret string) (string, error) {
	header := r.Header.Get("Authorization")

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", ErrNoToken
	}

	var claims Claims

	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.Name == "" {
		return "", errors.New("token has no cashier name")
	}

	return claims.Name, nil
}

// CashierName returns the authenticated cashier's name, or empty when
// the request was not authenticated.
func CashierName(ctx context.Context) string {
	name, _ := ctx.Value(cashierKey).(string)
	return name
}
