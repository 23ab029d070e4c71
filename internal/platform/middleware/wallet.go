package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "brique/pkg/domain"
)

type walletKey struct{}

// GetWallet retrieves the authenticated caller wallet from the context.
// Returns the zero address when no wallet-bound token was presented.
func GetWallet(ctx context.Context) id.Address {
	if w, ok := ctx.Value(walletKey{}).(id.Address); ok {
		return w
	}
	return id.ZeroAddress
}

// WithWallet returns a context carrying the caller wallet. Exported for tests.
func WithWallet(ctx context.Context, wallet id.Address) context.Context {
	return context.WithValue(ctx, walletKey{}, wallet)
}

// RequireWallet authenticates the caller through a Bearer JWT whose subject is
// the caller's wallet address. The ledger core never trusts the transport for
// authorization decisions - services re-check roles against the record at
// hand - but the wallet identity itself is established here.
func RequireWallet(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "bearer token required")
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				logger.WarnContext(ctx, "invalid caller token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "invalid token")
				return
			}

			wallet, err := id.ParseAddress(claims.Subject)
			if err != nil {
				logger.WarnContext(ctx, "caller token subject is not a wallet address",
					"subject", claims.Subject,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w, "token subject must be a wallet address")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithWallet(ctx, wallet)))
		})
	}
}

func unauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
