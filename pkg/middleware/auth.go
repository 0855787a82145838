package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"taskhub/pkg/account"
	"taskhub/pkg/apperr"
	"taskhub/pkg/claims"
	"taskhub/pkg/token"
)

const hexID string = "[0-9a-fA-F]{24}"

// Routes reachable without a bearer token, keyed by mux path template.
var publicRoutes = map[string]string{
	"/accounts":                           http.MethodPost,
	"/accounts/login":                     http.MethodPost,
	"/accounts/{id:" + hexID + "}/avatar": http.MethodGet,
	"/healthz":                            http.MethodGet,
}

// Auth is the gate every other request passes through: it verifies the
// bearer token, loads the account it names and checks the token is still in
// that account's valid set, so a revoked token is dead even while its
// signature would still verify. Handlers downstream never re-derive identity
// from the request.
func Auth(codec *token.Codec, accounts account.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if route == nil {
				writeUnauthorized(w, "unauthorized")
				return
			}
			template, err := route.GetPathTemplate()
			if err != nil {
				http.Error(w, "Route not found", http.StatusNotFound)
				return
			}

			if method, ok := publicRoutes[template]; ok && method == r.Method {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeUnauthorized(w, "unauthorized")
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			id, err := codec.Verify(raw)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			acc, err := accounts.GetByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					writeUnauthorized(w, apperr.ErrAccountNotFound.Error())
					return
				}
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if !acc.HasToken(raw) {
				writeUnauthorized(w, apperr.ErrTokenRevoked.Error())
				return
			}

			recordAccount(w, acc.ID)

			ctx := claims.NewContext(r.Context(), &claims.Auth{Account: acc, Token: raw})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": msg}); err != nil {
		return
	}
}
