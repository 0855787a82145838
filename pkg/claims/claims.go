// Package claims carries the identity resolved by the auth gate through the
// request context. The gate is the only writer; handlers only read.
package claims

import (
	"context"

	"taskhub/pkg/account"
)

type contextKey string

const authContextKey contextKey = "auth"

// Auth is the authenticated caller: the loaded account plus the exact token
// the request presented, so logout can revoke that one token.
type Auth struct {
	Account *account.Account
	Token   string
}

func NewContext(ctx context.Context, auth *Auth) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

func FromContext(ctx context.Context) (*Auth, bool) {
	auth, ok := ctx.Value(authContextKey).(*Auth)
	if !ok || auth == nil || auth.Account == nil {
		return nil, false
	}
	return auth, true
}
