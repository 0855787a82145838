// Package token implements the stateless session token codec: signed bearer
// strings carrying an account id. Whether a token is still honored is decided
// elsewhere, against the account's token list.
package token

import (
	"errors"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"taskhub/pkg/apperr"
)

type Claims struct {
	AccountID string `json:"_id"`
	jwt.StandardClaims
}

type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a codec around the process-wide signing secret. A zero ttl
// means issued tokens never expire on their own.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue signs a new HS256 token for the account. Each token carries a unique
// jti so two logins within the same second still mint distinct strings.
func (c *Codec) Issue(accountID string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: accountID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
			Id:       uuid.NewString(),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = now.Add(c.ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry and returns the embedded account id.
func (c *Codec) Verify(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.ErrBadSignature
		}
		return c.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) {
			switch {
			case vErr.Errors&jwt.ValidationErrorMalformed != 0:
				return "", apperr.ErrTokenMalformed
			case vErr.Errors&jwt.ValidationErrorExpired != 0:
				return "", apperr.ErrTokenExpired
			case vErr.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable) != 0:
				return "", apperr.ErrBadSignature
			}
		}
		return "", apperr.ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.AccountID == "" {
		return "", apperr.ErrTokenMalformed
	}

	return claims.AccountID, nil
}
