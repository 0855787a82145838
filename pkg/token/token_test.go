package token_test

import (
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	"taskhub/pkg/apperr"
	"taskhub/pkg/token"
)

const testSecret = "unit-test-secret"

func TestIssueVerifyRoundtrip(t *testing.T) {
	codec := token.NewCodec(testSecret, 0)

	raw, err := codec.Issue("acc123")
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)

	accountID, err := codec.Verify(raw)
	assert.NoError(t, err)
	assert.Equal(t, "acc123", accountID)
}

func TestIssueMintsDistinctTokens(t *testing.T) {
	codec := token.NewCodec(testSecret, 0)

	first, err := codec.Issue("acc123")
	assert.NoError(t, err)
	second, err := codec.Issue("acc123")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformed(t *testing.T) {
	codec := token.NewCodec(testSecret, 0)

	for _, raw := range []string{"", "oops", "a.b", "a.b.c"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, apperr.ErrTokenMalformed, raw)
	}
}

func TestVerifyBadSignature(t *testing.T) {
	other := token.NewCodec("some-other-secret", 0)
	raw, err := other.Issue("acc123")
	assert.NoError(t, err)

	codec := token.NewCodec(testSecret, 0)
	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, apperr.ErrBadSignature)
}

func TestVerifyExpired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		AccountID: "acc123",
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	})
	raw, err := expired.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	codec := token.NewCodec(testSecret, time.Hour)
	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestVerifyMissingAccountID(t *testing.T) {
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		IssuedAt: time.Now().Unix(),
	})
	raw, err := anonymous.SignedString([]byte(testSecret))
	assert.NoError(t, err)

	codec := token.NewCodec(testSecret, 0)
	_, err = codec.Verify(raw)
	assert.ErrorIs(t, err, apperr.ErrTokenMalformed)
}
