package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	token, expiresAt, err := GenerateAccessToken(42, testSecret, 7*24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	for _, secret := range []string{"other", "test-secret-2", "TEST-SECRET"} {
		token, _, err := GenerateAccessToken(1, secret, time.Hour)
		require.NoError(t, err)

		_, err = ValidateAccessToken(token, testSecret)
		assert.ErrorIs(t, err, ErrTokenInvalid, "secret %q", secret)
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	token, _, err := GenerateAccessToken(1, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	tests := []string{"", "abc", "a.b.c", "Bearer xyz"}
	for _, tok := range tests {
		_, err := ValidateAccessToken(tok, testSecret)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSecretMissing(t *testing.T) {
	_, _, err := GenerateAccessToken(1, "", time.Hour)
	assert.ErrorIs(t, err, ErrSecretMissing)

	_, err = ValidateAccessToken("whatever", "")
	assert.ErrorIs(t, err, ErrSecretMissing)
}

func TestSubjectID_Invalid(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-1", "a@x.com"} {
		c := &Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: sub}}
		_, err := c.SubjectID()
		assert.ErrorIs(t, err, ErrTokenInvalid, "subject %q", sub)
	}
}
