package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.GenerateToken("user-1", "jane@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken("user-1", "jane@example.com")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret", time.Hour).GenerateToken("user-1", "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTService("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInvalidToken_Message(t *testing.T) {
	err := invalidToken(nil)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "invalid or expired token", err.Error())

	err = invalidToken(gojwt.ErrTokenExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, "invalid or expired token: "+gojwt.ErrTokenExpired.Error(), err.Error())
}

func TestValidateToken_MessageCarriesReason(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).ValidateToken("not-a-token")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "<nil>")
	assert.Contains(t, err.Error(), "invalid or expired token: ")
}
