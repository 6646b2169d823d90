package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)
	token := signedToken(t, Claims{
		MemberID: "m-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "m-1", claims.Member())
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))

	claims, err = Inspect(signedToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-2"}}))
	require.NoError(t, err)
	assert.Equal(t, "sub-2", claims.Member())

	_, err = Inspect(" ")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = Inspect("opaque-token")
	assert.ErrorContains(t, err, "auth:")
}

func TestChecker_Usable(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	checker := Checker{Leeway: 30 * time.Second, Now: func() time.Time { return now }}

	withExp := func(d time.Duration) string {
		return signedToken(t, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(d))}})
	}

	assert.True(t, checker.Usable(withExp(time.Hour)))
	assert.False(t, checker.Usable(withExp(10*time.Second)))
	assert.False(t, checker.Usable(withExp(-time.Minute)))
	assert.True(t, checker.Usable(signedToken(t, Claims{MemberID: "m"})))
	assert.True(t, checker.Usable("opaque-token"))
	assert.False(t, checker.Usable(""))
}
