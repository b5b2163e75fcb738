package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	j := &JWTer{Secret: []byte("k"), Issuer: "api", TTL: time.Minute}
	tok, err := j.Issue("u1", "admin")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, "api", c.Issuer)
}

func TestParseRejects(t *testing.T) {
	j := &JWTer{Secret: []byte("k"), Issuer: "api", TTL: time.Minute}

	wrongIssuer := &JWTer{Secret: []byte("k"), Issuer: "other", TTL: time.Minute}
	tok, err := wrongIssuer.Issue("u1", "user")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "api",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	s, err := expired.SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = j.Parse(s)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UID: "u1"})
	s, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = j.Parse(s)
	assert.Error(t, err)

	_, err = (&JWTer{Secret: []byte("k")}).Issue("u1", "user")
	assert.Error(t, err, "zero ttl")
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UID: "u1"})
	c, ok := ClaimsFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", c.UID)

	_, ok = ClaimsFrom(WithClaims(context.Background(), nil))
	assert.False(t, ok)
}
