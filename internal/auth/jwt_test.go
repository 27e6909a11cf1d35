package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afrilink/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthenticator("secret")
	actor := domain.Actor{ID: "vendor-1", Role: domain.RoleVendor}

	token, err := a.Issue(actor, time.Hour)
	require.NoError(t, err)

	got, err := a.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestParse_Rejects(t *testing.T) {
	a := NewAuthenticator("secret")
	good, err := a.Issue(domain.Actor{ID: "u1", Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	_, err = a.Parse("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = NewAuthenticator("other").Parse(good)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := a.Issue(domain.Actor{ID: "u1", Role: domain.RoleAdmin}, -time.Minute)
	require.NoError(t, err)
	_, err = a.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// unknown role in an otherwise valid token
	claims := jwt.MapClaims{"sub": "u1", "role": "superuser", "exp": time.Now().Add(time.Hour).Unix()}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = a.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// no exp
	claims = jwt.MapClaims{"sub": "u1", "role": "admin"}
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = a.Parse(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Issue(domain.Actor{ID: "u1", Role: "superuser"}, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
