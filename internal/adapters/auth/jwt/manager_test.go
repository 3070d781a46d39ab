package jwt

import (
	"context"
	"testing"
	"time"

	"pet-adoption/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m, err := NewManager("s3cret", "pet-adoption", time.Hour)
	require.NoError(t, err)

	tok, err := m.Issue(auth.Claims{UserID: "u-1", Email: "a@b.com", Role: auth.RoleAdmin})
	require.NoError(t, err)

	c, err := m.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "a@b.com", c.Email)
	assert.Equal(t, auth.RoleAdmin, c.Role)
}

func TestManager_Expired(t *testing.T) {
	m, err := NewManager("s3cret", "pet-adoption", time.Minute)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }
	tok, err := m.Issue(auth.Claims{UserID: "u-1", Role: auth.RoleUser})
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_RejectsForeignSignatureAndIssuer(t *testing.T) {
	m, _ := NewManager("s3cret", "pet-adoption", time.Hour)
	other, _ := NewManager("another", "pet-adoption", time.Hour)
	wrongIssuer, _ := NewManager("s3cret", "someone-else", time.Hour)

	tok, err := other.Issue(auth.Claims{UserID: "u-1", Role: auth.RoleUser})
	require.NoError(t, err)
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err = wrongIssuer.Issue(auth.Claims{UserID: "u-1", Role: auth.RoleUser})
	require.NoError(t, err)
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsUnknownRoleAndNoneAlg(t *testing.T) {
	m, _ := NewManager("s3cret", "", time.Hour)

	tok, err := m.Issue(auth.Claims{UserID: "u-1", Role: auth.Role("root")})
	require.NoError(t, err)
	_, err = m.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, userClaims{UserID: "u-1", Role: "admin"})
	s, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(context.Background(), s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("  ", "x", time.Hour)
	assert.ErrorIs(t, err, ErrSecretRequired)
}
