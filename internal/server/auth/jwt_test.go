package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("super-secret")

	tok, err := GenerateToken("addr-123", secret, now, time.Hour)
	require.NoError(t, err)

	got, err := AddressFromToken(tok, secret, now.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "addr-123", got)
}

func TestAddressFromToken_Expired(t *testing.T) {
	secret := []byte("secret")
	tok, err := GenerateToken("a", secret, now, time.Minute)
	require.NoError(t, err)

	_, err = AddressFromToken(tok, secret, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestAddressFromToken_Invalid(t *testing.T) {
	tok, err := GenerateToken("a", []byte("right"), now, time.Hour)
	require.NoError(t, err)

	_, err = AddressFromToken(tok, []byte("wrong"), now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = AddressFromToken("not-a-jwt", []byte("right"), now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Address: "a"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AddressFromToken(none, []byte("right"), now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	empty, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte("right"))
	require.NoError(t, err)
	_, err = AddressFromToken(empty, []byte("right"), now)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
