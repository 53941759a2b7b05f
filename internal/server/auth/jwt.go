// Package auth issues and checks the HS256 access tokens of a login session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the base58 address of the logged-in user.
type Claims struct {
	jwt.RegisteredClaims
	Address string `json:"addr"`
}

func GenerateToken(address string, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Address: address,
	})
	return token.SignedString(secretKey)
}

// AddressFromToken validates the token at now and returns its address.
// Expired tokens yield common.ErrTokenExpired, anything else invalid
// common.ErrInvalidToken.
func AddressFromToken(tokenString string, secretKey []byte, now time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Address == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Address, nil
}
