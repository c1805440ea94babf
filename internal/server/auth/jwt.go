// Package auth issues and validates the access tokens handed out after a
// successful challenge-response login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated metadata identity as the token subject.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for mdid valid for validityDuration.
func GenerateToken(mdid string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   mdid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	return token.SignedString(secretKey)
}

// IdentityFromToken validates tokenString and returns its subject. Expired
// tokens yield common.ErrTokenExpired, anything else invalid yields
// common.ErrInvalidToken.
func IdentityFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
