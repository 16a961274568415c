package signer

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims of a pairing token. Subject is the username.
type Claims struct {
	jwt.RegisteredClaims
	Tier string `json:"tier"`
}

// GeneratePairingToken mints a token allowing one signing request for
// (username, tier), valid for ttl.
func GeneratePairingToken(username string, tier models.KeyTier, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Tier: string(tier),
	})

	s, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign pairing token: %w", err)
	}
	return s, nil
}

// ValidatePairingToken checks the signature and expiry of a pairing token
// and returns its claims. Failures are common.ErrTokenExpired or
// common.ErrInvalidToken.
func ValidatePairingToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
