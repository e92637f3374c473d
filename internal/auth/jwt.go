// Package auth verifies access tokens minted by the external identity
// provider and makes the authenticated identity available to handlers.
// The service never issues tokens of its own.
package auth

import (
	"time"

	"github.com/abdul977/voicenotes/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the provider's user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// UserIDFromToken validates tokenString against secretKey (HS256) and
// returns the embedded user id. Expired, malformed, or foreign-signed
// tokens yield common.ErrInvalidToken.
func UserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// MintToken signs a token for the given user id. Only the identity provider
// does this in production; tests use it to produce valid credentials.
func MintToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}
