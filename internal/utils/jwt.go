package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the only token type the API accepts for authentication.
const TokenTypeAccess = "access"

var ErrInvalidTokenType = errors.New("invalid token type")

// Claims carries the user id in sub and the token type.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// AuthToken is the {token, expires} pair returned to clients.
type AuthToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// GenerateJWT signs an HS256 token for userID.
func GenerateJWT(secret []byte, userID, tokenType string, issuedAt time.Time, lifetime time.Duration) (AuthToken, error) {
	expires := issuedAt.Add(lifetime)
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return AuthToken{}, err
	}
	return AuthToken{Token: signed, Expires: expires.UTC()}, nil
}

// ParseAccessToken verifies signature, expiry and type and returns the user id.
func ParseAccessToken(secret []byte, tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	if claims.Type != TokenTypeAccess {
		return "", ErrInvalidTokenType
	}
	if claims.Subject == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return claims.Subject, nil
}
