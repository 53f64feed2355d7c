package services

import (
	"time"

	"kart_back_end/internal/models"
	"kart_back_end/internal/utils"
)

// AuthTokens is keyed by token type, matching the login and register payloads.
type AuthTokens struct {
	Access utils.AuthToken `json:"access"`
}

type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(secret string, accessLifetime time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), lifetime: accessLifetime, now: time.Now}
}

func (s *TokenService) GenerateAuthTokens(user *models.User) (AuthTokens, error) {
	access, err := utils.GenerateJWT(s.secret, user.ID, utils.TokenTypeAccess, s.now(), s.lifetime)
	if err != nil {
		return AuthTokens{}, err
	}
	return AuthTokens{Access: access}, nil
}

// VerifyAccessToken returns the user id carried by a valid access token.
func (s *TokenService) VerifyAccessToken(token string) (string, error) {
	return utils.ParseAccessToken(s.secret, token)
}
