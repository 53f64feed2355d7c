package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
	"kart_back_end/internal/utils"
)

// UserFinder is the read side of the user store.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users  UserFinder
	tokens *TokenService
	log    *zap.Logger
}

func NewAuthService(users UserFinder, tokens *TokenService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// LoginUserWithEmailAndPassword never says which of the two was wrong.
func (s *AuthService) LoginUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.Unauthorized(apierror.MsgBadCredentials)
	}
	if err != nil {
		s.log.Error("login lookup failed", zap.String("email", email), zap.Error(err))
		return nil, apierror.Internal()
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil {
		s.log.Warn("stored password hash unusable", zap.String("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return nil, apierror.Unauthorized(apierror.MsgBadCredentials)
	}
	return user, nil
}

func (s *AuthService) GenerateAuthTokens(user *models.User) (AuthTokens, error) {
	tokens, err := s.tokens.GenerateAuthTokens(user)
	if err != nil {
		s.log.Error("sign token failed", zap.String("user_id", user.ID), zap.Error(err))
		return AuthTokens{}, apierror.Internal()
	}
	return tokens, nil
}

// Authenticate resolves a bearer token to its user. Every failure is the
// same Unauthorized error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		s.log.Debug("token rejected", zap.Error(err))
		return nil, apierror.Unauthorized(apierror.MsgPleaseAuth)
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.Unauthorized(apierror.MsgPleaseAuth)
	}
	if err != nil {
		s.log.Error("authenticate lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apierror.Internal()
	}
	return user, nil
}
