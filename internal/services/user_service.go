package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
	"kart_back_end/internal/utils"
)

// UserRepository is the full user store used for accounts and addresses.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserService struct {
	users        UserRepository
	walletMoney  int64
	hashPassword func(string) (string, error)
	log          *zap.Logger
}

func NewUserService(users UserRepository, defaultWalletMoney int64, log *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		walletMoney:  defaultWalletMoney,
		hashPassword: utils.HashPassword,
		log:          log,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound(apierror.MsgUserNotFound)
	}
	if err != nil {
		s.log.Error("get user failed", zap.String("user_id", id), zap.Error(err))
		return nil, apierror.Internal()
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound(apierror.MsgUserNotFound)
	}
	if err != nil {
		s.log.Error("get user by email failed", zap.String("email", email), zap.Error(err))
		return nil, apierror.Internal()
	}
	return user, nil
}

// CreateUser registers a new account with the default wallet and no address.
// A taken email answers with status 200, which existing clients rely on.
func (s *UserService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierror.InvalidRequest(`"name" is required`)
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, apierror.InvalidRequest(err.Error())
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		s.log.Error("hash password failed", zap.Error(err))
		return nil, apierror.Internal()
	}

	created, err := s.users.Create(ctx, &models.User{
		Name:        name,
		Email:       in.Email,
		Password:    hash,
		WalletMoney: s.walletMoney,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, &apierror.Error{Kind: apierror.KindInvalidRequest, Message: apierror.MsgEmailTaken, HTTPStatus: http.StatusOK}
	}
	if err != nil {
		s.log.Error("create user failed", zap.String("email", in.Email), zap.Error(err))
		return nil, apierror.Internal()
	}

	s.log.Info("user registered", zap.String("user_id", created.ID), zap.String("email", created.Email))
	return created, nil
}

// GetUserAddressByID returns only the rendered address of a user.
func (s *UserService) GetUserAddressByID(ctx context.Context, id string) (string, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.AddressOrDefault(), nil
}

// SetAddress replaces the user's shipping address and returns it as stored.
func (s *UserService) SetAddress(ctx context.Context, user *models.User, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", apierror.InvalidRequest(`"address" is required`)
	}

	updated := *user
	updated.SetAddress(address)
	if err := s.users.Save(ctx, &updated); err != nil {
		s.log.Error("set address failed", zap.String("user_id", user.ID), zap.Error(err))
		return "", apierror.Internal()
	}
	return updated.AddressOrDefault(), nil
}
