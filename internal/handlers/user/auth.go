package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kart_back_end/internal/handlers"
	"kart_back_end/internal/models"
	"kart_back_end/internal/services"
)

type Registrar interface {
	CreateUser(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

type Authenticator interface {
	LoginUserWithEmailAndPassword(ctx context.Context, email, password string) (*models.User, error)
	GenerateAuthTokens(user *models.User) (services.AuthTokens, error)
}

type AuthHandler struct {
	users Registrar
	auth  Authenticator
}

func NewAuthHandler(users Registrar, auth Authenticator) *AuthHandler {
	return &AuthHandler{users: users, auth: auth}
}

type authResponse struct {
	User   *models.User        `json:"user"`
	Tokens services.AuthTokens `json:"tokens"`
}

// Register creates the account and logs it in. POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.RespondError(c, handlers.BindError(err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	tokens, err := h.auth.GenerateAuthTokens(user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

// Login POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.RespondError(c, handlers.BindError(err))
		return
	}

	user, err := h.auth.LoginUserWithEmailAndPassword(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	tokens, err := h.auth.GenerateAuthTokens(user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: user, Tokens: tokens})
}
