package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/handlers"
	"kart_back_end/internal/middleware"
	"kart_back_end/internal/models"
)

const (
	msgInvalidAuth   = "Invalid authentication"
	msgNotAuthorized = "User not authorized to access this resource"
)

type Accounts interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserAddressByID(ctx context.Context, id string) (string, error)
	SetAddress(ctx context.Context, user *models.User, address string) (string, error)
}

type UserHandler struct {
	users Accounts
}

func NewUserHandler(users Accounts) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser returns the authenticated user, or only its address with ?q=address.
// GET /v1/users/:userId
func (h *UserHandler) GetUser(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		handlers.RespondError(c, apierror.Unauthorized(apierror.MsgPleaseAuth))
		return
	}

	id := c.Param("userId")
	if id != current.ID {
		handlers.RespondError(c, apierror.Forbidden(msgInvalidAuth))
		return
	}

	ctx := c.Request.Context()
	if c.Query("q") == "address" {
		address, err := h.users.GetUserAddressByID(ctx, id)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"address": address})
		return
	}

	user, err := h.users.GetUserByID(ctx, id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetAddress PUT /v1/users/:userId
func (h *UserHandler) SetAddress(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		handlers.RespondError(c, apierror.Unauthorized(apierror.MsgPleaseAuth))
		return
	}

	var in struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.RespondError(c, handlers.BindError(err))
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.GetUserByID(ctx, c.Param("userId"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if user.Email != current.Email {
		handlers.RespondError(c, apierror.Forbidden(msgNotAuthorized))
		return
	}

	address, err := h.users.SetAddress(ctx, user, in.Address)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}
