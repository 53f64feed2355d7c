package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
)

// Context keys set by AuthRequired.
const (
	UserKey   = "user"
	UserIDKey = "user_id"
	EmailKey  = "email"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired rejects requests without a valid access token and stores the
// authenticated user in the gin context.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, apierror.Unauthorized(apierror.MsgPleaseAuth))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(EmailKey, user.Email)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// bearerToken reads the Authorization header, or the token query parameter
// for websocket upgrades where browsers cannot set headers.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

func abort(c *gin.Context, err error) {
	apiErr := apierror.Wrap(err)
	c.AbortWithStatusJSON(apiErr.Status(), gin.H{"code": apiErr.Status(), "message": apiErr.Message})
}
