package user

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

type cartEvent struct {
	Type  string            `json:"type"`
	Items []models.CartItem `json:"cartItems"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// CartWebSocket streams the cart to the client after every change.
// GET /v1/cart/ws
func (h *CartHandler) CartWebSocket(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("email", user.Email), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.feed.Subscribe(ctx, user.Email)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Warn("cart subscription failed", zap.String("email", user.Email), zap.Error(err))
		return
	}
	ch := pubsub.Channel()

	// The read loop only exists to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.pushCart(ctx, conn, user, "connected"); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != repository.CartUpdated && msg.Payload != repository.CartCleared {
				continue
			}
			if err := h.pushCart(ctx, conn, user, "cart_updated"); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *CartHandler) pushCart(ctx context.Context, conn *websocket.Conn, user *models.User, kind string) error {
	event := cartEvent{Type: kind, Items: []models.CartItem{}}

	cart, err := h.carts.GetCart(ctx, user)
	switch {
	case err == nil:
		event.Items = cart.Items
		event.Total = cart.Total()
		event.Count = len(cart.Items)
	case apierror.Is(err, apierror.KindNotFound):
	default:
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(event); err != nil {
		h.log.Debug("websocket write failed", zap.String("email", user.Email), zap.Error(err))
		return err
	}
	return nil
}
