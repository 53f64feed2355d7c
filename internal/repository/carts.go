package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"kart_back_end/internal/models"
)

// Payloads published on the cart channel after each write.
const (
	CartUpdated = "updated"
	CartCleared = "cleared"
)

// CartStore keeps one JSON document per user under cart:<email>. Carts never
// expire; checkout empties them instead of deleting the key.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

func CartKey(email string) string {
	return "cart:" + email
}

func (s *CartStore) FindByOwner(ctx context.Context, email string) (*models.Cart, error) {
	data, err := s.rdb.Get(ctx, CartKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", email, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", email, err)
	}
	return cart.Clone(), nil
}

// Create stores a brand new cart. It fails with ErrDuplicate if one exists.
func (s *CartStore) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	stored := cart.Clone()
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode cart %s: %w", cart.Email, err)
	}

	ok, err := s.rdb.SetNX(ctx, CartKey(cart.Email), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("create cart %s: %w", cart.Email, err)
	}
	if !ok {
		return nil, ErrDuplicate
	}

	s.rdb.Publish(ctx, CartKey(cart.Email), CartUpdated)
	return stored, nil
}

// Save overwrites the whole document and notifies subscribers.
func (s *CartStore) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	stored := cart.Clone()
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode cart %s: %w", cart.Email, err)
	}

	event := CartUpdated
	if len(stored.Items) == 0 {
		event = CartCleared
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, CartKey(cart.Email), data, 0)
	pipe.Publish(ctx, CartKey(cart.Email), event)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cart.Email, err)
	}
	return stored, nil
}

// Subscribe listens for change notifications on one user's cart.
func (s *CartStore) Subscribe(ctx context.Context, email string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, CartKey(email))
}
