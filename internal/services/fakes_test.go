package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
)

// memCatalog is a read-only product catalog.
type memCatalog map[string]models.Product

func (c memCatalog) FindByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// memCartStore mimics a document store: every read and write copies.
type memCartStore struct {
	mu      sync.Mutex
	carts   map[string]*models.Cart
	saves   int
	creates int

	findErr   error
	saveErr   error
	createErr error
}

func newMemCartStore(carts ...*models.Cart) *memCartStore {
	s := &memCartStore{carts: map[string]*models.Cart{}}
	for _, c := range carts {
		s.carts[c.Email] = c.Clone()
	}
	return s
}

func (s *memCartStore) FindByOwner(_ context.Context, email string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	c, ok := s.carts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *memCartStore) Create(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.carts[cart.Email]; ok {
		return nil, repository.ErrDuplicate
	}
	s.carts[cart.Email] = cart.Clone()
	return cart.Clone(), nil
}

func (s *memCartStore) Save(_ context.Context, cart *models.Cart) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.carts[cart.Email] = cart.Clone()
	return cart.Clone(), nil
}

func (s *memCartStore) stored(email string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[email]; ok {
		return c.Clone()
	}
	return nil
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Save(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

type receiptCall struct {
	user  *models.User
	items []models.CartItem
	total int64
}

type chanReceipts chan receiptCall

func (c chanReceipts) SendCheckoutReceipt(_ context.Context, user *models.User, items []models.CartItem, total int64) error {
	c <- receiptCall{user: user, items: items, total: total}
	return nil
}

func userWithID(id string) *models.User {
	u := userTwo()
	u.ID = id
	return u
}
