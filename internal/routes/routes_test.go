package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kart_back_end/internal/handlers/product"
	"kart_back_end/internal/handlers/user"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
	"kart_back_end/internal/services"
)

var shoe = models.Product{ID: "5f71c1ca04c69a5874e9fd45", Name: "ultrices", Category: "Fashion", Cost: 100, Rating: 5, Image: "https://cdn.example.com/shoe.png"}

type memProducts map[string]models.Product

func (m memProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m memProducts) List(context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m {
		out = append(out, p)
	}
	return out, nil
}

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]models.User
	byEmail map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]models.User{}, byEmail: map[string]string{}}
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[strings.ToLower(email)]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.FindByID(ctx, id)
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, ok := m.byEmail[email]; ok {
		return nil, repository.ErrDuplicate
	}
	created := *u
	created.ID = uuid.NewString()
	created.Email = email
	m.byID[created.ID] = created
	m.byEmail[email] = created.ID
	return &created, nil
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = *u
	return nil
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop()
	catalog := memProducts{shoe.ID: shoe}
	users := newMemUsers()
	carts := repository.NewCartStore(rdb)

	tokens := services.NewTokenService("test-secret", time.Hour)
	authSvc := services.NewAuthService(users, tokens, log)
	userSvc := services.NewUserService(users, 500, log)
	cartSvc := services.NewCartService(catalog, carts, users, log)
	productSvc := services.NewProductService(catalog, nil, nil, log)

	r := gin.New()
	RegisterRoutes(r, Dependencies{
		Auth:          user.NewAuthHandler(userSvc, authSvc),
		Users:         user.NewUserHandler(userSvc),
		Cart:          user.NewCartHandler(cartSvc, carts, []string{"*"}, log),
		Products:      product.NewHandler(productSvc),
		Authenticator: authSvc,
	})
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type registered struct {
	User struct {
		ID          string `json:"_id"`
		Email       string `json:"email"`
		WalletMoney int64  `json:"walletMoney"`
		Address     string `json:"address"`
	} `json:"user"`
	Tokens struct {
		Access struct {
			Token   string    `json:"token"`
			Expires time.Time `json:"expires"`
		} `json:"access"`
	} `json:"tokens"`
}

func register(t *testing.T, r *gin.Engine, email string) registered {
	t.Helper()
	w := do(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{"name": "crio-user", "email": email, "password": "criouser123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out registered
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestServer(t)

	reg := register(t, r, "crio-user@gmail.com")
	assert.Equal(t, int64(500), reg.User.WalletMoney)
	assert.Equal(t, models.DefaultAddress, reg.User.Address)
	assert.NotEmpty(t, reg.Tokens.Access.Token)

	w := do(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{"name": "again", "email": "crio-user@gmail.com", "password": "criouser123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"Email already taken"}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "crio-user@gmail.com", "password": "criouser123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = do(t, r, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "crio-user@gmail.com", "password": "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"code":401,"message":"Incorrect email or password"}`, w.Body.String())
}

func TestRegister_Validation(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{"name": "x", "email": "not-an-email", "password": "criouser123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `\"email\" must be a valid email`)

	w = do(t, r, http.MethodPost, "/v1/auth/register", "", gin.H{"name": "x", "email": "x@gmail.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers(t *testing.T) {
	r := newTestServer(t)
	a := register(t, r, "a@gmail.com")
	b := register(t, r, "b@gmail.com")
	token := a.Tokens.Access.Token

	w := do(t, r, http.MethodGet, "/v1/users/"+a.User.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/v1/users/"+b.User.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/v1/users/"+a.User.ID+"?q=address", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"address":"ADDRESS_NOT_SET"}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/v1/users/"+b.User.ID, token, gin.H{"address": "somewhere else"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPut, "/v1/users/"+a.User.ID, token, gin.H{"address": "12 Baker Street, London"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"address":"12 Baker Street, London"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/users/"+a.User.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":"12 Baker Street, London"`)
}

func TestProducts(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodGet, "/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), shoe.ID)

	w = do(t, r, http.MethodGet, "/v1/products/"+shoe.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/v1/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/v1/products/search?q=ultri", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), shoe.ID)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	r := newTestServer(t)
	reg := register(t, r, "crio-user@gmail.com")
	token := reg.Tokens.Access.Token

	w := do(t, r, http.MethodGet, "/v1/cart", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"User does not have a cart"}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Use POST to create cart")

	w = do(t, r, http.MethodPost, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/v1/cart", token, gin.H{"productId": shoe.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `\"quantity\" is required`)

	w = do(t, r, http.MethodPut, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	w = do(t, r, http.MethodPost, "/v1/cart/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":400,"message":"User does not have an address other than the default address"}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/v1/users/"+reg.User.ID, token, gin.H{"address": "12 Baker Street, London"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/v1/cart/checkout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cartItems":[]`)

	w = do(t, r, http.MethodGet, "/v1/users/"+reg.User.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"walletMoney":200`)

	w = do(t, r, http.MethodPost, "/v1/cart/checkout", token, nil)
	assert.JSONEq(t, `{"code":400,"message":"Cart does not have any products"}`, w.Body.String())
}

func TestCart_PutZeroRemoves(t *testing.T) {
	r := newTestServer(t)
	token := register(t, r, "crio-user@gmail.com").Tokens.Access.Token

	w := do(t, r, http.MethodPost, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPut, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 0})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, r, http.MethodPut, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": 0})
	assert.JSONEq(t, `{"code":400,"message":"Product not in cart"}`, w.Body.String())

	w = do(t, r, http.MethodPut, "/v1/cart", token, gin.H{"productId": shoe.ID, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
