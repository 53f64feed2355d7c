package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockSource) List(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]models.Product)
	return p, args.Error(1)
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestProductCache_ReadThrough(t *testing.T) {
	rdb, mr := newRedis(t)
	src := &mockSource{}
	c := NewProductCache(rdb, src, time.Minute, zap.NewNop())
	ctx := context.Background()

	p := &models.Product{ID: "p1", Name: "Shoe", Cost: 50}
	src.On("FindByID", mock.Anything, "p1").Return(p, nil).Once()

	got, err := c.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	// second read is served from Redis
	got, err = c.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Shoe", got.Name)
	src.AssertNumberOfCalls(t, "FindByID", 1)

	assert.True(t, mr.Exists("product:p1"))
	assert.Equal(t, time.Minute, mr.TTL("product:p1"))
}

func TestProductCache_NotFoundIsNotCached(t *testing.T) {
	rdb, mr := newRedis(t)
	src := &mockSource{}
	c := NewProductCache(rdb, src, 0, zap.NewNop())

	src.On("FindByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

	_, err := c.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, mr.Exists("product:nope"))
}

func TestProductCache_ListAndInvalidate(t *testing.T) {
	rdb, mr := newRedis(t)
	src := &mockSource{}
	c := NewProductCache(rdb, src, time.Minute, zap.NewNop())
	ctx := context.Background()

	src.On("List", mock.Anything).Return([]models.Product{{ID: "p1"}, {ID: "p2"}}, nil).Once()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	src.AssertNumberOfCalls(t, "List", 1)

	c.Invalidate(ctx, "p1")
	assert.False(t, mr.Exists("products:all"))
}

func TestCounter(t *testing.T) {
	rdb, mr := newRedis(t)
	counter := NewCounter(rdb)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := counter.Increment(ctx, "login_attempts:a@b.c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	assert.Equal(t, time.Minute, counter.TTL(ctx, "login_attempts:a@b.c"))

	mr.FastForward(2 * time.Minute)
	n, err := counter.Increment(ctx, "login_attempts:a@b.c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, counter.Reset(ctx, "login_attempts:a@b.c"))
	assert.Equal(t, time.Duration(0), counter.TTL(ctx, "login_attempts:a@b.c"))
}

func TestCounter_RearmsLostExpiry(t *testing.T) {
	rdb, mr := newRedis(t)
	counter := NewCounter(rdb)
	ctx := context.Background()

	// a key left without a TTL, e.g. after a failed EXPIRE
	require.NoError(t, mr.Set("login_attempts:10.0.0.9", "7"))

	n, err := counter.Increment(ctx, "login_attempts:10.0.0.9", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, time.Minute, counter.TTL(ctx, "login_attempts:10.0.0.9"))

	mr.FastForward(2 * time.Minute)
	count, err := counter.Count(ctx, "login_attempts:10.0.0.9")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
