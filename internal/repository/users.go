package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"kart_back_end/internal/models"
)

// UserStore keeps users in Scylla. users_by_email is the lookup table that
// also enforces email uniqueness through a lightweight transaction.
type UserStore struct {
	sessions SessionProvider
	now      func() time.Time
}

func NewUserStore(sessions SessionProvider) *UserStore {
	return &UserStore{sessions: sessions, now: time.Now}
}

const selectUser = `SELECT user_id, name, email, password, wallet_money, address, created_at, updated_at FROM users WHERE user_id = ?`

func (r *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	session, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}

	var (
		u       models.User
		userID  gocql.UUID
		address string
	)
	err = session.Query(selectUser, gocql.UUID(uid)).
		WithContext(ctx).
		Scan(&userID, &u.Name, &u.Email, &u.Password, &u.WalletMoney, &address, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}

	u.ID = userID.String()
	u.SetAddress(address)
	return &u, nil
}

func (r *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	session, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}

	var userID gocql.UUID
	err = session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, normalizeEmail(email)).
		WithContext(ctx).
		Scan(&userID)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select users_by_email: %w", err)
	}
	return r.FindByID(ctx, userID.String())
}

// Create inserts a new user. It returns ErrDuplicate when the email is taken.
func (r *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	session, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}

	created := *u
	created.ID = uuid.NewString()
	created.Email = normalizeEmail(u.Email)
	created.CreatedAt = r.now().UTC()
	created.UpdatedAt = created.CreatedAt
	uid := gocql.UUID(uuid.MustParse(created.ID))

	applied, err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`, created.Email, uid).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("reserve email: %w", err)
	}
	if !applied {
		return nil, ErrDuplicate
	}

	err = session.Query(`INSERT INTO users (user_id, name, email, password, wallet_money, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, created.Name, created.Email, created.Password, created.WalletMoney, created.AddressOrDefault(), created.CreatedAt, created.UpdatedAt).
		WithContext(ctx).
		Exec()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

// Save persists the mutable fields: name, wallet and address.
func (r *UserStore) Save(ctx context.Context, u *models.User) error {
	uid, err := uuid.Parse(u.ID)
	if err != nil {
		return fmt.Errorf("save user: invalid id %q", u.ID)
	}

	session, err := r.sessions.Session()
	if err != nil {
		return err
	}

	u.UpdatedAt = r.now().UTC()
	err = session.Query(`UPDATE users SET name = ?, wallet_money = ?, address = ?, updated_at = ? WHERE user_id = ?`,
		u.Name, u.WalletMoney, u.AddressOrDefault(), u.UpdatedAt, gocql.UUID(uid)).
		WithContext(ctx).
		Exec()
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
