package models

import (
	"encoding/json"
	"time"
)

// DefaultAddress is what clients and the users table see when no shipping
// address has been set. Inside the service the absence is a nil Address.
const DefaultAddress = "ADDRESS_NOT_SET"

type User struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	WalletMoney int64     `json:"walletMoney"`
	Address     *string   `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) HasNonDefaultAddress() bool {
	return u.Address != nil
}

// AddressOrDefault renders the address for the outside world.
func (u *User) AddressOrDefault() string {
	if u.Address == nil {
		return DefaultAddress
	}
	return *u.Address
}

// SetAddress stores raw as the shipping address; empty or sentinel values clear it.
func (u *User) SetAddress(raw string) {
	if raw == "" || raw == DefaultAddress {
		u.Address = nil
		return
	}
	addr := raw
	u.Address = &addr
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return json.Marshal(struct {
		plain
		Address string `json:"address"`
	}{plain(u), u.AddressOrDefault()})
}
