package repository

import (
	"errors"

	"github.com/gocql/gocql"
)

var (
	// ErrNotFound is returned by lookups when the document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned by creates when the unique key is taken.
	ErrDuplicate = errors.New("duplicate key")
)

// SessionProvider hands out the current Scylla session. database.ScyllaManager
// implements it.
type SessionProvider interface {
	Session() (*gocql.Session, error)
}
