package database

import (
	"fmt"

	"github.com/gocql/gocql"
)

// Tables used by the repositories. The keyspace itself is created by
// scripts/scylladb_init.cql.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id uuid PRIMARY KEY,
		name text,
		email text,
		password text,
		wallet_money bigint,
		address text,
		created_at timestamp,
		updated_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_email (
		email text PRIMARY KEY,
		user_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id text PRIMARY KEY,
		name text,
		category text,
		cost bigint,
		rating int,
		image text
	)`,
}

func EnsureSchema(session *gocql.Session) error {
	for _, stmt := range schema {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("apply %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
