// Package db opens the Postgres connection used by the export command.
package db

import (
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/config"
)

// Connection wraps the export database handle.
type Connection struct {
	DB *sql.DB
}

// NewConnection opens and pings the configured database.
func NewConnection(cfg config.PostgresConfig) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	return &Connection{DB: db}, nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	return c.DB.Close()
}
