// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store executes validated queries against the primary paper
// metadata store. The store is the pipeline's only shared resource: all
// access goes through the database/sql pool so a failure mid-query cannot
// leak a connection. Implements: prd008-query-understanding (R5).
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-finder/pkg/types"
)

// Store wraps the pooled connection to the papers database. The schema is
// provisioned externally; Store only ever reads.
type Store struct {
	db           *sql.DB
	maxRetries   int
	queryTimeout time.Duration
}

// Open opens the papers database at cfg.DBPath.
func Open(cfg types.StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening papers database: %w", err)
	}
	return New(db, cfg), nil
}

// New wraps an existing pool. Tests use this with an in-memory database.
func New(db *sql.DB, cfg types.StoreConfig) *Store {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &Store{db: db, maxRetries: maxRetries, queryTimeout: queryTimeout}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
