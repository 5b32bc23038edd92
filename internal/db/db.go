package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the inventory database at path and applies the pragmas the
// app depends on. The workload is many readers against a single writer
// (stock updates arrive one form submit at a time), which is exactly the
// shape WAL journaling handles: readers keep serving grouped pages while
// a write is in flight, and busy_timeout absorbs the short writer queue.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("setting %s: %w", pragma, err)
		}
	}

	return database, nil
}
