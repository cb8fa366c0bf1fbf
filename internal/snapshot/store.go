// Package snapshot persists the most recently scraped set of postings.
//
// A snapshot is only ever replaced wholesale. Every Store guarantees that a
// Load running concurrently with a Replace observes either the full old set
// or the full new set, and that a failed Replace leaves the old set intact.
package snapshot

import (
	"bountywatch/internal/db"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"strings"
)

const (
	report_load    = "store.load"
	report_replace = "store.replace"
)

// Store is the durable home of the latest snapshot.
type Store interface {
	// Load returns the stored snapshot in the order it was written, a store
	// that was never written returns an empty slice.
	Load(ctx context.Context) ([]posting.Posting, error)
	// Replace atomically swaps the stored snapshot for postings.
	Replace(ctx context.Context, postings []posting.Posting) error
}

// Open picks a backend from a connection string:
//
//	file:<path>       JSON file
//	sqlite:<path>     local sqlite database
//	libsql://...      remote libsql database
//	postgres://...    postgres database
//
// A bare path is treated as a JSON file when it ends with `.json` and as a
// sqlite database otherwise. The returned close function releases the backend.
func Open(ctx context.Context, conn string, authToken string, tel telemetry.API) (Store, func() error, error) {
	noop := func() error { return nil }

	switch {
	case strings.HasPrefix(conn, "file:"):
		return NewFileStore(strings.TrimPrefix(conn, "file:"), tel), noop, nil
	case strings.HasPrefix(conn, "sqlite:"):
		sqlite, err := db.OpenSqlite(strings.TrimPrefix(conn, "sqlite:"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return NewSQLStore(sqlite, tel), sqlite.Close, nil
	case strings.HasPrefix(conn, "libsql://"), strings.HasPrefix(conn, "https://"), strings.HasPrefix(conn, "wss://"):
		remote, err := db.OpenLibsql(conn, authToken)
		if err != nil {
			return nil, nil, fmt.Errorf("open libsql: %w", err)
		}
		return NewSQLStore(remote, tel), remote.Close, nil
	case strings.HasPrefix(conn, "postgres://"), strings.HasPrefix(conn, "postgresql://"):
		store, err := OpenPostgresStore(ctx, conn, tel)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return store, store.Close, nil
	case strings.HasSuffix(conn, ".json"):
		return NewFileStore(conn, tel), noop, nil
	case conn == "":
		return nil, nil, fmt.Errorf("no storage connection string specified")
	}

	sqlite, err := db.OpenSqlite(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewSQLStore(sqlite, tel), sqlite.Close, nil
}
