package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenSqlite opens (and creates if needed) a local sqlite database and
// applies the schema. ":memory:" is accepted for tests.
func OpenSqlite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a path was not specified")
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// a single connection also keeps ":memory:" databases from splitting
	// into one database per connection.
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenLibsql opens a remote libsql (turso) database, the auth token may also be
// passed directly in the url as `?authToken=`.
func OpenLibsql(url, authToken string) (*sql.DB, error) {
	if authToken != "" && !strings.Contains(url, "authToken=") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url = fmt.Sprintf("%s%sauthToken=%s", url, sep, authToken)
	}

	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
