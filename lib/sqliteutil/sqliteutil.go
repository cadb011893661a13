package sqliteutil

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// OpenDB opens a database and applies the given schema. `target` is
// either a local sqlite file path (or ":memory:") or a libsql:// url.
func OpenDB(schema, target string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch {
	case strings.HasPrefix(target, "libsql://"):
		db, err = sql.Open("libsql", target)
	case target == ":memory:":
		db, err = sql.Open("sqlite", target)
	default:
		db, err = sql.Open("sqlite", fmt.Sprintf("file:%s", target))
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}
	return db, nil
}
