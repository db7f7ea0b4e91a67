package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) a SQLite database file.  Foreign keys
// and a busy timeout are set through DSN pragmas so every pooled connection
// gets them.  The pool is capped at one connection: SQLite serializes writers
// anyway and a single connection keeps transactions from tripping SQLITE_BUSY.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := sqliteDSN(path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func sqliteDSN(path string) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if path != ":memory:" {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_pragma=" + strings.Join(pragmas, "&_pragma=")
}
