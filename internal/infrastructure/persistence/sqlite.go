package persistence

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a local SQLite database, creating it when missing. Used
// for the durable run-history log.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps modernc's sqlite happy under concurrent appends
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
