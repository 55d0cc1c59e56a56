// Package sqlite opens the embedded preference database
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

type Config struct {
	// Path is a file or ":memory:"
	Path          string
	BusyTimeoutMs int
}

var openDB = sql.Open

// Open returns a handle that has answered a ping
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := openDB("sqlite", DSN(cfg))
	if err != nil {
		return nil, err
	}
	if inMemory(cfg.Path) {
		// a second connection would see a different empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// DSN is the modernc connection string, file databases run in WAL mode
func DSN(cfg Config) string {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = ":memory:"
	}
	busy := cfg.BusyTimeoutMs
	if busy <= 0 {
		busy = 5000
	}
	q := url.Values{"_pragma": {fmt.Sprintf("busy_timeout(%d)", busy)}}
	if !inMemory(path) {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	return "file:" + path + "?" + q.Encode()
}

func inMemory(path string) bool {
	return path == "" || path == ":memory:" || strings.Contains(path, "mode=memory")
}
