package store

import (
	"strings"
	"time"

	"toxlens/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// SQLiteConfig configures the embedded database
type SQLiteConfig struct {
	Enabled       bool
	Path          string
	BusyTimeoutMs int
	LogSQL        bool
	SlowQueryMs   int
}

// FromConfig picks the preference backend from CORE_PREFS_DRIVER
// postgres reads SERVICE_PGSQL_DBURL, sqlite (default) reads CORE_PREFS_SQLITE_PATH
func FromConfig(root config.Conf) Config {
	core := root.Prefix("CORE_")
	prefs := core.Prefix("PREFS_")
	cfg := Config{AppName: "toxlens"}

	switch strings.ToLower(prefs.MayEnum("DRIVER", "sqlite", "sqlite", "postgres")) {
	case "postgres":
		cfg.PG = PGConfig{
			Enabled:     true,
			URL:         root.Prefix("SERVICE_PGSQL_").MustString("DBURL"),
			MaxConns:    int32(prefs.MayInt("PG_MAX_CONNS", 4)),
			LogSQL:      prefs.MayBool("LOG_SQL", false),
			SlowQueryMs: prefs.MayInt("SLOW_MS", 200),
		}
	default:
		cfg.SQLite = SQLiteConfig{
			Enabled:       true,
			Path:          prefs.MayString("SQLITE_PATH", "toxlens.db"),
			BusyTimeoutMs: prefs.MayInt("SQLITE_BUSY_MS", 5000),
			LogSQL:        prefs.MayBool("LOG_SQL", false),
			SlowQueryMs:   prefs.MayInt("SLOW_MS", 200),
		}
	}
	return cfg
}
