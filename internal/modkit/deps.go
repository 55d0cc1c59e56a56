package modkit

import (
	"toxlens/internal/modkit/repokit"
	"toxlens/internal/platform/config"
	"toxlens/internal/platform/logger"
)

// Deps holds what every module may draw on, zero values are allowed
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	// SQL is the preference store, sqlite or postgres depending on config
	SQL repokit.TxRunner
	// SQLDialect is store.DialectSQLite or store.DialectPostgres
	SQLDialect string
}
