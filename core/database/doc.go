// Package database handles the optional catalog mirror connection and schema inspection.
//
// It wraps GORM to open either a MySQL server or a SQLite file, configured
// through the database section of the application configuration.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the integrity checks verify that
// the mirror table carries every column the catalog model expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("catalog mirror disabled", zap.Error(err))
//	}
package database
