// Package database provides SQLite connectivity for the optional durable
// reading store.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations loaded from an fs.FS (embedded by package migrations)
//   - Connection lifecycle and health checks
//
// Database file permissions are set to 0600 (owner read/write only).
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//	store := reading.NewSQLiteStore(db.DB)
//
// Migrations are additive-only: each version has an .up.sql and a .down.sql
// file named YYYYMMDD_HHMMSS_description.
package database
