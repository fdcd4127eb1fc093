// Package database provides SQLite persistence for the greenhouse core.
//
// This package manages:
//   - Database connection lifecycle (open, close, health checks)
//   - WAL mode and busy timeout configuration for concurrent access
//   - Schema migrations embedded into the binary
//   - Transaction helpers for per-message atomic writes
//
// # Concurrency
//
// SQLite supports a single writer. The connection pool is capped at one
// open connection so all repository writes serialise through it; WAL mode
// allows reads to proceed concurrently. Higher-level serialisation (the
// per-sensor alert latch) is handled in the alert package, not here.
//
// # Migrations
//
// Migration files live in the top-level migrations package and are
// embedded via go:embed. Each migration runs in its own transaction.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     true,
//	    BusyTimeout: 5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
