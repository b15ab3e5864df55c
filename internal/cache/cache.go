// package cache provides the offline snapshot of the remote library.
//
// Rows mirror server records verbatim; the cache never invents state. Each
// repository records a synced_at stamp so stale rows can be pruned after a
// full refresh.
package cache

import (
	"database/sql"
	"fmt"

	"github.com/dmchugh/medlib/internal/shared"
)

// Open opens the cache database at path with the given connection pool
// limits and applies pending migrations.
//
// Foreign keys are enabled via the DSN so item rows cascade with their
// playlist on every pooled connection.
func Open(path string, maxOpenConns, maxIdleConns int) (*sql.DB, error) {
	db, err := shared.NewDatabase(path + "?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return db, nil
}
