package zombiezen

import (
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite/sqlitex"
)

// NewPool creates a SQLite connection pool with defaults suited for a mixed
// read/write workload. The default open flags enable WAL mode; pool size
// follows the CPU count. The caller owns the pool lifecycle; pass it to New
// and close it on shutdown.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool("file:"+dbPath, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pool at %s: %w", dbPath, err)
	}
	return pool, nil
}
