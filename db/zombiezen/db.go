package zombiezen

import (
	"fmt"
	"strings"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Db implements the store interfaces on a zombiezen SQLite pool. The pool
// lifecycle is managed externally; Db never closes it.
type Db struct {
	pool *sqlitex.Pool
}

var (
	_ db.DbAuth  = (*Db)(nil)
	_ db.DbQueue = (*Db)(nil)
)

// New creates a Db on an existing pool.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// mapUniqueErr translates SQLite unique-constraint violations into the db
// package sentinels. SQLite reports the violated column in the error text,
// e.g. "UNIQUE constraint failed: users.email".
func mapUniqueErr(err error) error {
	if err == nil {
		return nil
	}
	if sqlite.ErrCode(err) != sqlite.ResultConstraintUnique {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return db.ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return db.ErrDuplicateUsername
	case strings.Contains(msg, "identities."):
		return db.ErrDuplicateIdentity
	default:
		return db.ErrConstraintUnique
	}
}
