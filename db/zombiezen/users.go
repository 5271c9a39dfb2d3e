package zombiezen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const userColumns = "id, username, email, password, verified, verified_at, created, updated"

// newUserFromStmt creates a User struct from a SQLite statement
func newUserFromStmt(stmt *sqlite.Stmt) (*db.User, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	verifiedAt, err := db.TimeParse(stmt.GetText("verified_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing verified_at time: %w", err)
	}

	return &db.User{
		ID:         stmt.GetText("id"),
		Username:   stmt.GetText("username"),
		Email:      stmt.GetText("email"),
		Password:   stmt.GetText("password"),
		Verified:   stmt.GetInt64("verified") != 0,
		VerifiedAt: verifiedAt,
		Created:    created,
		Updated:    updated,
	}, nil
}

// getUser runs a single-row user query. A nil user with nil error indicates
// no matching record was found.
func (d *Db) getUser(query string, args ...interface{}) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var user *db.User
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			user, err = newUserFromStmt(stmt)
			return err
		},
		Args: args,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
// Returned time fields are in UTC, RFC3339.
func (d *Db) GetUserByEmail(email string) (*db.User, error) {
	return d.getUser(
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email)
}

func (d *Db) GetUserById(id string) (*db.User, error) {
	return d.getUser(
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id)
}

func (d *Db) GetUserByUsername(username string) (*db.User, error) {
	return d.getUser(
		`SELECT `+userColumns+` FROM users WHERE username = ? LIMIT 1`, username)
}

// insertUser inserts on an open connection so it can run inside a
// transaction. The unique constraints on email and username are the
// authoritative duplicate guard; violations come back as db.ErrDuplicateEmail
// or db.ErrDuplicateUsername.
func insertUser(conn *sqlite.Conn, user db.User) (*db.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	var created db.User
	err := sqlitex.Execute(conn,
		`INSERT INTO users (id, username, email, password, verified, verified_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				u, err := newUserFromStmt(stmt)
				if err == nil && u != nil {
					created = *u
				}
				return err
			},
			Args: []interface{}{
				user.ID,
				user.Username,
				user.Email,
				user.Password,
				user.Verified,
				db.TimeFormatString(user.VerifiedAt),
			},
		})
	if err != nil {
		return nil, mapUniqueErr(err)
	}
	return &created, nil
}

func (d *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	return insertUser(conn, user)
}

// VerifyEmail marks the user verified. The WHERE clause makes the call
// idempotent: re-verifying does not touch verified_at.
func (d *Db) VerifyEmail(userID string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET verified = 1,
			verified_at = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ? AND verified = 0`,
		&sqlitex.ExecOptions{
			Args: []interface{}{userID},
		})
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return nil
}

func (d *Db) UpdatePassword(userID string, newPassword string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE users
		SET password = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{newPassword, userID},
		})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
