package zombiezen

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func newIdentityFromStmt(stmt *sqlite.Stmt) (*db.Identity, error) {
	created, err := db.TimeParse(stmt.GetText("created"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created time: %w", err)
	}

	updated, err := db.TimeParse(stmt.GetText("updated"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated time: %w", err)
	}

	return &db.Identity{
		Provider:       stmt.GetText("provider"),
		ProviderUserID: stmt.GetText("provider_user_id"),
		UserID:         stmt.GetText("user_id"),
		Token:          stmt.GetText("token"),
		Created:        created,
		Updated:        updated,
	}, nil
}

// GetUserByIdentity returns the owner of a provider identity, or nil with a
// nil error when the identity is not linked to anyone.
func (d *Db) GetUserByIdentity(provider, providerUserID string) (*db.User, error) {
	return d.getUser(
		`SELECT u.id AS id, u.username AS username, u.email AS email,
			u.password AS password, u.verified AS verified,
			u.verified_at AS verified_at, u.created AS created, u.updated AS updated
		FROM users u
		JOIN identities i ON i.user_id = u.id
		WHERE i.provider = ? AND i.provider_user_id = ?
		LIMIT 1`,
		provider, providerUserID)
}

func insertIdentity(conn *sqlite.Conn, identity db.Identity) error {
	err := sqlitex.Execute(conn,
		`INSERT INTO identities (provider, provider_user_id, user_id, token)
		VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				identity.Provider,
				identity.ProviderUserID,
				identity.UserID,
				identity.Token,
			},
		})
	if err != nil {
		return mapUniqueErr(err)
	}
	return nil
}

// LinkIdentity attaches a provider identity to an existing user. The unique
// constraint on (provider, provider_user_id) guarantees no two users can
// ever claim the same provider identity.
func (d *Db) LinkIdentity(identity db.Identity) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer d.pool.Put(conn)

	return insertIdentity(conn, identity)
}

// CreateUserWithIdentity inserts the user and its provider link inside one
// transaction so no partial state (user without link, link without user) is
// ever observable.
func (d *Db) CreateUserWithIdentity(user db.User, identity db.Identity) (*db.User, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var created *db.User
	endFn := sqlitex.Transaction(conn)
	err = func() error {
		var err error
		created, err = insertUser(conn, user)
		if err != nil {
			return err
		}
		identity.UserID = created.ID
		return insertIdentity(conn, identity)
	}()
	endFn(&err)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (d *Db) UpdateIdentityToken(provider, providerUserID, token string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE identities
		SET token = ?,
			updated = (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		WHERE provider = ? AND provider_user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{token, provider, providerUserID},
		})
	if err != nil {
		return fmt.Errorf("failed to update identity token: %w", err)
	}
	return nil
}

func (d *Db) GetIdentities(userID string) ([]db.Identity, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer d.pool.Put(conn)

	var identities []db.Identity
	err = sqlitex.Execute(conn,
		`SELECT provider, provider_user_id, user_id, token, created, updated
		FROM identities WHERE user_id = ? ORDER BY provider`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				ident, err := newIdentityFromStmt(stmt)
				if err != nil {
					return err
				}
				identities = append(identities, *ident)
				return nil
			},
			Args: []interface{}{userID},
		})
	if err != nil {
		return nil, err
	}
	return identities, nil
}
