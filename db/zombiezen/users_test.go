package zombiezen

import (
	"context"
	"errors"
	"testing"

	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/migrations"
	"zombiezen.com/go/sqlite/sqlitex"
)

// newTestDB creates an in-memory SQLite database with the full schema applied.
func newTestDB(t *testing.T) *Db {
	t.Helper()

	pool, err := sqlitex.NewPool("file::memory:", sqlitex.PoolOptions{
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("failed to create db pool: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close db pool: %v", err)
		}
	})

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("failed to get db connection: %v", err)
	}
	defer pool.Put(conn)

	if err := ApplyMigrations(conn, migrations.Schema()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	testDB, err := New(pool)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	return testDB
}

func TestUserLifecycle(t *testing.T) {
	testDB := newTestDB(t)

	user, err := testDB.CreateUserWithPassword(db.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "bcrypt-hash-placeholder",
	})
	if err != nil {
		t.Fatalf("CreateUserWithPassword failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user to have an ID")
	}
	if user.Verified {
		t.Error("expected new local user to be unverified")
	}
	if !user.VerifiedAt.IsZero() {
		t.Error("expected verified_at to be unset")
	}

	t.Run("GetByEmail", func(t *testing.T) {
		got, err := testDB.GetUserByEmail("alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Fatalf("GetUserByEmail returned %+v, want user %s", got, user.ID)
		}
	})

	t.Run("GetByUsername", func(t *testing.T) {
		got, err := testDB.GetUserByUsername("alice")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got == nil || got.ID != user.ID {
			t.Fatalf("GetUserByUsername returned %+v, want user %s", got, user.ID)
		}
	})

	t.Run("GetMissingReturnsNilNil", func(t *testing.T) {
		got, err := testDB.GetUserByEmail("nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil user for missing email, got %+v", got)
		}
	})

	t.Run("VerifyEmailIsIdempotent", func(t *testing.T) {
		if err := testDB.VerifyEmail(user.ID); err != nil {
			t.Fatalf("VerifyEmail failed: %v", err)
		}
		first, err := testDB.GetUserById(user.ID)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if !first.Verified {
			t.Fatal("expected user to be verified")
		}
		if first.VerifiedAt.IsZero() {
			t.Fatal("expected verified_at to be set")
		}

		if err := testDB.VerifyEmail(user.ID); err != nil {
			t.Fatalf("second VerifyEmail failed: %v", err)
		}
		second, err := testDB.GetUserById(user.ID)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if !second.VerifiedAt.Equal(first.VerifiedAt) {
			t.Errorf("verified_at changed on second call: %v != %v", second.VerifiedAt, first.VerifiedAt)
		}
	})

	t.Run("UpdatePassword", func(t *testing.T) {
		if err := testDB.UpdatePassword(user.ID, "new-hash"); err != nil {
			t.Fatalf("UpdatePassword failed: %v", err)
		}
		got, err := testDB.GetUserById(user.ID)
		if err != nil {
			t.Fatalf("GetUserById failed: %v", err)
		}
		if got.Password != "new-hash" {
			t.Errorf("expected password %q, got %q", "new-hash", got.Password)
		}
	})
}

func TestCreateUserDuplicates(t *testing.T) {
	testDB := newTestDB(t)

	_, err := testDB.CreateUserWithPassword(db.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUserWithPassword failed: %v", err)
	}

	testCases := []struct {
		name string
		user db.User
		want error
	}{
		{
			name: "duplicate email",
			user: db.User{Username: "alice2", Email: "alice@example.com"},
			want: db.ErrDuplicateEmail,
		},
		{
			name: "duplicate username",
			user: db.User{Username: "alice", Email: "other@example.com"},
			want: db.ErrDuplicateUsername,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testDB.CreateUserWithPassword(tc.user)
			if !errors.Is(err, tc.want) {
				t.Errorf("CreateUserWithPassword error = %v, want %v", err, tc.want)
			}
		})
	}
}
