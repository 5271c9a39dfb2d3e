package db

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when a user lookup matches no record.
	// Read methods on the real store return (nil, nil) for not-found; this
	// sentinel exists for mocks and callers that need an explicit error.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email unique constraint fires
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned when the username unique constraint fires
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateIdentity is returned when a (provider, provider user id)
	// pair is already linked to a user
	ErrDuplicateIdentity = errors.New("provider identity already linked")
	// ErrConstraintUnique is returned for unique violations that have no
	// more specific sentinel, e.g. job queue deduplication
	ErrConstraintUnique = errors.New("unique constraint violation")
)

// TimeFormat is the storage format for timestamps: RFC3339 in UTC.
const TimeFormat = time.RFC3339

// TimeParse parses a stored timestamp. The empty string parses to the zero
// time, which is how optional timestamps (verified_at) are represented.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeFormat, s)
}

// TimeFormatString formats t for storage.
func TimeFormatString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// DbAuth is the persistence contract for users and their linked provider
// identities. Uniqueness of email, username and (provider, provider user id)
// is enforced by store-level unique constraints; pre-checks in callers exist
// only for friendlier error messages.
type DbAuth interface {
	GetUserByEmail(email string) (*User, error)
	GetUserById(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)

	// GetUserByIdentity returns the owner of a provider identity.
	GetUserByIdentity(provider, providerUserID string) (*User, error)

	// CreateUserWithPassword inserts a local user. Returns ErrDuplicateEmail
	// or ErrDuplicateUsername when the respective constraint fires.
	CreateUserWithPassword(user User) (*User, error)

	// CreateUserWithIdentity inserts a user and its provider link in a
	// single transaction: no reader may ever observe one without the other.
	CreateUserWithIdentity(user User, identity Identity) (*User, error)

	// LinkIdentity attaches a provider identity to an existing user.
	LinkIdentity(identity Identity) error

	// UpdateIdentityToken refreshes the stored provider token blob.
	UpdateIdentityToken(provider, providerUserID, token string) error

	// GetIdentities returns all provider links of a user.
	GetIdentities(userID string) ([]Identity, error)

	// VerifyEmail marks the user's email verified. Idempotent: a second call
	// does not touch verified_at.
	VerifyEmail(userID string) error

	// UpdatePassword replaces the stored password hash unconditionally.
	UpdatePassword(userID string, newPassword string) error
}

// DbQueue is the persistence contract for the background job queue.
type DbQueue interface {
	// InsertJob enqueues a job. Returns ErrConstraintUnique when an
	// equivalent job is already pending (cooldown deduplication).
	InsertJob(job Job) error
	// Claim marks up to limit pending jobs as processing and returns them.
	Claim(limit int) ([]*Job, error)
	MarkCompleted(jobID int64) error
	MarkFailed(jobID int64, errMsg string) error
}

// DbApp combines the store roles the application requires.
type DbApp interface {
	DbAuth
	DbQueue
}
