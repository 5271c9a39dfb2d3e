package db

import "time"

// User represents a user from the database.
// Timestamps use RFC3339 format in UTC, e.g. "2024-03-07T15:04:05Z".
type User struct {
	ID       string
	Username string
	Email    string
	// Password is the bcrypt hash. Empty means password authentication is
	// not available for this account (created via OAuth2 only).
	Password string
	// Verified is monotonic: once true it is never unset by any flow.
	Verified   bool
	VerifiedAt time.Time
	Created    time.Time
	Updated    time.Time
}

// Identity is a provider login linked to a user. A provider identity is
// owned by exactly one user, and a user holds at most one identity per
// provider.
type Identity struct {
	Provider       string
	ProviderUserID string
	UserID         string
	// Token is the opaque provider token blob, stored for potential future
	// API calls. No freshness is guaranteed.
	Token   string
	Created time.Time
	Updated time.Time
}

// Provider names accepted in the identities table.
const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"
)
