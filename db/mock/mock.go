package mock

import (
	"github.com/quillhq/quill/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- Mock DbAuth Methods ---
	GetUserByEmailFunc         func(email string) (*db.User, error)
	GetUserByIdFunc            func(id string) (*db.User, error)
	GetUserByUsernameFunc      func(username string) (*db.User, error)
	GetUserByIdentityFunc      func(provider, providerUserID string) (*db.User, error)
	CreateUserWithPasswordFunc func(user db.User) (*db.User, error)
	CreateUserWithIdentityFunc func(user db.User, identity db.Identity) (*db.User, error)
	LinkIdentityFunc           func(identity db.Identity) error
	UpdateIdentityTokenFunc    func(provider, providerUserID, token string) error
	GetIdentitiesFunc          func(userID string) ([]db.Identity, error)
	VerifyEmailFunc            func(userID string) error
	UpdatePasswordFunc         func(userID string, newPassword string) error

	// --- Mock DbQueue Methods ---
	InsertJobFunc     func(job db.Job) error
	ClaimFunc         func(limit int) ([]*db.Job, error)
	MarkCompletedFunc func(jobID int64) error
	MarkFailedFunc    func(jobID int64, errMsg string) error
}

// --- Implement DbAuth ---
func (m *Db) GetUserByEmail(email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, nil // Default: Not found
}
func (m *Db) GetUserById(id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, nil // Default: Not found
}
func (m *Db) GetUserByUsername(username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(username)
	}
	return nil, nil // Default: Not found
}
func (m *Db) GetUserByIdentity(provider, providerUserID string) (*db.User, error) {
	if m.GetUserByIdentityFunc != nil {
		return m.GetUserByIdentityFunc(provider, providerUserID)
	}
	return nil, nil // Default: Not found
}
func (m *Db) CreateUserWithPassword(user db.User) (*db.User, error) {
	if m.CreateUserWithPasswordFunc != nil {
		return m.CreateUserWithPasswordFunc(user)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-pw-user-id"
	return &user, nil
}
func (m *Db) CreateUserWithIdentity(user db.User, identity db.Identity) (*db.User, error) {
	if m.CreateUserWithIdentityFunc != nil {
		return m.CreateUserWithIdentityFunc(user, identity)
	}
	// Default: Return the user passed in, assuming success
	user.ID = "mock-oauth-user-id"
	return &user, nil
}
func (m *Db) LinkIdentity(identity db.Identity) error {
	if m.LinkIdentityFunc != nil {
		return m.LinkIdentityFunc(identity)
	}
	return nil // Default: Success
}
func (m *Db) UpdateIdentityToken(provider, providerUserID, token string) error {
	if m.UpdateIdentityTokenFunc != nil {
		return m.UpdateIdentityTokenFunc(provider, providerUserID, token)
	}
	return nil // Default: Success
}
func (m *Db) GetIdentities(userID string) ([]db.Identity, error) {
	if m.GetIdentitiesFunc != nil {
		return m.GetIdentitiesFunc(userID)
	}
	return []db.Identity{}, nil // Default: No identities
}
func (m *Db) VerifyEmail(userID string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(userID)
	}
	return nil // Default: Success
}
func (m *Db) UpdatePassword(userID string, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(userID, newPassword)
	}
	return nil // Default: Success
}

// --- Implement DbQueue ---
func (m *Db) InsertJob(job db.Job) error {
	if m.InsertJobFunc != nil {
		return m.InsertJobFunc(job)
	}
	return nil // Default: Success
}
func (m *Db) Claim(limit int) ([]*db.Job, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(limit)
	}
	return []*db.Job{}, nil // Default: No jobs claimed
}
func (m *Db) MarkCompleted(jobID int64) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(jobID)
	}
	return nil // Default: Success
}
func (m *Db) MarkFailed(jobID int64, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(jobID, errMsg)
	}
	return nil // Default: Success
}
