package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/oauth2"
)

// ErrMissingEmail is returned when the provider exposes no usable email
// address and the profile matches no existing identity.
var ErrMissingEmail = errors.New("provider returned no email address")

// usernameAttempts bounds the sequential suffix search before giving up and
// switching to a random suffix.
const usernameAttempts = 50

// Store is the persistence surface the reconciler needs. db.DbAuth satisfies it.
type Store interface {
	GetUserByIdentity(provider, providerUserID string) (*db.User, error)
	GetUserByEmail(email string) (*db.User, error)
	GetUserByUsername(username string) (*db.User, error)
	LinkIdentity(identity db.Identity) error
	UpdateIdentityToken(provider, providerUserID, token string) error
	CreateUserWithIdentity(user db.User, identity db.Identity) (*db.User, error)
}

// Reconciler maps provider profiles onto local user accounts.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile resolves a provider profile to exactly one local user. The steps
// short-circuit in order:
//
//  1. The provider identity is already linked: that user wins, regardless of
//     what email the provider reports today.
//  2. A user with the profile's email exists: the identity is linked to it
//     and the user logs in. The merge is silent.
//  3. Nobody matches: a new verified user is created together with its
//     identity link in one transaction.
func (r *Reconciler) Reconcile(profile *oauth2.Profile) (*db.User, error) {
	user, err := r.store.GetUserByIdentity(profile.Provider, profile.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	if user != nil {
		// Known identity. Refresh the stored provider token; a failure here
		// must not block the login.
		if err := r.store.UpdateIdentityToken(profile.Provider, profile.ProviderUserID, profile.RawToken); err != nil {
			r.logger.Error("failed to refresh provider token",
				"provider", profile.Provider, "user_id", user.ID, "error", err)
		}
		return user, nil
	}

	if profile.Email == "" {
		return nil, ErrMissingEmail
	}

	user, err = r.store.GetUserByEmail(profile.Email)
	if err != nil {
		return nil, fmt.Errorf("email lookup failed: %w", err)
	}
	if user != nil {
		err := r.store.LinkIdentity(db.Identity{
			Provider:       profile.Provider,
			ProviderUserID: profile.ProviderUserID,
			UserID:         user.ID,
			Token:          profile.RawToken,
		})
		// A concurrent login linked the same identity first. Same profile,
		// same user: the link exists, nothing is lost.
		if err != nil && !errors.Is(err, db.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("failed to link identity: %w", err)
		}
		return user, nil
	}

	username, err := r.uniqueUsername(profile)
	if err != nil {
		return nil, err
	}

	created, err := r.store.CreateUserWithIdentity(
		db.User{
			Username: username,
			Email:    profile.Email,
			Verified: true,
		},
		db.Identity{
			Provider:       profile.Provider,
			ProviderUserID: profile.ProviderUserID,
			Token:          profile.RawToken,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// uniqueUsername returns the profile's suggested username, de-duplicated with
// a numeric suffix: name, name_1, name_2, ...
func (r *Reconciler) uniqueUsername(profile *oauth2.Profile) (string, error) {
	base := profile.Username
	if base == "" {
		if at := strings.Index(profile.Email, "@"); at > 0 {
			base = profile.Email[:at]
		} else {
			base = "user"
		}
	}

	for i := 0; i < usernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", base, i)
		}
		existing, err := r.store.GetUserByUsername(candidate)
		if err != nil {
			return "", fmt.Errorf("username lookup failed: %w", err)
		}
		if existing == nil {
			return candidate, nil
		}
	}

	// Pathological collision count; a random suffix is unique enough.
	return base + "_" + crypto.RandomString(8, crypto.AlphanumericAlphabet), nil
}
