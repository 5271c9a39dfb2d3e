package crypto

import "golang.org/x/crypto/bcrypt"

// GenerateHash creates a bcrypt hash from a password using the default cost.
func GenerateHash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

// CheckPassword compares a bcrypt hash with a plaintext candidate. An empty
// hash always fails: accounts created through OAuth2 have no password and
// must not be able to log in with one.
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
