package crypto

import (
	"crypto/rand"
	"math/big"
)

// AlphanumericAlphabet is the default alphabet for URL-safe random strings.
const AlphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns a cryptographically secure random string of the given
// length built from alphabet. Panics on an empty alphabet or if the system
// randomness source fails, both of which are programming/environment errors.
func RandomString(length int, alphabet string) string {
	if alphabet == "" {
		panic("crypto: empty alphabet")
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}
