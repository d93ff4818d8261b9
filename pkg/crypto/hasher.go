package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// HashToken produces a bcrypt digest of a shared secret for storage
func HashToken(token string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckToken reports whether the token matches the stored bcrypt digest
func CheckToken(token, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(token)) == nil
}
