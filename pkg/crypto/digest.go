package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

var _ PasswordHandler = SHA256{}

// SHA256 is the unsalted lowercase-hex digest used by simple credential
// stores. It is deterministic: equal passwords give equal hashes.
type SHA256 struct{}

func (SHA256) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify never errors; an empty stored hash never matches.
func (d SHA256) Verify(password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	computed, _ := d.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(hash))) == 1, nil
}
