package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

const (
	DefaultTokenLength = 32 // 256 bits
)

type TokenPair struct {
	Token string // value returned to client
	Hash  string // value in storage
}

func generateToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewSessionID returns an opaque 256-bit URL-safe session id. The id is
// pure randomness and carries nothing about the user it is issued to.
func NewSessionID() (string, error) {
	return generateToken(DefaultTokenLength)
}

// GenerateHashedToken returns a fresh session id along with the digest
// persisted in its place.
func GenerateHashedToken() (*TokenPair, error) {
	token, err := NewSessionID()
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Token: token,
		Hash:  HashToken(token),
	}, nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
