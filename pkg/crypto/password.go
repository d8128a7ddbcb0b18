package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("invalid hash format")
	ErrUnsupportedHashAlgo = errors.New("unsupported algorithm")
)

// PasswordHandler hashes and verifies passwords
//
// Verify returns (false, nil) on a mismatch and a non-nil error only when
// the stored hash cannot be parsed.
type PasswordHandler interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

var _ PasswordHandler = (*Argon2)(nil)

// Argon2 is the salted, memory-hard scheme used for account passwords
type Argon2 struct {
	Memory      uint32 // Memory cost in KiB
	Iterations  uint32 // Number of iterations (time cost)
	Parallelism uint8  // Number of parallel threads
	SaltLength  uint32 // Length of random salt. Ignored during Verify()
	KeyLength   uint32 // Length of generated key
}

// NewArgon2 returns the OWASP-recommended argon2id parameters
//
// @ref https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html
func NewArgon2() *Argon2 {
	return &Argon2{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// argon2Hash is the decoded form of "$argon2id$v=19$m=..,t=..,p=..$salt$key"
type argon2Hash struct {
	params Argon2
	salt   []byte
	key    []byte
}

func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.Iterations, a.Memory, a.Parallelism, a.KeyLength)

	h := argon2Hash{params: *a, salt: salt, key: key}
	return h.String(), nil
}

func (a *Argon2) Verify(password, encoded string) (bool, error) {
	h, err := parseArgon2Hash(encoded)
	if err != nil {
		return false, err
	}

	p := h.params
	computed := argon2.IDKey([]byte(password), h.salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return subtle.ConstantTimeCompare(h.key, computed) == 1, nil
}

func (h argon2Hash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key))
}

func parseArgon2Hash(encoded string) (*argon2Hash, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return nil, ErrInvalidHash
	}
	if fields[1] != "argon2id" {
		return nil, ErrUnsupportedHashAlgo
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: argon2 version %d", ErrUnsupportedHashAlgo, version)
	}

	h := &argon2Hash{}
	var parallelism int
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Iterations, &parallelism); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if parallelism < 1 || parallelism > 255 {
		return nil, fmt.Errorf("%w: parallelism %d", ErrInvalidHash, parallelism)
	}
	h.params.Parallelism = uint8(parallelism)

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	h.params.KeyLength = uint32(len(h.key))
	h.params.SaltLength = uint32(len(h.salt))

	return h, nil
}
