package crypto

import (
	"errors"
	"strings"
	"testing"
)

// cheapArgon2 keeps the suite fast; the format is identical to the default.
func cheapArgon2() *Argon2 {
	return &Argon2{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgon2_Hash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "success", password: "testPassword123"},
		{name: "empty password", password: ""},
		{name: "long password", password: strings.Repeat("a", 128)},
		{name: "unicode", password: "пароль🔐"},
		{name: "colon inside", password: "pa:ss:word"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			a := cheapArgon2()

			// Act
			hash, err := a.Hash(test.password)

			// Assert
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if !strings.HasPrefix(hash, "$argon2id$v=19$") {
				t.Errorf("Hash() = %q, want $argon2id$v=19$ prefix", hash)
			}
			if strings.Contains(hash, test.password) && test.password != "" {
				t.Error("Hash() leaks the plaintext")
			}
		})
	}
}

func TestArgon2_Hash_UniqueSalts(t *testing.T) {
	a := cheapArgon2()

	hash1, _ := a.Hash("samePassword")
	hash2, _ := a.Hash("samePassword")

	if hash1 == hash2 {
		t.Error("Hash() should generate different hashes with unique salts")
	}
}

func TestArgon2_Verify(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		wantOk   bool
	}{
		{name: "correct password", password: "correctPassword", attempt: "correctPassword", wantOk: true},
		{name: "wrong password", password: "correctPassword", attempt: "wrongPassword", wantOk: false},
		{name: "case sensitive", password: "correctPassword", attempt: "correctpassword", wantOk: false},
		{name: "extra character", password: "correctPassword", attempt: "correctPassword1", wantOk: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			a := cheapArgon2()
			hash, _ := a.Hash(test.password)

			// Act
			ok, err := NewArgon2().Verify(test.attempt, hash)

			// Assert
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok != test.wantOk {
				t.Errorf("Verify() = %v, want %v", ok, test.wantOk)
			}
		})
	}
}

func TestArgon2_Verify_InvalidHashes(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{name: "empty", hash: "", wantErr: ErrInvalidHash},
		{name: "invalid format", hash: "invalid-hash", wantErr: ErrInvalidHash},
		{name: "too few parts", hash: "$argon2id$v=19$m=65536,t=3,p=2$salt", wantErr: ErrInvalidHash},
		{name: "argon2i", hash: "$argon2i$v=19$m=65536,t=3,p=2$salt$hash", wantErr: ErrUnsupportedHashAlgo},
		{name: "bcrypt marker", hash: "$bcrypt$v=19$m=65536,t=3,p=2$salt$hash", wantErr: ErrUnsupportedHashAlgo},
		{name: "old version", hash: "$argon2id$v=16$m=65536,t=3,p=2$c2FsdA$aGFzaA", wantErr: ErrUnsupportedHashAlgo},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewArgon2().Verify("password", test.hash)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestArgon2_RoundTripParameters(t *testing.T) {
	a := &Argon2{Memory: 16 * 1024, Iterations: 2, Parallelism: 3, SaltLength: 8, KeyLength: 24}
	hash, err := a.Hash("test")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	h, err := parseArgon2Hash(hash)
	if err != nil {
		t.Fatalf("parseArgon2Hash() error = %v", err)
	}

	if h.params != *a {
		t.Errorf("decoded params = %+v, want %+v", h.params, *a)
	}
}

func TestBcrypt_HashVerify(t *testing.T) {
	// Arrange
	b := &Bcrypt{Cost: 4}
	hash, err := b.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Act + Assert
	if ok, err := b.Verify("pw123", hash); err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := b.Verify("pw124", hash); err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v; want false, nil", ok, err)
	}
	if _, err := b.Verify("pw123", "not-a-bcrypt-hash"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Verify(garbage) error = %v, want ErrInvalidHash", err)
	}
}

func TestSHA256_Deterministic(t *testing.T) {
	d := SHA256{}

	h1, _ := d.Hash("abc")
	h2, _ := d.Hash("abc")

	if h1 != h2 {
		t.Errorf("Hash() not deterministic: %q != %q", h1, h2)
	}
	if want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"; h1 != want {
		t.Errorf("Hash() = %q, want %q", h1, want)
	}
}

func TestSHA256_Verify(t *testing.T) {
	d := SHA256{}
	hash, _ := d.Hash("secret:with:colons")

	tests := []struct {
		name    string
		attempt string
		hash    string
		want    bool
	}{
		{name: "match", attempt: "secret:with:colons", hash: hash, want: true},
		{name: "uppercase stored digest", attempt: "secret:with:colons", hash: strings.ToUpper(hash), want: true},
		{name: "mismatch", attempt: "secret", hash: hash, want: false},
		{name: "empty stored hash", attempt: "", hash: "", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ok, err := d.Verify(test.attempt, test.hash)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ok != test.want {
				t.Errorf("Verify() = %v, want %v", ok, test.want)
			}
		})
	}
}
