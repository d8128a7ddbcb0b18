package crypto

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCustomNanoID_Validation(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		wantErr  error
	}{
		{name: "valid", alphabet: "abc", wantErr: nil},
		{name: "binary alphabet", alphabet: "01", wantErr: nil},
		{name: "too short", alphabet: "a", wantErr: ErrAlphabetTooShort},
		{name: "empty", alphabet: "", wantErr: ErrAlphabetTooShort},
		{name: "too long", alphabet: strings.Repeat("a", 257), wantErr: ErrAlphabetTooLong},
		{name: "non ascii", alphabet: "abcé", wantErr: ErrAlphabetNotASCII},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewCustomNanoID(test.alphabet, 10)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("NewCustomNanoID() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestNanoID_New(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		size     int
		wantLen  int
	}{
		{name: "default size", alphabet: nanoAlphabet, size: 0, wantLen: nanoSize},
		{name: "short id", alphabet: "0123456789", size: 6, wantLen: 6},
		{name: "non power of two alphabet", alphabet: "abcde", size: 40, wantLen: 40},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			gen, err := NewCustomNanoID(test.alphabet, test.size)
			if err != nil {
				t.Fatalf("NewCustomNanoID() error = %v", err)
			}

			// Act
			id, err := gen.New()

			// Assert
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if len(id) != test.wantLen {
				t.Errorf("len(New()) = %d, want %d", len(id), test.wantLen)
			}
			for _, c := range id {
				if !strings.ContainsRune(test.alphabet, c) {
					t.Errorf("New() = %q contains %q outside alphabet", id, c)
				}
			}
		})
	}
}

func TestNanoID_NewUnique(t *testing.T) {
	gen := NewNanoID()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := gen.New()
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("New() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}
