package crypto

import (
	"crypto/rand"
	"errors"
	"math/bits"
)

const (
	nanoAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	nanoSize     = 21 // 126 bits
	minAlphabet  = 2
	maxAlphabet  = 256
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 2 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 256 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
)

// NanoID generates short random record ids from an ASCII alphabet
type NanoID struct {
	alphabet string
	mask     byte
	size     int
}

// NewNanoID returns a generator over the URL-safe alphabet.
func NewNanoID() *NanoID {
	n, _ := NewCustomNanoID(nanoAlphabet, nanoSize)
	return n
}

// NewCustomNanoID returns a generator over alphabet producing ids of size
// characters. A non-positive size uses the default of 21.
func NewCustomNanoID(alphabet string, size int) (*NanoID, error) {
	if len(alphabet) < minAlphabet {
		return nil, ErrAlphabetTooShort
	}
	if len(alphabet) > maxAlphabet {
		return nil, ErrAlphabetTooLong
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if size <= 0 {
		size = nanoSize
	}

	// smallest all-ones mask covering every alphabet index
	mask := byte(1<<bits.Len(uint(len(alphabet)-1)) - 1)

	return &NanoID{alphabet: alphabet, mask: mask, size: size}, nil
}

// New returns a fresh id. Random bytes whose masked value falls outside
// the alphabet are discarded so every character is equally likely.
func (n *NanoID) New() (string, error) {
	id := make([]byte, 0, n.size)
	buf := make([]byte, n.size*2)

	for len(id) < n.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & n.mask)
			if idx < len(n.alphabet) {
				id = append(id, n.alphabet[idx])
				if len(id) == n.size {
					break
				}
			}
		}
	}

	return string(id), nil
}
