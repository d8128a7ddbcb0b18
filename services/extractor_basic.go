package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/crypto"
)

const basicPrefix = "Basic "

var _ core.CredentialExtractor = (*BasicExtractor)(nil)

// BasicExtractor resolves users from an "Authorization: Basic" header
type BasicExtractor struct {
	users     core.UserStorage
	passwords crypto.PasswordHandler
	logger    logging.Logger
}

func NewBasicExtractor(users core.UserStorage, passwords crypto.PasswordHandler, opts ...Option) *BasicExtractor {
	o := buildOptions(opts)
	return &BasicExtractor{users: users, passwords: passwords, logger: o.logger}
}

// ExtractBase64 returns the token following the "Basic " prefix.
func ExtractBase64(header string) (string, bool) {
	return strings.CutPrefix(header, basicPrefix)
}

// DecodeBase64 decodes a padded standard base64 token into UTF-8 text.
func DecodeBase64(token string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// ExtractCredentials splits decoded text at the first ':' so secrets may
// themselves contain colons.
func ExtractCredentials(decoded string) (email, secret string, ok bool) {
	return strings.Cut(decoded, ":")
}

// UserFromCredentials returns the first user with the given email whose
// stored hash verifies against secret. Hashes that fail to parse count as
// a mismatch.
func (b *BasicExtractor) UserFromCredentials(ctx context.Context, email, secret string) (*core.User, error) {
	candidates, err := b.users.FindByAttributes(ctx, map[string]string{core.AttrEmail: email})
	if err != nil {
		return nil, fmt.Errorf("%w: find users: %w", core.ErrStoreFailure, err)
	}

	for _, u := range candidates {
		ok, err := b.passwords.Verify(secret, u.PasswordHash)
		if err != nil {
			b.logger.Warn(ctx, "unverifiable password hash", "user_id", u.ID, "error", err)
			continue
		}
		if ok {
			return u, nil
		}
	}
	return nil, nil
}

func (b *BasicExtractor) CurrentUser(ctx context.Context, req core.Request) (*core.User, error) {
	header, ok := core.AuthorizationHeader(req)
	if !ok {
		return nil, nil
	}
	token, ok := ExtractBase64(header)
	if !ok {
		return nil, nil
	}
	decoded, ok := DecodeBase64(token)
	if !ok {
		return nil, nil
	}
	email, secret, ok := ExtractCredentials(decoded)
	if !ok {
		return nil, nil
	}
	return b.UserFromCredentials(ctx, email, secret)
}
