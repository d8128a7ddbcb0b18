package services

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/pkg/crypto"
)

func basicHeader(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func sha256User(id, email, password string) *core.User {
	hash, _ := crypto.SHA256{}.Hash(password)
	return &core.User{ID: id, Email: email, PasswordHash: hash}
}

// Requirement: only headers with the literal "Basic " prefix yield a token.
func TestExtractBase64(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOk bool
	}{
		{name: "valid", header: "Basic dXNlcjpwdw==", want: "dXNlcjpwdw==", wantOk: true},
		{name: "empty token", header: "Basic ", want: "", wantOk: true},
		{name: "lowercase scheme", header: "basic dXNlcjpwdw==", wantOk: false},
		{name: "no space", header: "BasicdXNlcjpwdw==", wantOk: false},
		{name: "bearer", header: "Bearer abc", wantOk: false},
		{name: "empty", header: "", wantOk: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := ExtractBase64(test.header)
			if ok != test.wantOk || (ok && got != test.want) {
				t.Errorf("ExtractBase64(%q) = %q, %v; want %q, %v", test.header, got, ok, test.want, test.wantOk)
			}
		})
	}
}

// Requirement: invalid base64 or non UTF-8 payloads are rejected.
func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		want   string
		wantOk bool
	}{
		{name: "valid", token: "dXNlckB4LmNvbTpzZWNyZXQ=", want: "user@x.com:secret", wantOk: true},
		{name: "not base64", token: "Holberton", wantOk: false},
		{name: "missing padding", token: "dXNlcjpwdw", wantOk: false},
		{name: "invalid utf8", token: base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, ':'}), wantOk: false},
		{name: "empty", token: "", want: "", wantOk: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := DecodeBase64(test.token)
			if ok != test.wantOk || got != test.want {
				t.Errorf("DecodeBase64(%q) = %q, %v; want %q, %v", test.token, got, ok, test.want, test.wantOk)
			}
		})
	}
}

// Requirement: credentials split at the first colon only.
func TestExtractCredentials(t *testing.T) {
	tests := []struct {
		name       string
		decoded    string
		wantEmail  string
		wantSecret string
		wantOk     bool
	}{
		{name: "simple", decoded: "user@x.com:secret", wantEmail: "user@x.com", wantSecret: "secret", wantOk: true},
		{name: "secret with colons", decoded: "user@x.com:se:cr:et", wantEmail: "user@x.com", wantSecret: "se:cr:et", wantOk: true},
		{name: "empty secret", decoded: "user@x.com:", wantEmail: "user@x.com", wantSecret: "", wantOk: true},
		{name: "no colon", decoded: "user@x.com", wantOk: false},
		{name: "empty", decoded: "", wantOk: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			email, secret, ok := ExtractCredentials(test.decoded)
			if ok != test.wantOk {
				t.Fatalf("ExtractCredentials(%q) ok = %v, want %v", test.decoded, ok, test.wantOk)
			}
			if ok && (email != test.wantEmail || secret != test.wantSecret) {
				t.Errorf("ExtractCredentials(%q) = %q, %q; want %q, %q", test.decoded, email, secret, test.wantEmail, test.wantSecret)
			}
		})
	}
}

// Requirement: encoding then decoding a credential pair yields the same pair.
func TestBasicPipeline_RoundTrip(t *testing.T) {
	token, ok := ExtractBase64(basicHeader("user@x.com:secret"))
	if !ok {
		t.Fatal("ExtractBase64() failed")
	}
	decoded, ok := DecodeBase64(token)
	if !ok {
		t.Fatal("DecodeBase64() failed")
	}
	email, secret, ok := ExtractCredentials(decoded)
	if !ok || email != "user@x.com" || secret != "secret" {
		t.Errorf("round trip = %q, %q, %v", email, secret, ok)
	}

	// a base64 string without a colon yields no pair
	decoded, _ = DecodeBase64(base64.StdEncoding.EncodeToString([]byte("nocolon")))
	if email, secret, ok := ExtractCredentials(decoded); ok || email != "" || secret != "" {
		t.Errorf("ExtractCredentials(no colon) = %q, %q, %v", email, secret, ok)
	}
}

// Requirement: the basic extractor resolves the first user whose hash verifies.
func TestBasicExtractor_CurrentUser(t *testing.T) {
	bob := sha256User("u-bob", "bob@x.com", "pw123")
	bobTwin := sha256User("u-bob-2", "bob@x.com", "other")
	broken := &core.User{ID: "u-broken", Email: "eve@x.com", PasswordHash: "$argon2id$garbage"}

	tests := []struct {
		name   string
		header *string
		wantID string
	}{
		{name: "valid credentials", header: ptr(basicHeader("bob@x.com:pw123")), wantID: "u-bob"},
		{name: "second candidate matches", header: ptr(basicHeader("bob@x.com:other")), wantID: "u-bob-2"},
		{name: "wrong password", header: ptr(basicHeader("bob@x.com:nope")), wantID: ""},
		{name: "unknown email", header: ptr(basicHeader("alice@x.com:pw123")), wantID: ""},
		{name: "no header", header: nil, wantID: ""},
		{name: "bearer header", header: ptr("Bearer token"), wantID: ""},
		{name: "not base64", header: ptr("Basic Holberton"), wantID: ""},
		{name: "no colon", header: ptr(basicHeader("bob@x.com")), wantID: ""},
		{name: "unparseable stored hash", header: ptr(basicHeader("eve@x.com:pw")), wantID: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			users := NewFakeUserStorage(bob, bobTwin, broken)
			extractor := NewBasicExtractor(users, crypto.SHA256{})
			req := newRequest("/api/v1/users")
			if test.header != nil {
				req.withHeader("authorization", *test.header)
			}

			// Act
			u, err := extractor.CurrentUser(context.Background(), req)

			// Assert
			if err != nil {
				t.Fatalf("CurrentUser() error = %v", err)
			}
			gotID := ""
			if u != nil {
				gotID = u.ID
			}
			if gotID != test.wantID {
				t.Errorf("CurrentUser() = %q, want %q", gotID, test.wantID)
			}
		})
	}
}

func TestBasicExtractor_StoreFailure(t *testing.T) {
	users := NewFakeUserStorage()
	users.findErr = errors.New("connection reset")
	extractor := NewBasicExtractor(users, crypto.SHA256{})

	_, err := extractor.CurrentUser(context.Background(),
		newRequest("/").withHeader("Authorization", basicHeader("bob@x.com:pw123")))

	if !errors.Is(err, core.ErrStoreFailure) {
		t.Errorf("error = %v, want ErrStoreFailure", err)
	}
}

// Requirement: the session extractor resolves the cookie through the store and the user repository.
func TestSessionExtractor_CurrentUser(t *testing.T) {
	ctx := context.Background()
	bob := sha256User("u-bob", "bob@x.com", "pw123")
	users := NewFakeUserStorage(bob)
	store := NewMemoryStore(core.DefaultSessionConfig())
	extractor := NewSessionExtractor(store, users)

	sid, _ := store.CreateSession(ctx, bob.ID)
	orphan, _ := store.CreateSession(ctx, "u-deleted")

	tests := []struct {
		name   string
		req    core.Request
		wantID string
	}{
		{name: "valid session", req: newRequest("/").withCookie(testCookie, sid), wantID: "u-bob"},
		{name: "no cookie", req: newRequest("/"), wantID: ""},
		{name: "unknown session", req: newRequest("/").withCookie(testCookie, "forged"), wantID: ""},
		{name: "user gone", req: newRequest("/").withCookie(testCookie, orphan), wantID: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u, err := extractor.CurrentUser(ctx, test.req)
			if err != nil {
				t.Fatalf("CurrentUser() error = %v", err)
			}
			gotID := ""
			if u != nil {
				gotID = u.ID
			}
			if gotID != test.wantID {
				t.Errorf("CurrentUser() = %q, want %q", gotID, test.wantID)
			}
		})
	}
}

func TestSessionExtractor_StoreFailure(t *testing.T) {
	storage := NewFakeSessionStorage()
	storage.findErr = errors.New("timeout")
	store := NewPersistentStore(core.DefaultSessionConfig(), storage)
	extractor := NewSessionExtractor(store, NewFakeUserStorage())

	_, err := extractor.CurrentUser(context.Background(), newRequest("/").withCookie(testCookie, "sid"))

	if !errors.Is(err, core.ErrStoreFailure) {
		t.Errorf("error = %v, want ErrStoreFailure", err)
	}
}

func TestNoneExtractor_NeverResolves(t *testing.T) {
	u, err := NoneExtractor{}.CurrentUser(context.Background(),
		newRequest("/").withHeader("Authorization", basicHeader("bob@x.com:pw123")))

	if u != nil || err != nil {
		t.Errorf("CurrentUser() = %v, %v; want nil, nil", u, err)
	}
}

func ptr(s string) *string { return &s }
