package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// Requirement: the password hash and reset token never appear in JSON views.
func TestUser_JSONHidesSecrets(t *testing.T) {
	// Arrange
	token := "reset-me"
	u := &User{ID: "u1", Email: "bob@x.com", PasswordHash: "digest", ResetToken: &token}

	// Act
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	// Assert
	for _, field := range []string{"passwordHash", "PasswordHash", "resetToken", "ResetToken"} {
		if _, ok := m[field]; ok {
			t.Errorf("field %q exposed in JSON", field)
		}
	}
	if m["email"] != "bob@x.com" {
		t.Errorf("email = %v, want bob@x.com", m["email"])
	}
}

func TestUser_DisplayName(t *testing.T) {
	first, last := "Bob", "Dylan"

	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "nothing set", user: User{}, want: ""},
		{name: "email only", user: User{Email: "bob@x.com"}, want: "bob@x.com"},
		{name: "first only", user: User{Email: "bob@x.com", FirstName: &first}, want: "Bob"},
		{name: "last only", user: User{Email: "bob@x.com", LastName: &last}, want: "Dylan"},
		{name: "both", user: User{Email: "bob@x.com", FirstName: &first, LastName: &last}, want: "Bob Dylan"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.user.DisplayName(); got != test.want {
				t.Errorf("DisplayName() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestSession_Expired(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{CreatedAt: created}

	tests := []struct {
		name     string
		elapsed  time.Duration
		duration time.Duration
		want     bool
	}{
		{name: "zero duration never expires", elapsed: 1000 * time.Hour, duration: 0, want: false},
		{name: "negative duration never expires", elapsed: 1000 * time.Hour, duration: -time.Second, want: false},
		{name: "within lifetime", elapsed: 30 * time.Second, duration: time.Minute, want: false},
		{name: "exactly at boundary", elapsed: time.Minute, duration: time.Minute, want: false},
		{name: "past lifetime", elapsed: time.Minute + time.Nanosecond, duration: time.Minute, want: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := s.Expired(created.Add(test.elapsed), test.duration); got != test.want {
				t.Errorf("Expired() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestMatchesAttributes(t *testing.T) {
	token := "tok"
	u := &User{ID: "u1", Email: "bob@x.com", ResetToken: &token}

	if !MatchesAttributes(u, map[string]string{AttrEmail: "bob@x.com"}) {
		t.Error("expected email match")
	}
	if !MatchesAttributes(u, map[string]string{AttrEmail: "bob@x.com", AttrResetToken: "tok"}) {
		t.Error("expected email + reset token match")
	}
	if MatchesAttributes(u, map[string]string{AttrFirstName: ""}) {
		t.Error("unset first name must not match an empty value")
	}
	if !MatchesAttributes(u, nil) {
		t.Error("empty filter matches everything")
	}
}

func TestValidateAttributes(t *testing.T) {
	if err := ValidateAttributes(map[string]string{AttrEmail: "x", AttrID: "y"}); err != nil {
		t.Errorf("ValidateAttributes() error = %v", err)
	}
	if err := ValidateAttributes(map[string]string{"password": "x"}); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("ValidateAttributes() error = %v, want ErrUnknownAttribute", err)
	}
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMode
		wantErr bool
	}{
		{in: "", want: AuthModeNone},
		{in: "none", want: AuthModeNone},
		{in: "auth", want: AuthModeAuth},
		{in: "basic_auth", want: AuthModeBasic},
		{in: " Session_Auth ", want: AuthModeSession},
		{in: "session_exp_auth", want: AuthModeSessionExp},
		{in: "session_db_auth", want: AuthModeSessionDB},
		{in: "oauth", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseAuthMode(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseAuthMode(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			}
			if test.wantErr && !errors.Is(err, ErrUnknownAuthMode) {
				t.Errorf("error = %v, want ErrUnknownAuthMode", err)
			}
			if got != test.want {
				t.Errorf("ParseAuthMode(%q) = %q, want %q", test.in, got, test.want)
			}
		})
	}
}
