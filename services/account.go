package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thejerf/abtime"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/crypto"
)

type RegisterInput struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// AccountService owns user registration, login and password reset
type AccountService struct {
	users     core.UserStorage
	sessions  core.SessionStore // nil when the deployment has no sessions
	passwords crypto.PasswordHandler
	throttle  *LoginThrottle // nil allows every attempt
	clock     abtime.AbstractTime
	logger    logging.Logger
}

func NewAccountService(users core.UserStorage, sessions core.SessionStore, passwords crypto.PasswordHandler, throttle *LoginThrottle, opts ...Option) *AccountService {
	o := buildOptions(opts)
	return &AccountService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		throttle:  throttle,
		clock:     o.clock,
		logger:    o.logger,
	}
}

// Register creates a user with a hashed password
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*core.User, error) {
	email := core.NormalizeEmail(in.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if in.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	// Step 1: Check if user already exists
	existing, err := s.users.FindByAttributes(ctx, map[string]string{core.AttrEmail: email})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if len(existing) > 0 {
		return nil, core.ErrUserExists
	}

	// Step 2: Hash the password
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	now := s.clock.Now().UTC()
	u := &core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// ValidLogin reports whether password matches any user with email.
func (s *AccountService) ValidLogin(ctx context.Context, email, password string) bool {
	u, err := s.verify(ctx, email, password)
	return err == nil && u != nil
}

// Login verifies credentials and opens a session. An unknown email returns
// ErrUserNotFound, a wrong password ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*core.LoginResult, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if password == "" {
		return nil, core.ErrPasswordRequired
	}
	if s.sessions == nil {
		return nil, core.ErrSessionStoreRequired
	}
	if !s.throttle.Allow(email) {
		s.logger.Warn(ctx, "login throttled", "email", email)
		return nil, core.ErrTooManyAttempts
	}

	u, err := s.verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.CreateSession(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", u.ID)
	return &core.LoginResult{User: u, SessionID: sessionID}, nil
}

func (s *AccountService) verify(ctx context.Context, email, password string) (*core.User, error) {
	candidates, err := s.users.FindByAttributes(ctx, map[string]string{core.AttrEmail: core.NormalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(candidates) == 0 {
		return nil, core.ErrUserNotFound
	}

	for _, u := range candidates {
		if ok, err := s.passwords.Verify(password, u.PasswordHash); err == nil && ok {
			return u, nil
		}
	}
	return nil, core.ErrInvalidCredentials
}

// Logout destroys the session carried by req.
func (s *AccountService) Logout(ctx context.Context, req core.Request) error {
	if s.sessions == nil || !s.sessions.DestroySession(ctx, req) {
		return core.ErrSessionNotFound
	}
	return nil
}

// Profile resolves a session id to its user. Unknown or expired sessions
// return ErrInvalidCredential.
func (s *AccountService) Profile(ctx context.Context, sessionID string) (*core.User, error) {
	if s.sessions == nil || sessionID == "" {
		return nil, core.ErrInvalidCredential
	}

	userID, err := s.sessions.UserIDForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, core.ErrInvalidCredential
	}

	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, core.ErrUserNotFound) {
		return nil, core.ErrInvalidCredential
	}
	return u, err
}

// ResetPasswordToken issues a single-use reset token for email
func (s *AccountService) ResetPasswordToken(ctx context.Context, email string) (string, error) {
	u, err := s.findOne(ctx, core.AttrEmail, core.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", core.ErrUserNotFound
	}

	token := uuid.NewString()
	u.ResetToken = &token
	u.UpdatedAt = s.clock.Now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return "", fmt.Errorf("failed to save reset token: %w", err)
	}

	s.logger.Info(ctx, "reset token issued", "user_id", u.ID)
	return token, nil
}

// UpdatePassword consumes a reset token and replaces the password hash
func (s *AccountService) UpdatePassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" {
		return core.ErrInvalidResetToken
	}
	if password == "" {
		return core.ErrPasswordRequired
	}

	u, err := s.findOne(ctx, core.AttrResetToken, resetToken)
	if err != nil {
		return err
	}
	if u == nil {
		return core.ErrInvalidResetToken
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.PasswordHash = hash
	u.ResetToken = nil
	u.UpdatedAt = s.clock.Now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info(ctx, "password updated", "user_id", u.ID)
	return nil
}

func (s *AccountService) findOne(ctx context.Context, attr, value string) (*core.User, error) {
	found, err := s.users.FindByAttributes(ctx, map[string]string{attr: value})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (s *AccountService) User(ctx context.Context, id string) (*core.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AccountService) Users(ctx context.Context) ([]*core.User, error) {
	return s.users.All(ctx)
}

func (s *AccountService) Count(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

// UpdateUser changes the names of a user; nil fields are left untouched.
func (s *AccountService) UpdateUser(ctx context.Context, id string, in UpdateInput) (*core.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = in.FirstName
	}
	if in.LastName != nil {
		u.LastName = in.LastName
	}
	u.UpdatedAt = s.clock.Now().UTC()

	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Remove(ctx, u); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	s.logger.Info(ctx, "user removed", "user_id", id)
	return nil
}
