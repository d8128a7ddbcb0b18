package services

import (
	"context"
	"errors"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
)

// Authenticator is the pre-request hook deciding allow / 401 / 403
type Authenticator struct {
	extractor  core.CredentialExtractor // nil: no policy configured
	matcher    core.PathMatcher
	cookieName string
	logger     logging.Logger
}

func NewAuthenticator(extractor core.CredentialExtractor, matcher core.PathMatcher, cookieName string, opts ...Option) *Authenticator {
	o := buildOptions(opts)
	return &Authenticator{
		extractor:  extractor,
		matcher:    matcher,
		cookieName: cookieName,
		logger:     o.logger,
	}
}

// Authenticate resolves the caller and decides whether the request may
// proceed. The returned user is set even when the path is public so
// handlers can report the current user on any route. A rejected request
// returns ErrMissingCredential or ErrInvalidCredential.
func (a *Authenticator) Authenticate(ctx context.Context, req core.Request) (*core.User, error) {
	if a.extractor == nil {
		return nil, nil
	}

	user := a.CurrentUser(ctx, req)

	if !a.matcher.RequiresAuth(requestPath(req)) {
		return user, nil
	}

	_, hasHeader := core.AuthorizationHeader(req)
	_, hasCookie := sessionCookie(req, a.cookieName)
	if !hasHeader && !hasCookie {
		return nil, core.ErrMissingCredential
	}

	if user == nil {
		return nil, core.ErrInvalidCredential
	}
	return user, nil
}

// CurrentUser resolves the caller, logging store failures and treating them
// as anonymous.
func (a *Authenticator) CurrentUser(ctx context.Context, req core.Request) *core.User {
	if a.extractor == nil {
		return nil
	}

	user, err := a.extractor.CurrentUser(ctx, req)
	if err != nil {
		if errors.Is(err, core.ErrStoreFailure) {
			a.logger.Error(ctx, "store failure", "error", err)
		} else {
			a.logger.Warn(ctx, "credential resolution failed", "error", err)
		}
		return nil
	}
	return user
}

// RequiresAuth reports whether path is protected under this authenticator's
// exclusion list.
func (a *Authenticator) RequiresAuth(path *string) bool {
	return a.matcher.RequiresAuth(path)
}

func requestPath(req core.Request) *string {
	if req == nil {
		return nil
	}
	if path, ok := req.Path(); ok {
		return &path
	}
	return nil
}
