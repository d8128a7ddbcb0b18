package core

import "context"

type userKey struct{}

// WithUser attaches the resolved user to ctx. A nil user is attached as well
// so handlers can tell "checked, anonymous" from "never checked".
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext returns the user attached by WithUser, if any.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey{}).(*User)
	return u
}
