// Package chi mounts the authentication hook and the account routes of a
// bantay.Bantay onto a chi router.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/textproto"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lborres/bantay"
	"github.com/lborres/bantay/core"
)

const basePath = "/api/v1"

type Adapter struct {
	router chi.Router
	b      *bantay.Bantay
}

var _ bantay.HTTPAdapter = (*Adapter)(nil)

func New(router chi.Router) *Adapter {
	return &Adapter{router: router}
}

// RegisterRoutes installs the pre-request hook and the routes. chi requires
// middlewares before routes, so the router must not have routes yet.
func (a *Adapter) RegisterRoutes(b *bantay.Bantay) error {
	a.b = b
	r := a.router
	r.Use(chimw.StripSlashes)
	r.Use(a.RequireAuth)

	r.Route(basePath, func(r chi.Router) {
		// Public routes
		r.Get("/status", a.status)
		r.Get("/unauthorized", a.unauthorized)
		r.Get("/forbidden", a.forbidden)
		r.Post("/auth_session/login", a.login)

		// Protected routes
		r.Get("/stats", a.stats)
		r.Delete("/auth_session/logout", a.logout)
		r.Get("/users", a.listUsers)
		r.Get("/users/me", a.me)
		r.Get("/users/{id}", a.getUser)
		r.Post("/users", a.createUser)
		r.Put("/users/{id}", a.updateUser)
		r.Delete("/users/{id}", a.deleteUser)
	})

	r.Get("/profile", a.profile)
	r.Post("/reset_password", a.resetToken)
	r.Put("/reset_password", a.updatePassword)

	return nil
}

// request exposes an *http.Request as a core.Request
type request struct {
	r *http.Request
}

func (req request) Path() (string, bool) {
	return req.r.URL.Path, true
}

func (req request) Header(name string) (string, bool) {
	values, ok := req.r.Header[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (req request) Cookie(name string) (string, bool) {
	c, err := req.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

// RequireAuth rejects requests the authenticator refuses and injects the
// resolved user into the request context.
func (a *Adapter) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.b.Authenticate(r.Context(), request{r})
		if err != nil {
			abort(w, core.HTTPStatus(err))
			return
		}

		ctx := core.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) *core.User {
	return core.UserFromContext(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// abort answers with the bare status text
func abort(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
}

// handleError writes err with the status it maps to
func handleError(w http.ResponseWriter, err error) {
	writeJSON(w, core.HTTPStatus(err), map[string]string{"error": err.Error()})
}
