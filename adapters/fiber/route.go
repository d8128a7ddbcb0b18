// Package fiber mounts the authentication hook and the account routes of a
// bantay.Bantay onto a Fiber application.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/bantay"
)

const basePath = "/api/v1"

type Adapter struct {
	app *fiber.App
	b   *bantay.Bantay
}

var _ bantay.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

// RegisterRoutes installs the pre-request hook ahead of every route. Routes
// added to the app before this call are not protected.
func (a *Adapter) RegisterRoutes(b *bantay.Bantay) error {
	a.b = b
	a.app.Use(a.requireAuth)

	api := a.app.Group(basePath)

	// Public routes
	api.Get("/status", a.status)
	api.Get("/unauthorized", a.unauthorized)
	api.Get("/forbidden", a.forbidden)
	api.Post("/auth_session/login", a.login)

	// Protected routes
	api.Get("/stats", a.stats)
	api.Delete("/auth_session/logout", a.logout)
	api.Get("/users", a.listUsers)
	api.Get("/users/me", a.me)
	api.Get("/users/:id", a.getUser)
	api.Post("/users", a.createUser)
	api.Put("/users/:id", a.updateUser)
	api.Delete("/users/:id", a.deleteUser)

	a.app.Get("/profile", a.profile)
	a.app.Post("/reset_password", a.resetToken)
	a.app.Put("/reset_password", a.updatePassword)

	return nil
}
