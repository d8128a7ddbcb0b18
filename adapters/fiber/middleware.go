package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/bantay/core"
)

const userLocal = "user"

// request exposes a Fiber context as a core.Request
type request struct {
	c fiber.Ctx
}

func (r request) Path() (string, bool) {
	return r.c.Path(), true
}

func (r request) Header(name string) (string, bool) {
	v := r.c.Request().Header.Peek(name)
	if v == nil {
		return "", false
	}
	return string(v), true
}

func (r request) Cookie(name string) (string, bool) {
	v := r.c.Request().Header.Cookie(name)
	if v == nil {
		return "", false
	}
	return string(v), true
}

// requireAuth rejects requests the authenticator refuses and stores the
// resolved user for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	user, err := a.b.Authenticate(c.Context(), request{c})
	if err != nil {
		return abort(c, core.HTTPStatus(err))
	}

	c.Locals(userLocal, user)
	return c.Next()
}

func currentUser(c fiber.Ctx) *core.User {
	u, _ := c.Locals(userLocal).(*core.User)
	return u
}
