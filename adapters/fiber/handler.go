package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/services"
)

func (a *Adapter) status(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

func (a *Adapter) stats(c fiber.Ctx) error {
	stats, err := a.b.Stats(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stats)
}

func (a *Adapter) unauthorized(c fiber.Ctx) error {
	return abort(c, http.StatusUnauthorized)
}

func (a *Adapter) forbidden(c fiber.Ctx) error {
	return abort(c, http.StatusForbidden)
}

// login reads form fields email and password and sets the session cookie
func (a *Adapter) login(c fiber.Ctx) error {
	result, err := a.b.Accounts.Login(c.Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		return handleError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.b.CookieName(),
		Value:    result.SessionID,
		Path:     "/",
		MaxAge:   int(a.b.SessionTTL().Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(result.User)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	if err := a.b.Accounts.Logout(c.Context(), request{c}); err != nil {
		return handleError(c, err)
	}
	c.ClearCookie(a.b.CookieName())
	return c.JSON(fiber.Map{})
}

func (a *Adapter) profile(c fiber.Ctx) error {
	sessionID, _ := a.b.SessionCookie(request{c})
	user, err := a.b.Accounts.Profile(c.Context(), sessionID)
	if err != nil {
		return abort(c, http.StatusForbidden)
	}
	return c.JSON(fiber.Map{"email": user.Email})
}

func (a *Adapter) listUsers(c fiber.Ctx) error {
	users, err := a.b.Accounts.Users(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	if users == nil {
		users = []*core.User{}
	}
	return c.JSON(users)
}

func (a *Adapter) me(c fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return handleError(c, core.ErrUserNotFound)
	}
	return c.JSON(user)
}

func (a *Adapter) getUser(c fiber.Ctx) error {
	user, err := a.b.Accounts.User(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(user)
}

func (a *Adapter) createUser(c fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrWrongFormat)
	}

	user, err := a.b.Accounts.Register(c.Context(), input)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(user)
}

func (a *Adapter) updateUser(c fiber.Ctx) error {
	var input services.UpdateInput
	if err := c.Bind().Body(&input); err != nil {
		return handleError(c, core.ErrWrongFormat)
	}

	user, err := a.b.Accounts.UpdateUser(c.Context(), c.Params("id"), input)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(user)
}

func (a *Adapter) deleteUser(c fiber.Ctx) error {
	if err := a.b.Accounts.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{})
}

// resetToken issues a reset token; unknown emails are forbidden
func (a *Adapter) resetToken(c fiber.Ctx) error {
	email := c.FormValue("email")
	token, err := a.b.Accounts.ResetPasswordToken(c.Context(), email)
	if errors.Is(err, core.ErrUserNotFound) {
		return abort(c, http.StatusForbidden)
	}
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(fiber.Map{"email": email, "reset_token": token})
}

func (a *Adapter) updatePassword(c fiber.Ctx) error {
	email := c.FormValue("email")
	err := a.b.Accounts.UpdatePassword(c.Context(), c.FormValue("reset_token"), c.FormValue("new_password"))
	if err != nil {
		return abort(c, http.StatusForbidden)
	}
	return c.JSON(fiber.Map{"email": email, "message": "Password updated"})
}

// handleError writes err with the status it maps to
func handleError(c fiber.Ctx, err error) error {
	return c.Status(core.HTTPStatus(err)).JSON(map[string]string{
		"error": err.Error(),
	})
}

// abort answers with the bare status text, as the auth hook does
func abort(c fiber.Ctx, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"error": http.StatusText(status),
	})
}
