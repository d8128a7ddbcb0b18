package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/services"
)

func (a *Adapter) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (a *Adapter) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.b.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *Adapter) unauthorized(w http.ResponseWriter, r *http.Request) {
	abort(w, http.StatusUnauthorized)
}

func (a *Adapter) forbidden(w http.ResponseWriter, r *http.Request) {
	abort(w, http.StatusForbidden)
}

// login reads form fields email and password and sets the session cookie
func (a *Adapter) login(w http.ResponseWriter, r *http.Request) {
	result, err := a.b.Accounts.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		handleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.b.CookieName(),
		Value:    result.SessionID,
		Path:     "/",
		MaxAge:   int(a.b.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, result.User)
}

func (a *Adapter) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.b.Accounts.Logout(r.Context(), request{r}); err != nil {
		handleError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: a.b.CookieName(), Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (a *Adapter) profile(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := a.b.SessionCookie(request{r})
	user, err := a.b.Accounts.Profile(r.Context(), sessionID)
	if err != nil {
		abort(w, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": user.Email})
}

func (a *Adapter) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.b.Accounts.Users(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if users == nil {
		users = []*core.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *Adapter) me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if user == nil {
		handleError(w, core.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *Adapter) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.b.Accounts.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *Adapter) createUser(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		handleError(w, core.ErrWrongFormat)
		return
	}

	user, err := a.b.Accounts.Register(r.Context(), input)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (a *Adapter) updateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		handleError(w, core.ErrWrongFormat)
		return
	}

	user, err := a.b.Accounts.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *Adapter) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.b.Accounts.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// resetToken issues a reset token; unknown emails are forbidden
func (a *Adapter) resetToken(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	token, err := a.b.Accounts.ResetPasswordToken(r.Context(), email)
	if errors.Is(err, core.ErrUserNotFound) {
		abort(w, http.StatusForbidden)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "reset_token": token})
}

func (a *Adapter) updatePassword(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	if err := a.b.Accounts.UpdatePassword(r.Context(), r.FormValue("reset_token"), r.FormValue("new_password")); err != nil {
		abort(w, http.StatusForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email, "message": "Password updated"})
}
