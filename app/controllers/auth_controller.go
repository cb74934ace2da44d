package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"inkwell/app/auth"
	"inkwell/app/errs"
	"inkwell/app/middleware"
	"inkwell/app/render"
	"inkwell/app/repositories"

	"github.com/rs/zerolog"
)

// AuthController handles login, logout, first-time setup and password
// changes.
type AuthController struct {
	gate     *auth.Gate
	jar      *auth.CookieJar
	renderer *render.Renderer
	content  *repositories.ContentStore
	respond  Responder
}

func NewAuthController(gate *auth.Gate, jar *auth.CookieJar, renderer *render.Renderer, content *repositories.ContentStore, logger zerolog.Logger) *AuthController {
	return &AuthController{
		gate:     gate,
		jar:      jar,
		renderer: renderer,
		content:  content,
		respond:  NewResponder(logger.With().Str("handlerName", "auth").Logger()),
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Current  string `json:"current"`
	Remember bool   `json:"remember"`
}

// readCredentials decodes a JSON body for API requests and the form
// otherwise.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if middleware.IsAPI(r) {
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			return c, errs.NewInvalidJSONError(err)
		}
		return c, nil
	}
	if err := r.ParseForm(); err != nil {
		return c, errs.NewBadRequestError("failed to parse form")
	}
	c.Username = r.PostFormValue("username")
	c.Password = r.PostFormValue("password")
	c.Confirm = r.PostFormValue("confirm")
	c.Current = r.PostFormValue("current")
	c.Remember = r.PostFormValue("remember") == "yes"
	return c, nil
}

func (c *AuthController) admin(w http.ResponseWriter, r *http.Request, status int, name string, view any) {
	html, err := c.renderer.Admin(name, c.content.Load(r.Context()), view)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.respond.WriteHTML(w, status, html)
}

// authMessage is the form error shown for a failed auth operation.
func authMessage(err error) string {
	var lockout *auth.LockoutError
	switch {
	case errors.As(err, &lockout):
		return fmt.Sprintf("登录尝试次数过多，请 %d 分钟后再试", lockout.Minutes())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "用户名或密码错误"
	case errors.Is(err, auth.ErrEmptyUsername):
		return "用户名不能为空"
	case errors.Is(err, auth.ErrWeakPassword):
		return "密码至少 8 位，且必须包含字母和数字"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "两次输入的密码不一致"
	default:
		return errorText(err)
	}
}

func (c *AuthController) configured(w http.ResponseWriter, r *http.Request) (bool, bool) {
	ok, err := c.gate.IsConfigured(r.Context())
	if err != nil {
		c.respond.WriteError(w, r, err)
		return false, false
	}
	return ok, true
}

// LoginPage shows the login form, or the setup form before an account
// exists.
func (c *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	configured, ok := c.configured(w, r)
	if !ok {
		return
	}
	if !configured {
		http.Redirect(w, r, "/admin/setup", http.StatusSeeOther)
		return
	}
	if id, err := c.jar.SessionID(r); err == nil {
		if _, err := c.gate.Verify(r.Context(), id); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
	}
	c.admin(w, r, http.StatusOK, "login", render.LoginView{})
}

// Login checks the credentials and sets the session cookie. Locked-out
// attempts get 429 and bad credentials 401.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}

	session, err := c.gate.Login(r.Context(), creds.Username, creds.Password, creds.Remember)
	if err != nil {
		if middleware.IsAPI(r) {
			c.respond.WriteError(w, r, err)
			return
		}
		if errors.Is(err, auth.ErrNotConfigured) {
			http.Redirect(w, r, "/admin/setup", http.StatusSeeOther)
			return
		}
		view := render.LoginView{Username: creds.Username, Remember: creds.Remember, Error: authMessage(err)}
		c.admin(w, r, toApiErr(err).StatusCode, "login", view)
		return
	}

	token, err := c.jar.Set(w, session)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	if middleware.IsAPI(r) {
		c.respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"token":    token,
			"username": session.Username,
			"expires":  session.ExpiresAt(),
		})
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout ends the session and clears the cookie.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.gate.Logout(r.Context()); err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	c.jar.Clear(w)
	if middleware.IsAPI(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SetupPage shows the first-time setup form while no account exists.
func (c *AuthController) SetupPage(w http.ResponseWriter, r *http.Request) {
	configured, ok := c.configured(w, r)
	if !ok {
		return
	}
	if configured {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	c.admin(w, r, http.StatusOK, "setup", render.SetupView{})
}

// Setup creates the admin account.
func (c *AuthController) Setup(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	err = c.gate.Setup(r.Context(), creds.Username, creds.Password, creds.Confirm)
	if middleware.IsAPI(r) {
		if err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		c.respond.WriteJSON(w, http.StatusCreated, map[string]string{"username": creds.Username})
		return
	}
	if errors.Is(err, auth.ErrAlreadyConfigured) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		c.admin(w, r, toApiErr(err).StatusCode, "setup", render.SetupView{Username: creds.Username, Error: authMessage(err)})
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// PasswordPage shows the change password form.
func (c *AuthController) PasswordPage(w http.ResponseWriter, r *http.Request) {
	c.admin(w, r, http.StatusOK, "password", render.PasswordView{})
}

// ChangePassword replaces the password after checking the current one.
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		c.respond.WriteError(w, r, err)
		return
	}
	err = c.gate.ChangePassword(r.Context(), creds.Current, creds.Password, creds.Confirm)
	if middleware.IsAPI(r) {
		if err != nil {
			c.respond.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		msg := authMessage(err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			msg = "当前密码错误"
		}
		c.admin(w, r, toApiErr(err).StatusCode, "password", render.PasswordView{Error: msg})
		return
	}
	c.admin(w, r, http.StatusOK, "password", render.PasswordView{Flash: "密码已修改"})
}

// Deny answers requests without a valid session: 401 for the API, a
// redirect to the login page otherwise.
func (c *AuthController) Deny(w http.ResponseWriter, r *http.Request, err error) {
	if middleware.IsAPI(r) {
		c.respond.WriteError(w, r, errs.NewUnauthorizedError("login required"))
		return
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
