package churchsite

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/towngreen/churchsite/api"
)

// The admin's bearer token lives in a signed cookie so the browser never
// sees it in script-readable storage.
const (
	adminCookie = "admin_session"
	tokenKey    = "token"
	userKey     = "username"
	sessionTTL  = 12 * 60 * 60
)

func (a *App) newSessionStore() sessions.Store {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionTTL,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// adminSession loads the cookie session; a tampered or stale cookie yields a
// fresh empty one.
func adminSession(c echo.Context) (*sessions.Session, error) {
	return session.Get(adminCookie, c)
}

// AdminToken returns the bearer token of the signed-in admin, or "".
func AdminToken(c echo.Context) string {
	sess, err := adminSession(c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

// AdminName is the username recorded at sign-in.
func AdminName(c echo.Context) string {
	sess, err := adminSession(c)
	if err != nil {
		return ""
	}
	name, _ := sess.Values[userKey].(string)
	return name
}

// IsAdmin reports whether the request carries an admin token.
func IsAdmin(c echo.Context) bool { return AdminToken(c) != "" }

func setAdminSession(c echo.Context, s api.Session) error {
	sess, err := adminSession(c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = sessionTTL
	sess.Values[tokenKey] = s.Token
	sess.Values[userKey] = s.User.Username
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := adminSession(c)
	if err != nil {
		return err
	}
	clear(sess.Values)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// requireAdmin sends visitors without a session to the login page. htmx
// requests get an HX-Redirect so the whole page navigates.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsAdmin(c) {
			return next(c)
		}
		if isHTMX(c) {
			c.Response().Header().Set("HX-Redirect", "/admin/")
			return c.NoContent(http.StatusOK)
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
}

// client is the API client acting for the current request: authenticated
// for admins, anonymous otherwise.
func (a *App) client(c echo.Context) *api.Client {
	token := AdminToken(c)
	if token == "" {
		return a.API
	}
	return a.API.WithToken(token)
}

// CsrfToken is the token the CSRF middleware issued for this request.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
