package churchsite

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return a.renderLogin(c, http.StatusOK, "", "")
	}
	ctx := c.Request().Context()
	cl := a.client(c)
	user, err := cl.Check(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			_ = clearAdminSession(c)
			return a.renderLogin(c, http.StatusOK, "", "Your session has expired. Please sign in again.")
		}
		return err
	}
	d := views.Dashboard{
		Layout:  a.adminLayout(c, "dashboard", "Admin"),
		User:    user,
		Editors: Editors(),
		Counts:  a.dashboardCounts(ctx, cl),
	}
	return Render(c, views.AdminDashboard(d))
}

func (a *App) renderLogin(c echo.Context, code int, username, msg string) error {
	return RenderStatus(c, code, views.AdminLogin(views.Login{
		Layout:   a.adminLayout(c, "", "Sign in"),
		Username: username,
		Message:  msg,
	}))
}

// dashboardCounts sizes every admin listing. A failed count is flagged on its
// tile and does not fail the page.
func (a *App) dashboardCounts(ctx context.Context, cl *api.Client) []views.Count {
	counts := []views.Count{
		{Label: "Sermons", URL: "/admin/sermons/"},
		{Label: "Programs", URL: "/admin/programs/"},
		{Label: "Prayer requests", URL: "/admin/prayers/"},
		{Label: "Messages", URL: "/admin/contact/"},
		{Label: "Membership applications", URL: "/admin/membership/"},
		{Label: "Submitted testimonies", URL: "/admin/testimonies/"},
	}
	loaders := []func(context.Context) (int, error){
		countOf(cl.Sermons().List),
		countOf(cl.Programs().List),
		countOf(cl.Prayers().List),
		countOf(cl.Contact().List),
		func(ctx context.Context) (int, error) {
			_, p, err := cl.Memberships().Page(ctx, 1, 1)
			return p.Total, err
		},
		countOf(cl.Testimonies().List),
	}

	var g errgroup.Group
	for i, load := range loaders {
		g.Go(func() error {
			n, err := load(ctx)
			if err != nil {
				a.logger.Warn("dashboard count failed", "label", counts[i].Label, "err", err)
				counts[i].Err = true
				return nil
			}
			counts[i].N = n
			return nil
		})
	}
	_ = g.Wait()
	return counts
}

func countOf[T any](list func(context.Context) ([]T, error)) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		items, err := list(ctx)
		return len(items), err
	}
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return a.renderLogin(c, http.StatusTooManyRequests, "", "Too many login attempts. Try again later.")
	}
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return a.renderLogin(c, http.StatusOK, username, "Please enter your username and password.")
	}

	s, err := a.API.Login(c.Request().Context(), username, password)
	if err != nil {
		if api.KindOf(err) == api.KindTransport {
			a.logger.Error("login unavailable", "err", err)
			return a.renderLogin(c, http.StatusBadGateway, username, "The server could not be reached. Please try again.")
		}
		a.loginLimiter.Record(ip)
		a.logger.Warn("login rejected", "username", username, "ip", ip)
		return a.renderLogin(c, http.StatusOK, username, content.Failure("Login failed", err).Message)
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c, s); err != nil {
		return err
	}
	a.logger.Info("admin signed in", "username", s.User.Username)
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if token := AdminToken(c); token != "" {
		if err := a.API.WithToken(token).Logout(c.Request().Context()); err != nil {
			// The local session ends either way.
			a.logger.Warn("logout call failed", "err", err)
		}
	}
	name := AdminName(c)
	if err := clearAdminSession(c); err != nil {
		return err
	}
	a.logger.Info("admin signed out", "username", name)
	return redirectNotice(c, "/admin/", content.Success("Signed out."))
}
