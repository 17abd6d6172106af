package churchsite_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towngreen/churchsite"
	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/devserver"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newBackend starts a content service on a temp database and returns its
// API root.
func newBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	srv, err := devserver.New(devserver.Config{
		DatabasePath:  filepath.Join(dir, "dev.db"),
		UploadDir:     filepath.Join(dir, "uploads"),
		AdminPassword: "secret",
		Logger:        quiet,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts.URL + "/api"
}

// deadBackend returns an API root nothing listens on.
func deadBackend(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()
	return ts.URL + "/api"
}

type site struct {
	t    *testing.T
	app  *churchsite.App
	url  string
	http *http.Client
	csrf string
}

func newSite(t *testing.T, apiURL string, tweak ...func(*churchsite.SiteConfig)) *site {
	t.Helper()
	cfg := churchsite.SiteConfig{
		SessionSecret: "test-session-secret",
		APIURL:        apiURL,
	}
	for _, fn := range tweak {
		fn(&cfg)
	}
	app := churchsite.New(cfg, churchsite.WithLogger(quiet))
	require.NoError(t, app.Setup())
	ts := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &site{
		t:   t,
		app: app,
		url: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *site) do(req *http.Request) (*http.Response, string) {
	s.t.Helper()
	res, err := s.http.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(s.t, err)
	return res, string(body)
}

// get fetches path and remembers the page's CSRF token.
func (s *site) get(path string) (*http.Response, string) {
	s.t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url+path, nil)
	require.NoError(s.t, err)
	res, body := s.do(req)
	if token, ok := doc(s.t, body).Find(`meta[name="csrf-token"]`).Attr("content"); ok && token != "" {
		s.csrf = token
	}
	return res, body
}

func (s *site) post(path string, form url.Values, htmx bool) (*http.Response, string) {
	s.t.Helper()
	if s.csrf == "" {
		s.get("/admin/")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("_csrf", s.csrf)
	req, err := http.NewRequest(http.MethodPost, s.url+path, strings.NewReader(form.Encode()))
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return s.do(req)
}

func (s *site) login() {
	s.t.Helper()
	s.get("/admin/")
	res, _ := s.post("/admin/login/", url.Values{"username": {"admin"}, "password": {"secret"}}, false)
	require.Equal(s.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(s.t, "/admin/", res.Header.Get("Location"))
}

func doc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return d
}

// adminAPI is a direct client of the backend for checking what the site wrote.
func adminAPI(t *testing.T, apiURL string) *api.Client {
	t.Helper()
	c, err := api.New(api.Config{BaseURL: apiURL, Logger: quiet})
	require.NoError(t, err)
	sess, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	return c.WithToken(sess.Token)
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	app := churchsite.New(churchsite.SiteConfig{APIURL: "http://127.0.0.1:1/api"}, churchsite.WithLogger(quiet))
	require.Error(t, app.Setup())
}

func TestPublicPagesRenderDefaultsWhenBackendIsDown(t *testing.T) {
	s := newSite(t, deadBackend(t))

	for _, path := range []string{"/", "/about/", "/testimonies/", "/prayers/", "/contact/", "/membership/", "/giving/", "/programs/", "/sermons/"} {
		res, body := s.get(path)
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.Contains(t, body, "Town Green Assembly", path)
	}

	_, body := s.get("/")
	d := doc(t, body)
	assert.Contains(t, d.Find("body").Text(), "Welcome to Town Green Assembly")
	assert.Contains(t, d.Find("body").Text(), "(555) 123-4567")

	_, body = s.get("/sermons/")
	assert.Contains(t, body, "Failed to load sermons")
}

func TestRobotsAndFavicon(t *testing.T) {
	s := newSite(t, deadBackend(t))

	res, body := s.get("/robots.txt")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Disallow: /admin/")
	assert.Contains(t, body, "/sitemap.xml")

	res, body = s.get("/favicon.svg")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<svg")
}

func TestUnknownPageIsNotFound(t *testing.T) {
	s := newSite(t, deadBackend(t))
	res, _ := s.get("/no-such-page/")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestPostWithoutCSRFIsForbidden(t *testing.T) {
	s := newSite(t, deadBackend(t))
	req, err := http.NewRequest(http.MethodPost, s.url+"/prayers/", strings.NewReader("request_text=hello"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, _ := s.do(req)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAdminRequiresSession(t *testing.T) {
	s := newSite(t, newBackend(t))

	res, _ := s.get("/admin/content/home/")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/", res.Header.Get("Location"))

	res, body := s.get("/admin/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, doc(t, body).Find(`form[action="/admin/login/"]`).Length())
}

func TestAdminLogin(t *testing.T) {
	s := newSite(t, newBackend(t))

	s.get("/admin/")
	res, body := s.post("/admin/login/", url.Values{"username": {"admin"}, "password": {"wrong"}}, false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Invalid credentials")

	s.login()
	res, body = s.get("/admin/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, body)
	assert.Equal(t, "Welcome, admin", strings.TrimSpace(d.Find("h1").First().Text()))
	assert.Equal(t, 6, d.Find(".tile").Length())
	assert.Equal(t, 0, d.Find(".tile-error").Length())

	res, _ = s.post("/admin/logout/", nil, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	res, _ = s.get("/admin/content/home/")
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
}

func TestAdminLoginIsRateLimited(t *testing.T) {
	s := newSite(t, newBackend(t), func(c *churchsite.SiteConfig) { c.LoginAttempts = 2 })

	s.get("/admin/")
	bad := url.Values{"username": {"admin"}, "password": {"wrong"}}
	for range 2 {
		res, _ := s.post("/admin/login/", bad, false)
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
	res, body := s.post("/admin/login/", url.Values{"username": {"admin"}, "password": {"secret"}}, false)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Contains(t, body, "Too many login attempts")
}

func TestFieldSaveShowsOnPublicPage(t *testing.T) {
	s := newSite(t, newBackend(t))
	s.login()

	res, body := s.get("/admin/content/home/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, doc(t, body).Find("#field-hero-title").Length())

	res, _ = s.post("/admin/content/home/field/hero/title/", url.Values{"value": {"Sunday Revival"}}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/admin/content/home/"))

	_, body = s.get("/")
	assert.Contains(t, body, "Sunday Revival")
	assert.NotContains(t, body, "Welcome to Town Green Assembly")

	// Deleting the entry brings the default back.
	res, _ = s.post("/admin/content/home/field/hero/title/delete/", nil, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	_, body = s.get("/")
	assert.Contains(t, body, "Welcome to Town Green Assembly")
}

func TestFieldEditOverHTMX(t *testing.T) {
	s := newSite(t, newBackend(t))
	s.login()
	s.get("/admin/content/about/")

	req, err := http.NewRequest(http.MethodGet, s.url+"/admin/content/home/field/hero/subtitle/edit/", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	res, body := s.do(req)
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, body)
	assert.Equal(t, "editing", d.Find("#field-hero-subtitle").AttrOr("data-mode", ""))
	assert.Equal(t, 1, d.Find("form.field-editor").Length())

	res, body = s.post("/admin/content/home/field/hero/subtitle/", url.Values{"value": {"All are welcome"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("HX-Trigger"), "toast")
	d = doc(t, body)
	assert.Equal(t, "display", d.Find("#field-hero-subtitle").AttrOr("data-mode", ""))
	assert.Contains(t, d.Find(".field-value").Text(), "All are welcome")
}

func TestUnknownEditorPageAndField(t *testing.T) {
	s := newSite(t, newBackend(t))
	s.login()

	res, _ := s.get("/admin/content/nope/")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = s.post("/admin/content/home/field/hero/nope/", url.Values{"value": {"x"}}, false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestGalleryVideoAddAndRemove(t *testing.T) {
	s := newSite(t, newBackend(t))
	s.login()
	s.get("/admin/content/home/")

	res, _ := s.post("/admin/content/home/field/gallery/items/gallery/", url.Values{"video_url": {"https://youtu.be/xyz"}}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	_, body := s.get("/")
	d := doc(t, body)
	require.Equal(t, 1, d.Find(".gallery-item").Length())
	assert.Equal(t, "https://www.youtube.com/embed/xyz", d.Find(".gallery-item iframe").AttrOr("src", ""))

	res, _ = s.post("/admin/content/home/field/gallery/items/items/0/delete/", nil, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	_, body = s.get("/")
	assert.Equal(t, 0, doc(t, body).Find(".gallery-item").Length())
}

func TestPrayerFormValidation(t *testing.T) {
	s := newSite(t, newBackend(t))
	s.get("/prayers/")

	res, body := s.post("/prayers/", url.Values{"email": {"not-an-email"}}, false)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	d := doc(t, body)
	assert.GreaterOrEqual(t, d.Find(".field-error").Length(), 2)
	assert.Equal(t, "not-an-email", d.Find(`input[name="email"]`).AttrOr("value", ""))

	// htmx only swaps 2xx, so the fragment comes back as 200.
	res, body = s.post("/prayers/", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, 1, doc(t, body).Find("#form-result .form-errors").Length())
}

func TestPrayerSubmission(t *testing.T) {
	apiURL := newBackend(t)
	s := newSite(t, apiURL)
	s.get("/prayers/")

	res, _ := s.post("/prayers/", url.Values{
		"requester_name": {"Ruth"},
		"request_text":   {"Healing for my mother"},
	}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/prayers/?sent=1", res.Header.Get("Location"))

	prayers, err := adminAPI(t, apiURL).Prayers().List(context.Background())
	require.NoError(t, err)
	require.Len(t, prayers, 1)
	assert.Equal(t, "Healing for my mother", prayers[0].RequestText)

	res, body := s.post("/contact/", url.Values{
		"name":    {"Boaz"},
		"email":   {"boaz@example.org"},
		"message": {"When is choir practice?"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("HX-Trigger"), "toast")
	assert.Equal(t, 1, doc(t, body).Find("#form-result .banner-success").Length())
}

func TestSubmissionsAreRateLimited(t *testing.T) {
	s := newSite(t, newBackend(t), func(c *churchsite.SiteConfig) { c.SubmitAttempts = 1 })
	s.get("/prayers/")

	form := url.Values{"request_text": {"Peace"}}
	res, _ := s.post("/prayers/", form, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	res, body := s.post("/prayers/", url.Values{"request_text": {"Peace"}}, false)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Contains(t, body, "Too many submissions")
}

func TestSermonLifecycle(t *testing.T) {
	apiURL := newBackend(t)
	s := newSite(t, apiURL)
	s.login()
	s.get("/admin/sermons/new/")

	res, body := s.post("/admin/sermons/", url.Values{"speaker": {"Pastor Ann"}}, false)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body, "title: This field is required.")

	res, _ = s.post("/admin/sermons/", url.Values{
		"title":       {"Grace Abounds"},
		"speaker":     {"Pastor Ann"},
		"date":        {"2026-10-11"},
		"description": {"**Amazing** grace\n\n> Romans 5:20"},
	}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.Header.Get("Location"), "/admin/sermons/"))

	_, body = s.get("/sermons/")
	assert.Contains(t, body, "Grace Abounds")

	sermons, err := adminAPI(t, apiURL).Sermons().List(context.Background())
	require.NoError(t, err)
	require.Len(t, sermons, 1)
	id := sermons[0].ID.String()

	res, body = s.get("/sermons/" + id + "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	d := doc(t, body)
	assert.Equal(t, "Amazing", d.Find(".notes strong").Text())
	assert.Contains(t, d.Find(".notes blockquote").Text(), "Romans 5:20")
	assert.Equal(t, "article", d.Find(`meta[property="og:type"]`).AttrOr("content", ""))

	res, body = s.get("/feed.xml")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<title>Grace Abounds</title>")

	_, body = s.get("/sitemap.xml")
	assert.Contains(t, body, "/sermons/"+id+"/")

	res, _ = s.post("/admin/sermons/"+id+"/delete/", nil, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	res, _ = s.get("/sermons/" + id + "/")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
