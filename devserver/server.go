// Package devserver is a small reference implementation of the church
// content service for local development and integration tests. It speaks the
// same envelope the production service does and keeps its state in SQLite.
package devserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config configures the reference backend.
type Config struct {
	Addr         string
	DatabasePath string
	UploadDir    string
	// PublicURL prefixes returned upload URLs. Empty means the request's
	// scheme and host.
	PublicURL     string
	AdminUsername string
	AdminPassword string
	TokenTTL      time.Duration
	BodyLimit     string
	Logger        *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":5000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/devserver.db"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
	if c.BodyLimit == "" {
		c.BodyLimit = "150M"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
}

// Server is the reference backend.
type Server struct {
	Config Config
	Echo   *echo.Echo
	Store  *Store

	logger *slog.Logger
}

// New opens the database and wires the routes.
func New(cfg Config) (*Server, error) {
	cfg.setDefaults()
	if cfg.AdminPassword == "" {
		return nil, errors.New("devserver: AdminPassword is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	store, err := NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Config: cfg,
		Echo:   echo.New(),
		Store:  store,
		logger: cfg.Logger,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Validator = &requestValidator{v: validator.New()}
	s.Echo.HTTPErrorHandler = s.httpErrorHandler
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the server for httptest.
func (s *Server) Handler() http.Handler { return s.Echo }

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("devserver listening", "addr", s.Config.Addr, "db", s.Config.DatabasePath)
	if err := s.Echo.Start(s.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// Close releases the database.
func (s *Server) Close() error {
	return s.Store.Close()
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

func (s *Server) setupMiddleware() {
	e := s.Echo
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				attrs = append(attrs, "err", v.Error)
			}
			s.logger.Debug("devserver request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "Cache-Control"},
	}))
}

func (s *Server) setupRoutes() {
	e := s.Echo
	e.Static("/uploads", s.Config.UploadDir)

	g := e.Group("/api", middleware.BodyLimit(s.Config.BodyLimit))
	auth := s.requireAuth

	g.GET("/health", s.handleHealth)
	g.GET("/test-db", s.handleTestDB)

	g.POST("/auth/login", s.handleLogin)
	g.POST("/auth/logout", s.handleLogout, auth)
	g.GET("/auth/check", s.handleCheck, auth)

	g.GET("/home/content", s.handleGetContent)
	g.POST("/home/content", s.handleUpsertContent, auth)
	g.POST("/home/content/delete", s.handleDeleteContent, auth)
	g.POST("/home/upload", s.handleUpload, auth)

	g.GET("/home/gallery/reactions", s.handleGalleryReactions)
	g.POST("/home/gallery/like", s.handleGalleryReact("like"))
	g.POST("/home/gallery/love", s.handleGalleryReact("love"))
	g.GET("/home/gallery/comments", s.handleGalleryComments)
	g.POST("/home/gallery/comments", s.handleGalleryAddComment)

	for _, r := range resources {
		s.registerResource(g, r)
	}
}

// reply is the response envelope.
type reply struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	URL        string `json:"url,omitempty"`
	Token      string `json:"token,omitempty"`
	User       any    `json:"user,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, reply{Success: true, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, reply{Success: false, Error: msg})
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, isStr := he.Message.(string); isStr {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		s.logger.Error("devserver handler failed", "path", c.Request().URL.Path, "err", err)
	}
	if status == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api/") {
		_ = c.String(status, "Not Found")
		return
	}
	_ = fail(c, status, msg)
}

const userKey = "devserver.user"

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if tok, found := strings.CutPrefix(h, "Bearer "); found {
		return strings.TrimSpace(tok)
	}
	return ""
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tok := bearer(c)
		if tok == "" {
			return fail(c, http.StatusUnauthorized, "Authentication required")
		}
		user, err := s.Store.TokenUser(c.Request().Context(), tok)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "Invalid or expired token")
		}
		c.Set(userKey, user)
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, reply{Success: true, Message: "Server is running"})
}

func (s *Server) handleTestDB(c echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return fail(c, http.StatusServiceUnavailable, "Database connection failed")
	}
	return c.JSON(http.StatusOK, reply{Success: true, Message: "Database connection successful"})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Username and password are required")
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.Config.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.Config.AdminPassword)) == 1
	if !userOK || !passOK {
		return c.JSON(http.StatusUnauthorized, reply{Success: false, Message: "Invalid credentials"})
	}
	tok, err := s.Store.CreateToken(c.Request().Context(), req.Username, s.Config.TokenTTL)
	if err != nil {
		return err
	}
	s.logger.Info("admin logged in", "user", req.Username)
	return c.JSON(http.StatusOK, reply{
		Success: true,
		Token:   tok,
		User:    userView{Username: req.Username, Role: "admin"},
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	if err := s.Store.DeleteToken(c.Request().Context(), bearer(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply{Success: true, Message: "Logged out"})
}

func (s *Server) handleCheck(c echo.Context) error {
	user, _ := c.Get(userKey).(string)
	return c.JSON(http.StatusOK, reply{Success: true, User: userView{Username: user, Role: "admin"}})
}

func (s *Server) uploadRoot() string {
	abs, err := filepath.Abs(s.Config.UploadDir)
	if err != nil {
		return s.Config.UploadDir
	}
	return abs
}
