package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/tasklists/internal/adapter/metrics"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/platform/config"
)

type appService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Authenticate(ctx context.Context, token string) (*domain.User, *domain.Claims, error)
	Logout(ctx context.Context, claims *domain.Claims) error

	CreateList(ctx context.Context, userID uuid.UUID, name, description string) (*domain.List, error)
	ListLists(ctx context.Context, userID uuid.UUID) ([]domain.List, error)
	GetList(ctx context.Context, userID uuid.UUID, ref string) (*domain.List, error)
	UpdateList(ctx context.Context, userID, listID uuid.UUID, update domain.ListUpdate) (*domain.List, error)
	UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) ([]domain.List, error)
	DeleteList(ctx context.Context, userID, listID uuid.UUID) error

	CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	sessionStore *sessions.CookieStore
	healthChecks []HealthCheck

	registry *prometheus.Registry
	metrics  *metrics.Set

	clock     clockwork.Clock
	startTime time.Time
}

// Option customises a Server at construction.
type Option func(*Server)

// WithMetrics exposes /metrics from reg and records HTTP and error metrics into m.
func WithMetrics(reg *prometheus.Registry, m *metrics.Set) Option {
	return func(s *Server) {
		s.registry = reg
		s.metrics = m
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: setupSessionStore(cfg),
		healthChecks: healthChecks,
		clock:        clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.startTime = srv.clock.Now()

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets the server be driven by httptest without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Session keys
const (
	sessionName     = "auth"
	sessionKeyToken = "token"
)

func setupSessionStore(cfg *config.Config) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}

func (s *Server) saveSession(c echo.Context, token string) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyToken] = token
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// clearSession expires the auth cookie. Failures are logged only; the
// caller has already decided the outcome of the request.
func (s *Server) clearSession(c echo.Context) {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	delete(session.Values, sessionKeyToken)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear session", "error", err)
	}
}

// sessionToken returns the token stored in the auth cookie, or "" when
// the cookie is absent or fails verification.
func (s *Server) sessionToken(c echo.Context) string {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionKeyToken].(string)
	return token
}
