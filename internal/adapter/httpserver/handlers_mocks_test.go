package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/platform/config"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockAppService struct {
	registerFn         func(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error)
	loginFn            func(ctx context.Context, email, password string) (*domain.Session, error)
	authenticateFn     func(ctx context.Context, token string) (*domain.User, *domain.Claims, error)
	logoutFn           func(ctx context.Context, claims *domain.Claims) error
	createListFn       func(ctx context.Context, userID uuid.UUID, name, description string) (*domain.List, error)
	listListsFn        func(ctx context.Context, userID uuid.UUID) ([]domain.List, error)
	getListFn          func(ctx context.Context, userID uuid.UUID, ref string) (*domain.List, error)
	updateListFn       func(ctx context.Context, userID, listID uuid.UUID, update domain.ListUpdate) (*domain.List, error)
	updatePrioritiesFn func(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) ([]domain.List, error)
	deleteListFn       func(ctx context.Context, userID, listID uuid.UUID) error
	createTaskFn       func(ctx context.Context, task domain.NewTask) (*domain.Task, error)
	listTasksFn        func(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	updateTaskFn       func(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	deleteTaskFn       func(ctx context.Context, userID, taskID uuid.UUID) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Claims, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return nil, nil, domain.ErrUnauthorized
}

func (m *mockAppService) Logout(ctx context.Context, claims *domain.Claims) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, claims)
	}
	return nil
}

func (m *mockAppService) CreateList(ctx context.Context, userID uuid.UUID, name, description string) (*domain.List, error) {
	if m.createListFn != nil {
		return m.createListFn(ctx, userID, name, description)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListLists(ctx context.Context, userID uuid.UUID) ([]domain.List, error) {
	if m.listListsFn != nil {
		return m.listListsFn(ctx, userID)
	}
	return []domain.List{}, nil
}

func (m *mockAppService) GetList(ctx context.Context, userID uuid.UUID, ref string) (*domain.List, error) {
	if m.getListFn != nil {
		return m.getListFn(ctx, userID, ref)
	}
	return nil, domain.ErrListNotFound
}

func (m *mockAppService) UpdateList(ctx context.Context, userID, listID uuid.UUID, update domain.ListUpdate) (*domain.List, error) {
	if m.updateListFn != nil {
		return m.updateListFn(ctx, userID, listID, update)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) UpdatePriorities(ctx context.Context, userID uuid.UUID, updates []domain.PriorityUpdate) ([]domain.List, error) {
	if m.updatePrioritiesFn != nil {
		return m.updatePrioritiesFn(ctx, userID, updates)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) DeleteList(ctx context.Context, userID, listID uuid.UUID) error {
	if m.deleteListFn != nil {
		return m.deleteListFn(ctx, userID, listID)
	}
	return nil
}

func (m *mockAppService) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, task)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListTasks(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, userID)
	}
	return []domain.Task{}, nil
}

func (m *mockAppService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, userID, taskID, patch)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, userID, taskID)
	}
	return nil
}

// --- Test helpers ---

const testToken = "valid-token"

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "test",
		Port:          "0",
		SessionSecret: "test-secret-key-32-bytes-long!!!",
		SessionMaxAge: time.Hour,
		TokenTTL:      24 * time.Hour,
		AuthRateLimit: 100,
		AuthRateBurst: 100,
	}
}

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	store.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	clock := clockwork.NewFakeClockAt(testNow)
	srv := &Server{
		echo:         echo.New(),
		config:       testConfig(),
		app:          app,
		sessionStore: store,
		clock:        clock,
		startTime:    clock.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withConfig(mutate func(*config.Config)) func(*Server) {
	return func(s *Server) {
		mutate(s.config)
	}
}

// authenticatedAs returns an app mock whose Authenticate accepts testToken
// for user.
func authenticatedAs(m *mockAppService, user domain.User) *mockAppService {
	m.authenticateFn = func(_ context.Context, token string) (*domain.User, *domain.Claims, error) {
		if token != testToken {
			return nil, nil, domain.ErrUnauthorized
		}
		return &user, &domain.Claims{UserID: user.ID, TokenID: "jti-1", ExpiresAt: testNow.Add(time.Hour)}, nil
	}
	return m
}

func testUser() domain.User {
	return domain.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		Name:      "Ada",
		Surname:   "Lovelace",
		CreatedAt: testNow,
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware(nil)(handler)(c)
}

// doJSON sends a bearer-authenticated request through the full router.
func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+testToken)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func setSessionToken(t *testing.T, srv *Server, req *http.Request, rec *httptest.ResponseRecorder, token string) {
	t.Helper()
	session, err := srv.sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionKeyToken] = token
	require.NoError(t, session.Save(req, rec))
}

// sessionCookie produces the signed auth cookie carrying token.
func sessionCookie(t *testing.T, srv *Server, token string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	setSessionToken(t, srv, req, rec, token)
	return findCookie(t, rec.Result().Cookies(), sessionName)
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "expected cookie %q", name)
	return nil
}
