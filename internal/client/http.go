package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/platform/retry"
	"github.com/pscheid92/tasklists/internal/platform/version"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response. Message is the server's "error" field.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// HTTPClient implements API over HTTP with bearer authentication.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	policy     retry.Policy
	userAgent  string
}

type Option func(*HTTPClient)

func WithToken(token string) Option {
	return func(c *HTTPClient) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithRetryPolicy overrides the backoff used for GET requests.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *HTTPClient) {
		c.policy = p
	}
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		policy:     retry.DefaultPolicy,
		userAgent:  version.UserAgent("cli"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after login.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*Token, error) {
	var tok Token
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*Token, error) {
	body := map[string]string{"email": email, "password": password}
	var tok Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) FetchLists(ctx context.Context) ([]domain.List, error) {
	var lists []domain.List
	if err := c.do(ctx, http.MethodGet, "/lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *HTTPClient) CreateList(ctx context.Context, name, description string) (*domain.List, error) {
	body := map[string]string{"name": name, "description": description}
	var list domain.List
	if err := c.do(ctx, http.MethodPost, "/lists", body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *HTTPClient) UpdateList(ctx context.Context, id uuid.UUID, patch ListPatch) (*domain.List, error) {
	var list domain.List
	if err := c.do(ctx, http.MethodPatch, "/lists/"+id.String(), patch, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *HTTPClient) UpdatePriorities(ctx context.Context, updates []domain.PriorityUpdate) ([]domain.List, error) {
	var lists []domain.List
	if err := c.do(ctx, http.MethodPatch, "/lists/priority", updates, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *HTTPClient) DeleteList(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/lists/"+id.String(), nil, nil)
}

func (c *HTTPClient) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, task NewTask) (*domain.Task, error) {
	var created domain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String(), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

// do sends one request and decodes the JSON response into out. GETs are
// retried on network errors and 5xx responses; other methods are not.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	send := func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.send(ctx, method, path, payload, out)
	}

	if method != http.MethodGet {
		_, err := send(ctx)
		return err
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.DebugContext(ctx, "Retrying API request", "path", path, "attempt", attempt, "backoff", backoff, "error", err)
	}
	_, err := retry.Do(ctx, policy, classify, send)
	return err
}

func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Temporary() {
			return retry.Retry
		}
		return retry.Stop
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return retry.Retry
	}
	return retry.Stop
}

// ErrorMessage extracts the user-facing message from err.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
