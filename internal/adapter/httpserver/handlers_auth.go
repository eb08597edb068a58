package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tasklists/internal/domain"
	apperrors "github.com/pscheid92/tasklists/internal/platform/errors"
)

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Surname:    u.Surname,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func (s *Server) registerAuthRoutes(csrf echo.MiddlewareFunc) {
	limiter := newRateLimiter(s.config.AuthRateLimit, s.config.AuthRateBurst)

	auth := s.echo.Group("/auth")
	auth.POST("/register", s.handleRegister, limiter)
	auth.POST("/signup", s.handleRegister, limiter)
	auth.POST("/login", s.handleLogin, limiter)
	auth.POST("/logout", s.handleLogout, csrf, s.requireAuth)
	auth.GET("", s.handleMe, s.requireAuth)
	auth.GET("/csrf", s.handleCSRFToken, s.setupCSRFMiddleware(nil))
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}

	session, err := s.app.Register(c.Request().Context(), domain.RegisterRequest{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return domainError(err)
	}

	return s.respondWithSession(c, http.StatusCreated, session)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}

	session, err := s.app.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return domainError(err)
	}

	return s.respondWithSession(c, http.StatusOK, session)
}

func (s *Server) respondWithSession(c echo.Context, status int, session *domain.Session) error {
	if err := s.saveSession(c, session.Token); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}
	if err := c.JSON(status, tokenResponse{Token: session.Token, ExpiresAt: session.ExpiresAt}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	claims, _ := c.Get(ctxKeyClaims).(*domain.Claims)
	if err := s.app.Logout(c.Request().Context(), claims); err != nil {
		return apperrors.InternalError("failed to revoke token", err)
	}

	s.clearSession(c)

	if err := c.JSON(http.StatusOK, map[string]string{"message": "Logged out"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMe(c echo.Context) error {
	user, ok := c.Get(ctxKeyUser).(*domain.User)
	if !ok {
		return apperrors.UnauthorizedError(domain.ErrUnauthorized.Error())
	}

	if err := c.JSON(http.StatusOK, map[string]any{"user": newUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleCSRFToken hands cookie-based clients the token they must echo in
// the X-CSRF-Token header on mutating requests.
func (s *Server) handleCSRFToken(c echo.Context) error {
	token, _ := c.Get(csrfContextKey).(string)
	if err := c.JSON(http.StatusOK, map[string]string{"csrf_token": token}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ctxKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.UnauthorizedError(domain.ErrUnauthorized.Error())
	}
	return userID, nil
}
