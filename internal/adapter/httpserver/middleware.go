package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tasklists/internal/adapter/metrics"
	"github.com/pscheid92/tasklists/internal/domain"
	"github.com/pscheid92/tasklists/internal/platform/correlation"
	apperrors "github.com/pscheid92/tasklists/internal/platform/errors"
)

// Context keys set by requireAuth.
const (
	ctxKeyUserID = "userID"
	ctxKeyUser   = "user"
	ctxKeyClaims = "claims"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.Header))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware(errMetrics *metrics.ErrorMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			status := 0
			var structuredErr *apperrors.Error
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				structuredErr = WrapHTTPError(httpErr)
				status = httpErr.Code
			} else {
				structuredErr = apperrors.AsStructuredError(err)
				status = structuredErr.HTTPStatus()
			}

			logError(c, structuredErr, status)
			errMetrics.Observe(string(structuredErr.Type))

			if c.Response().Committed {
				return nil
			}
			if err := c.JSON(status, structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error, status int) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", status,
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if userID := c.Get(ctxKeyUserID); userID != nil {
		attrs = append(attrs, "user_id", userID)
	}

	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeUnauthorized:
		slog.InfoContext(ctx, "Unauthorized", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Rate limit exceeded", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	case apperrors.TypeExternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// WrapHTTPError converts echo's own errors (routing, CSRF, body limit) to
// the structured error body.
func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := "internal server error"
	if httpErr.Message != nil {
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		errType = apperrors.TypeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		errType = apperrors.TypeUnauthorized
	case http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case http.StatusConflict:
		errType = apperrors.TypeConflict
	case http.StatusTooManyRequests:
		errType = apperrors.TypeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		errType = apperrors.TypeExternal
	default:
		errType = apperrors.TypeInternal
	}

	err := &apperrors.Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]any),
	}

	if httpErr.Internal != nil {
		err.Cause = httpErr.Internal
	}

	return err
}

const invalidDataMessage = "Invalid data"

func invalidData() *apperrors.Error {
	return apperrors.ValidationError(invalidDataMessage)
}

// domainError maps application sentinels to structured errors carrying
// their user-facing message. Anything else becomes an internal error.
func domainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidData):
		return invalidData()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return apperrors.UnauthorizedError(domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenRevoked):
		return apperrors.UnauthorizedError(domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.ConflictError(domain.ErrEmailTaken.Error())
	case errors.Is(err, domain.ErrNameTaken):
		return apperrors.ConflictError(domain.ErrNameTaken.Error())
	case errors.Is(err, domain.ErrSlugTaken):
		return apperrors.ConflictError(domain.ErrSlugTaken.Error())
	case errors.Is(err, domain.ErrListNotFound):
		return apperrors.NotFoundError(domain.ErrListNotFound.Error())
	case errors.Is(err, domain.ErrTaskNotFound):
		return apperrors.NotFoundError(domain.ErrTaskNotFound.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError(domain.ErrUserNotFound.Error())
	default:
		return apperrors.InternalError("internal server error", err)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireAuth resolves the caller from a bearer header or, failing that,
// the auth session cookie. A cookie carrying a rejected token is cleared.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, fromHeader := bearerToken(c.Request())
		if !fromHeader {
			token = s.sessionToken(c)
		}
		if token == "" {
			return apperrors.UnauthorizedError(domain.ErrUnauthorized.Error())
		}

		user, claims, err := s.app.Authenticate(c.Request().Context(), token)
		if err != nil {
			if !fromHeader && (errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrTokenRevoked)) {
				s.clearSession(c)
			}
			return domainError(err)
		}

		c.Set(ctxKeyUserID, user.ID)
		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyClaims, claims)
		return next(c)
	}
}
