package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tasklists/internal/domain"
)

type createListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateListRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Archived    *bool   `json:"archived"`
}

func (s *Server) registerListRoutes(csrf echo.MiddlewareFunc) {
	lists := s.echo.Group("/lists", csrf, s.requireAuth)
	lists.GET("", s.handleListLists)
	lists.POST("", s.handleCreateList)
	lists.PATCH("/priority", s.handleUpdatePriorities)
	lists.GET("/:ref", s.handleGetList)
	lists.PATCH("/:id", s.handleUpdateList)
	lists.DELETE("/:id", s.handleDeleteList)
}

func (s *Server) handleListLists(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	lists, err := s.app.ListLists(c.Request().Context(), userID)
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, lists); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createListRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}

	list, err := s.app.CreateList(c.Request().Context(), userID, req.Name, req.Description)
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusCreated, list); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleGetList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	list, err := s.app.GetList(c.Request().Context(), userID, c.Param("ref"))
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, list); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(domain.ErrListNotFound)
	}

	var req updateListRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}

	list, err := s.app.UpdateList(c.Request().Context(), userID, listID, domain.ListUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsArchived:  req.Archived,
	})
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, list); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// handleUpdatePriorities takes a bare JSON array of {id, priority}.
func (s *Server) handleUpdatePriorities(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var updates []domain.PriorityUpdate
	if err := json.NewDecoder(c.Request().Body).Decode(&updates); err != nil {
		return invalidData()
	}

	lists, err := s.app.UpdatePriorities(c.Request().Context(), userID, updates)
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, lists); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteList(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(domain.ErrListNotFound)
	}

	if err := s.app.DeleteList(c.Request().Context(), userID, listID); err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": "List deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
