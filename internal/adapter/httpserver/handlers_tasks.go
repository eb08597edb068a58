package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/tasklists/internal/domain"
)

type createTaskRequest struct {
	Name        string     `json:"name"`
	Date        *time.Time `json:"date"`
	ListID      uuid.UUID  `json:"listId"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
}

type updateTaskRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	ListID      *uuid.UUID `json:"listId"`
	Tags        *[]string  `json:"tags"`
	Completed   *bool      `json:"completed"`
}

func (s *Server) registerTaskRoutes(csrf echo.MiddlewareFunc) {
	tasks := s.echo.Group("/tasks", csrf, s.requireAuth)
	tasks.GET("", s.handleListTasks)
	tasks.POST("", s.handleCreateTask)
	tasks.PATCH("/:id", s.handleUpdateTask)
	tasks.DELETE("/:id", s.handleDeleteTask)
}

func (s *Server) handleListTasks(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	tasks, err := s.app.ListTasks(c.Request().Context(), userID)
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, tasks); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCreateTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}
	if req.Date == nil {
		return invalidData()
	}

	task, err := s.app.CreateTask(c.Request().Context(), domain.NewTask{
		UserID:      userID,
		ListID:      req.ListID,
		Name:        req.Name,
		Description: req.Description,
		Date:        *req.Date,
		Tags:        req.Tags,
	})
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusCreated, task); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(domain.ErrTaskNotFound)
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return invalidData()
	}

	task, err := s.app.UpdateTask(c.Request().Context(), userID, taskID, domain.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		ListID:      req.ListID,
		Tags:        req.Tags,
		Completed:   req.Completed,
	})
	if err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, task); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(domain.ErrTaskNotFound)
	}

	if err := s.app.DeleteTask(c.Request().Context(), userID, taskID); err != nil {
		return domainError(err)
	}

	if err := c.JSON(http.StatusOK, map[string]string{"message": "Task deleted"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
