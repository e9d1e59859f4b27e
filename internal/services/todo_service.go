package services

import (
	"context"
	"errors"
	"strings"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/repository"
	"todoapi/backend/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgTitleRequired = "Please add a title"
	MsgTitleTooLong  = "Title must be at most 255 characters"
	MsgTodoNotFound  = "Todo not found"
	MsgNotTodoOwner  = "User not authorized"
	MsgTodoRemoved   = "Todo removed successfully"
)

// TodoService gives each user access to their own todos only.
type TodoService struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func NewTodoService(todos repository.TodoRepository, logger *zap.Logger) *TodoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoService{todos: todos, logger: logger.Named("todo_service")}
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]models.Todo, error) {
	todos, err := s.todos.ListByOwner(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to list todos", err)
	}
	metrics.TodoOperations.WithLabelValues("list").Inc()
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, title, description string) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.BadRequest(MsgTitleRequired)
	}

	todo := &models.Todo{UserID: userID, Title: title, Description: description}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, apperr.Internal("failed to create todo", err)
	}
	metrics.TodoOperations.WithLabelValues("create").Inc()
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Todo, error) {
	todo, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	metrics.TodoOperations.WithLabelValues("get").Inc()
	return todo, nil
}

// Update applies only the fields present in patch. A present title must not be blank.
func (s *TodoService) Update(ctx context.Context, id, userID uuid.UUID, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, apperr.BadRequest(MsgTitleRequired)
		}
		patch.Title = &trimmed
	}

	patch.Apply(todo)
	if err := s.todos.Update(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(MsgTodoNotFound)
		}
		return nil, apperr.Internal("failed to update todo", err)
	}
	metrics.TodoOperations.WithLabelValues("update").Inc()
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(MsgTodoNotFound)
		}
		return apperr.Internal("failed to delete todo", err)
	}
	s.logger.Debug("todo deleted", zap.String("todo_id", id.String()), zap.String("user_id", userID.String()))
	metrics.TodoOperations.WithLabelValues("delete").Inc()
	return nil
}

// owned loads a todo and checks that userID owns it: 404 before 403.
func (s *TodoService) owned(ctx context.Context, id, userID uuid.UUID) (*models.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(MsgTodoNotFound)
		}
		return nil, apperr.Internal("failed to load todo", err)
	}
	if !todo.OwnedBy(userID) {
		return nil, apperr.Forbidden(MsgNotTodoOwner)
	}
	return todo, nil
}
