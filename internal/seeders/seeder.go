// Package seeders popula dados iniciais usados pelo comando de setup.
package seeders

import (
	"context"
	"fmt"

	"todoapi/backend/internal/models"
	"todoapi/backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TodoData define uma tarefa de exemplo.
type TodoData struct {
	Title       string
	Description string
	IsCompleted bool
}

// sampleTodos retorna as tarefas de exemplo criadas para o primeiro usuário.
func sampleTodos() []TodoData {
	return []TodoData{
		{Title: "Welcome to your todo list", Description: "Mark this item as done once you have looked around."},
		{Title: "Create your first todo", Description: "Use the form at the top of the list."},
		{Title: "Reset your password", Description: "Try the 'Forgot password' link; the reset link is printed in the server log."},
		{Title: "Finish setup", IsCompleted: true},
	}
}

// SeedSampleTodos cria as tarefas de exemplo para userID. Se o usuário já tiver
// tarefas, nada é criado e o retorno é 0.
func SeedSampleTodos(ctx context.Context, todos repository.TodoRepository, userID uuid.UUID, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("SeedSampleTodos")

	existing, err := todos.ListByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing todos: %w", err)
	}
	if len(existing) > 0 {
		log.Info("User already has todos, skipping sample data", zap.Int("count", len(existing)))
		return 0, nil
	}

	created := 0
	for _, data := range sampleTodos() {
		todo := &models.Todo{
			UserID:      userID,
			Title:       data.Title,
			Description: data.Description,
			IsCompleted: data.IsCompleted,
		}
		if err := todos.Create(ctx, todo); err != nil {
			return created, fmt.Errorf("failed to seed todo %q: %w", data.Title, err)
		}
		created++
	}
	log.Info("Sample todos seeded", zap.Int("count", created))
	return created, nil
}
