// Package repository persists users and todos. Postgres (gorm) backs production;
// the memory implementation backs tests and DB_DRIVER=memory.
package repository

import (
	"context"
	"errors"
	"time"

	"todoapi/backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// FindByID omits the password hash.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByResetToken returns the user whose reset token hash matches and whose expiry is after now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Update writes name, email, password hash and both reset fields.
	Update(ctx context.Context, user *models.User) error
	// CompleteReset stores user's new password hash and clears the reset pair, but only
	// while tokenHash is still stored and unexpired at now. Otherwise it returns ErrNotFound,
	// so a reset secret can be spent once even under concurrent requests.
	CompleteReset(ctx context.Context, user *models.User, tokenHash string, now time.Time) error
}

type TodoRepository interface {
	// ListByOwner returns the owner's todos, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	// Update writes title, description and completion.
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrorLogRepository persists unexpected API failures.
type ErrorLogRepository interface {
	Record(ctx context.Context, entry *models.ErrorLog) error
}
