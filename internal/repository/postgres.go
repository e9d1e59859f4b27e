package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoapi/backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// userPublicColumns is every users column except password_hash.
var userPublicColumns = []string{"id", "name", "email", "reset_password_token", "reset_password_expire", "created_at", "updated_at"}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err, "failed to create user")
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Select(userPublicColumns).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translateError(err, "failed to fetch user by id")
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err, "failed to fetch user by email")
	}
	return &user, nil
}

func (r *GormUserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expire > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, translateError(err, "failed to fetch user by reset token")
	}
	return &user, nil
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users by email: %w", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(user).
		Select("name", "email", "password_hash", "reset_password_token", "reset_password_expire", "updated_at").
		Updates(user)
	if result.Error != nil {
		return translateError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) CompleteReset(ctx context.Context, user *models.User, tokenHash string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_password_token = ? AND reset_password_expire > ?", user.ID, tokenHash, now).
		Updates(map[string]any{
			"password_hash":         user.PasswordHash,
			"reset_password_token":  nil,
			"reset_password_expire": nil,
			"updated_at":            now,
		})
	if result.Error != nil {
		return translateError(result.Error, "failed to complete password reset")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	user.ClearResetToken()
	user.UpdatedAt = now
	return nil
}

type GormTodoRepository struct {
	db *gorm.DB
}

func NewGormTodoRepository(db *gorm.DB) *GormTodoRepository {
	return &GormTodoRepository{db: db}
}

func (r *GormTodoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&todos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return translateError(err, "failed to create todo")
	}
	return nil
}

func (r *GormTodoRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error; err != nil {
		return nil, translateError(err, "failed to fetch todo")
	}
	return &todo, nil
}

func (r *GormTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	result := r.db.WithContext(ctx).Model(todo).
		Select("title", "description", "is_completed", "updated_at").
		Updates(todo)
	if result.Error != nil {
		return translateError(result.Error, "failed to update todo")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Todo{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete todo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translateError maps gorm/pgx errors onto ErrNotFound and ErrDuplicate.
func translateError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", msg, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type GormErrorLogRepository struct {
	db *gorm.DB
}

func NewGormErrorLogRepository(db *gorm.DB) *GormErrorLogRepository {
	return &GormErrorLogRepository{db: db}
}

func (r *GormErrorLogRepository) Record(ctx context.Context, entry *models.ErrorLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record error log: %w", err)
	}
	return nil
}
