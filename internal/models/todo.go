package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo pertence a exatamente um usuário; UserID não muda após a criação.
type Todo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsCompleted bool      `gorm:"not null" json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (todo *Todo) BeforeCreate(tx *gorm.DB) (err error) {
	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	return
}

// OwnedBy reports whether userID owns the todo.
func (todo *Todo) OwnedBy(userID uuid.UUID) bool {
	return todo.UserID == userID
}

// TodoPatch carries the fields of a partial update. A nil field is left unchanged;
// a non-nil field is applied even when it holds the zero value.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

// Apply copies the present fields onto todo.
func (p TodoPatch) Apply(todo *Todo) {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.Description != nil {
		todo.Description = *p.Description
	}
	if p.IsCompleted != nil {
		todo.IsCompleted = *p.IsCompleted
	}
}
