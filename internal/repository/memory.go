package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"todoapi/backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps users and todos in process memory. It mirrors the postgres
// repositories: unique emails, hash-less FindByID, hard deletes.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
	todos map[uuid.UUID]models.Todo
	logs  []models.ErrorLog
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]models.User),
		todos: make(map[uuid.UUID]models.Todo),
		now:   time.Now,
	}
}

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Todos returns a TodoRepository view of the store.
func (s *MemoryStore) Todos() TodoRepository { return memoryTodos{s} }

// ErrorLogs returns an ErrorLogRepository view of the store.
func (s *MemoryStore) ErrorLogs() ErrorLogRepository { return memoryErrorLogs{s} }

// RecordedErrors returns a copy of the error logs recorded so far.
func (s *MemoryStore) RecordedErrors() []models.ErrorLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ErrorLog(nil), s.logs...)
}

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user = cloneUser(user)
	user.PasswordHash = ""
	return &user, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.Email == email {
			user = cloneUser(user)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if user.HasValidResetToken(tokenHash, now) {
			user = cloneUser(user)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r memoryUsers) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = r.s.now()
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r memoryUsers) CompleteReset(_ context.Context, user *models.User, tokenHash string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok || !stored.HasValidResetToken(tokenHash, now) {
		return ErrNotFound
	}
	stored.PasswordHash = user.PasswordHash
	stored.ClearResetToken()
	stored.UpdatedAt = r.s.now()
	r.s.users[user.ID] = stored

	user.ClearResetToken()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

type memoryTodos struct{ s *MemoryStore }

func (r memoryTodos) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	todos := []models.Todo{}
	for _, todo := range r.s.todos {
		if todo.UserID == ownerID {
			todos = append(todos, todo)
		}
	}
	sort.SliceStable(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (r memoryTodos) Create(_ context.Context, todo *models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	if _, exists := r.s.todos[todo.ID]; exists {
		return ErrDuplicate
	}
	now := r.s.now()
	todo.CreatedAt, todo.UpdatedAt = now, now
	r.s.todos[todo.ID] = *todo
	return nil
}

func (r memoryTodos) FindByID(_ context.Context, id uuid.UUID) (*models.Todo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	todo, ok := r.s.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &todo, nil
}

func (r memoryTodos) Update(_ context.Context, todo *models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.todos[todo.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = todo.Title
	stored.Description = todo.Description
	stored.IsCompleted = todo.IsCompleted
	stored.UpdatedAt = r.s.now()
	r.s.todos[todo.ID] = stored
	*todo = stored
	return nil
}

func (r memoryTodos) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.todos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.todos, id)
	return nil
}

type memoryErrorLogs struct{ s *MemoryStore }

func (r memoryErrorLogs) Record(_ context.Context, entry *models.ErrorLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.s.now()
	}
	r.s.logs = append(r.s.logs, *entry)
	return nil
}

// cloneUser copies the pointer fields so callers cannot mutate stored state.
func cloneUser(user models.User) models.User {
	if user.ResetPasswordToken != nil {
		token := *user.ResetPasswordToken
		user.ResetPasswordToken = &token
	}
	if user.ResetPasswordExpire != nil {
		expire := *user.ResetPasswordExpire
		user.ResetPasswordExpire = &expire
	}
	return user
}
