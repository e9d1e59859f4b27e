package handlers

import (
	"net/http"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CreateTodoPayload struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

func (CreateTodoPayload) bindingError(fe validator.FieldError) *apperr.Error {
	return titleError(fe)
}

// UpdateTodoPayload carries only the fields present in the body; see models.TodoPatch.
type UpdateTodoPayload struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (UpdateTodoPayload) bindingError(fe validator.FieldError) *apperr.Error {
	return titleError(fe)
}

func (p UpdateTodoPayload) patch() models.TodoPatch {
	return models.TodoPatch{Title: p.Title, Description: p.Description, IsCompleted: p.IsCompleted}
}

func titleError(fe validator.FieldError) *apperr.Error {
	if fe.Tag() == "max" {
		return apperr.BadRequest(services.MsgTitleTooLong)
	}
	return apperr.BadRequest(services.MsgTitleRequired)
}

// TodoHandler serves /api/todos. Every route runs behind auth.AuthMiddleware.
type TodoHandler struct {
	svc *services.TodoService
}

func NewTodoHandler(svc *services.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

func (h *TodoHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	todos, err := h.svc.List(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var payload CreateTodoPayload
	if !bindJSON(c, &payload) {
		return
	}
	todo, err := h.svc.Create(c.Request.Context(), user.ID, payload.Title, payload.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}
	todo, err := h.svc.Get(c.Request.Context(), id, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Update aplica apenas os campos presentes no corpo.
func (h *TodoHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}
	var payload UpdateTodoPayload
	if !bindJSON(c, &payload) {
		return
	}
	todo, err := h.svc.Update(c.Request.Context(), id, user.ID, payload.patch())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := todoID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, user.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: services.MsgTodoRemoved})
}
