package handlers

import (
	"errors"
	"io"
	"net/http"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const MsgInvalidPayload = "Invalid request payload"

// MessageResponse é o corpo {"message": ...} usado em respostas sem recurso.
type MessageResponse struct {
	Message string `json:"message"`
}

// bindingMessenger is implemented by payloads that translate a failed binding
// rule into the message the client sees.
type bindingMessenger interface {
	bindingError(fe validator.FieldError) *apperr.Error
}

// bindJSON decodes the body into dst and runs its binding rules. An empty body is
// validated as {} so required fields get their own messages.
func bindJSON(c *gin.Context, dst any) bool {
	var err error
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		err = binding.Validator.ValidateStruct(dst)
	} else if err = c.ShouldBindJSON(dst); errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		_ = c.Error(bindError(dst, err))
		return false
	}
	return true
}

func bindError(dst any, err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if m, ok := dst.(bindingMessenger); ok {
			appErr := m.bindingError(fieldErrs[0])
			appErr.Err = err
			return appErr
		}
	}
	return &apperr.Error{Kind: apperr.KindBadRequest, Message: MsgInvalidPayload, Err: err}
}

// currentUser returns the user loaded by auth.AuthMiddleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apperr.Unauthorized(auth.MsgNoToken))
	}
	return user, ok
}

// todoID parses the :id param. A malformed id cannot name an existing todo, so it is a 404.
func todoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperr.NotFound(services.MsgTodoNotFound))
		return uuid.Nil, false
	}
	return id, true
}
