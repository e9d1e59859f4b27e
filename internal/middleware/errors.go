package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MsgServerError é a única mensagem exposta para falhas inesperadas.
const MsgServerError = "Server Error"

const recordTimeout = 2 * time.Second

// ErrorResponse é o corpo de erro padrão da API.
type ErrorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorHandler renders the last error added with c.Error. *apperr.Error values keep
// their status and message; anything else, and every Internal kind, becomes 500
// "Server Error". Outside production the error chain is returned as "stack".
// 5xx failures, recovered panics included, are written to recorder when one is given.
func ErrorHandler(production bool, recorder repository.ErrorLogRepository, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		message := MsgServerError
		if appErr, ok := apperr.As(last.Err); ok {
			status = appErr.Status()
			message = appErr.PublicMessage(MsgServerError)
		}

		stack := fmt.Sprintf("%+v", last.Err)
		var panicErr *PanicError
		if errors.As(last.Err, &panicErr) {
			stack += "\n" + string(panicErr.Stack)
		}

		resp := ErrorResponse{Message: message}
		if !production {
			resp.Stack = stack
		}
		c.JSON(status, resp)

		if status >= http.StatusInternalServerError && recorder != nil {
			entry := &models.ErrorLog{
				Level:     models.LogLevelError,
				Message:   last.Err.Error(),
				Stack:     stack,
				Method:    c.Request.Method,
				Path:      c.Request.URL.Path,
				Timestamp: time.Now(),
			}
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), recordTimeout)
			defer cancel()
			if err := recorder.Record(ctx, entry); err != nil {
				logger.Error("CRITICAL: failed to record error log", zap.Error(err), zap.String("original_error", entry.Message))
			}
		}
	}
}

// NotFound responde 404 para rotas sem match.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperr.NotFound("Not Found - " + c.Request.URL.RequestURI()))
	}
}
