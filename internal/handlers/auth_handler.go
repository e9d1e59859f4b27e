package handlers

import (
	"net/http"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Os limites de tamanho acompanham as colunas VARCHAR(255) de users.
type RegisterPayload struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (RegisterPayload) bindingError(fe validator.FieldError) *apperr.Error {
	if fe.StructField() == "Password" {
		return passwordError(fe)
	}
	return apperr.BadRequest(services.MsgInvalidUserData)
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Credenciais ausentes recebem a mesma resposta que credenciais erradas.
func (LoginPayload) bindingError(validator.FieldError) *apperr.Error {
	return apperr.Unauthorized(services.MsgInvalidCredentials)
}

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

func (ForgotPasswordPayload) bindingError(validator.FieldError) *apperr.Error {
	return apperr.BadRequest(services.MsgInvalidEmail)
}

type ResetPasswordPayload struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (ResetPasswordPayload) bindingError(fe validator.FieldError) *apperr.Error {
	return passwordError(fe)
}

func passwordError(fe validator.FieldError) *apperr.Error {
	if fe.Tag() == "max" {
		return apperr.BadRequest(services.MsgPasswordTooLong)
	}
	return apperr.BadRequest(services.MsgPasswordTooShort)
}

// AuthHandler expõe cadastro, login e o fluxo de reset de senha.
type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register lida com POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload RegisterPayload
	if !bindJSON(c, &payload) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login lida com POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload LoginPayload
	if !bindJSON(c, &payload) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ForgotPassword lida com POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var payload ForgotPasswordPayload
	if !bindJSON(c, &payload) {
		return
	}
	if err := h.svc.RequestReset(c.Request.Context(), payload.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: services.MsgResetLinkSent})
}

// ResetPassword lida com PUT /api/auth/reset-password/:token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var payload ResetPasswordPayload
	if !bindJSON(c, &payload) {
		return
	}
	resp, err := h.svc.ConsumeReset(c.Request.Context(), c.Param("token"), payload.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
