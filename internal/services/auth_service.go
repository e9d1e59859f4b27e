// Package services holds the account and todo use cases. Services return
// *apperr.Error values for every failure the client should see.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/notifications"
	"todoapi/backend/internal/repository"
	"todoapi/backend/pkg/metrics"

	"go.uber.org/zap"
)

// Limites de senha. bcrypt ignora tudo além de 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

const (
	MsgUserExists         = "User already exists"
	MsgInvalidUserData    = "Invalid user data"
	MsgInvalidCredentials = "Invalid email or password"
	MsgNoUserWithEmail    = "There is no user with that email"
	MsgResetLinkSent      = "Password reset link sent to email"
	MsgEmailNotSent       = "Email could not be sent"
	MsgInvalidResetToken  = "Invalid or expired token"
	MsgPasswordTooShort   = "Password must be at least 6 characters"
	MsgPasswordTooLong    = "Password must be at most 72 characters"
	MsgInvalidEmail       = "Please provide a valid email"
)

// RegisterInput são os dados de cadastro.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService implements registration, login and the password reset flow.
type AuthService struct {
	users     repository.UserRepository
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenIssuer
	notifier  notifications.Notifier
	resetTTL  time.Duration
	clientURL string
	logger    *zap.Logger
	now       func() time.Time
}

type AuthServiceConfig struct {
	ResetTTL  time.Duration
	ClientURL string
}

func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer,
	notifier notifications.Notifier, cfg AuthServiceConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		resetTTL:  cfg.ResetTTL,
		clientURL: strings.TrimSuffix(cfg.ClientURL, "/"),
		logger:    logger.Named("auth_service"),
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (resp *models.PublicUser, err error) {
	defer func() { metrics.RecordAuthEvent("register", err) }()

	name := strings.TrimSpace(in.Name)
	email := models.NormalizeEmail(in.Email)
	// O formato já foi validado no bind; aqui só sobra o caso de campos em branco.
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.BadRequest(MsgInvalidUserData)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to check existing user", err)
	}
	if exists {
		return nil, apperr.Conflict(MsgUserExists)
	}

	user := &models.User{Name: name, Email: email}
	if err := user.SetPassword(in.Password, s.hasher.Hash); err != nil {
		return nil, hashError(err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Um cadastro concorrente pode vencer a checagem acima.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(MsgUserExists)
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (resp *models.PublicUser, err error) {
	defer func() { metrics.RecordAuthEvent("login", err) }()

	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}
	return s.session(user)
}

// RequestReset stores a fresh reset token for the user and delivers the raw secret
// through the notifier. A previous unused token is overwritten.
func (s *AuthService) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { metrics.RecordAuthEvent("reset_request", err) }()

	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(MsgNoUserWithEmail)
		}
		return apperr.Internal("failed to load user", err)
	}

	raw, hashed, err := auth.GenerateResetToken()
	if err != nil {
		return apperr.Internal("failed to generate reset token", err)
	}
	user.SetResetToken(hashed, s.now().Add(s.resetTTL))
	if err := s.users.Update(ctx, user); err != nil {
		return apperr.Internal("failed to store reset token", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, raw)
	if err := s.notifier.Send(ctx, notifications.PasswordResetMessage(user.Email, resetURL)); err != nil {
		s.logger.Error("failed to deliver password reset link", zap.String("user_id", user.ID.String()), zap.Error(err))
		user.ClearResetToken()
		if rollbackErr := s.users.Update(ctx, user); rollbackErr != nil {
			s.logger.Error("failed to clear undelivered reset token", zap.String("user_id", user.ID.String()), zap.Error(rollbackErr))
		}
		return apperr.InternalPublic(MsgEmailNotSent, err)
	}
	return nil
}

// ConsumeReset sets a new password for the holder of a valid reset secret, clears
// the token and returns a fresh session.
func (s *AuthService) ConsumeReset(ctx context.Context, rawToken, newPassword string) (resp *models.PublicUser, err error) {
	defer func() { metrics.RecordAuthEvent("reset_consume", err) }()

	if rawToken == "" {
		return nil, apperr.BadRequest(MsgInvalidResetToken)
	}
	tokenHash := auth.HashResetToken(rawToken)
	now := s.now()
	user, err := s.users.FindByResetToken(ctx, tokenHash, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.BadRequest(MsgInvalidResetToken)
		}
		return nil, apperr.Internal("failed to load user by reset token", err)
	}

	if err := user.SetPassword(newPassword, s.hasher.Hash); err != nil {
		return nil, hashError(err)
	}
	// Outra requisição com o mesmo segredo pode ter vencido entre a busca e a escrita.
	if err := s.users.CompleteReset(ctx, user, tokenHash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.BadRequest(MsgInvalidResetToken)
		}
		return nil, apperr.Internal("failed to update password", err)
	}

	s.logger.Info("password reset completed", zap.String("user_id", user.ID.String()))
	return s.session(user)
}

// hashError turns a multi-byte password past bcrypt's byte limit into a 400.
func hashError(err error) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperr.BadRequest(MsgPasswordTooLong)
	}
	return apperr.Internal("failed to hash password", err)
}

func (s *AuthService) session(user *models.User) (*models.PublicUser, error) {
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to issue session token", err)
	}
	public := user.Public(token)
	return &public, nil
}
