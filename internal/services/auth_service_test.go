package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/notifications"
	"todoapi/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type failingNotifier struct{ err error }

func (f failingNotifier) Send(context.Context, notifications.Message) error { return f.err }

type authFixture struct {
	svc      *AuthService
	users    repository.UserRepository
	notifier *notifications.LogNotifier
	tokens   *auth.TokenIssuer
	hasher   *auth.PasswordHasher
	clock    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := auth.NewTokenIssuer("service_test_secret", time.Hour)
	require.NoError(t, err)

	f := &authFixture{
		users:    repository.NewMemoryStore().Users(),
		notifier: notifications.NewLogNotifier(nil),
		tokens:   tokens,
		hasher:   auth.NewPasswordHasher(bcrypt.MinCost),
		clock:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(f.users, f.hasher, tokens, f.notifier,
		AuthServiceConfig{ResetTTL: 10 * time.Minute, ClientURL: "http://localhost:3000/"}, nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

// resetSecret pulls the raw secret out of the last delivered reset link.
func (f *authFixture) resetSecret(t *testing.T) string {
	t.Helper()
	msg, ok := f.notifier.Last()
	require.True(t, ok, "no reset message was delivered")
	const marker = "/reset-password/"
	idx := strings.Index(msg.BodyText, marker)
	require.GreaterOrEqual(t, idx, 0)
	return strings.Fields(msg.BodyText[idx+len(marker):])[0]
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "  Ann@X.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.Name)
	assert.Equal(t, "ann@x.com", resp.Email)

	userID, err := f.tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, userID)

	stored, err := f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, f.hasher.Verify("secret1", stored.PasswordHash))
}

func TestRegister_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "Ann 2", Email: "ANN@x.com", Password: "secret2"})
	assertKind(t, err, apperr.KindConflict, MsgUserExists)
	appErr, _ := apperr.As(err)
	assert.Equal(t, 400, appErr.Status())
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "ann@x.com", Password: "secret1"},
		{Name: "Ann", Email: "", Password: "secret1"},
		{Name: "   ", Email: "ann@x.com", Password: "secret1"},
		{Name: "Ann", Email: "   ", Password: "secret1"},
		{Name: "Ann", Email: "ann@x.com", Password: ""},
	}
	for _, in := range cases {
		_, err := f.svc.Register(ctx, in)
		assertKind(t, err, apperr.KindBadRequest, MsgInvalidUserData)
	}
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	f := newAuthFixture(t)

	// 72 runes but 144 bytes.
	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@x.com", Password: strings.Repeat("é", 72)})
	assertKind(t, err, apperr.KindBadRequest, MsgPasswordTooLong)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = f.svc.Login(ctx, "ann@x.com", "wrong")
	assertKind(t, err, apperr.KindUnauthorized, MsgInvalidCredentials)

	_, err = f.svc.Login(ctx, "bob@x.com", "secret1")
	assertKind(t, err, apperr.KindUnauthorized, MsgInvalidCredentials)

	_, err = f.svc.Login(ctx, " ANN@x.com", "secret1")
	assert.NoError(t, err, "login normalizes the email like registration does")
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.RequestReset(context.Background(), "nobody@x.com")
	assertKind(t, err, apperr.KindNotFound, MsgNoUserWithEmail)
	_, sent := f.notifier.Last()
	assert.False(t, sent)
}

func TestResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	msg, _ := f.notifier.Last()
	assert.Equal(t, "ann@x.com", msg.To)
	assert.Contains(t, msg.BodyText, "http://localhost:3000/reset-password/")
	secret := f.resetSecret(t)

	stored, err := f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, secret, *stored.ResetPasswordToken, "only the hash is persisted")
	assert.Equal(t, f.clock.Add(10*time.Minute), *stored.ResetPasswordExpire)

	resp, err := f.svc.ConsumeReset(ctx, secret, "newpass123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.ID)
	assert.NotEmpty(t, resp.Token)

	stored, err = f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpire)

	_, err = f.svc.Login(ctx, "ann@x.com", "secret1")
	assertKind(t, err, apperr.KindUnauthorized, MsgInvalidCredentials)
	_, err = f.svc.Login(ctx, "ann@x.com", "newpass123")
	assert.NoError(t, err)

	// Single use.
	_, err = f.svc.ConsumeReset(ctx, secret, "another123")
	assertKind(t, err, apperr.KindBadRequest, MsgInvalidResetToken)
}

func TestConsumeReset_Expired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	secret := f.resetSecret(t)

	f.clock = f.clock.Add(10*time.Minute + time.Second)
	_, err = f.svc.ConsumeReset(ctx, secret, "newpass123")
	assertKind(t, err, apperr.KindBadRequest, MsgInvalidResetToken)

	_, err = f.svc.Login(ctx, "ann@x.com", "secret1")
	assert.NoError(t, err, "an expired reset leaves the password untouched")
}

func TestRequestReset_OverwritesPreviousToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	first := f.resetSecret(t)
	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	second := f.resetSecret(t)
	require.NotEqual(t, first, second)

	_, err = f.svc.ConsumeReset(ctx, first, "newpass123")
	assertKind(t, err, apperr.KindBadRequest, MsgInvalidResetToken)
	_, err = f.svc.ConsumeReset(ctx, second, "newpass123")
	assert.NoError(t, err)
}

// racingUsers runs onFound once, right after a reset token lookup succeeds.
type racingUsers struct {
	repository.UserRepository
	onFound func()
}

func (r *racingUsers) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	user, err := r.UserRepository.FindByResetToken(ctx, tokenHash, now)
	if err == nil && r.onFound != nil {
		run := r.onFound
		r.onFound = nil
		run()
	}
	return user, err
}

func TestConsumeReset_LosingConcurrentRequestFails(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	secret := f.resetSecret(t)

	racing := &racingUsers{UserRepository: f.users}
	f.svc.users = racing
	racing.onFound = func() {
		_, winnerErr := f.svc.ConsumeReset(ctx, secret, "winner123")
		require.NoError(t, winnerErr)
	}

	_, err = f.svc.ConsumeReset(ctx, secret, "loser1234")
	assertKind(t, err, apperr.KindBadRequest, MsgInvalidResetToken)

	_, err = f.svc.Login(ctx, "ann@x.com", "winner123")
	assert.NoError(t, err)
	_, err = f.svc.Login(ctx, "ann@x.com", "loser1234")
	assertKind(t, err, apperr.KindUnauthorized, MsgInvalidCredentials)
}

func TestConsumeReset_ParallelRequestsSpendTokenOnce(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.RequestReset(ctx, "ann@x.com"))
	secret := f.resetSecret(t)

	const attempts = 6
	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ConsumeReset(ctx, secret, "newpass123"); err == nil {
				succeeded.Add(1)
			} else {
				assert.True(t, apperr.IsKind(err, apperr.KindBadRequest), "unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), succeeded.Load())
}

func TestRequestReset_DeliveryFailureClearsToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)

	f.svc.notifier = failingNotifier{err: errors.New("smtp down")}
	err = f.svc.RequestReset(ctx, "ann@x.com")
	assertKind(t, err, apperr.KindInternal, MsgEmailNotSent)

	stored, err := f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpire)
}
