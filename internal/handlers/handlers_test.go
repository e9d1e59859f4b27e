package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/middleware"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/notifications"
	"todoapi/backend/internal/repository"
	"todoapi/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type handlerEnv struct {
	router *gin.Engine
	store  *repository.MemoryStore
	user   *models.User
}

// setupHandlerEnv mounts the handlers without the auth middleware; withUser injects
// the identity the middleware would have loaded.
func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	tokens, err := auth.NewTokenIssuer("handler_test_secret", time.Hour)
	require.NoError(t, err)
	authSvc := services.NewAuthService(store.Users(), auth.NewPasswordHasher(bcrypt.MinCost), tokens,
		notifications.NewLogNotifier(nil), services.AuthServiceConfig{ResetTTL: 10 * time.Minute, ClientURL: "http://localhost:3000"}, nil)
	todoSvc := services.NewTodoService(store.Todos(), nil)

	env := &handlerEnv{store: store, user: &models.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com"}}

	r := gin.New()
	r.Use(middleware.ErrorHandler(true, nil, nil))
	authH := NewAuthHandler(authSvc)
	r.POST("/register", authH.Register)
	r.POST("/login", authH.Login)
	r.POST("/forgot-password", authH.ForgotPassword)
	r.PUT("/reset-password/:token", authH.ResetPassword)

	todoH := NewTodoHandler(todoSvc)
	withUser := func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.ContextWithUser(c.Request.Context(), env.user))
	}
	r.GET("/todos", withUser, todoH.List)
	r.POST("/todos", withUser, todoH.Create)
	r.GET("/todos/:id", withUser, todoH.Get)
	r.PUT("/todos/:id", withUser, todoH.Update)
	r.DELETE("/todos/:id", withUser, todoH.Delete)
	r.GET("/anonymous/todos", todoH.List)

	env.router = r
	return env
}

func (e *handlerEnv) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var decoded map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &decoded)
	return rr, decoded
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "ann@x.com", body["email"])
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, rr.Body.String(), "password")

	rr, body = env.do(http.MethodPost, "/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgUserExists, body["message"])

	rr, _ = env.do(http.MethodPost, "/login", gin.H{"email": "ann@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, body = env.do(http.MethodPost, "/login", gin.H{"email": "ann@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, services.MsgInvalidCredentials, body["message"])
}

func TestAuthHandler_MalformedPayload(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/register", `{"name": "Ann",`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidPayload, body["message"])

	rr, body = env.do(http.MethodPost, "/register", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgInvalidUserData, body["message"])

	rr, _ = env.do(http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload gin.H
		message string
	}{
		{"display name address", gin.H{"name": "Bob", "email": "Bob <bob@x.com>", "password": "secret1"}, services.MsgInvalidUserData},
		{"not an address", gin.H{"name": "Bob", "email": "not-an-email", "password": "secret1"}, services.MsgInvalidUserData},
		{"missing name", gin.H{"email": "bob@x.com", "password": "secret1"}, services.MsgInvalidUserData},
		{"name too long", gin.H{"name": strings.Repeat("b", 256), "email": "bob@x.com", "password": "secret1"}, services.MsgInvalidUserData},
		{"password too short", gin.H{"name": "Bob", "email": "bob@x.com", "password": "12345"}, services.MsgPasswordTooShort},
		{"password too long", gin.H{"name": "Bob", "email": "bob@x.com", "password": strings.Repeat("p", 73)}, services.MsgPasswordTooLong},
		{"wrong type", gin.H{"name": "Bob", "email": 42, "password": "secret1"}, MsgInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupHandlerEnv(t)
			rr, body := env.do(http.MethodPost, "/register", tc.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tc.message, body["message"])

			exists, err := env.store.Users().ExistsByEmail(context.Background(), "bob@x.com")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestAuthHandler_RegisterLongestName(t *testing.T) {
	env := setupHandlerEnv(t)
	name := strings.Repeat("é", 255)
	rr, body := env.do(http.MethodPost, "/register", gin.H{"name": name, "email": "bob@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, name, body["name"])
}

func TestAuthHandler_ResetValidation(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/forgot-password", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgInvalidEmail, body["message"])

	rr, body = env.do(http.MethodPost, "/forgot-password", gin.H{"email": "Ann <ann@x.com>"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgInvalidEmail, body["message"])

	rr, body = env.do(http.MethodPut, "/reset-password/deadbeef", gin.H{"password": "123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgPasswordTooShort, body["message"])

	rr, body = env.do(http.MethodPut, "/reset-password/deadbeef", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgPasswordTooShort, body["message"])
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/forgot-password", gin.H{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, services.MsgNoUserWithEmail, body["message"])

	env.do(http.MethodPost, "/register", gin.H{"name": "Ann", "email": "ann@x.com", "password": "secret1"})
	rr, body = env.do(http.MethodPost, "/forgot-password", gin.H{"email": "ann@x.com"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, services.MsgResetLinkSent, body["message"])

	rr, body = env.do(http.MethodPut, "/reset-password/deadbeef", gin.H{"password": "newpass123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgInvalidResetToken, body["message"])
}

func TestTodoHandler_CRUD(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/todos", gin.H{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	id := body["id"].(string)
	assert.Equal(t, env.user.ID.String(), body["userId"])
	assert.Equal(t, false, body["isCompleted"])
	assert.Equal(t, "", body["description"])

	rr, body = env.do(http.MethodPost, "/todos", gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgTitleRequired, body["message"])

	rr, body = env.do(http.MethodPut, "/todos/"+id, gin.H{"isCompleted": true})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["isCompleted"])
	assert.Equal(t, "Buy milk", body["title"])

	rr, _ = env.do(http.MethodGet, "/todos", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var list []models.Todo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rr, body = env.do(http.MethodDelete, "/todos/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, services.MsgTodoRemoved, body["message"])

	rr, body = env.do(http.MethodGet, "/todos/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, services.MsgTodoNotFound, body["message"])
}

func TestTodoHandler_TitleLength(t *testing.T) {
	env := setupHandlerEnv(t)

	rr, body := env.do(http.MethodPost, "/todos", gin.H{"title": strings.Repeat("t", 256)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgTitleTooLong, body["message"])

	longest := strings.Repeat("ç", 255)
	rr, body = env.do(http.MethodPost, "/todos", gin.H{"title": longest})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, longest, body["title"])
	id := body["id"].(string)

	rr, body = env.do(http.MethodPut, "/todos/"+id, gin.H{"title": strings.Repeat("t", 256)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgTitleTooLong, body["message"])

	rr, body = env.do(http.MethodPut, "/todos/"+id, gin.H{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgTitleRequired, body["message"])

	rr, body = env.do(http.MethodGet, "/todos/"+id, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, longest, body["title"])
}

func TestTodoHandler_EmptyListIsArray(t *testing.T) {
	env := setupHandlerEnv(t)
	rr, _ := env.do(http.MethodGet, "/todos", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestTodoHandler_MalformedID(t *testing.T) {
	env := setupHandlerEnv(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr, body := env.do(method, "/todos/not-a-uuid", gin.H{"title": "x"})
		assert.Equal(t, http.StatusNotFound, rr.Code, method)
		assert.Equal(t, services.MsgTodoNotFound, body["message"], method)
	}
}

func TestTodoHandler_WithoutIdentity(t *testing.T) {
	env := setupHandlerEnv(t)
	rr, body := env.do(http.MethodGet, "/anonymous/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, auth.MsgNoToken, body["message"])
}
