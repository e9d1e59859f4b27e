package router

import (
	"net/http"

	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/handlers"
	"todoapi/backend/internal/middleware"
	"todoapi/backend/internal/repository"
	"todoapi/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Deps são as dependências montadas em main.
type Deps struct {
	Logger     *zap.Logger
	Production bool
	Tokens     *auth.TokenIssuer
	Users      repository.UserRepository
	ErrorLogs  repository.ErrorLogRepository
	AuthSvc    *services.AuthService
	TodoSvc    *services.TodoService
}

// SetupRouter configura e retorna uma instância do Gin Engine.
func SetupRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()

	// Middlewares globais. GinRecovery fica dentro do ErrorHandler para que panics
	// sejam respondidos e gravados como qualquer outro erro 500.
	router.Use(middleware.Metrics())
	router.Use(middleware.GinZap(log))
	router.Use(middleware.ErrorHandler(deps.Production, deps.ErrorLogs, log))
	router.Use(middleware.GinRecovery(log))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/health", healthCheckHandler)

	setupAuthRoutes(api, handlers.NewAuthHandler(deps.AuthSvc))
	setupTodoRoutes(api, handlers.NewTodoHandler(deps.TodoSvc), auth.AuthMiddleware(deps.Tokens, deps.Users))

	router.NoRoute(middleware.NotFound())
	return router
}

// healthCheckHandler não consulta o banco; indica apenas que o processo responde.
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func setupAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/forgot-password", h.ForgotPassword)
		authRoutes.PUT("/reset-password/:token", h.ResetPassword)
	}
}

func setupTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler, gate gin.HandlerFunc) {
	todos := api.Group("/todos")
	todos.Use(gate)
	{
		todos.GET("", h.List)
		todos.POST("", h.Create)
		todos.GET("/:id", h.Get)
		todos.PUT("/:id", h.Update)
		todos.DELETE("/:id", h.Delete)
	}
}

// WithCORS envolve o engine com a política CORS para o cliente web.
func WithCORS(engine http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(engine)
}
