package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskmgmt/internal/auth"
	"taskmgmt/internal/models"
	"taskmgmt/internal/service"
)

// RouteLogin is the route pattern of the login endpoint.
const RouteLogin = "/api/auth/login"

// TokenVerifier recovers the caller identity from a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators the HTTP layer delegates to.
type Dependencies struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Tasks   *service.TaskService
	Updates *service.UpdateService
	Reviews *service.ReviewService
	Tokens  TokenVerifier
	Health  HealthChecker

	// AuthLimiter, when set, guards the public /api/auth routes.
	AuthLimiter gin.HandlerFunc

	// TrustedProxies may set the client address through X-Forwarded-For.
	// When empty the peer address is the client.
	TrustedProxies []string
}

// Server provides HTTP handlers for the task management API.
type Server struct {
	engine *gin.Engine
	deps   Dependencies
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", slog.String("error", err.Error()))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:   []string{headerRequestID, "Location", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	}))

	srv := &Server{
		engine: router,
		deps:   deps,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authGroup := api.Group("/auth")
		if s.deps.AuthLimiter != nil {
			authGroup.Use(s.deps.AuthLimiter)
		}
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
		}

		secured := api.Group("", s.authenticate())

		users := secured.Group("/users")
		{
			users.GET("", requireRole(models.RoleManager), s.handleListUsers)
			users.GET(":id", s.handleGetUser)
		}

		tasks := secured.Group("/tasks")
		{
			tasks.POST("", s.handleCreateTask)
			tasks.GET("", s.handleListTasks)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", requireRole(models.RoleManager), s.handleUpdateTask)
			tasks.DELETE(":id", requireRole(models.RoleManager), s.handleDeleteTask)
			tasks.PATCH(":id/status", s.handleUpdateTaskStatus)

			tasks.POST(":id/updates", requireRole(models.RoleEmployee), s.handleAddUpdate)
			tasks.GET(":id/updates", s.handleListUpdates)

			tasks.POST(":id/reviews", requireRole(models.RoleManager), s.handleAddReview)
			tasks.GET(":id/reviews", s.handleListReviews)
		}

		reviews := secured.Group("/reviews", requireRole(models.RoleManager))
		{
			reviews.PUT(":id", s.handleUpdateReview)
			reviews.DELETE(":id", s.handleDeleteReview)
		}
	}

	s.mountDocs()
}

// handleHealth reports readiness, including database reachability.
func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Health.Ping(ctx); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to a positive int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, service.Fail[any](service.KindValidation, "Invalid identifier.", name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 when it is malformed.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, service.Fail[any](service.KindValidation, service.MessageValidationFailed, "request body: "+err.Error()))
		return false
	}
	return true
}

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respond writes a use case outcome. Failed results use the status of their
// kind; successful ones use status.
func respond[T any](s *Server, c *gin.Context, status int, res service.Result[T], err error) {
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !res.Success {
		c.JSON(statusFor(res.Kind), res)
		return
	}
	c.JSON(status, res)
}

// respondError logs an unexpected failure and returns a generic envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	s.logger.Error("request failed",
		slog.String("request_id", c.GetString(ctxRequestID)),
		slog.String("path", c.FullPath()),
		slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, service.Fail[any](service.KindNone, "An unexpected error occurred."))
}
