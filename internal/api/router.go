package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService   ports.AuthService
	TaskService   ports.TaskService
	TokenVerifier ports.TokenVerifier
	Logger        zerolog.Logger

	// HealthChecks are pinged by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.Pinger

	// Metrics are exposed only when both are set. Tests leave them nil so
	// routers can be built repeatedly without duplicate registration.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))

	metricsEnabled := deps.MetricsRegisterer != nil && deps.MetricsGatherer != nil
	if metricsEnabled {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: deps.MetricsRegisterer,
		}))
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	taskHandler := handler.NewTaskHandler(deps.TaskService)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signin", authHandler.Signin)
	auth.POST("/signup", authHandler.Signup)

	// --- Task routes (bearer token + USER or ADMIN) ---
	tasks := e.Group("/api/tasks",
		middleware.Auth(deps.TokenVerifier),
		middleware.RequireRoles(domain.RoleUser, domain.RoleAdmin),
	)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness
	e.GET("/health/ready", healthHandler.Readiness) // readiness

	// --- Operational endpoints ---
	if metricsEnabled {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: deps.MetricsGatherer,
		}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
