// Package httpapi serves the notes, labels, analytics and auth endpoints.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
)

// Server provides the HTTP API.
type Server struct {
	echo      *echo.Echo
	notes     *notes.Service
	analytics *analytics.Service
	auth      *auth.Service
	guard     auth.Guard
	limiter   *ipLimiter
	logger    *logging.Logger
	config    model.ServerConfig
}

// NewServer creates an HTTP server over the given services.
func NewServer(
	notesSvc *notes.Service,
	analyticsSvc *analytics.Service,
	authSvc *auth.Service,
	logger *logging.Logger,
	cfg model.ServerConfig,
) (*Server, error) {
	if notesSvc == nil || analyticsSvc == nil || authSvc == nil {
		return nil, fmt.Errorf("notes, analytics and auth services are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "toodoo_session"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		notes:     notesSvc,
		analytics: analyticsSvc,
		auth:      authSvc,
		guard:     auth.DefaultGuard(),
		limiter:   newIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		logger:    logger.Named("http"),
		config:    cfg,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(s.requestLogger())
	e.Use(metricsMiddleware())
	e.Use(s.sessionMiddleware())
	e.Use(s.guardMiddleware())

	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authAPI := s.echo.Group("/api/auth", s.rateLimit())
	authAPI.POST("/signup", s.handleSignUp)
	authAPI.POST("/signin", s.handleSignIn)
	authAPI.POST("/signout", s.handleSignOut)
	authAPI.GET("/oauth", s.handleOAuthStart)
	authAPI.GET("/session", s.handleSession)
	s.echo.GET("/auth/callback", s.handleOAuthCallback, s.rateLimit())

	s.echo.GET("/analytics", s.handleAnalyticsPage)
	s.echo.GET("/settings", s.handleSettingsPage)

	v1 := s.echo.Group("/api/v1", s.requireUser)

	v1.GET("/notes", s.handleListNotes)
	v1.POST("/notes", s.handleCreateNote)
	v1.POST("/notes/reorder", s.handleReorderNotes)
	v1.GET("/notes/groups/label", s.handleLabelGroups)
	v1.GET("/notes/completed/groups", s.handleCompletedGroups)
	v1.GET("/notes/:id", s.handleGetNote)
	v1.PATCH("/notes/:id", s.handleUpdateNote)
	v1.DELETE("/notes/:id", s.handleDeleteNote)
	v1.POST("/notes/:id/complete", s.handleCompleteNote)
	v1.POST("/notes/:id/revert", s.handleRevertNote)
	v1.POST("/notes/:id/priority", s.handleTogglePriority)
	v1.POST("/notes/:id/items/:index/toggle", s.handleToggleItem)

	v1.GET("/labels", s.handleListLabels)
	v1.POST("/labels", s.handleCreateLabel)
	v1.POST("/labels/reorder", s.handleReorderLabels)
	v1.GET("/labels/counts", s.handleLabelCounts)
	v1.PATCH("/labels/:id", s.handleUpdateLabel)
	v1.DELETE("/labels/:id", s.handleDeleteLabel)

	v1.GET("/analytics/activity", s.handleActivity)
	v1.GET("/analytics/focus", s.handleFocus)
	v1.GET("/analytics/stats", s.handleStats)
	v1.GET("/analytics/weekly", s.handleWeekly)

	v1.GET("/preferences/view-mode", s.handleGetViewMode)
	v1.PUT("/preferences/view-mode", s.handleSetViewMode)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ServeHTTP lets the server be mounted in tests or another mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
