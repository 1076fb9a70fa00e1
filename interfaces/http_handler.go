package interfaces

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobselect/config"
	"jobselect/usecase"
)

type HTTPHandler struct {
	Auth   *usecase.AuthService
	Jobs   *usecase.JobService
	Intake *usecase.IntakeService
	Health func(ctx context.Context) error

	cfg    *config.Config
	logger *zap.Logger
}

func NewHTTPHandler(cfg *config.Config, logger *zap.Logger, auth *usecase.AuthService, jobs *usecase.JobService, intake *usecase.IntakeService, health func(ctx context.Context) error) *HTTPHandler {
	return &HTTPHandler{
		Auth:   auth,
		Jobs:   jobs,
		Intake: intake,
		Health: health,
		cfg:    cfg,
		logger: logger,
	}
}

// NewRouter builds the gin engine. Every route is served at the root and
// again under /api.
func NewRouter(h *HTTPHandler) *gin.Engine {
	if !h.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger), requestTimeout(h.cfg.RequestTimeout))
	router.Use(cors.New(corsConfig(h.cfg)))

	h.register(&router.RouterGroup)
	h.register(router.Group("/api"))
	return router
}

func (h *HTTPHandler) register(r *gin.RouterGroup) {
	r.GET("/health", h.GetHealth)

	authed := h.requireSession()

	r.POST("/auth/login", h.Login)
	r.GET("/auth/google/login", h.GoogleLogin)
	r.GET("/auth/google/callback", h.GoogleCallback)
	r.GET("/auth/me", authed, h.Me)
	r.POST("/auth/logout", authed, h.Logout)

	r.GET("/jobs", h.ListJobs)
	r.GET("/jobs/:id", h.GetJob)
	r.POST("/jobs", authed, h.CreateJob)
	r.PUT("/jobs/:id", authed, h.UpdateJob)
	r.DELETE("/jobs/:id", authed, h.DeleteJob)
	r.GET("/jobs/:id/applications", authed, h.ListApplications)

	r.POST("/applications", authed, h.SubmitApplication)
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSOrigins
		c.AllowCredentials = true
	}
	c.AddAllowHeaders("Authorization")
	return c
}

// GetHealth reports liveness and database reachability.
func (h *HTTPHandler) GetHealth(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
