package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"jobboard/internal/domain"
	"jobboard/internal/service"
)

// Options bundles the collaborators of Handler.
type Options struct {
	Auth    service.AuthService
	Gate    *service.Gate
	Jobs    service.JobService
	Profile service.ProfileService
	Admin   service.AdminService
	// RateLimit guards the credential endpoints. Nil disables it.
	RateLimit gin.HandlerFunc
	Logger    *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	gate      *service.Gate
	jobs      service.JobService
	profile   service.ProfileService
	admin     service.AdminService
	rateLimit gin.HandlerFunc
	logger    *logrus.Logger
	validate  *validator.Validate
}

func NewHandler(opts Options) *Handler {
	rateLimit := opts.RateLimit
	if rateLimit == nil {
		rateLimit = func(c *gin.Context) { c.Next() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		auth:      opts.Auth,
		gate:      opts.Gate,
		jobs:      opts.Jobs,
		profile:   opts.Profile,
		admin:     opts.Admin,
		rateLimit: rateLimit,
		logger:    logger,
		validate:  newValidator(),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), h.loggingMiddleware(), corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		auth := api.Group("/auth")
		auth.POST("/register", h.rateLimit, h.register)
		auth.POST("/login", h.rateLimit, h.login)
		auth.GET("/verify-email/:token", h.verifyEmail)
		auth.POST("/verify-email/resend", h.rateLimit, h.resendVerification)
		auth.POST("/forgot-password", h.rateLimit, h.forgotPassword)
		auth.POST("/reset-password/:token", h.resetPassword)

		users := api.Group("/users", h.authRequired())
		users.GET("/profile", h.getProfile)
		users.PUT("/profile", h.updateProfile)
		users.GET("/applications", h.myApplications)

		jobs := api.Group("/jobs")
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.GET("/:id/logo", h.getLogo)
		jobs.POST("", h.authRequired(), requireRole(domain.RoleRecruiter, domain.RoleAdmin), h.createJob)
		jobs.DELETE("/:id", h.authRequired(), h.deleteJob)
		jobs.POST("/:id/apply", h.authRequired(), h.applyToJob)
		jobs.GET("/:id/applications", h.authRequired(), h.listJobApplications)
		jobs.PUT("/:id/logo", h.authRequired(), h.uploadLogo)

		admin := api.Group("/admin", h.authRequired(), requireRole(domain.RoleAdmin))
		admin.GET("/users", h.listUsers)
		admin.GET("/applications", h.listApplications)
		admin.DELETE("/users/:id", h.deleteUser)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
