package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inkwell/backend/config"
	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/articles"
	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/brands"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/users"
	"github.com/inkwell/backend/pkg/response"
)

type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type routerDeps struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *middleware.Metrics
	jwt      gin.HandlerFunc
	auth     *auth.Handler
	users    *users.Handler
	brands   *brands.Handler
	articles *articles.Handler
	health   []healthCheck
}

func newRouter(d routerDeps) *gin.Engine {
	admin := middleware.RequireRole(models.RoleAdmin)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(d.logger))
	if d.metrics != nil {
		router.Use(d.metrics.Handler())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", healthHandler(d.health))

	// Public
	router.POST("/auth/signup", d.auth.Signup)
	router.POST("/auth/login", d.auth.Login)
	router.GET("/articles", d.articles.ListPublished)
	router.GET("/articles/:id", d.articles.GetPublished)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(d.jwt)
	{
		api.GET("/auth/me", d.auth.Me)

		// Users (admin only)
		api.POST("/users/admins", admin, d.users.CreateAdmin)
		api.POST("/users/authors", admin, d.users.CreateAuthor)
		api.POST("/users/brand-users", admin, d.users.CreateBrandUser)

		// Brands
		api.GET("/brands", d.brands.List)
		api.GET("/brands/:id", d.brands.Get)
		api.POST("/brands", admin, d.brands.Create)
		api.POST("/brands/onboard", admin, d.brands.Onboard)
		api.PUT("/brands/:id", d.brands.Update)
		api.PUT("/brands/:id/status", admin, d.brands.SetStatus)
		api.DELETE("/brands/:id", admin, d.brands.Delete)
		api.POST("/brands/:id/authors", admin, d.brands.AssignAuthor)
		api.GET("/brands/:id/authors", middleware.RequireRole(models.RoleAdmin, models.RoleBrand), d.brands.ListAuthors)
		api.POST("/brands/:id/logo-upload-url", middleware.RequireRole(models.RoleAdmin, models.RoleBrand), d.brands.LogoUploadURL)

		// Articles, one group per role view
		adminArticles := api.Group("/admin/articles", admin)
		adminArticles.GET("", d.articles.List)
		adminArticles.GET("/:id", d.articles.Get)
		adminArticles.PATCH("/:id/status", d.articles.SetStatus)

		for role, prefix := range map[models.Role]string{
			models.RoleBrand:  "/brand/articles",
			models.RoleAuthor: "/author/articles",
		} {
			g := api.Group(prefix, middleware.RequireRole(role))
			g.GET("", d.articles.List)
			g.GET("/:id", d.articles.Get)
			g.POST("", d.articles.Create)
			g.PATCH("/:id", d.articles.Update)
			g.DELETE("/:id", d.articles.Delete)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, apperr.NotFound("route not found"))
	})
	return router
}

func healthHandler(checks []healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		status := gin.H{}
		healthy := true
		for _, hc := range checks {
			if err := hc.check(ctx); err != nil {
				status[hc.name] = "down"
				healthy = false
				continue
			}
			status[hc.name] = "ok"
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, response.Body{Success: false, Data: status, Error: "dependency unavailable", Code: apperr.CodeDependencyFailure})
			return
		}
		status["status"] = "ok"
		response.OK(c, status)
	}
}
