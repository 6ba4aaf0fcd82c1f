// Package router assembles the gin engine from the registered modules.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "location_saver_backend/internal/http"
	"location_saver_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// New builds the engine: global middleware, health probes, then every module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/health/ready", readiness(app.Health))

	v1 := engine.Group("/api/v1")
	authMiddleware := httpkit.AuthRequired(app.Config, app.Revocations)
	protected := v1.Group("", authMiddleware)

	rc := &apphttp.RouterContext{
		Engine:          engine,
		V1:              v1,
		Protected:       protected,
		Config:          app.Config,
		AuthMiddleware:  authMiddleware,
		AuthRateLimiter: httpkit.NewAuthRateLimiter(app.Logger),
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Debug("registered module routes", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
	cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	if cfg.GetCORSAllowAll() {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = cfg.GetCORSOrigins()
	cc.AllowCredentials = cfg.GetCORSAllowCreds()
	return cc
}

func readiness(checks map[string]apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"checks": results})
	}
}
