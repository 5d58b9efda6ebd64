package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventstime/core/internal/middleware"
	"github.com/eventstime/core/internal/modules/auth"
	"github.com/eventstime/core/internal/modules/event"
	"github.com/eventstime/core/internal/modules/mobile"
	"github.com/eventstime/core/internal/modules/product"
	"github.com/eventstime/core/internal/modules/productcategory"
	"github.com/eventstime/core/internal/modules/productfile"
	"github.com/eventstime/core/internal/modules/stand"
	"github.com/eventstime/core/internal/modules/standcategory"
	"github.com/eventstime/core/internal/modules/user"
	"github.com/eventstime/core/internal/modules/usertoken"
	pkgredis "github.com/eventstime/core/internal/pkg/redis"
	"github.com/eventstime/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(a.codec)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "NOT_FOUND")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw(), a.codec))
	r.Use(middleware.Idempotence(rc.Raw()))

	api := r.Group("/api")

	api.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": "pong"})
	})
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})
	api.GET("/jobs", authMW, func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})

	// Shared services
	userSvc := user.NewService(db)
	tokenStore := usertoken.NewStore(db)
	fileSvc := productfile.NewService(db, a.images, a.logger)
	categorySvc := productcategory.NewService(db)

	// Auth & session
	auth.NewHandler(auth.NewService(userSvc, tokenStore, a.codec)).RegisterRoutes(api, authMW)
	user.NewHandler(userSvc, tokenStore).RegisterRoutes(api, authMW)

	// Backoffice CRUD
	event.NewHandler(event.NewService(db)).RegisterRoutes(api, authMW)
	standcategory.NewHandler(standcategory.NewService(db)).RegisterRoutes(api, authMW)
	stand.NewHandler(stand.NewService(db)).RegisterRoutes(api, authMW)
	productcategory.NewHandler(categorySvc).RegisterRoutes(api, authMW)
	product.NewHandler(product.NewService(db, fileSvc)).RegisterRoutes(api, authMW)

	// Vendor app reads
	mobile.NewHandler(mobile.NewService(db, categorySvc)).RegisterRoutes(api, authMW)
}

var processStart = time.Now()
