package routes

import (
	"context"
	"net/http"
	"time"

	"cinebook/internal/analytics"
	"cinebook/internal/auth"
	"cinebook/internal/movies"
	"cinebook/internal/notifications"
	"cinebook/internal/payments"
	"cinebook/internal/reservations"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shows"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
	"cinebook/pkg/logger"
	"cinebook/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router wires every module into the gin engine. Reservations is exported
// so the server can run the hold sweeper against the same service the
// handlers use.
type Router struct {
	engine *gin.Engine
	config *config.Config
	db     *database.DB
	logger *logger.Logger

	Reservations reservations.Service
}

// New builds all repositories, services and controllers and registers
// their routes on the engine.
func New(engine *gin.Engine, cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	r := &Router{
		engine: engine,
		config: cfg,
		db:     db,
		logger: log,
	}

	cacheService := cache.NewService(db.GetRedis())
	clk := clock.NewSystem()

	// Rate limiting applies to everything, health checks included.
	rateLimiter := ratelimit.NewRateLimiter(db.GetRedis(), &ratelimit.Config{
		Enabled:                 cfg.RateLimit.Enabled,
		WindowDuration:          cfg.RateLimit.WindowDuration,
		DefaultRequests:         cfg.RateLimit.DefaultRequests,
		PublicRequests:          cfg.RateLimit.PublicRequests,
		AuthRequests:            cfg.RateLimit.AuthRequests,
		BookingRequests:         cfg.RateLimit.BookingRequests,
		BookingCriticalRequests: cfg.RateLimit.BookingCriticalRequests,
		AdminRequests:           cfg.RateLimit.AdminRequests,
		AnalyticsRequests:       cfg.RateLimit.AnalyticsRequests,
		HealthRequests:          cfg.RateLimit.HealthRequests,
		WhitelistedIPs:          cfg.RateLimit.WhitelistedIPs,
	})
	engine.Use(ratelimit.Middleware(rateLimiter))

	r.setupSystemRoutes()

	api := engine.Group(cfg.GetAPIBasePath())

	// Auth
	authRepo := auth.NewRepository(db.GetPostgreSQL())
	authService := auth.NewService(authRepo, cfg)
	auth.NewRouter(auth.NewController(authService), cfg).SetupRoutes(api)

	// Movie metadata
	movieRepo := movies.NewRepository(db.GetPostgreSQL())
	movieService := movies.NewService(movieRepo, movies.NewCatalogClient(cfg), cacheService, log)
	movies.NewRouter(movies.NewController(movieService)).SetupRoutes(api)

	// Shows
	showRepo := shows.NewRepository(db.GetPostgreSQL())
	showService := shows.NewService(showRepo, movieService, cacheService, publisher, clk, cfg, log)
	shows.NewRouter(shows.NewController(showService), cfg).SetupRoutes(api)

	// Reservations
	reservationRepo := reservations.NewRepository(db.GetPostgreSQL())
	reservationService := reservations.NewService(reservationRepo, cacheService, publisher, clk, cfg, log)
	reservations.NewRouter(reservations.NewController(reservationService), cfg).SetupRoutes(api)
	r.Reservations = reservationService

	// Payments
	paymentService := payments.NewService(reservationService, log)
	payments.NewRouter(payments.NewController(paymentService)).SetupRoutes(api)

	// Analytics
	analyticsRepo := analytics.NewRepository(db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo, cacheService, clk)
	analytics.NewRouter(analytics.NewController(analyticsService), cfg).SetupRoutes(api)

	return r
}

func (r *Router) setupSystemRoutes() {
	r.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := r.db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": r.config.APIVersion,
		})
	})

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
