package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/server/http/handlers"
	"github.com/polkiloo/trattoria/internal/server/http/middleware"
)

const eventsPath = "/api/events"

// Options tune the router. A nil Idempotency disables Idempotency-Key handling.
type Options struct {
	Idempotency handlers.IdempotencyStore
	KeepAlive   time.Duration
}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.RestaurantFacade, opts Options, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.CORS())
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{eventsPath})))

	staffHandler := handlers.NewStaffHandler(facade)
	tableHandler := handlers.NewTableHandler(facade)
	productHandler := handlers.NewProductHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade, opts.Idempotency)
	liveHandler := handlers.NewLiveHandler(facade, opts.KeepAlive)

	engine.GET("/healthz", handlers.Health(facade))

	api := engine.Group("/api")
	api.POST("/staff/login", staffHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	admin := middleware.RequireRole(model.RoleAdmin)

	authed.GET("/staff/me", staffHandler.Me)
	authed.POST("/staff", admin, staffHandler.Create)

	authed.GET("/tables", tableHandler.List)
	authed.GET("/tables/:id", tableHandler.Get)
	authed.POST("/tables", admin, tableHandler.Create)

	authed.GET("/products", productHandler.List)
	authed.POST("/products", admin, productHandler.Create)
	authed.PATCH("/products/:id/availability", middleware.RequireRole(model.RoleAdmin, model.RoleKitchen), productHandler.SetAvailability)

	authed.POST("/orders", orderHandler.Submit)
	authed.GET("/orders", orderHandler.List)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.POST("/orders/:id/transitions", orderHandler.Transition)
	authed.POST("/orders/:id/discount", middleware.RequireRole(model.RoleAdmin, model.RoleCashier), orderHandler.Discount)

	authed.GET("/events", liveHandler.Stream)
	authed.GET("/presence", admin, liveHandler.Presence)

	return engine
}
