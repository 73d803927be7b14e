package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/feastline/ordercore/internal/notify"
	"github.com/feastline/ordercore/internal/server/http/handlers"
	"github.com/feastline/ordercore/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.OrderCoreFacade, hub *notify.Hub, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	adminHandler := handlers.NewAdminOrderHandler(facade)
	notifyHandler := handlers.NewNotifyHandler(facade, logger)
	wsHandler := handlers.NewWSHandler(hub, logger)

	user := engine.Group("/user/order")
	user.Use(middleware.RequireUser())
	user.POST("/submit", orderHandler.Submit)
	user.PUT("/payment", orderHandler.Payment)
	user.POST("/cancel/:id", orderHandler.Cancel)
	user.POST("/repetition/:id", orderHandler.Repetition)
	user.GET("/reminder/:id", orderHandler.Reminder)
	user.GET("/orderDetail/:id", orderHandler.Details)
	user.GET("/historyOrders", orderHandler.History)

	admin := engine.Group("/admin/order")
	admin.PUT("/confirm", adminHandler.Confirm)
	admin.PUT("/rejection", adminHandler.Rejection)
	admin.PUT("/cancel", adminHandler.Cancel)
	admin.PUT("/delivery/:id", adminHandler.Delivery)
	admin.PUT("/complete/:id", adminHandler.Complete)
	admin.GET("/conditionSearch", adminHandler.Search)

	engine.POST("/notify/paySuccess", notifyHandler.PaySuccess)
	engine.GET("/ws/:sid", wsHandler.Serve)

	return engine
}
