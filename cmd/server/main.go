package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bottle-order-tracking/internal/config"
	"bottle-order-tracking/internal/controller"
	"bottle-order-tracking/internal/logger"
	"bottle-order-tracking/internal/middleware"
	"bottle-order-tracking/internal/model"
	"bottle-order-tracking/internal/rabbit"
	"bottle-order-tracking/internal/repository"
	"bottle-order-tracking/internal/service"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	// MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		zlog.Fatalw("cannot connect to mongo", "error", err)
	}
	db := client.Database(cfg.MongoDBName)

	// Repository and services
	repo := repository.NewMongoOrderRepository(db)
	orderService := service.NewOrderStatusService(repo, zlog)
	authService := service.NewAuthService(cfg.AuthURL)

	// Handlers
	ctrl := controller.NewOrderController(orderService)

	// Router
	r := gin.Default()

	// Public routes
	r.POST("/status/init", ctrl.InitOrder)
	r.POST("/franchise/apply", ctrl.FranchiseApply)

	// Token-protected routes
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(authService))

	auth.GET("/orders/get-all", ctrl.GetMyOrders)
	auth.GET("/orders/:orderId", ctrl.GetOrder)
	auth.GET("/orders/:orderId/tracking", ctrl.GetTracking)
	auth.GET("/orders/:orderId/timeline", ctrl.GetTimeline)
	auth.GET("/orders/:orderId/latest", ctrl.GetLatestStatus)
	auth.PATCH("/orders/:orderId/status", ctrl.UpdateStatus)
	auth.PATCH("/orders/:orderId/payment-status", ctrl.UpdatePaymentStatus)

	// Staff routes
	staff := auth.Group("/")
	staff.Use(middleware.RequireRole(model.RolePrinting, model.RolePlant, model.RoleAdmin))
	staff.GET("/orders/get-all-orders", ctrl.GetAllOrders)

	// Admin routes
	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/franchise/leads", ctrl.GetFranchiseLeads)

	// RabbitMQ connection
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		zlog.Fatalw("cannot connect to rabbitmq", "error", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		zlog.Fatalw("cannot open rabbitmq channel", "error", err)
	}

	rabbit.SetupConsumers(ch, orderService, zlog)

	zlog.Infow("bottle order tracking service listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatalw("server stopped", "error", err)
	}
}
