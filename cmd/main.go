package main

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"smartfactory/internal/alert"
	"smartfactory/internal/handler"
	mid "smartfactory/internal/middleware"
	"smartfactory/internal/model"
	"smartfactory/internal/scheduler"
	"smartfactory/internal/storage"
	"smartfactory/internal/ws"
	"smartfactory/pkg/config"
	"smartfactory/pkg/database"
	"smartfactory/pkg/jwtutil"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting smartfactory", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.User{},
		&model.Reception{},
		&model.Lot{},
		&model.Cutting{},
		&model.Production{},
		&model.Packaging{},
		&model.QualityControl{},
		&model.Order{},
		&model.Shipping{},
		&model.Machine{},
		&model.Intervention{},
		&model.IoTSensor{},
	); err != nil {
		log.Fatal("Failed to migrate models", zap.Error(err))
	}
	log.Info("Database migration completed")

	if appConfig.SeedUsers {
		seedUsers(db, log)
	}

	// Live sensor feed
	hub := ws.NewHub()
	go hub.Run()
	handler.SensorHub = hub

	// Outbound alert webhook
	handler.Alerts = alert.NewNotifier(appConfig.Alert)

	// Quality photo storage
	uploader, err := storage.NewUploader(context.Background(), appConfig.Storage)
	if err != nil {
		log.Warn("Photo storage unavailable, uploads disabled", zap.Error(err))
	} else {
		handler.Photos = uploader
	}

	// Background sweeps
	sweeps := scheduler.NewScheduler(db, handler.Alerts, appConfig.Scheduler, log)
	sweeps.Start()
	defer sweeps.Stop()

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authAPI := e.Group("/api/auth")
	authAPI.POST("/register", handler.Register)
	authAPI.POST("/login", handler.Login)
	authAPI.GET("/profile", handler.Profile, mid.AuthMiddleware)

	// Traceability routes
	lotAPI := e.Group("/api/lots", mid.AuthMiddleware)
	lotAPI.GET("", handler.ListLots)
	lotAPI.GET("/:id", handler.GetLot)
	lotAPI.GET("/:id/trace", handler.GetLotTrace)
	lotAPI.GET("/number/:lotNumber", handler.GetLotByNumber)
	lotAPI.POST("", handler.CreateLot, mid.RequireCapability(mid.CapLotCreate))
	lotAPI.PATCH("/:id/status", handler.UpdateLotStatus, mid.RequireCapability(mid.CapProductionModerate))

	// Reception routes
	receptionAPI := e.Group("/api/receptions", mid.AuthMiddleware)
	receptionAPI.GET("", handler.ListReceptions)
	receptionAPI.GET("/:id", handler.GetReception)
	receptionAPI.POST("", handler.CreateReception, mid.RequireCapability(mid.CapReceptionCreate))

	// Cutting routes
	cuttingAPI := e.Group("/api/cuttings", mid.AuthMiddleware)
	cuttingAPI.GET("", handler.ListCuttings)
	cuttingAPI.POST("", handler.CreateCutting, mid.RequireCapability(mid.CapCuttingWrite))
	cuttingAPI.PATCH("/:id/complete", handler.CompleteCutting, mid.RequireCapability(mid.CapCuttingWrite))

	// Production routes
	productionAPI := e.Group("/api/productions", mid.AuthMiddleware)
	productionAPI.GET("", handler.ListProductions)
	productionAPI.GET("/statistics", handler.ProductionStatistics, mid.RequireCapability(mid.CapProductionModerate))
	productionAPI.GET("/:id", handler.GetProduction)
	productionAPI.POST("", handler.CreateProduction, mid.RequireCapability(mid.CapProductionWrite))
	productionAPI.PATCH("/:id/status", handler.UpdateProductionStatus, mid.RequireCapability(mid.CapProductionWrite))

	// Packaging routes
	packagingAPI := e.Group("/api/packagings", mid.AuthMiddleware)
	packagingAPI.GET("", handler.ListPackagings)
	packagingAPI.POST("", handler.CreatePackaging, mid.RequireCapability(mid.CapPackagingWrite))
	packagingAPI.PATCH("/:id/label", handler.LabelPackaging, mid.RequireCapability(mid.CapPackagingWrite))
	packagingAPI.PATCH("/:id/ready", handler.ReadyPackaging, mid.RequireCapability(mid.CapPackagingWrite))

	// Quality routes
	qualityAPI := e.Group("/api/quality-controls", mid.AuthMiddleware)
	qualityAPI.GET("", handler.ListQualityControls)
	qualityAPI.GET("/:id", handler.GetQualityControl)
	qualityAPI.POST("", handler.CreateQualityControl, mid.RequireCapability(mid.CapQualityWrite))
	qualityAPI.POST("/:id/photo", handler.UploadQualityPhoto, mid.RequireCapability(mid.CapQualityWrite))

	// Order routes
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.GET("", handler.ListOrders)
	orderAPI.GET("/:id", handler.GetOrder)
	orderAPI.POST("", handler.CreateOrder, mid.RequireCapability(mid.CapOrderCreate))
	orderAPI.PATCH("/:id/prepare", handler.PrepareOrder, mid.RequireCapability(mid.CapOrderPrepare))

	// Shipping routes
	shippingAPI := e.Group("/api/shippings", mid.AuthMiddleware)
	shippingAPI.GET("", handler.ListShippings)
	shippingAPI.GET("/:id", handler.GetShipping)
	shippingAPI.POST("", handler.CreateShipping, mid.RequireCapability(mid.CapShippingCreate))
	shippingAPI.PATCH("/:id/deliver", handler.DeliverShipping, mid.RequireCapability(mid.CapShippingDeliver))

	// IoT routes
	iotAPI := e.Group("/api/iot/sensors", mid.AuthMiddleware)
	iotAPI.GET("", handler.ListSensors)
	iotAPI.GET("/:sensorId", handler.GetSensor)
	iotAPI.POST("", handler.CreateSensor, mid.RequireCapability(mid.CapMachineModerate))
	iotAPI.PATCH("/:sensorId/reading", handler.RecordSensorReading)

	// Live sensor stream
	e.GET("/api/iot/live", hub.Handler(), mid.AuthMiddleware)

	// Maintenance routes
	machineAPI := e.Group("/api/machines", mid.AuthMiddleware)
	machineAPI.GET("", handler.ListMachines)
	machineAPI.POST("", handler.CreateMachine, mid.RequireCapability(mid.CapMachineModerate))
	machineAPI.PATCH("/:id/status", handler.UpdateMachineStatus, mid.RequireCapability(mid.CapMachineModerate))

	interventionAPI := e.Group("/api/interventions", mid.AuthMiddleware)
	interventionAPI.GET("", handler.ListInterventions)
	interventionAPI.POST("", handler.CreateIntervention, mid.RequireCapability(mid.CapMaintenanceReport))
	interventionAPI.PATCH("/:id/status", handler.UpdateInterventionStatus, mid.RequireCapability(mid.CapMachineModerate))

	// Dashboard routes
	dashboardAPI := e.Group("/api/dashboard", mid.AuthMiddleware)
	dashboardAPI.GET("/director", handler.DirectorDashboard, mid.RequireCapability(mid.CapDashboardDirector))
	dashboardAPI.GET("/production", handler.ProductionDashboard, mid.RequireCapability(mid.CapDashboardProd))
	dashboardAPI.GET("/quality", handler.QualityDashboard, mid.RequireCapability(mid.CapDashboardQuality))
	dashboardAPI.GET("/machines", handler.MachinesDashboard, mid.RequireCapability(mid.CapDashboardMachines))
	dashboardAPI.GET("/temperature", handler.TemperatureDashboard, mid.RequireCapability(mid.CapDashboardProd))

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
