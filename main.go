package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letter-simplify-service/config"
	"letter-simplify-service/database"
	"letter-simplify-service/gemini"
	"letter-simplify-service/handlers"
	"letter-simplify-service/metrics"
	"letter-simplify-service/middleware"
	"letter-simplify-service/openai"
	"letter-simplify-service/rabbitmq"
	"letter-simplify-service/service"
	"letter-simplify-service/storage"
	"letter-simplify-service/version"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "letter-simplify-service"

func main() {
	// Load configuration
	cfg := config.Load()

	log.Infof("Starting %s %s", serviceName, version.BuildVersion)

	// Provider clients. Missing API keys are not fatal here: they surface
	// as configuration errors on first use.
	simplifier := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	vision := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiImageModel, cfg.GeminiBaseURL)

	// Explanation store: MySQL when configured, in-memory otherwise.
	var store storage.Store
	if cfg.DBHost != "" {
		db, err := database.NewDatabase(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.EnsureExplanationsTable(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to ensure explanations table: %v", err)
		}
		cancel()
		store = db
	} else {
		log.Info("No database configured, using in-memory explanation store")
		store = storage.NewMemStore()
	}
	defer store.Close()

	// Optional RabbitMQ publisher for processed explanations.
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.Errorf("Failed to initialize RabbitMQ publisher: %v", err)
			// Continue without publisher - simplification still works
			publisher = nil
		}
	}
	if publisher != nil {
		defer publisher.Close()
	}

	svc := service.New(cfg, simplifier, vision, vision, store, publisher)
	h := handlers.New(svc)

	metrics.Register()

	// Setup HTTP server
	router := gin.Default()
	router.MaxMultipartMemory = 10 << 20
	router.Use(middleware.MetricsMiddleware())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", h.HealthCheck)
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get(serviceName))
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate-limited API routes
	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	{
		api.POST("/simplify", h.Simplify)
		api.POST("/simplify-image", h.SimplifyImage)
		api.POST("/ocr", h.ExtractText)
		api.GET("/explanations/:id", h.GetExplanation)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("HTTP server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
