package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chat-bff/internal/app"
	"chat-bff/internal/config"
	"chat-bff/internal/handlers"
	"chat-bff/internal/middleware"
	"chat-bff/internal/observability"
	"chat-bff/internal/rabbitmq"
	"chat-bff/internal/telemetry"
	"chat-bff/internal/upstream"
)

func main() {
	cfg, err := config.Load(os.Getenv("CHATBFF_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg.Telemetry.OTLPEndpoint, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, cfg.AMQP.AuditRoutingKey, "chat-bff", cfg.Server.Environment)

	upstreamClient := upstream.NewHTTPClient(cfg.Upstream.BaseURL, cfg.Server.Environment)
	registry := app.NewRegistry(upstreamClient, cfg.Gateway.URL, cfg.Session.CookieTTL, audit)

	authHandler := handlers.NewAuthHandler(upstreamClient, registry, audit)
	conversationHandler := handlers.NewConversationHandler(upstreamClient)
	userHandler := handlers.NewUserHandler(upstreamClient)
	navigateHandler := handlers.NewNavigateHandler(registry)

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chat-bff"))
	router.Use(observability.HTTPMetricsMiddleware())

	sessionGuard := middleware.SessionGuard(registry)

	router.POST("/api/auth/login", authHandler.Login)
	router.POST("/api/auth/register", authHandler.Register)
	router.GET("/api/auth/verify", authHandler.Verify)
	router.POST("/api/auth/logout", authHandler.Logout)

	router.GET("/api/navigate", navigateHandler.Decide)

	router.GET("/api/conversations", sessionGuard, conversationHandler.List)
	router.GET("/api/conversations/user/:userId", sessionGuard, conversationHandler.ListForUser)
	router.POST("/api/conversations/:conversation_id/join", sessionGuard, conversationHandler.Join)
	router.GET("/api/conversations/:conversation_id/messages", sessionGuard, conversationHandler.Messages)
	router.POST("/api/conversations/:conversation_id/messages", sessionGuard, conversationHandler.Send)
	router.POST("/api/conversations/:conversation_id/focus", sessionGuard, conversationHandler.Focus)
	router.GET("/api/online", sessionGuard, conversationHandler.Online)
	router.GET("/api/users", sessionGuard, userHandler.List)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.Server.DebugRoutes)

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
