package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/auth"
	"messaging-service/internal/db"
	"messaging-service/internal/delivery"
	"messaging-service/internal/dispatch"
	"messaging-service/internal/handlers"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/registry"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

const serviceName = "messaging-service"

func main() {
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, serviceName, getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	auditPublisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "messaging_events"))
	defer auditPublisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.Mode(auditPublisher))

	eventPublisher, err := observability.NewAMQPPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "messaging_events"))
	if err != nil {
		log.Printf("ws event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	emitter := telemetry.NewAuditEmitter(auditPublisher, "audit.messaging", serviceName, getEnv("ENVIRONMENT", "dev"))
	reporter := telemetry.NewAuditReporter(emitter)

	messageRepo := repositories.NewMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	preferenceRepo := repositories.NewPreferenceRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	connRegistry := registry.New(reporter)
	router := delivery.NewRouter(connRegistry, messageRepo, notificationRepo, preferenceRepo, profileRepo, reporter)
	dispatcher := dispatch.New(connRegistry, router, messageRepo, reporter)

	verifier := auth.NewJWTVerifier(getEnv("JWT_SECRET", "dev-secret"))
	socketHandler := ws.NewSocketHandler(dispatcher, verifier)

	messageHandler := handlers.NewMessageHandler(messageRepo, profileRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, preferenceRepo)

	engine := gin.Default()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(serviceName))
	engine.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	engine.GET("/conversations/:contact_id/messages", authMiddleware, messageHandler.GetConversation)
	engine.GET("/notifications", authMiddleware, notificationHandler.ListNotifications)
	engine.POST("/preferences/:sender_id", authMiddleware, notificationHandler.SetPreference)

	engine.GET("/ws", socketHandler.Handle)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(engine, emitter, getEnv("DEBUG_ENDPOINTS", "") == "true")

	port := getEnv("PORT", "8083")
	if err := engine.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
