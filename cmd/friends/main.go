package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"microblog/internal/config"
	"microblog/internal/db"
	"microblog/internal/friends"
	"microblog/internal/handlers"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/provision"
	"microblog/internal/rabbitmq"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
)

const serviceName = "friends"

func main() {
	cfg := config.LoadFriends()
	ctx := context.Background()

	shutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdown(ctx)

	database, err := db.Connect(ctx, cfg.DatabaseDSN, db.FriendsMigrations)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	if mode, reason := rabbitmq.Describe(publisher); reason != "" {
		log.Printf("audit publisher mode=%s reason=%s", mode, reason)
	} else {
		log.Printf("audit publisher mode=%s", mode)
	}
	audit := telemetry.NewAuditEmitter(publisher, "audit."+serviceName, serviceName, cfg.Environment)

	seeder := provision.NewCommandSeeder(cfg.SeedCommand, cfg.DatabaseDSN, cfg.SeedFile)
	svc := friends.NewService(repositories.NewFriendRepo(database), seeder)
	if cfg.SeedOnStart {
		if err := svc.Initialize(ctx); err != nil {
			log.Fatalf("failed to seed friends: %v", err)
		}
		log.Printf("friends table seeded from %s", cfg.SeedFile)
	}

	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		observability.HTTPMetricsMiddleware(serviceName),
		middleware.RequestID(),
	)

	router.GET("/metrics", observability.MetricsHandler())
	handlers.RegisterDebugRoutes(router, audit, handlers.DebugState{Service: serviceName, Publisher: publisher}, cfg.DebugRoutes)
	handlers.RegisterFriendsRoutes(router, handlers.NewFriendHandler(svc, audit))

	log.Printf("friends listening port=%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
