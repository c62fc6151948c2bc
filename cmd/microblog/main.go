package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"microblog/internal/clients"
	"microblog/internal/config"
	"microblog/internal/db"
	"microblog/internal/handlers"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/rabbitmq"
	"microblog/internal/repositories"
	"microblog/internal/telemetry"
	"microblog/internal/timeline"
	"microblog/internal/views"
	"microblog/internal/ws"
)

const serviceName = "microblog"

func main() {
	cfg := config.LoadMicroblog()
	ctx := context.Background()

	shutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdown(ctx)

	database, err := db.Connect(ctx, cfg.DatabaseDSN, db.MicroblogMigrations)
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

	userRepo := repositories.NewUserRepo(database)
	tweetRepo := repositories.NewTweetRepo(database)
	friendsClient := clients.NewFriendsClient(cfg.FriendsOrigin, &http.Client{Timeout: cfg.FriendsTimeout})
	tl := timeline.NewService(tweetRepo, userRepo)
	hub := ws.NewHub()

	store := sessions.NewFilesystemStore(cfg.SessionDir, []byte(cfg.SessionSecret))
	store.Options.HttpOnly = true

	router := gin.New()
	router.SetHTMLTemplate(views.MustTemplates())
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		observability.HTTPMetricsMiddleware(serviceName),
		middleware.RequestID(),
		middleware.Session(store, cfg.SessionName),
		middleware.CurrentUser(userRepo),
	)

	router.GET("/metrics", observability.MetricsHandler())
	handlers.RegisterDebugRoutes(router, audit, handlers.DebugState{Service: serviceName, Publisher: publisher, Hub: hub}, cfg.DebugRoutes)
	handlers.RegisterMicroblogRoutes(router, handlers.Microblog{
		Auth:       handlers.NewAuthHandler(userRepo, audit),
		Timeline:   handlers.NewTimelineHandler(tl, userRepo, friendsClient, hub, audit),
		Follow:     handlers.NewFollowHandler(friendsClient, hub, audit),
		Initialize: handlers.NewInitializeHandler(tweetRepo, userRepo, friendsClient, cfg.SeedTweetCeiling, cfg.SeedUserCeiling, audit),
		Live:       ws.NewTimelineWebSocketHandler(hub, friendsClient),
	})

	log.Printf("microblog listening port=%s friends=%s", cfg.Port, cfg.FriendsOrigin)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
