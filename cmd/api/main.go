package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobswipe-backend/config"
	_ "go-jobswipe-backend/docs" // Important for Swagger
	"go-jobswipe-backend/internal/delivery/http/middleware"
	v1 "go-jobswipe-backend/internal/delivery/http/v1"
	"go-jobswipe-backend/internal/domain"
	"go-jobswipe-backend/internal/realtime"
	"go-jobswipe-backend/internal/repository/postgres"
	"go-jobswipe-backend/internal/usecase"
	"go-jobswipe-backend/pkg/auth"
	"go-jobswipe-backend/pkg/database"
	"go-jobswipe-backend/pkg/logger"
	"go-jobswipe-backend/pkg/queue"
	"go-jobswipe-backend/pkg/redis"
	"go-jobswipe-backend/pkg/security"
	"go-jobswipe-backend/pkg/validation"
)

// @title           JobSwipe Backend API
// @version         1.0
// @description     Applications, matches, chat and realtime presence for JobSwipe.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting jobswipe backend", "port", cfg.Port, "environment", cfg.Environment)
	audit := security.InitSecurityLogger("jobswipe-api", cfg.Environment)
	defer audit.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(rootCtx, cfg.DBUrl, 10*time.Second)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.AutoMigrate {
		if err := postgres.Migrate(rootCtx, dbPool); err != nil {
			logger.Log.Error("Schema migration failed", "error", err)
			os.Exit(1)
		}
		logger.Log.Info("Schema is up to date")
	}
	txManager := database.NewTxManager(dbPool)

	// 4. Setup Redis (optional)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(rootCtx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, running single-node", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Realtime
	hub := realtime.NewHub()
	var broker realtime.Broker = realtime.NewLocalBroker(hub)
	if rc := redis.Client(); rc != nil {
		broker = realtime.NewRedisBroker(rc, hub)
	}
	var loops background
	loops.Go(rootCtx, "realtime-broker", broker.Run)
	bus := realtime.NewEventBus(broker)
	loops.Go(rootCtx, "event-bus", func(ctx context.Context) error {
		bus.Run(ctx)
		return nil
	})

	presence := realtime.NewPresenceTracker(func(change domain.PresenceChange) {
		bus.Publish(rootCtx, domain.TopicPresence, domain.NewPresenceEvent(change))
	})

	// 6. Setup Notification Queue (optional)
	var enqueuer queue.Enqueuer
	var queueClient *queue.Client
	var worker *queue.Server
	queueOpts := queue.Options{RedisURL: cfg.QueueRedisURL, Queue: "notifications"}
	if cfg.QueueRedisURL != "" {
		if queueClient, err = queue.NewClient(queueOpts); err != nil {
			logger.Log.Warn("Queue client unavailable, delivering notifications in-process", "error", err)
		} else if worker, err = queue.NewServer(queueOpts); err != nil {
			logger.Log.Warn("Queue worker unavailable, delivering notifications in-process", "error", err)
			_ = queueClient.Close()
			queueClient = nil
		} else {
			enqueuer = queueClient
		}
	}

	// 7. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	matchRepo := postgres.NewMatchRepository(dbPool)
	roomRepo := postgres.NewChatRoomRepository(dbPool)
	messageRepo := postgres.NewMessageRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)

	// 8. Setup UseCases
	notifications := usecase.NewNotificationService(notificationRepo, bus, enqueuer, cfg.QueryTimeout)
	if worker != nil {
		worker.Register(usecase.TaskDeliverNotification, notifications.HandleTask)
		loops.Go(rootCtx, "notification-worker", worker.Run)
	}

	chatUC := usecase.NewChatUsecase(usecase.ChatDependencies{
		Rooms:    roomRepo,
		Messages: messageRepo,
		Users:    userRepo,
		Matches:  matchRepo,
		Profiles: map[string]domain.ProfileLookup{
			domain.RoleSeeker:  postgres.NewSeekerProfileLookup(dbPool),
			domain.RoleCompany: postgres.NewCompanyProfileLookup(dbPool),
		},
		Graph:     postgres.NewConnectionGraph(dbPool),
		Presence:  presence,
		Publisher: bus,
		Notifier:  notifications,
		Validate:  validation.New(),
		Audit:     audit,
		Timeout:   cfg.QueryTimeout,
	})
	matchUC := usecase.NewMatchUsecase(matchRepo, chatUC, notifications, cfg.QueryTimeout)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, matchUC, txManager, audit, cfg.QueryTimeout)
	healthUC := usecase.NewHealthUsecase(
		map[string]usecase.DependencyCheck{"database": dbPool.Ping},
		map[string]usecase.DependencyCheck{"redis": func(ctx context.Context) error {
			if redis.Client() == nil {
				return nil
			}
			return redis.HealthCheck(ctx)
		}},
		2*time.Second,
	)

	gateway := realtime.NewGateway(hub, presence, chatUC, audit, realtime.GatewayOptions{
		PingInterval:    cfg.WSPingInterval,
		LivenessTimeout: cfg.WSLivenessTimeout,
	})
	sweeper := realtime.NewSweeper(cfg.PresenceSweepSpec, cfg.WSLivenessTimeout, presence, hub, audit)
	if err := sweeper.Start(); err != nil {
		logger.Log.Error("Invalid presence sweep schedule", "spec", cfg.PresenceSweepSpec, "error", err)
		os.Exit(1)
	}

	// 9. Setup Auth
	// Supabase URL is like https://xyz.supabase.co
	var jwks *auth.Provider
	if cfg.SupabaseUrl != "" {
		jwks = auth.NewProvider(cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json")
	}
	authenticator := middleware.NewAuthenticator(auth.NewVerifier(cfg.SupabaseJWTSecret, jwks), userRepo, audit)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicationUC: applicationUC,
		MatchUC:       matchUC,
		ChatUC:        chatUC,
		NotifyUC:      notifications,
		HealthUC:      healthUC,
		Presence:      presence,
		Sessions:      gateway,
		Authenticator: authenticator,
		Origins:       middleware.NewOriginPolicy(cfg.FrontendURL, cfg.IsProduction()),
		Audit:         audit,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	// Hijacked websockets are not covered by Shutdown.
	hub.Close()
	sweeper.Stop()
	notifications.Wait()
	stop()
	if !loops.Wait(ctx) {
		logger.Log.Warn("Background loops did not stop before the shutdown deadline")
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}

	logger.Log.Info("Server exiting")
}
