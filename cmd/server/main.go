package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dias221467/food-expiry-tracker/internal/config"
	"github.com/Dias221467/food-expiry-tracker/internal/database"
	"github.com/Dias221467/food-expiry-tracker/internal/expiry"
	"github.com/Dias221467/food-expiry-tracker/internal/gamification"
	"github.com/Dias221467/food-expiry-tracker/internal/handlers"
	"github.com/Dias221467/food-expiry-tracker/internal/jobs"
	"github.com/Dias221467/food-expiry-tracker/internal/repository"
	"github.com/Dias221467/food-expiry-tracker/internal/scheduler"
	"github.com/Dias221467/food-expiry-tracker/internal/services"
	"github.com/Dias221467/food-expiry-tracker/pkg/email"
	"github.com/Dias221467/food-expiry-tracker/pkg/logger"
	"github.com/Dias221467/food-expiry-tracker/pkg/middleware"
	"github.com/Dias221467/food-expiry-tracker/pkg/whatsapp"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	idxCtx, cancelIdx := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(idxCtx, db); err != nil {
		logger.Log.Fatalf("Failed to create indexes: %v", err)
	}
	cancelIdx()

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// --- External channels ---
	mailer := email.NewSender(cfg.Email)
	wa := whatsapp.NewClient(cfg.WhatsApp)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	activityService := services.NewActivityService(activityRepo)
	achievementService := services.NewAchievementService(achievementRepo, userRepo, itemRepo, activityService, gamification.DefaultCatalog())
	itemService := services.NewItemService(itemRepo, userRepo, alertRepo, achievementService, activityService)
	notificationService := services.NewNotificationService(alertRepo, userRepo, mailer, wa, cfg.DeliveryTimeout)
	challengeService := services.NewChallengeService(userRepo, gamification.DefaultChallenges())
	leaderboardService := services.NewLeaderboardService(userRepo, itemRepo)
	analyticsService := services.NewAnalyticsService(itemRepo, userRepo)
	alertService := services.NewAlertService(itemRepo, userRepo, alertRepo, cfg.ScanWorkers)
	dispatcher := services.NewNotificationDispatcher(alertRepo, userRepo, itemRepo, mailer, wa, services.DispatcherOptions{
		Timeout:     cfg.DeliveryTimeout,
		Batch:       cfg.DispatchBatch,
		MaxAttempts: cfg.MaxDeliveryAttempts,
		FrontendURL: cfg.FrontendURL,
	})

	// Day math follows TIMEZONE, the same zone request dates are parsed in.
	clock := expiry.ClockIn(cfg.Location)
	achievementService.SetClock(clock)
	itemService.SetClock(clock)
	analyticsService.SetClock(clock)
	alertService.SetClock(clock)

	alertHub := handlers.NewAlertHub(cfg.JWTSecret)
	alertService.SetPublisher(alertHub)
	reminderJob := jobs.NewReminderJob(alertService, dispatcher)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	itemHandler := handlers.NewItemHandler(itemService, cfg.Location)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	activityHandler := handlers.NewActivityHandler(activityService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	cronHandler := handlers.NewCronHandler(reminderJob, cfg.CronSecret)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/health", handlers.HealthHandler(db.Client())).Methods("GET")
	api.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	api.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	api.HandleFunc("/cron/run-reminders", cronHandler.RunRemindersHandler).Methods("POST")
	router.HandleFunc("/ws/alerts", alertHub.AlertWebSocketHandler)

	// Everything else requires a token
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protected.Use(middleware.UpdateLastActiveMiddleware(userService))

	protected.HandleFunc("/users/me", userHandler.MeHandler).Methods("GET")

	// Literal item routes must precede /{id}
	protected.HandleFunc("/items", itemHandler.CreateItemHandler).Methods("POST")
	protected.HandleFunc("/items", itemHandler.ListItemsHandler).Methods("GET")
	protected.HandleFunc("/items/expiring", itemHandler.ExpiringItemsHandler).Methods("GET")
	protected.HandleFunc("/items/stats", itemHandler.ItemStatsHandler).Methods("GET")
	protected.HandleFunc("/items/{id}", itemHandler.GetItemHandler).Methods("GET")
	protected.HandleFunc("/items/{id}", itemHandler.UpdateItemHandler).Methods("PUT")
	protected.HandleFunc("/items/{id}/consume", itemHandler.ConsumeItemHandler).Methods("PATCH")
	protected.HandleFunc("/items/{id}", itemHandler.DeleteItemHandler).Methods("DELETE")

	protected.HandleFunc("/achievements", achievementHandler.ListAchievementsHandler).Methods("GET")
	protected.HandleFunc("/achievements/check", achievementHandler.CheckAchievementsHandler).Methods("POST")
	protected.HandleFunc("/achievements/stats", achievementHandler.AchievementStatsHandler).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.ListChallengesHandler).Methods("GET")
	protected.HandleFunc("/challenges/active", challengeHandler.ActiveChallengesHandler).Methods("GET")

	protected.HandleFunc("/leaderboard", leaderboardHandler.TopHandler).Methods("GET")
	protected.HandleFunc("/leaderboard/community-stats", leaderboardHandler.CommunityStatsHandler).Methods("GET")
	protected.HandleFunc("/leaderboard/user-rank", leaderboardHandler.UserRankHandler).Methods("GET")

	protected.HandleFunc("/alerts", notificationHandler.GetUserAlertsHandler).Methods("GET")
	protected.HandleFunc("/alerts/{id}/read", notificationHandler.MarkAsReadHandler).Methods("PATCH")
	protected.HandleFunc("/alerts/{id}", notificationHandler.DeleteAlertHandler).Methods("DELETE")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferencesHandler).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferencesHandler).Methods("PUT")
	protected.HandleFunc("/notifications/test/email", notificationHandler.TestEmailHandler).Methods("POST")
	protected.HandleFunc("/notifications/test/whatsapp", notificationHandler.TestWhatsAppHandler).Methods("POST")

	protected.HandleFunc("/activity", activityHandler.RecentActivityHandler).Methods("GET")
	protected.HandleFunc("/analytics/overview", analyticsHandler.OverviewHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", handlers.CronSecretHeader},
		AllowCredentials: true,
	})

	cronRunner, err := scheduler.StartReminderCron(cfg.ReminderSchedule, cfg.Location, cfg.RunRemindersOnStartup,
		scheduler.RunnerFunc(func(ctx context.Context) error {
			_, err := reminderJob.Run(ctx)
			return err
		}))
	if err != nil {
		logger.Log.Fatalf("Failed to start reminder cron: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("HTTP server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Log.Info("Shutting down")

	// Wait for a running reminder pass before closing the database.
	<-cronRunner.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Warn("Graceful shutdown failed")
	}
	if err := db.Client().Disconnect(ctx); err != nil {
		logger.Log.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
}
