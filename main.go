package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hundredbot/config"
	"hundredbot/handlers"
	"hundredbot/middleware"
	"hundredbot/models"
	"hundredbot/routes"
	"hundredbot/services"
	"hundredbot/store"
	"hundredbot/telegram"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.Question{},
		&models.Answer{},
		&models.Game{},
		&models.GameScore{},
		&models.GameRound{},
		&models.RoundQuestion{},
		&models.RoundQuestionAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	redisClient := config.InitRedis(cfg)

	gameStore := store.NewGormStore(db)
	stateCache := services.NewStateCache(redisClient)

	hub := services.NewHub(stateCache)
	go hub.Run()

	// Game notifications fan out to Telegram and websocket spectators.
	notifiers := services.MultiNotifier{services.NewHubNotifier(hub)}
	var botClient *telegram.Client
	if cfg.BotToken != "" {
		botClient = telegram.NewClient(cfg.BotToken)
		notifiers = append(notifiers, botClient)
	} else {
		log.Println("BOT_TOKEN not set, running without Telegram delivery")
		notifiers = append(notifiers, services.LogNotifier{})
	}

	joinWindow := time.Duration(cfg.JoinWindowSeconds) * time.Second
	orchestrator := services.NewOrchestrator(gameStore, notifiers, stateCache, quartz.NewReal(), joinWindow)
	sessions := services.NewSessions(orchestrator)

	authService := services.NewAuthService(db, cfg.JWTSecret)
	questionService := services.NewQuestionService(db)

	authHandler := handlers.NewAuthHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService)
	gameHandler := handlers.NewGameHandler(gameStore, stateCache)

	router := gin.Default()
	router.Use(middleware.CORS())
	routes.SetupRoutes(router, authHandler, questionHandler, gameHandler, hub, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if botClient != nil {
		poller := telegram.NewPoller(botClient, sessions)
		g.Go(func() error {
			if err := poller.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server error:", err)
	}
	log.Println("Server stopped")
}
