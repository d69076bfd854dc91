package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"nagarseva/backend/internal/analysis"
	"nagarseva/backend/internal/api/handler"
	"nagarseva/backend/internal/media"
	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/push"
	"nagarseva/backend/internal/scheduler"
	"nagarseva/backend/internal/storage"
	"nagarseva/backend/internal/submission"
	"nagarseva/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "user"),
		envOr("DB_PASSWORD", "password"),
		envOr("DB_NAME", "nagarsevadb"),
		envOr("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.Complaint{},
		&models.StatusUpdate{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.Println("Starting NagarSeva Backend...")

	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	mediaDir := envOr("MEDIA_DIR", "./data/media")
	publicBaseURL := envOr("PUBLIC_BASE_URL", "http://localhost:8080")
	mediaStore, err := media.NewDiskStore(mediaDir, publicBaseURL)
	if err != nil {
		log.Fatalf("Failed to set up media store: %v", err)
	}

	gate := analysis.NewGate(envOr("CLASSIFIER_URL", "http://localhost:8090"))

	// 2. Optional Telegram push channel
	var pusher scheduler.Pusher
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		notifier, err := telegram.NewNotifier(botToken)
		if err != nil {
			log.Printf("ERROR: Telegram notifier disabled: %v", err)
		} else {
			pusher = notifier
		}
	}

	// 3. Core services
	sched := scheduler.NewService(s, pusher)
	hub := push.NewHub(s)
	pipeline := submission.NewService(s, mediaStore, sched)
	if os.Getenv("DISABLE_AUTO_ROUTING") == "true" {
		pipeline.AutoRoute = false
	}

	// 4. Background goroutines
	go hub.Run()   // push fan-out
	go sched.Run() // notification worker loop

	// 5. Gin routing
	r := gin.Default()
	h := handler.NewHandler(pipeline, gate, s, hub)

	r.GET("/token", h.GetReporterToken)
	r.POST("/complaints/analyze", h.AnalyzeMedia)
	r.POST("/complaints", h.SubmitComplaint)
	r.GET("/complaints/:code", h.GetComplaint)
	r.GET("/complaints/:code/notifications", h.ListComplaintNotifications)
	r.GET("/notifications", h.ListMyNotifications)
	r.POST("/notifications/:id/read", h.MarkNotificationRead)
	r.GET("/ws", h.ServeWebSocket)
	r.Static("/media", mediaDir)

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
