package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/holabot/internal/ai"
	"github.com/example/holabot/internal/cache"
	"github.com/example/holabot/internal/carrier"
	"github.com/example/holabot/internal/commands"
	"github.com/example/holabot/internal/config"
	"github.com/example/holabot/internal/conversation"
	"github.com/example/holabot/internal/database"
	"github.com/example/holabot/internal/dedup"
	"github.com/example/holabot/internal/importer"
	"github.com/example/holabot/internal/lesson"
	"github.com/example/holabot/internal/onboarding"
	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/internal/ratelimit"
	"github.com/example/holabot/internal/router"
	"github.com/example/holabot/internal/scheduler"
	"github.com/example/holabot/internal/webhook"
)

func main() {
	importPath := flag.String("import", "", "import a vocabulary catalog file (xlsx or csv) and exit")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	vocabRepo := database.NewVocabRepository(db)

	if *importPath != "" {
		runImport(vocabRepo, *importPath)
		return
	}

	redis, err := cache.Open(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	userRepo := database.NewUserRepository(db)
	userVocabRepo := database.NewUserVocabRepository(db)
	activityRepo := database.NewActivityRepository(db)
	sessionRepo := database.NewSessionRepository(db)

	claude, err := ai.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.GenerationTimeout)
	if err != nil {
		log.Fatalf("Failed to create generation client: %v", err)
	}
	sendblue := carrier.New(cfg.SendblueBaseURL, cfg.SendblueAPIKey, cfg.SendblueAPISecret, cfg.StatusCallbackURL, cfg.CarrierTimeout)

	accountant := progression.New(userRepo, activityRepo)
	conv := conversation.New(sessionRepo, userVocabRepo, vocabRepo, claude)
	lessons := lesson.New(vocabRepo, userVocabRepo, userRepo, activityRepo, accountant, conv)
	ob := onboarding.New(userRepo, accountant)
	cmds := commands.New(userVocabRepo, accountant)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	msgRouter := router.New(userRepo, ob, cmds, conv, lessons, rng)

	limiter := ratelimit.New(redis.Client(), cfg.RateLimitWindow, cfg.RateLimitMax)
	guard := dedup.New(redis.Client())

	hooks := webhook.New(limiter, guard, msgRouter, sendblue, userRepo, activityRepo)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	hooks.Register(e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(userRepo, lessons, accountant, sendblue)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Printf("Listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Stopped")
}

func runImport(vocabRepo *database.VocabRepository, path string) {
	imp := importer.New(vocabRepo)
	result, err := imp.Import(context.Background(), importer.DefaultConfig(path))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import finished: %d processed, %d created, %d updated, %d skipped",
		result.TotalProcessed, result.Created, result.Updated, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
}
