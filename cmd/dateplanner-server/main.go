package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-date-planner/internal/config"
	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/llm"
	"ai-date-planner/internal/metrics"
	"ai-date-planner/internal/places"
	"ai-date-planner/internal/planner"
	"ai-date-planner/internal/telegram"
	"ai-date-planner/internal/weather"
	"ai-date-planner/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

const metricsRetentionDays = 30

func main() {
	_ = godotenv.Load()

	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize LLM clients
	intentGen, synthGen, err := buildGenerators(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM clients: %v", err)
	}
	defer closeGenerator(intentGen)
	defer closeGenerator(synthGen)

	// 3. Initialize data clients
	placesClient, err := places.NewClient(cfg.PlacesAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize Places client: %v", err)
	}
	weatherClient := weather.NewClient(cfg)

	validator := dateplan.NewValidator(validatorConfig(cfg))
	metricsStore := metrics.NewStore()
	go cleanupLoop(metricsStore)

	// 4. Initialize the planning pipeline
	datePlanner := planner.NewPlanner(intentGen, synthGen, validator, placesClient, weatherClient)

	// 5. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	web.RegisterRoutes(r, web.NewHandler(datePlanner, validator, metricsStore))

	// 6. Telegram surface mounts only when a bot token is configured
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, datePlanner, validator, metricsStore)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram Bot: %v", err)
		}
		bot.RegisterRoutes(r)
	}

	// 7. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Date Planner Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// buildGenerators returns the intent and synthesis generators for the
// configured provider, each at its own temperature.
func buildGenerators(ctx context.Context, cfg *config.Config) (llm.TextGenerator, llm.TextGenerator, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		intentGen, err := llm.NewGeminiClient(ctx, cfg, planner.IntentTemperature, true)
		if err != nil {
			return nil, nil, err
		}
		synthGen, err := llm.NewGeminiClient(ctx, cfg, planner.SynthesisTemperature, false)
		if err != nil {
			return nil, nil, err
		}
		return intentGen, synthGen, nil
	}

	intentGen := llm.NewOpenRouterClient(cfg, planner.IntentTemperature)
	synthGen := llm.NewOpenRouterClient(cfg, planner.SynthesisTemperature)
	return intentGen, synthGen, nil
}

func closeGenerator(gen llm.TextGenerator) {
	if closer, ok := gen.(llm.Closer); ok {
		closer.Close()
	}
}

func validatorConfig(cfg *config.Config) dateplan.Config {
	vcfg := dateplan.DefaultConfig()
	if cfg.DefaultCity != "" {
		vcfg.DefaultCity = cfg.DefaultCity
	}
	if cfg.DefaultBudget > 0 {
		vcfg.DefaultBudget = cfg.DefaultBudget
	}
	return vcfg
}

// cleanupLoop drops metric records past the retention window once a day.
func cleanupLoop(store *metrics.Store) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		removed := store.Cleanup(metricsRetentionDays)
		if removed > 0 {
			log.Printf("Removed %d old metric records", removed)
		}
	}
}
