package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-date-planner/internal/app"
	"ai-date-planner/internal/config"
	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/llm"
	"ai-date-planner/internal/metrics"
	"ai-date-planner/internal/places"
	"ai-date-planner/internal/planner"
	"ai-date-planner/internal/weather"

	"github.com/joho/godotenv"
)

const banner = `
╔══════════════════════════════════════════════════════════╗
║                                                          ║
║        💘 AI Date Planner Assistant 💘                    ║
║                                                          ║
║     Plan the perfect date with AI-powered insights!      ║
║                                                          ║
╚══════════════════════════════════════════════════════════╝
`

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	fmt.Print(banner, "\n")
	fmt.Println("🔧 Initializing AI agents...")

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Printf("❌ Error initializing agents: %v\n", err)
		fmt.Println("\nPlease ensure:")
		fmt.Println("1. OPENAI_API_KEY is set in .env file")
		fmt.Println("2. GOOGLE_PLACES_API is set in .env file")
		fmt.Println("3. OPEN_WEATHER_API is set in .env file")
		os.Exit(1)
	}

	intentGen, synthGen, err := buildGenerators(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM clients: %v", err)
	}
	defer closeGenerator(intentGen)
	defer closeGenerator(synthGen)

	placesClient, err := places.NewClient(cfg.PlacesAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize Places client: %v", err)
	}
	weatherClient := weather.NewClient(cfg)

	validator := dateplan.NewValidator(validatorConfig(cfg))
	metricsStore := metrics.NewStore()

	datePlanner := planner.NewPlanner(intentGen, synthGen, validator, placesClient, weatherClient)
	application := app.NewApp(datePlanner, metricsStore, os.Stdout)

	fmt.Println("✅ All agents ready!")
	printSeparator()

	request := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if request == "" {
		request = promptForRequest()
	}
	if request == "" {
		fmt.Println("❌ No input provided. Exiting.")
		return
	}

	printSeparator()

	if err := application.PlanDate(ctx, request); err != nil {
		fmt.Printf("\n❌ Unexpected error: %v\n", err)
		os.Exit(1)
	}
}

// buildGenerators returns the intent and synthesis generators for the
// configured provider. Intent extraction wants deterministic JSON, plan
// synthesis a more creative voice, so each runs at its own temperature.
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

func promptForRequest() string {
	fmt.Println("📝 Tell me about your ideal date!")
	fmt.Println("\nExamples:")
	fmt.Println(`  • "Plan a romantic dinner date in Mumbai under ₹2500"`)
	fmt.Println(`  • "Suggest a cozy café date in Delhi this weekend"`)
	fmt.Println(`  • "Plan an indoor date in Bangalore if it rains"`)
	fmt.Println(`  • "Find a budget-friendly first date in Pune"`)
	fmt.Println()
	fmt.Print("Your request: ")

	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func printSeparator() {
	fmt.Print("\n" + strings.Repeat("=", 60) + "\n\n")
}
