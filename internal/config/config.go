package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	defaultOpenAIBaseURL      = "https://openrouter.ai/api/v1"
	defaultOpenAIModel        = "stepfun/step-3.5-flash:free"
	defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
)

// Config holds the configuration for the application.
type Config struct {
	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string

	PlacesAPIKey       string
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// Validator overrides (zero values mean "use built-in defaults")
	DefaultCity   string
	DefaultBudget int

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := envOrDefault("LLM_PROVIDER", ProviderOpenRouter)
	if provider != ProviderOpenRouter && provider != ProviderGemini {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", provider, ProviderOpenRouter, ProviderGemini)
	}

	openAIAPIKey := os.Getenv("OPENAI_API_KEY")
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	switch provider {
	case ProviderOpenRouter:
		if openAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}

	placesAPIKey := os.Getenv("GOOGLE_PLACES_API")
	if placesAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_PLACES_API environment variable not set")
	}

	weatherAPIKey := os.Getenv("OPEN_WEATHER_API")
	if weatherAPIKey == "" {
		return nil, fmt.Errorf("OPEN_WEATHER_API environment variable not set")
	}

	var defaultBudget int
	if raw := os.Getenv("DEFAULT_BUDGET"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("DEFAULT_BUDGET must be a number: %w", err)
		}
		defaultBudget = parsed
	}

	// Telegram Config (Optional for CLI, required for the bot surface)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramWebhookURL := os.Getenv("TELEGRAM_WEBHOOK_URL")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		LLMProvider:         provider,
		OpenAIAPIKey:        openAIAPIKey,
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", defaultOpenAIModel),
		GeminiAPIKey:        geminiAPIKey,
		PlacesAPIKey:        placesAPIKey,
		OpenWeatherAPIKey:   weatherAPIKey,
		OpenWeatherBaseURL:  envOrDefault("OPENWEATHER_BASE_URL", defaultOpenWeatherBaseURL),
		DefaultCity:         os.Getenv("DEFAULT_CITY"),
		DefaultBudget:       defaultBudget,
		TelegramBotToken:    telegramBotToken,
		TelegramWebhookURL:  telegramWebhookURL,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
