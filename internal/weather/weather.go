package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-date-planner/internal/config"
)

// Forecast is an evening weather snapshot for the planned date.
type Forecast struct {
	Temperature        float64 `json:"temperature"`
	FeelsLike          float64 `json:"feels_like"`
	Condition          string  `json:"condition"`
	Description        string  `json:"description"`
	Humidity           int     `json:"humidity"`
	RainProbability    float64 `json:"rain_probability"`
	WillRain           bool    `json:"will_rain"`
	SuitableForOutdoor bool    `json:"suitable_for_outdoor"`
}

// Client fetches weather forecasts for a city.
type Client interface {
	// GetForecast returns the forecast for the target day, preferring the
	// evening window. A (nil, nil) return means the API had no usable
	// data for the city; that is not an error.
	GetForecast(ctx context.Context, city string, daysAhead int) (*Forecast, error)
}

// openWeatherClient is a client for the OpenWeather API.
type openWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenWeather API client.
func NewClient(cfg *config.Config) Client {
	return &openWeatherClient{
		apiKey:  cfg.OpenWeatherAPIKey,
		baseURL: cfg.OpenWeatherBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type weatherMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
}

type weatherCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type forecastSlot struct {
	Dt      int64              `json:"dt"`
	Main    weatherMain        `json:"main"`
	Weather []weatherCondition `json:"weather"`
	Pop     float64            `json:"pop"`
}

// The forecast endpoint reports cod as a string, the current-weather
// endpoint as a number.
type forecastResponse struct {
	Cod  string         `json:"cod"`
	List []forecastSlot `json:"list"`
}

type currentResponse struct {
	Cod     int                `json:"cod"`
	Main    weatherMain        `json:"main"`
	Weather []weatherCondition `json:"weather"`
}

// GetForecast looks up the 3-hourly forecast for city and picks the slot
// for the target day, falling back to current conditions when the day is
// beyond the forecast horizon.
func (c *openWeatherClient) GetForecast(ctx context.Context, city string, daysAhead int) (*Forecast, error) {
	var data forecastResponse
	if err := c.getJSON(ctx, "/forecast", city, &data); err != nil {
		return nil, err
	}
	if data.Cod != "200" {
		return nil, nil
	}

	targetDate := time.Now().AddDate(0, 0, daysAhead).Format("2006-01-02")
	slot := pickEveningSlot(data.List, targetDate)
	if slot == nil {
		return c.currentWeather(ctx, city)
	}
	return parseForecastSlot(*slot), nil
}

func (c *openWeatherClient) currentWeather(ctx context.Context, city string) (*Forecast, error) {
	var data currentResponse
	if err := c.getJSON(ctx, "/weather", city, &data); err != nil {
		return nil, err
	}
	if data.Cod != 200 {
		return nil, nil
	}

	condition, description := primaryCondition(data.Weather)
	willRain := isRainCondition(condition)
	rainProb := 0.0
	if willRain {
		rainProb = 100
	}

	return &Forecast{
		Temperature:        round1(data.Main.Temp),
		FeelsLike:          round1(data.Main.FeelsLike),
		Condition:          condition,
		Description:        description,
		Humidity:           data.Main.Humidity,
		RainProbability:    rainProb,
		WillRain:           willRain,
		SuitableForOutdoor: !willRain && data.Main.Temp >= 15 && data.Main.Temp <= 35,
	}, nil
}

func (c *openWeatherClient) getJSON(ctx context.Context, path, city string, out any) error {
	params := url.Values{}
	params.Set("q", city+",IN")
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}

// pickEveningSlot prefers the 18:00-21:00 window of the target day and
// falls back to the day's first slot.
func pickEveningSlot(slots []forecastSlot, targetDate string) *forecastSlot {
	var firstOfDay *forecastSlot
	for i := range slots {
		slotTime := time.Unix(slots[i].Dt, 0)
		if slotTime.Format("2006-01-02") != targetDate {
			continue
		}
		if hour := slotTime.Hour(); hour >= 18 && hour <= 21 {
			return &slots[i]
		}
		if firstOfDay == nil {
			firstOfDay = &slots[i]
		}
	}
	return firstOfDay
}

func parseForecastSlot(slot forecastSlot) *Forecast {
	condition, description := primaryCondition(slot.Weather)
	rainProb := slot.Pop * 100
	willRain := rainProb > 50 || isRainCondition(condition)

	return &Forecast{
		Temperature:        round1(slot.Main.Temp),
		FeelsLike:          round1(slot.Main.FeelsLike),
		Condition:          condition,
		Description:        description,
		Humidity:           slot.Main.Humidity,
		RainProbability:    round1(rainProb),
		WillRain:           willRain,
		SuitableForOutdoor: !willRain && slot.Main.Temp >= 15 && slot.Main.Temp <= 35,
	}
}

// Verdict reports whether the forecast suits a date and why. Missing data
// never blocks the plan.
func Verdict(f *Forecast) (bool, string) {
	if f == nil {
		return true, "Weather data unavailable, plan accordingly"
	}

	if f.WillRain {
		return false, fmt.Sprintf("Rain expected (%.1f%% chance). Consider indoor venues.", f.RainProbability)
	}

	if f.Temperature < 15 {
		return false, fmt.Sprintf("Cold weather (%.1f°C). Suggest cozy indoor venues.", f.Temperature)
	}
	if f.Temperature > 35 {
		return false, fmt.Sprintf("Very hot (%.1f°C). Recommend air-conditioned venues.", f.Temperature)
	}

	return true, fmt.Sprintf("Pleasant weather (%.1f°C, %s). Great for outdoor or indoor dates!", f.Temperature, f.Description)
}

func primaryCondition(conditions []weatherCondition) (string, string) {
	if len(conditions) == 0 {
		return "", ""
	}
	return conditions[0].Main, capitalize(conditions[0].Description)
}

func isRainCondition(condition string) bool {
	switch strings.ToLower(condition) {
	case "rain", "drizzle", "thunderstorm":
		return true
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
