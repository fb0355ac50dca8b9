package dateplan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config carries the validation data. Everything has a working default,
// see DefaultConfig; callers override fields to tune the guardrails.
type Config struct {
	DefaultCity   string
	DefaultBudget int
	MinBudget     int
	MaxBudget     int
	// SupportedCities is matched case-insensitively.
	SupportedCities []string
	// KnownDateTypes is display vocabulary, not an allow-list. Unknown
	// non-empty date types pass validation untouched.
	KnownDateTypes []string
}

// DefaultConfig returns the production validation data: Indian metros and
// rupee budgets.
func DefaultConfig() Config {
	return Config{
		DefaultCity:   "Bangalore",
		DefaultBudget: 2000,
		MinBudget:     500,
		MaxBudget:     50000,
		SupportedCities: []string{
			"mumbai", "delhi", "bangalore", "bengaluru", "hyderabad",
			"chennai", "kolkata", "pune", "ahmedabad", "jaipur",
			"surat", "lucknow", "kanpur", "nagpur", "indore",
			"thane", "bhopal", "visakhapatnam", "pimpri-chinchwad",
			"patna", "gurgaon", "gurugram", "noida", "ghaziabad",
		},
		KnownDateTypes: []string{
			"romantic", "casual", "cozy", "budget", "budget-friendly", "formal", "fun",
		},
	}
}

// Validator applies the input guardrails to extracted plans. It never
// fails: every missing, malformed, or out-of-range field is corrected to
// a usable value and reported through Result.Messages.
type Validator struct {
	cfg    Config
	cities map[string]struct{}
	now    func() time.Time
}

// NewValidator builds a Validator on the real clock.
func NewValidator(cfg Config) *Validator {
	return newValidator(cfg, time.Now)
}

// NewValidatorAt pins the clock to a fixed instant. Tests use it to
// freeze "today" for the past-date guardrail.
func NewValidatorAt(cfg Config, now time.Time) *Validator {
	return newValidator(cfg, func() time.Time { return now })
}

func newValidator(cfg Config, now func() time.Time) *Validator {
	cities := make(map[string]struct{}, len(cfg.SupportedCities))
	for _, city := range cfg.SupportedCities {
		cities[strings.ToLower(city)] = struct{}{}
	}
	return &Validator{cfg: cfg, cities: cities, now: now}
}

// Validate checks and corrects a candidate plan. The clock is read once
// per call so every date comparison in the pass sees the same "today".
func (v *Validator) Validate(candidate CandidatePlan) Result {
	now := v.now()

	cityOK, cityMsg, city := v.validateCity(candidate.City)
	budgetOK, budgetMsg, budget := v.validateBudget(candidate.Budget)
	timingOK, timingMsg, timing := v.validateTiming(candidate.Timing, now)
	typeOK, typeMsg, dateType := v.validateDateType(candidate.DateType)

	var messages []string
	for _, msg := range []string{cityMsg, budgetMsg, timingMsg, typeMsg} {
		if msg != "" {
			messages = append(messages, msg)
		}
	}

	return Result{
		AllValid: cityOK && budgetOK && timingOK && typeOK,
		Messages: messages,
		Plan: Plan{
			City:                city,
			Budget:              budget,
			DateType:            dateType,
			Timing:              timing,
			NeedsWeather:        candidate.NeedsWeather,
			NeedsRestaurants:    candidate.NeedsRestaurants,
			SpecialRequirements: candidate.SpecialRequirements,
		},
	}
}

func (v *Validator) validateCity(city string) (bool, string, string) {
	cityLower := strings.ToLower(strings.TrimSpace(city))

	if cityLower == "" {
		return false, "City not specified", v.cfg.DefaultCity
	}

	if _, ok := v.cities[cityLower]; !ok {
		return false, fmt.Sprintf("City '%s' not supported. Using %s instead.", city, v.cfg.DefaultCity), v.cfg.DefaultCity
	}

	// Known city keeps the caller's casing.
	return true, "", city
}

func (v *Validator) validateBudget(budget any) (bool, string, int) {
	value, ok := coerceInt(budget)
	if !ok {
		return false, fmt.Sprintf("Invalid budget. Using default ₹%d.", v.cfg.DefaultBudget), v.cfg.DefaultBudget
	}

	if value < v.cfg.MinBudget {
		return false, fmt.Sprintf("Budget too low (minimum ₹%d). Adjusted to ₹%d.", v.cfg.MinBudget, v.cfg.MinBudget), v.cfg.MinBudget
	}

	if value > v.cfg.MaxBudget {
		return false, fmt.Sprintf("Budget too high (maximum ₹%d). Adjusted to ₹%d.", v.cfg.MaxBudget, v.cfg.MaxBudget), v.cfg.MaxBudget
	}

	return true, "", value
}

func (v *Validator) validateDateType(dateType string) (bool, string, string) {
	if strings.TrimSpace(dateType) == "" {
		return false, "Date type not specified. Using 'casual'.", "casual"
	}

	// Unknown non-empty types are allowed through untouched; the search
	// layer falls back to a generic query for them.
	return true, "", dateType
}

// coerceInt accepts the numeric shapes a JSON decode or an LLM response
// can produce for the budget field.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// KnownDateTypes returns the configured date-type vocabulary.
func (v *Validator) KnownDateTypes() []string {
	return append([]string(nil), v.cfg.KnownDateTypes...)
}

// DefaultCity returns the fallback city used when a request names an
// unsupported one.
func (v *Validator) DefaultCity() string {
	return v.cfg.DefaultCity
}

// SupportedCities returns the configured city allow-list, sorted.
func (v *Validator) SupportedCities() []string {
	cities := make([]string, 0, len(v.cities))
	for city := range v.cities {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// DisplayCities returns the allow-list in display casing.
func (v *Validator) DisplayCities() []string {
	cities := v.SupportedCities()
	for i, city := range cities {
		cities[i] = titleCase(city)
	}
	return cities
}

// SupportedCitySummary lists the first few supported cities for display.
func (v *Validator) SupportedCitySummary() string {
	cities := v.DisplayCities()
	if len(cities) > 10 {
		cities = cities[:10]
	}
	return strings.Join(cities, ", ") + ", and more..."
}

// titleCase capitalizes the first letter of each word, including after a
// hyphen ("pimpri-chinchwad" -> "Pimpri-Chinchwad").
func titleCase(s string) string {
	b := []byte(strings.ToLower(s))
	upperNext := true
	for i, c := range b {
		if upperNext && 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
		upperNext = c == ' ' || c == '-'
	}
	return string(b)
}
