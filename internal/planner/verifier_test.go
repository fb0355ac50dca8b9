package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-date-planner/internal/places"
	"ai-date-planner/internal/shared"
)

func sampleExecution() ExecutionResult {
	return ExecutionResult{
		Plan:        executorPlan(),
		Restaurants: sampleRestaurants(),
		Weather:     sampleForecast(),
		Errors:      []string{},
	}
}

func TestVerify(t *testing.T) {
	rainy := sampleForecast()
	rainy.WillRain = true
	rainy.RainProbability = 80.0
	rainy.SuitableForOutdoor = false

	hot := sampleForecast()
	hot.Temperature = 38.2

	cold := sampleForecast()
	cold.Temperature = 9.5

	rainyAndHot := sampleForecast()
	rainyAndHot.WillRain = true
	rainyAndHot.Temperature = 36.0

	cases := []struct {
		name         string
		exec         func() ExecutionResult
		wantSuitable bool
		wantIssues   []string
	}{
		{
			name: "PleasantWeather",
			exec: func() ExecutionResult {
				return sampleExecution()
			},
			wantSuitable: true,
			wantIssues:   []string{},
		},
		{
			name: "RainWithoutIndoorPlan",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = rainy
				return e
			},
			wantSuitable: false,
			wantIssues:   []string{"Rain expected - filtering for indoor venues"},
		},
		{
			name: "RainWithIndoorPlan",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = rainy
				e.Plan.SpecialRequirements = "Indoor only"
				return e
			},
			wantSuitable: true,
			wantIssues:   []string{},
		},
		{
			name: "HotWeather",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = hot
				return e
			},
			wantSuitable: true,
			wantIssues:   []string{"Very hot weather - recommend air-conditioned venues"},
		},
		{
			name: "ColdWeather",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = cold
				return e
			},
			wantSuitable: true,
			wantIssues:   []string{"Cold weather - recommend cozy indoor venues"},
		},
		{
			name: "RainAndHeatStack",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = rainyAndHot
				return e
			},
			wantSuitable: false,
			wantIssues: []string{
				"Rain expected - filtering for indoor venues",
				"Very hot weather - recommend air-conditioned venues",
			},
		},
		{
			name: "NoWeatherData",
			exec: func() ExecutionResult {
				e := sampleExecution()
				e.Weather = nil
				return e
			},
			wantSuitable: true,
			wantIssues:   []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := verify(tc.exec())

			if v.WeatherSuitable != tc.wantSuitable {
				t.Errorf("WeatherSuitable = %v, want %v", v.WeatherSuitable, tc.wantSuitable)
			}
			if len(v.Issues) != len(tc.wantIssues) {
				t.Fatalf("Issues = %v, want %v", v.Issues, tc.wantIssues)
			}
			for i, want := range tc.wantIssues {
				if v.Issues[i] != want {
					t.Errorf("Issue %d = %q, want %q", i, v.Issues[i], want)
				}
			}
			if !v.BudgetSatisfied {
				t.Error("BudgetSatisfied should always hold after validation")
			}
		})
	}
}

func TestVerifyDataPresence(t *testing.T) {
	empty := ExecutionResult{Plan: executorPlan()}
	v := verify(empty)
	if v.HasRestaurants || v.HasWeather {
		t.Errorf("Expected missing data flagged, got %+v", v)
	}

	full := sampleExecution()
	v = verify(full)
	if !v.HasRestaurants || !v.HasWeather {
		t.Errorf("Expected data presence flagged, got %+v", v)
	}
}

func TestFilterRestaurantsCapsAtFive(t *testing.T) {
	many := make([]places.Restaurant, 7)
	for i := range many {
		many[i] = places.Restaurant{Name: fmt.Sprintf("Venue %d", i+1)}
	}

	got := filterRestaurants(many)
	if len(got) != 5 {
		t.Fatalf("Expected 5 restaurants, got %d", len(got))
	}
	if got[0].Name != "Venue 1" || got[4].Name != "Venue 5" {
		t.Error("Filter should keep the leading entries in order")
	}

	few := filterRestaurants(many[:2])
	if len(few) != 2 {
		t.Errorf("Short lists should pass through, got %d", len(few))
	}
}

func TestBuildPlanContext(t *testing.T) {
	exec := sampleExecution()
	verification := Verification{Issues: []string{"Cold weather - recommend cozy indoor venues"}}

	got := buildPlanContext(exec.Plan, exec.Restaurants, exec.Weather, verification)

	wantLines := []string{
		"User Request: Plan a romantic date in Mumbai with budget ₹2500",
		"Timing: tomorrow",
		"Special Requirements: none",
		"Weather Forecast:",
		"- Temperature: 27.5°C (feels like 29.0°C)",
		"- Condition: Scattered clouds",
		"- Rain Probability: 20.0%",
		"- Suitable for outdoor: Yes",
		"Top Restaurant Recommendations:",
		"1. Olive Bar",
		"   - Rating: 4.6/5 (2410 reviews)",
		"   - Price Level: ₹₹₹",
		"   - Address: 16 Union Street",
		"2. Corner Chai",
		"Important Notes:",
		"- Cold weather - recommend cozy indoor venues",
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("Context missing line %q\nGot:\n%s", want, got)
		}
	}
}

func TestBuildPlanContextMissingData(t *testing.T) {
	plan := executorPlan()

	got := buildPlanContext(plan, nil, nil, Verification{})

	if !strings.Contains(got, "- Weather data unavailable") {
		t.Errorf("Expected the unavailable-weather line, got:\n%s", got)
	}
	if !strings.Contains(got, "No restaurants found matching criteria.") {
		t.Errorf("Expected the no-restaurants line, got:\n%s", got)
	}
	if strings.Contains(got, "Important Notes:") {
		t.Error("No issues should mean no notes section")
	}
}

func TestBuildPlanContextLimitsToThree(t *testing.T) {
	many := make([]places.Restaurant, 5)
	for i := range many {
		many[i] = places.Restaurant{Name: fmt.Sprintf("Venue %d", i+1), Rating: 4.0, PriceLevel: "₹₹"}
	}

	got := buildPlanContext(executorPlan(), many, nil, Verification{})

	if !strings.Contains(got, "3. Venue 3") {
		t.Error("Expected the third venue in the context")
	}
	if strings.Contains(got, "4. Venue 4") {
		t.Error("Context should stop at three venues")
	}
}

func TestRunVerifier(t *testing.T) {
	synthGen := &mockTextGenerator{
		response: "A lovely evening awaits in Mumbai!",
		usage:    shared.TokenUsage{PromptTokens: 280, CompletionTokens: 110, TotalTokens: 390},
	}
	p := testPlanner(&mockTextGenerator{}, synthGen, &mockPlacesClient{}, &mockWeatherClient{})

	result, err := p.runVerifier(context.Background(), sampleExecution())
	if err != nil {
		t.Fatalf("runVerifier failed: %v", err)
	}

	if result.FinalPlan != "A lovely evening awaits in Mumbai!" {
		t.Errorf("Expected synthesized plan, got %q", result.FinalPlan)
	}
	if result.Meta.AgentName != "Verifier" {
		t.Errorf("Expected agent name Verifier, got %q", result.Meta.AgentName)
	}
	if result.Meta.Usage.TotalTokens != 390 {
		t.Errorf("Expected usage recorded, got %+v", result.Meta.Usage)
	}
	if len(result.Restaurants) != 2 {
		t.Errorf("Expected filtered restaurants returned, got %d", len(result.Restaurants))
	}

	if len(synthGen.prompts) != 1 {
		t.Fatalf("Expected 1 synthesis call, got %d", len(synthGen.prompts))
	}
	prompt := synthGen.prompts[0]
	if !strings.Contains(prompt, "# Verifier Agent Prompt") {
		t.Error("Prompt should be built from the verifier template")
	}
	if !strings.Contains(prompt, "User Request: Plan a romantic date in Mumbai with budget ₹2500") {
		t.Error("Prompt should embed the plan context")
	}
}

func TestRunVerifierFallsBackOnSynthesisError(t *testing.T) {
	synthGen := &mockTextGenerator{err: errors.New("model overloaded")}
	p := testPlanner(&mockTextGenerator{}, synthGen, &mockPlacesClient{}, &mockWeatherClient{})

	result, err := p.runVerifier(context.Background(), sampleExecution())
	if err != nil {
		t.Fatalf("runVerifier failed: %v", err)
	}

	wantLines := []string{
		"🌟 Date Plan for Mumbai",
		"🌤 Weather: Scattered clouds, 27.5°C",
		"🍽 Top Restaurant Recommendations:",
		"1. Olive Bar",
		"   ⭐ 4.6/5 | ₹₹₹",
		"   📍 16 Union Street",
		"💡 Suggested timing: Evening (6-8 PM)",
		"💰 Budget: ₹2500",
	}
	for _, want := range wantLines {
		if !strings.Contains(result.FinalPlan, want) {
			t.Errorf("Fallback plan missing %q\nGot:\n%s", want, result.FinalPlan)
		}
	}
}

func TestBuildFallbackPlanRainWarning(t *testing.T) {
	forecast := sampleForecast()
	forecast.WillRain = true

	got := buildFallbackPlan(executorPlan(), sampleRestaurants(), forecast)
	if !strings.Contains(got, "⚠️ Rain expected - indoor venues recommended") {
		t.Errorf("Expected rain warning, got:\n%s", got)
	}
}

func TestBuildFallbackPlanNoRestaurants(t *testing.T) {
	got := buildFallbackPlan(executorPlan(), nil, nil)

	if !strings.Contains(got, "No restaurants found. Try adjusting your budget or location.") {
		t.Errorf("Expected the empty-results hint, got:\n%s", got)
	}
	if strings.Contains(got, "🌤 Weather:") {
		t.Error("No forecast should mean no weather line")
	}
}

func TestBuildFallbackPlanLimitsToThree(t *testing.T) {
	many := make([]places.Restaurant, 5)
	for i := range many {
		many[i] = places.Restaurant{Name: fmt.Sprintf("Venue %d", i+1), Rating: 4.0, PriceLevel: "₹"}
	}

	got := buildFallbackPlan(executorPlan(), many, nil)
	if strings.Contains(got, "4. Venue 4") {
		t.Error("Fallback plan should stop at three venues")
	}
}
