package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-date-planner/internal/shared"
)

func TestRunIntent(t *testing.T) {
	intentGen := &mockTextGenerator{
		response: `{"city": "Delhi", "budget": 3000, "date_type": "cozy", "timing": "this weekend", "needs_weather": true, "needs_restaurants": true, "special_requirements": "cafe preferred"}`,
		usage:    shared.TokenUsage{PromptTokens: 100, CompletionTokens: 30, TotalTokens: 130},
	}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	result := p.runIntent(context.Background(), "Suggest a cozy café date in Delhi this weekend under ₹3000")

	c := result.Candidate
	if c.City != "Delhi" {
		t.Errorf("Expected city Delhi, got %q", c.City)
	}
	if budget, ok := c.Budget.(float64); !ok || budget != 3000 {
		t.Errorf("Expected budget 3000 as JSON number, got %v", c.Budget)
	}
	if c.DateType != "cozy" || c.Timing != "this weekend" {
		t.Errorf("Unexpected date type %q / timing %q", c.DateType, c.Timing)
	}
	if c.SpecialRequirements != "cafe preferred" {
		t.Errorf("Expected special requirements kept, got %q", c.SpecialRequirements)
	}

	if result.Meta.AgentName != "Intent" {
		t.Errorf("Expected agent name Intent, got %q", result.Meta.AgentName)
	}
	if result.Meta.Usage.TotalTokens != 130 {
		t.Errorf("Expected usage recorded, got %+v", result.Meta.Usage)
	}

	if len(intentGen.prompts) != 1 {
		t.Fatalf("Expected 1 LLM call, got %d", len(intentGen.prompts))
	}
	if !strings.Contains(intentGen.prompts[0], "Suggest a cozy café date in Delhi this weekend under ₹3000") {
		t.Error("Prompt should embed the raw user request")
	}
	if !strings.Contains(intentGen.prompts[0], "# Intent Agent Prompt") {
		t.Error("Prompt should be built from the intent template")
	}
}

func TestRunIntentFencedJSON(t *testing.T) {
	intentGen := &mockTextGenerator{
		response: "```json\n{\"city\": \"Pune\", \"budget\": 1500, \"date_type\": \"casual\", \"timing\": \"tomorrow\", \"needs_weather\": true, \"needs_restaurants\": true, \"special_requirements\": \"none\"}\n```",
	}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	result := p.runIntent(context.Background(), "casual date in Pune tomorrow")
	if result.Candidate.City != "Pune" {
		t.Errorf("Expected fenced JSON to parse, got city %q", result.Candidate.City)
	}
}

func TestRunIntentJSONWithProse(t *testing.T) {
	intentGen := &mockTextGenerator{
		response: `Sure! Based on your request: {"city": "Goa", "budget": 4000, "date_type": "romantic", "timing": "this weekend", "needs_weather": true, "needs_restaurants": true, "special_requirements": "beachside"} Let me know if you need changes.`,
	}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	result := p.runIntent(context.Background(), "romantic beach date in Goa")
	if result.Candidate.City != "Goa" {
		t.Errorf("Expected JSON recovered from prose, got city %q", result.Candidate.City)
	}
	if result.Candidate.SpecialRequirements != "beachside" {
		t.Errorf("Expected special requirements beachside, got %q", result.Candidate.SpecialRequirements)
	}
}

func TestRunIntentPartialKeys(t *testing.T) {
	intentGen := &mockTextGenerator{response: `{"city": "Chennai"}`}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	c := p.runIntent(context.Background(), "date in Chennai").Candidate
	if c.City != "Chennai" {
		t.Errorf("Expected extracted city, got %q", c.City)
	}
	if budget, ok := c.Budget.(int); !ok || budget != 2000 {
		t.Errorf("Expected default budget 2000, got %v", c.Budget)
	}
	if c.DateType != "casual" || c.Timing != "today" {
		t.Errorf("Expected defaults for missing keys, got %+v", c)
	}
	if !c.NeedsWeather || !c.NeedsRestaurants {
		t.Error("Missing boolean keys should default to true")
	}
	if c.SpecialRequirements != "none" {
		t.Errorf("Expected default special requirements, got %q", c.SpecialRequirements)
	}
}

func TestRunIntentBudgetString(t *testing.T) {
	intentGen := &mockTextGenerator{
		response: `{"city": "Mumbai", "budget": "2500", "date_type": "casual", "timing": "today", "needs_weather": false, "needs_restaurants": true, "special_requirements": "none"}`,
	}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	c := p.runIntent(context.Background(), "date in Mumbai for 2500").Candidate
	if budget, ok := c.Budget.(string); !ok || budget != "2500" {
		t.Errorf("Budget should pass through untyped for the validator, got %v", c.Budget)
	}
	if c.NeedsWeather {
		t.Error("Explicit needs_weather=false should be kept")
	}
}

func TestRunIntentGarbageResponse(t *testing.T) {
	intentGen := &mockTextGenerator{response: "I cannot help with that."}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	c := p.runIntent(context.Background(), "plan something").Candidate
	if c.City != "Bangalore" || c.DateType != "casual" || c.Timing != "today" {
		t.Errorf("Expected full defaults for garbage response, got %+v", c)
	}
}

func TestRunIntentLLMError(t *testing.T) {
	intentGen := &mockTextGenerator{err: errors.New("connection reset")}
	p := testPlanner(intentGen, &mockTextGenerator{}, &mockPlacesClient{}, &mockWeatherClient{})

	result := p.runIntent(context.Background(), "plan something")
	if result.Candidate.City != "Bangalore" {
		t.Errorf("Expected defaults on LLM error, got %+v", result.Candidate)
	}
	if result.Meta.AgentName != "Intent" {
		t.Errorf("Meta should still name the agent, got %q", result.Meta.AgentName)
	}
}

func TestDecodeIntentJSONNestedBraces(t *testing.T) {
	// The recovery regex tolerates one nested object, e.g. when a model
	// invents an extra wrapper key.
	raw, err := decodeIntentJSON(`Result: {"city": "Delhi", "extras": {"note": "x"}}`)
	if err != nil {
		t.Fatalf("decodeIntentJSON failed: %v", err)
	}
	if raw["city"] != "Delhi" {
		t.Errorf("Expected city Delhi, got %v", raw["city"])
	}
}
