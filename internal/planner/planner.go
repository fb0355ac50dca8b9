package planner

import (
	"context"

	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/llm"
	"ai-date-planner/internal/places"
	"ai-date-planner/internal/shared"
	"ai-date-planner/internal/weather"
)

// Sampling temperatures per agent. Intent extraction wants near
// deterministic output; plan synthesis benefits from some variety.
const (
	IntentTemperature    = 0.3
	SynthesisTemperature = 0.7
)

// ExecutionResult collects everything gathered for a validated plan.
// Gathering failures are recorded in Errors instead of aborting the run.
type ExecutionResult struct {
	Plan        dateplan.Plan
	Restaurants []places.Restaurant
	Weather     *weather.Forecast
	Errors      []string
}

// Verification is the outcome of the data checks that run before the
// final plan text is written.
type Verification struct {
	HasRestaurants  bool     `json:"has_restaurants"`
	HasWeather      bool     `json:"has_weather"`
	BudgetSatisfied bool     `json:"budget_satisfied"`
	WeatherSuitable bool     `json:"weather_suitable"`
	Issues          []string `json:"issues"`
}

// Outcome is the full product of one planning run.
type Outcome struct {
	Request      string              `json:"request"`
	Plan         dateplan.Plan       `json:"plan"`
	AllValid     bool                `json:"all_valid"`
	Warnings     []string            `json:"warnings,omitempty"`
	Verification Verification        `json:"verification"`
	Restaurants  []places.Restaurant `json:"restaurants"`
	Weather      *weather.Forecast   `json:"weather,omitempty"`
	FinalPlan    string              `json:"final_plan"`
	Errors       []string            `json:"errors,omitempty"`
}

// Planner drives the date planning pipeline: intent extraction, plan
// validation, data gathering and final plan synthesis.
type Planner struct {
	intentGen llm.TextGenerator
	synthGen  llm.TextGenerator
	validator *dateplan.Validator
	places    places.Client
	weather   weather.Client
}

// NewPlanner creates a new Planner instance.
func NewPlanner(
	intentGen llm.TextGenerator,
	synthGen llm.TextGenerator,
	validator *dateplan.Validator,
	placesClient places.Client,
	weatherClient weather.Client,
) *Planner {
	return &Planner{
		intentGen: intentGen,
		synthGen:  synthGen,
		validator: validator,
		places:    placesClient,
		weather:   weatherClient,
	}
}

// PlanDate runs the full pipeline for one user request. Domain failures
// (missing data, rejected fields) degrade into warnings and errors on
// the Outcome; the returned error is reserved for programming faults.
func (p *Planner) PlanDate(ctx context.Context, userRequest string) (*Outcome, []shared.AgentMeta, error) {
	metas := []shared.AgentMeta{}

	// 1. Extract structured intent from the raw request.
	intentRes := p.runIntent(ctx, userRequest)
	metas = append(metas, intentRes.Meta)

	// 2. Validate the extracted plan and adopt the corrected fields.
	validation := p.validator.Validate(intentRes.Candidate)

	// 3. Gather restaurants and weather for the corrected plan.
	exec := p.runExecutor(ctx, validation.Plan)

	// 4. Verify the gathered data and write the final plan.
	verifyRes, err := p.runVerifier(ctx, exec)
	metas = append(metas, verifyRes.Meta)
	if err != nil {
		return nil, metas, err
	}

	return &Outcome{
		Request:      userRequest,
		Plan:         validation.Plan,
		AllValid:     validation.AllValid,
		Warnings:     validation.Messages,
		Verification: verifyRes.Verification,
		Restaurants:  verifyRes.Restaurants,
		Weather:      exec.Weather,
		FinalPlan:    verifyRes.FinalPlan,
		Errors:       exec.Errors,
	}, metas, nil
}
