package planner

import (
	"context"
	"fmt"
	"strings"

	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/places"
)

// runExecutor gathers restaurants and weather for a validated plan.
// API failures land in the result's Errors so the verifier can still
// work with whatever was collected.
func (p *Planner) runExecutor(ctx context.Context, plan dateplan.Plan) ExecutionResult {
	result := ExecutionResult{
		Plan:        plan,
		Restaurants: []places.Restaurant{},
		Errors:      []string{},
	}

	if plan.NeedsRestaurants {
		restaurants, err := p.places.SearchRestaurants(ctx, places.SearchRequest{
			City:     plan.City,
			Budget:   plan.Budget,
			DateType: plan.DateType,
		})
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("Error fetching restaurants: %v", err))
		case len(restaurants) == 0:
			result.Errors = append(result.Errors, "No restaurants found matching criteria")
		default:
			result.Restaurants = restaurants
		}
	}

	if plan.NeedsWeather {
		forecast, err := p.weather.GetForecast(ctx, plan.City, daysAheadFor(plan.Timing))
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("Error fetching weather: %v", err))
		case forecast == nil:
			result.Errors = append(result.Errors, "Weather data unavailable")
		default:
			result.Weather = forecast
		}
	}

	return result
}

// daysAheadFor maps a timing phrase to a forecast day offset. Weekends
// are assumed two days out; anything unrecognized means today.
func daysAheadFor(timing string) int {
	t := strings.ToLower(timing)
	switch {
	case strings.Contains(t, "today"), strings.Contains(t, "tonight"):
		return 0
	case strings.Contains(t, "tomorrow"):
		return 1
	case strings.Contains(t, "weekend"):
		return 2
	default:
		return 0
	}
}
