package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/places"
	"ai-date-planner/internal/shared"
	"ai-date-planner/internal/weather"
)

//go:embed verifier_prompt.md
var verifierPrompt string

type verifierPromptData struct {
	Context string
}

// VerifierResult is the checked data plus the synthesized plan text.
type VerifierResult struct {
	Verification Verification
	Restaurants  []places.Restaurant
	FinalPlan    string
	Meta         shared.AgentMeta
}

// runVerifier checks the gathered data, trims the venue list and writes
// the final plan. If synthesis fails it falls back to a plain text plan
// so the caller always gets something presentable.
func (p *Planner) runVerifier(ctx context.Context, exec ExecutionResult) (VerifierResult, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "Verifier"}

	verification := verify(exec)
	filtered := filterRestaurants(exec.Restaurants)

	prompt, err := buildVerifierPrompt(verifierPromptData{
		Context: buildPlanContext(exec.Plan, filtered, exec.Weather, verification),
	})
	if err != nil {
		meta.Latency = time.Since(start)
		return VerifierResult{Meta: meta}, err
	}

	var finalPlan string
	resp, err := p.synthGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	if err != nil {
		log.Printf("Plan synthesis failed, falling back to simple plan: %v", err)
		finalPlan = buildFallbackPlan(exec.Plan, filtered, exec.Weather)
	} else {
		finalPlan = strings.TrimSpace(resp.Content)
	}

	meta.Latency = time.Since(start)
	return VerifierResult{
		Verification: verification,
		Restaurants:  filtered,
		FinalPlan:    finalPlan,
		Meta:         meta,
	}, nil
}

// verify runs the data checks from the gathered results. Rain only
// counts against suitability when the user has not already asked for an
// indoor date.
func verify(exec ExecutionResult) Verification {
	v := Verification{
		HasRestaurants:  len(exec.Restaurants) > 0,
		HasWeather:      exec.Weather != nil,
		BudgetSatisfied: true,
		WeatherSuitable: true,
		Issues:          []string{},
	}

	w := exec.Weather
	if w == nil {
		return v
	}

	if w.WillRain && !strings.Contains(strings.ToLower(exec.Plan.SpecialRequirements), "indoor") {
		v.WeatherSuitable = false
		v.Issues = append(v.Issues, "Rain expected - filtering for indoor venues")
	}

	if w.Temperature > 35 {
		v.Issues = append(v.Issues, "Very hot weather - recommend air-conditioned venues")
	} else if w.Temperature < 15 {
		v.Issues = append(v.Issues, "Cold weather - recommend cozy indoor venues")
	}

	return v
}

// filterRestaurants caps the list at the top five venues. The list
// arrives rating-sorted from the places client.
func filterRestaurants(restaurants []places.Restaurant) []places.Restaurant {
	if len(restaurants) > 5 {
		restaurants = restaurants[:5]
	}
	return restaurants
}

// buildPlanContext renders the gathered data as the context block the
// synthesis prompt works from.
func buildPlanContext(
	plan dateplan.Plan,
	restaurants []places.Restaurant,
	forecast *weather.Forecast,
	verification Verification,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User Request: Plan a %s date in %s with budget ₹%d\n", plan.DateType, plan.City, plan.Budget)
	fmt.Fprintf(&b, "Timing: %s\n", plan.Timing)
	fmt.Fprintf(&b, "Special Requirements: %s\n\n", plan.SpecialRequirements)

	b.WriteString("Weather Forecast:\n")
	if forecast != nil {
		fmt.Fprintf(&b, "- Temperature: %.1f°C (feels like %.1f°C)\n", forecast.Temperature, forecast.FeelsLike)
		fmt.Fprintf(&b, "- Condition: %s\n", forecast.Description)
		fmt.Fprintf(&b, "- Rain Probability: %.1f%%\n", forecast.RainProbability)
		fmt.Fprintf(&b, "- Suitable for outdoor: %s\n", yesNo(forecast.SuitableForOutdoor))
	} else {
		b.WriteString("- Weather data unavailable\n")
	}

	b.WriteString("\nTop Restaurant Recommendations:\n")
	if len(restaurants) == 0 {
		b.WriteString("No restaurants found matching criteria.\n")
	} else {
		top := restaurants
		if len(top) > 3 {
			top = top[:3]
		}
		for i, r := range top {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r.Name)
			fmt.Fprintf(&b, "   - Rating: %.1f/5 (%d reviews)\n", r.Rating, r.TotalRatings)
			fmt.Fprintf(&b, "   - Price Level: %s\n", r.PriceLevel)
			fmt.Fprintf(&b, "   - Address: %s\n", r.Address)
		}
	}

	if len(verification.Issues) > 0 {
		b.WriteString("\nImportant Notes:\n")
		for _, issue := range verification.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	return b.String()
}

// buildFallbackPlan writes a plain text plan without the LLM, used when
// synthesis fails.
func buildFallbackPlan(plan dateplan.Plan, restaurants []places.Restaurant, forecast *weather.Forecast) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌟 Date Plan for %s\n\n", plan.City)

	if forecast != nil {
		fmt.Fprintf(&b, "🌤 Weather: %s, %.1f°C\n", forecast.Description, forecast.Temperature)
		if forecast.WillRain {
			b.WriteString("⚠️ Rain expected - indoor venues recommended\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("🍽 Top Restaurant Recommendations:\n\n")

	if len(restaurants) == 0 {
		b.WriteString("No restaurants found. Try adjusting your budget or location.\n\n")
	} else {
		top := restaurants
		if len(top) > 3 {
			top = top[:3]
		}
		for i, r := range top {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r.Name)
			fmt.Fprintf(&b, "   ⭐ %.1f/5 | %s\n", r.Rating, r.PriceLevel)
			fmt.Fprintf(&b, "   📍 %s\n\n", r.Address)
		}
	}

	b.WriteString("💡 Suggested timing: Evening (6-8 PM)\n")
	fmt.Fprintf(&b, "💰 Budget: ₹%d\n", plan.Budget)

	return b.String()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func buildVerifierPrompt(data verifierPromptData) (string, error) {
	tmpl, err := template.New("verifier").Parse(verifierPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
