package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ai-date-planner/internal/metrics"
	"ai-date-planner/internal/planner"
)

// App holds the application's dependencies and drives the console
// surface.
type App struct {
	datePlanner  *planner.Planner
	metricsStore *metrics.Store
	out          io.Writer
}

// NewApp creates and initializes a new App instance.
func NewApp(datePlanner *planner.Planner, metricsStore *metrics.Store, out io.Writer) *App {
	return &App{
		datePlanner:  datePlanner,
		metricsStore: metricsStore,
		out:          out,
	}
}

// PlanDate runs the pipeline for one request and prints a staged report
// of what each agent did.
func (a *App) PlanDate(ctx context.Context, request string) error {
	fmt.Fprintln(a.out, "🧠 Step 1: Understanding your request...")

	outcome, metas, err := a.datePlanner.PlanDate(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to plan date: %w", err)
	}

	for _, meta := range metas {
		a.metricsStore.RecordMeta(meta)
	}

	plan := outcome.Plan
	fmt.Fprintln(a.out, "✅ Extracted plan:")
	fmt.Fprintf(a.out, "   📍 City: %s\n", plan.City)
	fmt.Fprintf(a.out, "   💰 Budget: ₹%d\n", plan.Budget)
	fmt.Fprintf(a.out, "   💕 Date Type: %s\n", plan.DateType)
	fmt.Fprintf(a.out, "   ⏰ Timing: %s\n", plan.Timing)
	if plan.SpecialRequirements != "" && plan.SpecialRequirements != "none" {
		fmt.Fprintf(a.out, "   ⚠️  Special: %s\n", plan.SpecialRequirements)
	}

	if len(outcome.Warnings) > 0 {
		fmt.Fprintf(a.out, "\n⚠️  Validation warnings: %s\n", strings.Join(outcome.Warnings, " | "))
		fmt.Fprintln(a.out, "   Using corrected values...")
	}

	a.printSeparator()

	fmt.Fprintln(a.out, "⚙️  Step 2: Fetching live data from APIs...")
	fmt.Fprintln(a.out, "✅ Data collected:")
	fmt.Fprintf(a.out, "   🍽  Found %d restaurants\n", len(outcome.Restaurants))
	fmt.Fprintf(a.out, "   🌤  Weather data: %s\n", availability(outcome.Weather != nil))
	if len(outcome.Errors) > 0 {
		fmt.Fprintln(a.out, "   ⚠️  Warnings:")
		for _, e := range outcome.Errors {
			fmt.Fprintf(a.out, "      - %s\n", e)
		}
	}

	a.printSeparator()

	v := outcome.Verification
	fmt.Fprintln(a.out, "✅ Step 3: Verifying and generating your date plan...")
	fmt.Fprintln(a.out, "✅ Validation complete:")
	fmt.Fprintf(a.out, "   ✓ Restaurants: %s\n", foundOrNot(v.HasRestaurants))
	fmt.Fprintf(a.out, "   ✓ Weather: %s\n", availability(v.HasWeather))
	fmt.Fprintf(a.out, "   ✓ Budget: %s\n", satisfiedOrNot(v.BudgetSatisfied))

	a.printSeparator()

	fmt.Fprintln(a.out, "🎉 YOUR PERSONALIZED DATE PLAN")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, outcome.FinalPlan)

	if len(outcome.Restaurants) > 0 {
		a.printSeparator()
		fmt.Fprintln(a.out, "📋 DETAILED RESTAURANT INFORMATION")
		fmt.Fprintln(a.out)

		top := outcome.Restaurants
		if len(top) > 3 {
			top = top[:3]
		}
		for i, r := range top {
			fmt.Fprintf(a.out, "%d. %s\n", i+1, r.Name)
			fmt.Fprintf(a.out, "   ⭐ Rating: %.1f/5 (%d reviews)\n", r.Rating, r.TotalRatings)
			fmt.Fprintf(a.out, "   💵 Price: %s\n", r.PriceLevel)
			fmt.Fprintf(a.out, "   📍 Address: %s\n", r.Address)
			if r.OpenNow != nil {
				if *r.OpenNow {
					fmt.Fprintln(a.out, "   🟢 Open now")
				} else {
					fmt.Fprintln(a.out, "   🔴 Closed now")
				}
			}
			fmt.Fprintln(a.out)
		}
	}

	a.printSeparator()
	fmt.Fprintln(a.out, "✨ Enjoy your date! ✨")

	return nil
}

func (a *App) printSeparator() {
	fmt.Fprintf(a.out, "\n%s\n\n", strings.Repeat("=", 60))
}

func availability(ok bool) string {
	if ok {
		return "Available"
	}
	return "Unavailable"
}

func foundOrNot(ok bool) string {
	if ok {
		return "Found"
	}
	return "Not found"
}

func satisfiedOrNot(ok bool) string {
	if ok {
		return "Satisfied"
	}
	return "Needs adjustment"
}
