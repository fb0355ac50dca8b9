package dateplan

import "strings"

// CandidatePlan is the untrusted output of the intent extraction step.
// Budget stays loose because the extractor may hand over a JSON number,
// a numeric string, or nothing at all; the validator owns the typed
// coercion.
type CandidatePlan struct {
	City                string
	Budget              any
	DateType            string
	Timing              string
	NeedsWeather        bool
	NeedsRestaurants    bool
	SpecialRequirements string
}

// Plan is a validated date plan. After validation every scalar field is
// non-empty and within its domain.
type Plan struct {
	City                string `json:"city"`
	Budget              int    `json:"budget"`
	DateType            string `json:"date_type"`
	Timing              string `json:"timing"`
	NeedsWeather        bool   `json:"needs_weather"`
	NeedsRestaurants    bool   `json:"needs_restaurants"`
	SpecialRequirements string `json:"special_requirements"`
}

// Candidate turns a validated plan back into candidate form, e.g. for
// re-validation.
func (p Plan) Candidate() CandidatePlan {
	return CandidatePlan{
		City:                p.City,
		Budget:              p.Budget,
		DateType:            p.DateType,
		Timing:              p.Timing,
		NeedsWeather:        p.NeedsWeather,
		NeedsRestaurants:    p.NeedsRestaurants,
		SpecialRequirements: p.SpecialRequirements,
	}
}

// Result is the outcome of one validation pass. AllValid is false when any
// field failed its check; Messages carries one note per correction, in
// field order (city, budget, timing, date type).
type Result struct {
	AllValid bool
	Messages []string
	Plan     Plan
}

// Joined returns all correction messages as a single diagnostic string.
func (r Result) Joined() string {
	return strings.Join(r.Messages, " | ")
}
