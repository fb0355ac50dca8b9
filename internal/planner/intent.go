package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"text/template"
	"time"

	"ai-date-planner/internal/dateplan"
	"ai-date-planner/internal/shared"
)

//go:embed intent_prompt.md
var intentPrompt string

// jsonObjectPattern finds the first JSON object in a response that wraps
// it in prose. Handles one level of nesting, which covers the flat
// intent payload.
var jsonObjectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

type intentPromptData struct {
	UserRequest string
}

// IntentResult is the extracted candidate plan plus agent metadata.
type IntentResult struct {
	Candidate dateplan.CandidatePlan
	Meta      shared.AgentMeta
}

// runIntent extracts a candidate plan from the raw user request. It
// never fails: any LLM or parse error degrades to the default candidate
// so the rest of the pipeline can still run.
func (p *Planner) runIntent(ctx context.Context, userRequest string) IntentResult {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: "Intent"}

	candidate := defaultCandidate()

	prompt, err := buildIntentPrompt(intentPromptData{UserRequest: userRequest})
	if err != nil {
		log.Printf("Intent prompt build failed, using defaults: %v", err)
		meta.Latency = time.Since(start)
		return IntentResult{Candidate: candidate, Meta: meta}
	}

	resp, err := p.intentGen.GenerateContent(ctx, prompt)
	meta.Usage = resp.Usage
	if err != nil {
		log.Printf("Intent extraction failed, using defaults: %v", err)
		meta.Latency = time.Since(start)
		return IntentResult{Candidate: candidate, Meta: meta}
	}

	raw, err := decodeIntentJSON(resp.Content)
	if err != nil {
		log.Printf("Intent response unusable, using defaults: %v", err)
		meta.Latency = time.Since(start)
		return IntentResult{Candidate: candidate, Meta: meta}
	}

	meta.Latency = time.Since(start)
	return IntentResult{Candidate: candidateFromRaw(raw), Meta: meta}
}

// defaultCandidate is the fallback when extraction yields nothing
// usable. Every field passes validation as-is.
func defaultCandidate() dateplan.CandidatePlan {
	return dateplan.CandidatePlan{
		City:                "Bangalore",
		Budget:              2000,
		DateType:            "casual",
		Timing:              "today",
		NeedsWeather:        true,
		NeedsRestaurants:    true,
		SpecialRequirements: "none",
	}
}

// decodeIntentJSON parses the model response into a loose key/value map.
// Models wrap JSON in markdown fences or prose often enough that both
// recovery paths matter.
func decodeIntentJSON(content string) (map[string]any, error) {
	text := stripJSONFences(content)

	raw := map[string]any{}
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return raw, nil
	}

	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in response: %s", content)
	}
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse intent JSON: %w. Response: %s", err, content)
	}
	return raw, nil
}

// stripJSONFences removes a surrounding markdown code fence, if any.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// candidateFromRaw applies per-key defaulting over the decoded map.
// Budget is passed through untyped; the validator owns its coercion.
func candidateFromRaw(raw map[string]any) dateplan.CandidatePlan {
	c := defaultCandidate()

	if v, ok := raw["city"].(string); ok {
		c.City = v
	}
	if v, ok := raw["budget"]; ok && v != nil {
		c.Budget = v
	}
	if v, ok := raw["date_type"].(string); ok {
		c.DateType = v
	}
	if v, ok := raw["timing"].(string); ok {
		c.Timing = v
	}
	if v, ok := raw["needs_weather"].(bool); ok {
		c.NeedsWeather = v
	}
	if v, ok := raw["needs_restaurants"].(bool); ok {
		c.NeedsRestaurants = v
	}
	if v, ok := raw["special_requirements"].(string); ok {
		c.SpecialRequirements = v
	}

	return c
}

func buildIntentPrompt(data intentPromptData) (string, error) {
	tmpl, err := template.New("intent").Parse(intentPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
