package metrics

import (
	"sort"
	"sync"
	"time"

	"ai-date-planner/internal/shared"
)

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store keeps execution metrics in memory; the planner carries no
// persistence layer, so metrics live for the lifetime of the process.
type Store struct {
	mu      sync.Mutex
	records []ExecutionMetric
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Record saves a metric.
func (s *Store) Record(m ExecutionMetric) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, m)
}

// RecordMeta records metrics directly from shared.AgentMeta. Runs that
// consumed no tokens (fallback paths) are skipped.
func (s *Store) RecordMeta(meta shared.AgentMeta) {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return
	}
	s.Record(MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// Len returns the number of stored metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage aggregates usage for the last N days, most recent day first.
func (s *Store) GetDailyUsage(days int) []DailyUsage {
	since := time.Now().UTC().AddDate(0, 0, -days)

	s.mu.Lock()
	byDay := make(map[string]*DailyUsage)
	for _, r := range s.records {
		if r.Timestamp.Before(since) {
			continue
		}
		day := r.Timestamp.UTC().Format("2006-01-02")
		usage, ok := byDay[day]
		if !ok {
			usage = &DailyUsage{Date: day}
			byDay[day] = usage
		}
		usage.TotalPrompt += r.PromptTokens
		usage.TotalCompletion += r.CompletionTokens
		usage.TotalExecution++
	}
	s.mu.Unlock()

	results := make([]DailyUsage, 0, len(byDay))
	for _, usage := range byDay {
		results = append(results, *usage)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Date > results[j].Date
	})
	return results
}

// AgentUsage represents aggregate totals for one agent.
type AgentUsage struct {
	AgentName       string
	Executions      int
	TotalPrompt     int
	TotalCompletion int
	AvgLatencyMS    int64
}

// GetAgentUsage aggregates per-agent totals over all stored metrics,
// sorted by agent name.
func (s *Store) GetAgentUsage() []AgentUsage {
	s.mu.Lock()
	byAgent := make(map[string]*AgentUsage)
	latencies := make(map[string]int64)
	for _, r := range s.records {
		usage, ok := byAgent[r.AgentName]
		if !ok {
			usage = &AgentUsage{AgentName: r.AgentName}
			byAgent[r.AgentName] = usage
		}
		usage.Executions++
		usage.TotalPrompt += r.PromptTokens
		usage.TotalCompletion += r.CompletionTokens
		latencies[r.AgentName] += r.LatencyMS
	}
	s.mu.Unlock()

	results := make([]AgentUsage, 0, len(byAgent))
	for name, usage := range byAgent {
		usage.AvgLatencyMS = latencies[name] / int64(usage.Executions)
		results = append(results, *usage)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].AgentName < results[j].AgentName
	})
	return results
}

// Cleanup removes records older than the specified number of days and
// reports how many were dropped.
func (s *Store) Cleanup(olderThanDays int) int {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.Timestamp.After(threshold) {
			kept = append(kept, r)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed
}

// MapUsage helper to convert token usage to an ExecutionMetric.
func MapUsage(agentName string, usage shared.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
