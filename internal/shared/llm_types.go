package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a single LLM call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one agent run in the
// planning pipeline (intent extraction, verification, ...).
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}
