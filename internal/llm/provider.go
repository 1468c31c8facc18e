// Package llm defines the reasoning facade the analyzer uses to turn
// an Incident Group and its Causal Graph into natural-language root
// cause hypotheses, plus the retry and circuit-breaking wrappers
// every concrete provider is run behind.
package llm

import (
	"context"
	"encoding/json"
)

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation with the model.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	ToolUse    []ToolUseBlock    `json:"tool_use,omitempty"`
	ToolResult []ToolResultBlock `json:"tool_result,omitempty"`
}

// ToolUseBlock is a tool call request from the model.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultBlock is the result of a tool execution handed back to
// the model.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

// ToolDefinition describes a tool the model may call.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
	StopReasonError     StopReason = "error"
)

// Usage carries token accounting for a single Chat call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the model's reply to a Chat call.
type Response struct {
	Content    string
	ToolCalls  []ToolUseBlock
	StopReason StopReason
	Usage      Usage
}

// Provider is the contract every LLM backend implements. The
// analyzer's AnalyzeWithLLM never talks to a concrete SDK directly,
// only through this interface, so the retry and circuit-breaker
// wrappers can be composed transparently around any of them.
type Provider interface {
	Chat(ctx context.Context, systemPrompt string, messages []Message, tools []ToolDefinition) (*Response, error)
	Name() string
	Model() string
}

// Config is common provider configuration.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns deterministic defaults suited to incident
// analysis, where a consistent hypothesis matters more than varied
// prose.
func DefaultConfig() Config {
	return Config{
		Model:       "claude-sonnet-4-5-20250929",
		MaxTokens:   4096,
		Temperature: 0.0,
	}
}

// ContextWindowSizes maps model identifiers to their context window
// sizes in tokens.
var ContextWindowSizes = map[string]int{
	"claude-sonnet-4-5-20250929": 200000,
	"claude-3-5-sonnet-20241022": 200000,
	"claude-3-5-sonnet-20240620": 200000,
	"claude-3-5-haiku-20241022":  200000,
	"claude-3-opus-20240229":     200000,
	"claude-3-sonnet-20240229":   200000,
	"claude-3-haiku-20240307":    200000,
	"default":                    200000,
}

// GetContextWindowSize returns the context window size for model, or
// the default (200k) if the model is unrecognized.
func GetContextWindowSize(model string) int {
	if size, ok := ContextWindowSizes[model]; ok {
		return size
	}
	return ContextWindowSizes["default"]
}
