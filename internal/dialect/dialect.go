// Package dialect defines the four wire dialects the gateway speaks and the
// OpenAI-Chat-Completions-shaped pivot every conversion routes through.
//
// Each dialect's content shapes are tagged variants (text | thinking |
// tool_use | tool_result | image), not a class hierarchy — the pivot is a
// plain struct with a Kind discriminant on each content part, the same
// pattern used across the gateway examples this package is grounded on
// (e.g. the to_ir/from_ir split in nghyane/llm-mux).
package dialect

import "encoding/json"

// Name identifies one of the four wire dialects.
type Name string

const (
	OpenAIChat      Name = "openai-chat"
	OpenAIResponses Name = "openai-responses"
	Anthropic       Name = "anthropic"
	Gemini          Name = "gemini"
)

// ContentKind discriminates a Part's payload.
type ContentKind string

const (
	PartText          ContentKind = "text"
	PartThinking      ContentKind = "thinking"
	PartRedactedThink ContentKind = "redacted_thinking"
	PartToolUse       ContentKind = "tool_use"
	PartToolResult    ContentKind = "tool_result"
	PartImage         ContentKind = "image"
)

// Part is one tagged piece of message content in the pivot.
type Part struct {
	Kind ContentKind

	Text string // PartText, PartThinking (also carries redacted_thinking's inner data)

	// PartToolUse / the tool-call half of a pivot tool reference.
	ToolCallID string
	ToolName   string
	ToolArgs   json.RawMessage // always a JSON object, serialized-as-string only on the OpenAI wire

	// PartToolResult.
	ToolResultContent string

	// PartImage.
	ImageURL    string // http(s) URL form
	ImageMIME   string // data: URL form
	ImageBase64 string
}

// Role is the pivot's message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in the pivot conversation.
type Message struct {
	Role    Role
	Parts   []Part
	// ToolCallID is set on RoleTool messages: which tool_use this result answers.
	ToolCallID string
}

// Usage is the pivot's token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StopReason is the pivot's normalized finish/stop reason. See
// internal/translate/stopreason.go for the per-dialect mapping table.
type StopReason string

const (
	StopEndTurn       StopReason = "stop"
	StopMaxTokens     StopReason = "length"
	StopToolUse       StopReason = "tool_calls"
	StopContentFilter StopReason = "content_filter"
	StopUnspecified   StopReason = ""
)

// Tool is a function/tool definition shared across dialects.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema
}

// ResponseFormat mirrors OpenAI's response_format / Gemini's responseSchema.
type ResponseFormat struct {
	Type   string // "text", "json_object", "json_schema"
	Schema json.RawMessage
}

// PivotRequest is the canonical in-memory request shape every dialect
// converts to/from.
type PivotRequest struct {
	Model          string
	Messages       []Message
	System         string
	Tools          []Tool
	Temperature    *float64
	MaxTokens      *int
	Stream         bool
	ResponseFormat *ResponseFormat

	// Passthrough carries every top-level field the typed struct above
	// doesn't model, keyed by its original wire name, so that re-encoding
	// to the same dialect reproduces it byte-for-byte.
	Passthrough map[string]json.RawMessage
}

// PivotResponse is the canonical in-memory response shape.
type PivotResponse struct {
	ID         string
	Model      string
	Parts      []Part // assistant content, in order: thinking, text, tool_use
	StopReason StopReason
	Usage      Usage

	Passthrough map[string]json.RawMessage
}

// FrameKind discriminates a stream event.
type FrameKind string

const (
	FrameMessageStart FrameKind = "message_start"
	FrameBlockStart   FrameKind = "block_start"
	FrameDelta        FrameKind = "delta"
	FrameBlockStop    FrameKind = "block_stop"
	FrameMessageDelta FrameKind = "message_delta"
	FrameMessageStop  FrameKind = "message_stop"
	FramePing         FrameKind = "ping"
	FrameDone         FrameKind = "done" // OpenAI's [DONE] sentinel, out-of-band
)

// DeltaKind discriminates a FrameDelta/FrameBlockStart's content kind.
type DeltaKind string

const (
	DeltaText     DeltaKind = "text"
	DeltaThinking DeltaKind = "thinking"
	DeltaToolJSON DeltaKind = "tool_json"
)

// PivotFrame is one event in the pivot stream model.
type PivotFrame struct {
	Kind FrameKind

	// FrameMessageStart
	ID    string
	Model string

	// FrameBlockStart / FrameDelta
	BlockIndex int
	DeltaKind  DeltaKind
	Text       string          // text/thinking delta payload
	ToolID     string          // first chunk of a tool_use block
	ToolName   string          // first chunk of a tool_use block
	PartialArg string          // input_json_delta payload fragment
	FullArgs   json.RawMessage // fully-accumulated tool args (Gemini target only)

	// FrameMessageDelta / terminal
	StopReason StopReason
	Usage      *Usage
}
