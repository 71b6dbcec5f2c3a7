package dialect

import "encoding/json"

// AnthropicRequest is the wire shape of a POST /v1/messages body.
type AnthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []AnthropicMessage `json:"messages"`
	Tools     []AnthropicTool    `json:"tools,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Stream    bool               `json:"stream,omitempty"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// AnthropicMessage is one turn; Content is either a plain string or an
// array of AnthropicContentBlock.
type AnthropicMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// AnthropicContentBlock is one tagged content block.
type AnthropicContentBlock struct {
	Type string `json:"type"`

	// type: text
	Text string `json:"text,omitempty"`

	// type: thinking
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	// type: redacted_thinking
	Data string `json:"data,omitempty"`

	// type: tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// type: tool_result
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`

	// type: image
	Source *AnthropicImageSource `json:"source,omitempty"`
}

// AnthropicImageSource is either a base64 blob or a url reference.
type AnthropicImageSource struct {
	Type      string `json:"type"` // "base64" | "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// AnthropicTool is a tool definition.
type AnthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// AnthropicResponse is the wire shape of a non-streaming /v1/messages response.
type AnthropicResponse struct {
	ID         string                  `json:"id,omitempty"`
	Type       string                  `json:"type,omitempty"`
	Role       string                  `json:"role,omitempty"`
	Model      string                  `json:"model"`
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason,omitempty"`
	Usage      AnthropicUsage          `json:"usage"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// AnthropicUsage mirrors Anthropic's usage object.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AnthropicStreamEvent is a lightweight wrapper for one named SSE event.
// Only the fields relevant to that event's Type are populated.
type AnthropicStreamEvent struct {
	Type string `json:"type"`

	// message_start
	Message *AnthropicStreamMessage `json:"message,omitempty"`

	// content_block_start
	Index        int                    `json:"index"`
	ContentBlock *AnthropicContentBlock `json:"content_block,omitempty"`

	// content_block_delta
	Delta *AnthropicStreamDelta `json:"delta,omitempty"`

	// message_delta
	Usage *AnthropicUsage `json:"usage,omitempty"`
}

// AnthropicStreamMessage is the "message" object inside message_start.
type AnthropicStreamMessage struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason *string                 `json:"stop_reason,omitempty"`
	Usage      *AnthropicUsage         `json:"usage,omitempty"`
}

// AnthropicStreamDelta carries different fields depending on the enclosing
// event's type: text_delta/thinking_delta/input_json_delta on
// content_block_delta, stop_reason on message_delta.
type AnthropicStreamDelta struct {
	Type string `json:"type,omitempty"`

	Text        string `json:"text,omitempty"`         // text_delta
	Thinking    string `json:"thinking,omitempty"`      // thinking_delta
	Signature   string `json:"signature,omitempty"`     // signature_delta
	PartialJSON string `json:"partial_json,omitempty"`  // input_json_delta

	StopReason string `json:"stop_reason,omitempty"` // message_delta
}
