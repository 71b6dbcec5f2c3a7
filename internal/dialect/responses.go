package dialect

import "encoding/json"

// ResponsesRequest is the wire shape of a POST /v1/responses body (OpenAI
// Responses dialect). It is intentionally close to OpenAIChatRequest —
// Responses is chat-completions-shaped with a different envelope and a
// "text.format" variant of response_format.
type ResponsesRequest struct {
	Model    string                  `json:"model"`
	Input    []OpenAIChatMessage     `json:"input"`
	Instructions string              `json:"instructions,omitempty"`
	Tools    []OpenAITool            `json:"tools,omitempty"`
	MaxOutputTokens *int             `json:"max_output_tokens,omitempty"`
	Stream   bool                    `json:"stream,omitempty"`
	Text     *ResponsesTextConfig    `json:"text,omitempty"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// ResponsesTextConfig wraps the Responses dialect's response-format variant.
type ResponsesTextConfig struct {
	Format *ResponsesTextFormat `json:"format,omitempty"`
}

// ResponsesTextFormat mirrors OpenAIResponseFormat for the Responses dialect.
type ResponsesTextFormat struct {
	Type   string          `json:"type"`
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// ResponsesResponse is the non-streaming Responses dialect response body.
type ResponsesResponse struct {
	ID     string                 `json:"id"`
	Model  string                 `json:"model"`
	Status string                 `json:"status"`
	Output []ResponsesOutputItem  `json:"output"`
	Usage  *ResponsesUsage        `json:"usage,omitempty"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// ResponsesOutputItem is one item of the Responses output array: a message
// (with content parts) or a function_call.
type ResponsesOutputItem struct {
	Type    string                   `json:"type"` // "message" | "function_call" | "reasoning"
	ID      string                   `json:"id,omitempty"`
	Role    string                   `json:"role,omitempty"`
	Content []ResponsesContentPart   `json:"content,omitempty"`
	Status  string                   `json:"status,omitempty"`

	// function_call
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// reasoning
	Summary []ResponsesContentPart `json:"summary,omitempty"`
}

// ResponsesContentPart is one text/refusal part of a message output item.
type ResponsesContentPart struct {
	Type string `json:"type"` // "output_text" | "refusal" | "summary_text"
	Text string `json:"text,omitempty"`
}

// ResponsesUsage mirrors the Responses dialect's usage object.
type ResponsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ResponsesStreamEvent is one `response.*` SSE envelope.
type ResponsesStreamEvent struct {
	Type           string                `json:"type"`
	Response       *ResponsesResponse    `json:"response,omitempty"`
	Item           *ResponsesOutputItem  `json:"item,omitempty"`
	ItemID         string                `json:"item_id,omitempty"`
	OutputIndex    int                   `json:"output_index,omitempty"`
	ContentIndex   int                   `json:"content_index,omitempty"`
	Delta          string                `json:"delta,omitempty"`
	Part           *ResponsesContentPart `json:"part,omitempty"`
}
