package dialect

import "encoding/json"

// OpenAIChatRequest is the wire shape of a POST /v1/chat/completions body.
type OpenAIChatRequest struct {
	Model          string               `json:"model"`
	Messages       []OpenAIChatMessage  `json:"messages"`
	Tools          []OpenAITool         `json:"tools,omitempty"`
	Temperature    *float64             `json:"temperature,omitempty"`
	MaxTokens      *int                 `json:"max_tokens,omitempty"`
	Stream         bool                 `json:"stream,omitempty"`
	ResponseFormat *OpenAIResponseFormat `json:"response_format,omitempty"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// OpenAIChatMessage is one message. Content may be a plain string or an
// array of content-part objects; OpenAIContentPart / ContentRaw capture both.
type OpenAIChatMessage struct {
	Role       string             `json:"role"`
	Content    json.RawMessage    `json:"content,omitempty"`
	ToolCalls  []OpenAIToolCall   `json:"tool_calls,omitempty"`
	ToolCallID string             `json:"tool_call_id,omitempty"`
	Name       string             `json:"name,omitempty"`
}

// OpenAIContentPart is one element of a multi-part message content array.
type OpenAIContentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *OpenAIImageURL   `json:"image_url,omitempty"`
}

// OpenAIImageURL carries either an http(s) URL or a data: URL.
type OpenAIImageURL struct {
	URL string `json:"url"`
}

// OpenAIToolCall is one function call requested by the assistant.
type OpenAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function OpenAIToolCallFunc `json:"function"`
}

// OpenAIToolCallFunc carries the function name and JSON-encoded arguments.
type OpenAIToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// OpenAITool is a function tool definition.
type OpenAITool struct {
	Type     string             `json:"type"`
	Function OpenAIToolFunction `json:"function"`
}

// OpenAIToolFunction is the function body of an OpenAITool.
type OpenAIToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// OpenAIResponseFormat mirrors response_format.
type OpenAIResponseFormat struct {
	Type       string                    `json:"type"`
	JSONSchema *OpenAIResponseJSONSchema `json:"json_schema,omitempty"`
}

// OpenAIResponseJSONSchema is the json_schema variant's payload.
type OpenAIResponseJSONSchema struct {
	Name   string          `json:"name,omitempty"`
	Schema json.RawMessage `json:"schema,omitempty"`
	Strict bool            `json:"strict,omitempty"`
}

// OpenAIChatResponse is the wire shape of a non-streaming chat completion.
type OpenAIChatResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object,omitempty"`
	Model   string             `json:"model"`
	Choices []OpenAIChatChoice `json:"choices"`
	Usage   *OpenAIUsage       `json:"usage,omitempty"`

	Passthrough map[string]json.RawMessage `json:"-"`
}

// OpenAIChatChoice is one choice in a chat completion response.
type OpenAIChatChoice struct {
	Index        int               `json:"index"`
	Message      OpenAIChatMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// OpenAIUsage mirrors OpenAI's usage object.
type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIStreamChunk is one SSE "data:" payload in a streaming chat completion.
type OpenAIStreamChunk struct {
	ID      string                   `json:"id"`
	Object  string                   `json:"object,omitempty"`
	Model   string                   `json:"model"`
	Choices []OpenAIStreamChoice     `json:"choices"`
	Usage   *OpenAIUsage             `json:"usage,omitempty"`
}

// OpenAIStreamChoice is one choice's delta in a streaming chunk.
type OpenAIStreamChoice struct {
	Index        int                `json:"index"`
	Delta        OpenAIStreamDelta  `json:"delta"`
	FinishReason *string            `json:"finish_reason"`
}

// OpenAIStreamDelta carries the incremental content of one stream chunk.
type OpenAIStreamDelta struct {
	Role             string                    `json:"role,omitempty"`
	Content          string                    `json:"content,omitempty"`
	ReasoningContent string                    `json:"reasoning_content,omitempty"`
	ToolCalls        []OpenAIStreamToolCallDelta `json:"tool_calls,omitempty"`
}

// OpenAIStreamToolCallDelta is one incremental tool-call fragment.
type OpenAIStreamToolCallDelta struct {
	Index    int                        `json:"index"`
	ID       string                     `json:"id,omitempty"`
	Type     string                     `json:"type,omitempty"`
	Function OpenAIStreamToolCallFunc   `json:"function"`
}

// OpenAIStreamToolCallFunc carries the name (first fragment only) and a
// partial-JSON arguments fragment.
type OpenAIStreamToolCallFunc struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}
