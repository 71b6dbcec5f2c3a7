package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/relaygate/llmgateway/internal/dialect"
)

func TestResponseSubstitutesLogicalModelOverPhysicalID(t *testing.T) {
	body := []byte(`{"id":"msg_01","type":"message","role":"assistant","model":"claude-opus-4-physical","content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)

	out, err := Response(dialect.Anthropic, dialect.OpenAIChat, body, "gateway-alias")
	require.NoError(t, err)

	res := gjson.ParseBytes(out)
	assert.Equal(t, "gateway-alias", res.Get("model").String())
	assert.NotContains(t, string(out), "claude-opus-4-physical")
}

func TestResponseAnthropicContentOrderedThinkingTextTool(t *testing.T) {
	body := []byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"the answer","tool_calls":[{"id":"call_1","type":"function","function":{"name":"f","arguments":"{}"}}]},"finish_reason":"tool_calls"}]}`)

	out, err := Response(dialect.OpenAIChat, dialect.Anthropic, body, "m")
	require.NoError(t, err)

	res := gjson.ParseBytes(out)
	assert.Equal(t, "text", res.Get("content.0.type").String())
	assert.Equal(t, "the answer", res.Get("content.0.text").String())
	assert.Equal(t, "tool_use", res.Get("content.1.type").String())
	assert.Equal(t, "call_1", res.Get("content.1.id").String())
	assert.Equal(t, "tool_use", res.Get("stop_reason").String())
}

func TestResponseRecomputesTotalTokensFromPromptPlusCompletion(t *testing.T) {
	// Anthropic usage has no total_tokens field at all; OpenAI's total_tokens
	// must be derived rather than left zero.
	body := []byte(`{"id":"msg_01","type":"message","role":"assistant","model":"m","content":[{"type":"text","text":"hi"}],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)

	out, err := Response(dialect.Anthropic, dialect.OpenAIChat, body, "m")
	require.NoError(t, err)

	res := gjson.ParseBytes(out)
	assert.EqualValues(t, 10, res.Get("usage.prompt_tokens").Int())
	assert.EqualValues(t, 5, res.Get("usage.completion_tokens").Int())
	assert.EqualValues(t, 15, res.Get("usage.total_tokens").Int())
}

func TestResponseGeminiToolCallGetsSynthesizedID(t *testing.T) {
	body := []byte(`{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"lookup","args":{"q":"x"}}}]},"finishReason":"STOP"}]}`)

	out, err := Response(dialect.Gemini, dialect.OpenAIChat, body, "m")
	require.NoError(t, err)

	res := gjson.ParseBytes(out)
	assert.Equal(t, "lookup", res.Get("choices.0.message.tool_calls.0.function.name").String())
	assert.NotEmpty(t, res.Get("choices.0.message.tool_calls.0.id").String())
}

func TestResponsePassthroughFieldSurvivesSameDialectRoundTrip(t *testing.T) {
	body := []byte(`{"id":"c1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"system_fingerprint":"fp_abc"}`)

	out, err := Response(dialect.OpenAIChat, dialect.OpenAIChat, body, "m")
	require.NoError(t, err)

	res := gjson.ParseBytes(out)
	assert.Equal(t, "fp_abc", res.Get("system_fingerprint").String())
}
