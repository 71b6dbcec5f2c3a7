package sse

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygate/llmgateway/internal/dialect"
)

func TestPipeSameDialectSubstitutesModelAndForwardsDone(t *testing.T) {
	body := "" +
		"data: {\"id\":\"chatcmpl-1\",\"model\":\"upstream-physical-id\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"hi\"}}]}\n\n" +
		"data: [DONE]\n\n"

	rec := httptest.NewRecorder()
	err := Pipe(context.Background(), rec, io.NopCloser(strings.NewReader(body)), dialect.OpenAIChat, dialect.OpenAIChat, "gateway-alias")
	require.NoError(t, err)

	out := rec.Body.String()
	assert.Contains(t, out, `"model":"gateway-alias"`)
	assert.NotContains(t, out, "upstream-physical-id")
	assert.Contains(t, out, "data: [DONE]")
}

func TestPipeTranslatesAnthropicToOpenAI(t *testing.T) {
	lines := []string{
		`{"type":"message_start","message":{"id":"msg_1","model":"claude-x","role":"assistant","content":[],"usage":{"input_tokens":0,"output_tokens":0}}}`,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hello"}}`,
		`{"type":"content_block_stop","index":0}`,
		`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":1}}`,
		`{"type":"message_stop"}`,
	}
	var body strings.Builder
	for _, l := range lines {
		body.WriteString("data: ")
		body.WriteString(l)
		body.WriteString("\n\n")
	}

	rec := httptest.NewRecorder()
	err := Pipe(context.Background(), rec, io.NopCloser(strings.NewReader(body.String())), dialect.Anthropic, dialect.OpenAIChat, "gateway-alias")
	require.NoError(t, err)

	out := rec.Body.String()
	assert.Contains(t, out, `"role":"assistant"`)
	assert.Contains(t, out, `"content":"hello"`)
	assert.Contains(t, out, `"finish_reason":"stop"`)
	assert.Contains(t, out, `"model":"gateway-alias"`)
}

func TestPipeIgnoresNonDataLines(t *testing.T) {
	body := "event: ping\n" +
		"data: {\"id\":\"1\",\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"x\"}}]}\n\n"

	rec := httptest.NewRecorder()
	err := Pipe(context.Background(), rec, io.NopCloser(strings.NewReader(body)), dialect.OpenAIChat, dialect.OpenAIChat, "m")
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"content":"x"`)
}

func TestPipeWritesKeepAliveWithinOneSecondOfIdle(t *testing.T) {
	pr, pw := io.Pipe()
	rec := httptest.NewRecorder()

	done := make(chan error, 1)
	go func() { done <- Pipe(context.Background(), rec, pr, dialect.OpenAIChat, dialect.OpenAIChat, "m") }()

	// Upstream stays idle past the 1-second keepAlive; the pipe must emit a
	// comment frame without waiting for any data.
	require.Eventually(t, func() bool {
		return strings.Contains(rec.Body.String(), ": keep-alive")
	}, 2*time.Second, 20*time.Millisecond)

	pw.Close()
	require.NoError(t, <-done)
}

func TestPipeReturnsContextErrorOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An io.Pipe reader that's never written to nor closed blocks forever,
	// so ctx.Done() is the only case that can ever become ready.
	pr, _ := io.Pipe()

	rec := httptest.NewRecorder()
	err := Pipe(ctx, rec, pr, dialect.OpenAIChat, dialect.OpenAIChat, "m")
	assert.ErrorIs(t, err, context.Canceled)
}
