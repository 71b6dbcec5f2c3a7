package forward

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaygate/llmgateway/internal/config"
)

func TestTargetURLPerDialect(t *testing.T) {
	cases := []struct {
		name      string
		entry     config.ModelEntry
		streaming bool
		want      string
	}{
		{
			name:  "openai",
			entry: config.ModelEntry{LLMParams: config.LLMParams{APIType: "openai", APIBase: "https://api.openai.com/v1"}},
			want:  "https://api.openai.com/v1/chat/completions",
		},
		{
			name:  "anthropic",
			entry: config.ModelEntry{LLMParams: config.LLMParams{APIType: "anthropic", APIBase: "https://api.anthropic.com"}},
			want:  "https://api.anthropic.com/v1/messages",
		},
		{
			name:      "gemini non-streaming",
			entry:     config.ModelEntry{LLMParams: config.LLMParams{APIType: "gemini", APIBase: "https://generativelanguage.googleapis.com/v1beta", Model: "gemini-2.0-flash", APIKey: "KEY"}},
			streaming: false,
			want:      "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=KEY",
		},
		{
			name:      "gemini streaming",
			entry:     config.ModelEntry{LLMParams: config.LLMParams{APIType: "gemini", APIBase: "https://generativelanguage.googleapis.com/v1beta", Model: "gemini-2.0-flash", APIKey: "KEY"}},
			streaming: true,
			want:      "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:streamGenerateContent?alt=sse&key=KEY",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := targetURL(c.entry, c.streaming)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestTargetURLRejectsUnknownAPIType(t *testing.T) {
	_, err := targetURL(config.ModelEntry{ModelName: "m", LLMParams: config.LLMParams{APIType: "cohere"}}, false)
	assert.Error(t, err)
}

func TestSendSetsAuthAndPropagatesRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("x-request-id")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := New(nil)
	entry := config.ModelEntry{ModelName: "m", LLMParams: config.LLMParams{APIType: "openai", APIBase: srv.URL, APIKey: "sk-test"}}

	resp, err := f.Send(t.Context(), entry, []byte(`{"model":"m"}`), false, "req-123")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "req-123", gotRequestID)
	assert.Equal(t, "application/json", gotContentType)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestSendAppliesRewriteBodyAndHeader(t *testing.T) {
	var gotBody []byte
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Get("X-Org-Id")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(nil)
	entry := config.ModelEntry{
		ModelName: "m",
		LLMParams: config.LLMParams{
			APIType:       "openai",
			APIBase:       srv.URL,
			APIKey:        "sk-test",
			RewriteBody:   map[string]any{"temperature": 0.5},
			RewriteHeader: map[string]any{"X-Org-Id": "org-42", "X-Bad\n": "dropped", "X-List": []any{"a", "b"}},
		},
	}

	resp, err := f.Send(t.Context(), entry, []byte(`{"model":"m","temperature":1}`), false, "")
	require.NoError(t, err)
	resp.Body.Close()

	assert.JSONEq(t, `{"model":"m","temperature":0.5}`, string(gotBody))
	assert.Equal(t, "org-42", gotHeader)
}

func TestSendSetsGeminiStreamingAccept(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(nil)
	entry := config.ModelEntry{
		ModelName: "m",
		LLMParams: config.LLMParams{APIType: "gemini", APIBase: srv.URL, Model: "gemini-2.0-flash", APIKey: "KEY"},
	}

	resp, err := f.Send(t.Context(), entry, []byte(`{}`), true, "")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "text/event-stream", gotAccept)
}
