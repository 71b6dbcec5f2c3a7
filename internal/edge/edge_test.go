package edge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/relaygate/llmgateway/internal/config"
	"github.com/relaygate/llmgateway/internal/forward"
	"github.com/relaygate/llmgateway/internal/router"
)

func newTestServer(t *testing.T, backend *httptest.Server, token string) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Token: token},
		ModelList: []config.ModelEntry{
			{ModelName: "gateway-alias", LLMParams: config.LLMParams{
				APIType: "anthropic", APIBase: backend.URL, APIKey: "sk-test", Model: "claude-physical",
			}},
		},
	}
	rt := router.New(cfg, zap.NewNop(), nil)
	return New(cfg, rt, forward.New(backend.Client()), zap.NewNop())
}

func TestDispatchTranslatesOpenAIRequestToAnthropicBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-physical","content":[{"type":"text","text":"hi there"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer backend.Close()

	s := newTestServer(t, backend, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gateway-alias","messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := gjson.ParseBytes(rec.Body.Bytes())
	assert.Equal(t, "gateway-alias", res.Get("model").String())
	assert.Equal(t, "hi there", res.Get("choices.0.message.content").String())
	assert.Equal(t, "stop", res.Get("choices.0.finish_reason").String())
	assert.NotEmpty(t, rec.Header().Get("x-request-id"))
}

func TestDispatchRejectsMissingModel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be reached")
	}))
	defer backend.Close()

	s := newTestServer(t, backend, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchUnknownModelReturnsNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be reached")
	}))
	defer backend.Close()

	s := newTestServer(t, backend, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"does-not-exist","messages":[]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddlewareRejectsMissingAndWrongToken(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be reached")
	}))
	defer backend.Close()

	s := newTestServer(t, backend, "secret-token")

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gateway-alias","messages":[]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gateway-alias","messages":[]}`))
	req2.Header.Set("x-api-key", "wrong")
	rec2 := httptest.NewRecorder()
	s.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestHealthzIsUnauthenticated(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend should not be reached")
	}))
	defer backend.Close()

	s := newTestServer(t, backend, "secret-token")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

// groupTestServer wires gateway-alias into a single-member model group so
// dispatch resolves a Selection backed by a real health tracker, letting the
// tests below observe End(true)/End(false) through router.Trackers().
func groupTestServer(t *testing.T, backend *httptest.Server) (*Server, *router.Router) {
	t.Helper()
	cfg := &config.Config{
		ModelList: []config.ModelEntry{
			{ModelName: "gateway-alias", LLMParams: config.LLMParams{
				APIType: "anthropic", APIBase: backend.URL, APIKey: "sk-test", Model: "claude-physical",
			}},
		},
		RouterSettings: config.RouterSettings{
			ModelGroups: []config.ModelGroupConfig{
				{Name: "group-a", Models: []config.ModelGroupMember{{Name: "gateway-alias", Weight: 1}}},
			},
		},
	}
	rt := router.New(cfg, zap.NewNop(), nil)
	return New(cfg, rt, forward.New(backend.Client()), zap.NewNop()), rt
}

func TestDispatchRecordsFailureOn2xxWithUnparseableBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer backend.Close()

	s, rt := groupTestServer(t, backend)
	tr := rt.Trackers()["group-a\x00gateway-alias"]
	require.NotNil(t, tr)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"group-a","messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(50), tr.EffectiveWeight(100), "a 2xx with an unparseable body must count as a health failure, not a success")
}

func TestDispatchRecordsFailureOnPostStreamOpenPipeError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// Declaring more body than is sent makes the client's read end in an
		// unexpected EOF after the first event: a read failure mid-stream.
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		w.Write([]byte("data: {\"type\":\"message_start\",\"message\":{\"id\":\"msg_1\",\"model\":\"claude-physical\"}}\n\n"))
		flusher.Flush()
	}))
	defer backend.Close()

	s, rt := groupTestServer(t, backend)
	tr := rt.Trackers()["group-a\x00gateway-alias"]
	require.NotNil(t, tr)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"group-a","stream":true,"messages":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, uint(50), tr.EffectiveWeight(100), "a stream whose read fails after a 2xx open must count as a health failure")
}

func TestGeminiPathSplitsModelAndOperation(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/models/gemini-physical:generateContent")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hi"}]},"finishReason":"STOP"}]}`))
	}))
	defer backend.Close()

	cfg := &config.Config{
		ModelList: []config.ModelEntry{
			{ModelName: "gateway-gemini", LLMParams: config.LLMParams{
				APIType: "gemini", APIBase: backend.URL, APIKey: "KEY", Model: "gemini-physical",
			}},
		},
	}
	rt := router.New(cfg, zap.NewNop(), nil)
	s := New(cfg, rt, forward.New(backend.Client()), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/v1beta/models/gateway-gemini:generateContent", strings.NewReader(`{"contents":[{"role":"user","parts":[{"text":"hi"}]}]}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
