// Package forward builds and sends the outbound HTTP request to a backend
// once the router has picked one and the body has been translated into its
// dialect.
package forward

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/config"
)

// Forwarder sends translated request bodies to backends over a shared
// *http.Client, applying each model's rewrite_body/rewrite_header patches.
type Forwarder struct {
	Client *http.Client
}

// New returns a Forwarder using client, or http.DefaultClient if nil.
func New(client *http.Client) *Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{Client: client}
}

// Send builds the backend-specific URL and headers for entry, applies its
// rewrite_body/rewrite_header patches to dialectBody, and issues the
// request. It never interprets the response status — the caller does.
func (f *Forwarder) Send(ctx context.Context, entry config.ModelEntry, dialectBody []byte, streaming bool, requestID string) (*http.Response, error) {
	url, err := targetURL(entry, streaming)
	if err != nil {
		return nil, err
	}

	body := applyRewriteBody(dialectBody, entry.LLMParams.RewriteBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Upstream(0, "", fmt.Errorf("building request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	setAuth(req, entry)
	if entry.LLMParams.APIType == "gemini" && streaming {
		req.Header.Set("Accept", "text/event-stream")
	}
	applyRewriteHeader(req, entry.LLMParams.RewriteHeader)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, apperr.Upstream(0, "", err)
	}
	return resp, nil
}

func targetURL(entry config.ModelEntry, streaming bool) (string, error) {
	base := entry.LLMParams.APIBase
	model := entry.LLMParams.Model
	key := entry.LLMParams.APIKey

	switch entry.LLMParams.APIType {
	case "openai":
		return base + "/chat/completions", nil
	case "anthropic":
		return base + "/v1/messages", nil
	case "gemini":
		op := "generateContent"
		if streaming {
			op = "streamGenerateContent"
		}
		url := fmt.Sprintf("%s/models/%s:%s", base, model, op)
		if streaming {
			return url + "?alt=sse&key=" + key, nil
		}
		return url + "?key=" + key, nil
	default:
		return "", apperr.BadRequest("model %q: unknown api_type %q", entry.ModelName, entry.LLMParams.APIType)
	}
}

func setAuth(req *http.Request, entry config.ModelEntry) {
	switch entry.LLMParams.APIType {
	case "openai":
		req.Header.Set("Authorization", "Bearer "+entry.LLMParams.APIKey)
	case "anthropic":
		req.Header.Set("x-api-key", entry.LLMParams.APIKey)
	case "gemini":
		// Auth travels in the URL's ?key= query param; see targetURL.
	}
}

// applyRewriteBody shallow-merges patch's keys onto body.
func applyRewriteBody(body []byte, patch map[string]any) []byte {
	if len(patch) == 0 {
		return body
	}
	out := body
	for k, v := range patch {
		next, err := sjson.SetBytes(out, k, v)
		if err != nil {
			continue
		}
		out = next
	}
	return out
}

// applyRewriteHeader sets header name/value pairs from patch, skipping
// non-scalar values and invalid header names.
func applyRewriteHeader(req *http.Request, patch map[string]any) {
	for k, v := range patch {
		if !validHeaderName(k) {
			continue
		}
		switch val := v.(type) {
		case string:
			req.Header.Set(k, val)
		case bool, int, int64, float64:
			req.Header.Set(k, fmt.Sprintf("%v", val))
		default:
			// non-scalar values (arrays, objects) aren't valid header values
		}
	}
}

func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if c <= ' ' || c == ':' || c > '~' {
			return false
		}
	}
	return true
}
