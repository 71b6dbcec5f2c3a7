// Package edge implements the gateway's public HTTP surface: one endpoint
// per client dialect, each resolving a backend through router, translating
// the body through translate, and forwarding through forward.
package edge

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/config"
	"github.com/relaygate/llmgateway/internal/dialect"
	"github.com/relaygate/llmgateway/internal/forward"
	"github.com/relaygate/llmgateway/internal/router"
	"github.com/relaygate/llmgateway/internal/sse"
	"github.com/relaygate/llmgateway/internal/translate"
)

// Server holds the HTTP router and the dependencies every handler needs.
type Server struct {
	router *router.Router
	fwd    *forward.Forwarder
	cfg    *config.Config
	log    *zap.Logger

	mux chi.Router
}

// New builds a Server, wires routes and middleware, and returns it ready
// to use as an http.Handler.
func New(cfg *config.Config, rt *router.Router, fwd *forward.Forwarder, log *zap.Logger) *Server {
	s := &Server{router: rt, fwd: fwd, cfg: cfg, log: log}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/v1/chat/completions", s.handleOpenAIChat)
		r.Post("/v1/responses", s.handleResponses)
		r.Post("/v1/messages", s.handleAnthropic)
		r.Post("/v1beta/models/{modelOp}", s.handleGemini)
	})

	s.mux = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Info("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// authMiddleware enforces the configured bearer token or x-api-key. An empty
// configured token disables auth entirely (local/dev use).
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.Server.Token
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		got := r.Header.Get("x-api-key")
		if got == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				got = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if got == "" {
			writeError(w, apperr.Unauthorized("missing_auth_header"))
			return
		}
		if got != token {
			writeError(w, apperr.Unauthorized("invalid_token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleOpenAIChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.BadRequest("reading request body: %v", err))
		return
	}
	s.dispatch(w, r, dialect.OpenAIChat, body, gjson.GetBytes(body, "model").String(), gjson.GetBytes(body, "stream").Bool())
}

func (s *Server) handleResponses(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.BadRequest("reading request body: %v", err))
		return
	}
	s.dispatch(w, r, dialect.OpenAIResponses, body, gjson.GetBytes(body, "model").String(), gjson.GetBytes(body, "stream").Bool())
}

func (s *Server) handleAnthropic(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.BadRequest("reading request body: %v", err))
		return
	}
	s.dispatch(w, r, dialect.Anthropic, body, gjson.GetBytes(body, "model").String(), gjson.GetBytes(body, "stream").Bool())
}

// handleGemini splits the "{model}:{op}" path segment chi can't route on
// directly, since ":" isn't a chi path-parameter delimiter.
func (s *Server) handleGemini(w http.ResponseWriter, r *http.Request) {
	seg := chi.URLParam(r, "modelOp")
	model, op, ok := strings.Cut(seg, ":")
	if !ok {
		writeError(w, apperr.BadRequest("malformed path segment %q: want {model}:{operation}", seg))
		return
	}
	if op != "generateContent" && op != "streamGenerateContent" {
		writeError(w, apperr.BadRequest("unknown operation %q", op))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.BadRequest("reading request body: %v", err))
		return
	}
	s.dispatch(w, r, dialect.Gemini, body, model, op == "streamGenerateContent")
}

// dispatch is the shared pipeline for every endpoint: resolve a backend for
// modelHint, translate the request, forward it, and translate the response
// or pipe the stream back.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, clientDialect dialect.Name, body []byte, modelHint string, streaming bool) {
	if modelHint == "" {
		writeError(w, apperr.BadRequest("missing required model field or path segment"))
		return
	}

	sel, err := s.router.Resolve(modelHint)
	if err != nil {
		writeError(w, err)
		return
	}

	backendDialect := apiTypeToDialect(sel.Entry.LLMParams.APIType)

	translated, err := translate.Request(clientDialect, backendDialect, body, sel.Entry)
	if err != nil {
		writeError(w, err)
		return
	}

	requestID := r.Header.Get("x-request-id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("x-request-id", requestID)

	sel.Start()
	resp, err := s.fwd.Send(r.Context(), sel.Entry, translated, streaming, requestID)
	if err != nil {
		sel.End(false)
		writeError(w, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		sel.End(false)
		upstreamBody, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		writeError(w, apperr.Upstream(resp.StatusCode, string(upstreamBody), nil))
		return
	}

	// A 2xx status alone isn't a success: health accounting waits for the
	// body to actually parse (or, for a stream, for the pipe to open and
	// run to completion without error).
	if streaming {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := sse.Pipe(r.Context(), w, resp.Body, backendDialect, clientDialect, modelHint); err != nil {
			sel.End(false)
			s.log.Warn("stream pipe ended with error", zap.Error(err), zap.String("request_id", requestID))
			return
		}
		sel.End(true)
		return
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		sel.End(false)
		writeError(w, apperr.Upstream(resp.StatusCode, "", err))
		return
	}
	out, err := translate.Response(backendDialect, clientDialect, respBody, modelHint)
	if err != nil {
		sel.End(false)
		writeError(w, err)
		return
	}
	sel.End(true)
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func apiTypeToDialect(apiType string) dialect.Name {
	switch apiType {
	case "anthropic":
		return dialect.Anthropic
	case "gemini":
		return dialect.Gemini
	default:
		return dialect.OpenAIChat
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = &apperr.Error{Kind: apperr.KindUpstreamError, Status: http.StatusInternalServerError, Message: err.Error()}
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ae.AsBody())
}
