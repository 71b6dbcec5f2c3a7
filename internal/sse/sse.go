// Package sse reads a backend's event-stream response body, splits it into
// frames, and translates each frame into the client's dialect as it arrives.
package sse

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/dialect"
	"github.com/relaygate/llmgateway/internal/translate"
)

// keepAlive is how long the pipeline waits for upstream bytes before writing
// a comment frame to hold the client connection open.
const keepAlive = 1 * time.Second

// Pipe reads upstream SSE body, translates each data line from src to tgt,
// and writes the result to w. It flushes after every write so the client
// sees frames as they translate. model is the logical name the client
// requested and is substituted into every emitted frame in place of
// whatever physical id the backend reports.
func Pipe(ctx context.Context, w http.ResponseWriter, body io.ReadCloser, src, tgt dialect.Name, model string) error {
	defer body.Close()

	flusher, _ := w.(http.Flusher)
	sctx := translate.NewStreamCtx()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		r := bufio.NewReaderSize(body, 64*1024)
		for {
			line, err := r.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					errc <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					writeErrorFrame(w, flusher, err)
					return apperr.StreamUpstream(err)
				default:
					return nil
				}
			}
			if !strings.HasPrefix(line, "data:") {
				continue // event:/id:/retry: lines are re-derived from the payload, not forwarded
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			for _, frame := range translate.Stream(src, tgt, data, model, sctx) {
				writeFrame(w, frame)
			}
			if flusher != nil {
				flusher.Flush()
			}

		case <-time.After(keepAlive):
			w.Write([]byte(": keep-alive\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, f translate.Frame) {
	var b bytes.Buffer
	if f.Event != "" {
		b.WriteString("event: ")
		b.WriteString(f.Event)
		b.WriteByte('\n')
	}
	b.WriteString("data: ")
	b.WriteString(f.Data)
	b.WriteString("\n\n")
	w.Write(b.Bytes())
}

func writeErrorFrame(w http.ResponseWriter, flusher http.Flusher, err error) {
	w.Write([]byte("event: error\ndata: {\"error\":{\"message\":\"upstream stream error\",\"type\":\"upstream_error\"}}\n\n"))
	if flusher != nil {
		flusher.Flush()
	}
}
