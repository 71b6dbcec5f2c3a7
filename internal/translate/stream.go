package translate

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/relaygate/llmgateway/internal/dialect"
)

// StreamCtx is the small mutable record the stream translator threads
// through one request's chunks. It is owned by the single
// request task — never shared across goroutines.
type StreamCtx struct {
	PreviousEventName string
	PreviousDeltaKind dialect.DeltaKind
	ToolArgsBuffer    string
	BlockIndex        int

	toolID   string // in-flight tool_use id, set on the first fragment of a call
	toolName string
	roleSent bool // OpenAI target: delta.role="assistant" only goes on the first emitted chunk

	// OpenAI target: the message_start id and client-facing model, repeated
	// on every chunk emitted after message_start.
	messageID string
	model     string
}

// NewStreamCtx returns a zeroed context for one new request's stream.
func NewStreamCtx() *StreamCtx { return &StreamCtx{} }

// Frame is one SSE frame to write to the client: an optional event name
// (Anthropic/Responses dialects name their events; OpenAI/Gemini do not)
// plus the data payload.
type Frame struct {
	Event string
	Data  string
}

// Stream converts one upstream SSE "data:" payload (already stripped of the
// "data: " prefix and trailing newline by the SSE pipeline, §4.6) from src's
// wire shape into zero or more client-facing frames in tgt's wire shape.
func Stream(src, tgt dialect.Name, line, model string, ctx *StreamCtx) []Frame {
	if line == "[DONE]" {
		if tgt == dialect.OpenAIChat {
			return []Frame{{Data: "[DONE]"}}
		}
		return nil
	}

	if src == tgt {
		return sameDialectStream(src, []byte(line), model)
	}

	chunk, ok := normalizeToOpenAIChunk(src, []byte(line), ctx)
	if !ok {
		return nil
	}
	frames := advance(chunk, model, ctx)
	return renderFrames(tgt, frames, ctx)
}

// ---- §4.2.4 same-dialect paths ----

func sameDialectStream(d dialect.Name, body []byte, model string) []Frame {
	switch d {
	case dialect.OpenAIChat:
		patched, err := sjson.SetBytes(body, "model", model)
		if err != nil {
			patched = body
		}
		return []Frame{{Data: string(patched)}}
	case dialect.Gemini:
		// Gemini stream chunks carry no model field of their own (the model
		// is implicit in the request URL); nothing to overwrite.
		return []Frame{{Data: string(body)}}
	case dialect.Anthropic:
		eventName := gjson.GetBytes(body, "type").String()
		patched := body
		if eventName == "message_start" {
			if next, err := sjson.SetBytes(body, "message.model", model); err == nil {
				patched = next
			}
		}
		return []Frame{{Event: eventName, Data: string(patched)}}
	case dialect.OpenAIResponses:
		eventName := gjson.GetBytes(body, "type").String()
		patched := body
		if next, err := sjson.SetBytes(body, "response.model", model); err == nil && gjson.GetBytes(body, "response").Exists() {
			patched = next
		}
		return []Frame{{Event: eventName, Data: string(patched)}}
	default:
		return []Frame{{Data: string(body)}}
	}
}

// ---- normalize any source dialect into an OpenAI-chunk-shaped pivot ----

// normalizeToOpenAIChunk reduces one line of src's stream wire format to an
// OpenAIStreamChunk-shaped representation — the pivot every stream
// conversion, regardless of source, is expressed in. OpenAI->Anthropic is
// representative; every other pair either pivots through this shape or is
// rendered directly. ok is false only when the line does not parse (or src is
// unknown); frames with no client-visible signal (e.g. a bare Anthropic
// "ping") return ok true with an empty delta, which advance() then drops.
func normalizeToOpenAIChunk(src dialect.Name, body []byte, ctx *StreamCtx) (*dialect.OpenAIStreamChunk, bool) {
	switch src {
	case dialect.OpenAIChat:
		var chunk dialect.OpenAIStreamChunk
		if err := json.Unmarshal(body, &chunk); err != nil {
			return nil, false
		}
		return &chunk, true

	case dialect.Anthropic:
		return normalizeAnthropicChunk(body, ctx)

	case dialect.Gemini:
		return normalizeGeminiChunk(body)

	case dialect.OpenAIResponses:
		return normalizeResponsesChunk(body)

	default:
		return nil, false
	}
}

func normalizeAnthropicChunk(body []byte, ctx *StreamCtx) (*dialect.OpenAIStreamChunk, bool) {
	var ev dialect.AnthropicStreamEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}

	chunk := &dialect.OpenAIStreamChunk{Choices: []dialect.OpenAIStreamChoice{{Index: 0}}}

	switch ev.Type {
	case "message_start":
		if ev.Message != nil {
			chunk.ID = ev.Message.ID
			chunk.Model = ev.Message.Model
		}
		chunk.Choices[0].Delta.Role = "assistant"
		return chunk, true

	case "content_block_start":
		if ev.ContentBlock == nil {
			return chunk, true // no signal; step 2 of advance() drops it
		}
		switch ev.ContentBlock.Type {
		case "tool_use":
			ctx.toolID, ctx.toolName = ev.ContentBlock.ID, ev.ContentBlock.Name
			chunk.Choices[0].Delta.ToolCalls = []dialect.OpenAIStreamToolCallDelta{{
				Index: 0, ID: ev.ContentBlock.ID,
				Function: dialect.OpenAIStreamToolCallFunc{Name: ev.ContentBlock.Name},
			}}
		}
		return chunk, true

	case "content_block_delta":
		if ev.Delta == nil {
			return chunk, true
		}
		switch ev.Delta.Type {
		case "text_delta":
			chunk.Choices[0].Delta.Content = ev.Delta.Text
		case "thinking_delta":
			chunk.Choices[0].Delta.ReasoningContent = ev.Delta.Thinking
		case "input_json_delta":
			chunk.Choices[0].Delta.ToolCalls = []dialect.OpenAIStreamToolCallDelta{{
				Index: 0, Function: dialect.OpenAIStreamToolCallFunc{Arguments: ev.Delta.PartialJSON},
			}}
		}
		return chunk, true

	case "message_delta":
		if ev.Delta != nil && ev.Delta.StopReason != "" {
			reason := StopReasonToOpenAI(StopReasonFromAnthropic(ev.Delta.StopReason))
			chunk.Choices[0].FinishReason = &reason
		}
		if ev.Usage != nil {
			chunk.Usage = &dialect.OpenAIUsage{CompletionTokens: ev.Usage.OutputTokens, PromptTokens: ev.Usage.InputTokens, TotalTokens: ev.Usage.InputTokens + ev.Usage.OutputTokens}
		}
		return chunk, true

	case "content_block_stop", "message_stop", "ping":
		return chunk, true

	default:
		return chunk, true
	}
}

func normalizeGeminiChunk(body []byte) (*dialect.OpenAIStreamChunk, bool) {
	var resp dialect.GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	chunk := &dialect.OpenAIStreamChunk{Choices: []dialect.OpenAIStreamChoice{{Index: 0}}}
	if resp.UsageMetadata != nil {
		chunk.Usage = &dialect.OpenAIUsage{
			PromptTokens: resp.UsageMetadata.PromptTokenCount, CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens: resp.UsageMetadata.TotalTokenCount,
		}
	}
	if len(resp.Candidates) == 0 {
		return chunk, true
	}
	cand := resp.Candidates[0]
	var text, reasoning strings.Builder
	for i, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			// Gemini emits the full call in one shot, never fragmented.
			chunk.Choices[0].Delta.ToolCalls = append(chunk.Choices[0].Delta.ToolCalls, dialect.OpenAIStreamToolCallDelta{
				Index: i, ID: "gemini-call", Type: "function",
				Function: dialect.OpenAIStreamToolCallFunc{Name: part.FunctionCall.Name, Arguments: string(part.FunctionCall.Args)},
			})
		case part.Thought:
			reasoning.WriteString(part.Text)
		default:
			text.WriteString(part.Text)
		}
	}
	chunk.Choices[0].Delta.Content = text.String()
	chunk.Choices[0].Delta.ReasoningContent = reasoning.String()
	if cand.FinishReason != "" {
		reason := StopReasonToOpenAI(StopReasonFromGemini(cand.FinishReason))
		chunk.Choices[0].FinishReason = &reason
	}
	return chunk, true
}

func normalizeResponsesChunk(body []byte) (*dialect.OpenAIStreamChunk, bool) {
	var ev dialect.ResponsesStreamEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, false
	}
	chunk := &dialect.OpenAIStreamChunk{Choices: []dialect.OpenAIStreamChoice{{Index: 0}}}
	switch ev.Type {
	case "response.created":
		if ev.Response != nil {
			chunk.ID, chunk.Model = ev.Response.ID, ev.Response.Model
		}
		chunk.Choices[0].Delta.Role = "assistant"
	case "response.output_text.delta":
		chunk.Choices[0].Delta.Content = ev.Delta
	case "response.reasoning_summary_text.delta":
		chunk.Choices[0].Delta.ReasoningContent = ev.Delta
	case "response.function_call_arguments.delta":
		chunk.Choices[0].Delta.ToolCalls = []dialect.OpenAIStreamToolCallDelta{{
			Index: 0, Function: dialect.OpenAIStreamToolCallFunc{Arguments: ev.Delta},
		}}
	case "response.completed":
		reason := "stop"
		if ev.Response != nil {
			reason = StopReasonToOpenAI(responsesStatusToStopReason(ev.Response.Status))
			if ev.Response.Usage != nil {
				chunk.Usage = &dialect.OpenAIUsage{
					PromptTokens: ev.Response.Usage.InputTokens, CompletionTokens: ev.Response.Usage.OutputTokens, TotalTokens: ev.Response.Usage.TotalTokens,
				}
			}
		}
		chunk.Choices[0].FinishReason = &reason
	default:
		// response.content_part.added/done and similar bookkeeping events
		// carry no independent signal for the pivot.
	}
	return chunk, true
}

// ---- the canonical rewrite engine ----

func advance(chunk *dialect.OpenAIStreamChunk, model string, ctx *StreamCtx) []dialect.PivotFrame {
	var frames []dialect.PivotFrame

	if ctx.PreviousEventName == "" {
		frames = append(frames, dialect.PivotFrame{Kind: dialect.FrameMessageStart, ID: chunk.ID, Model: model})
		ctx.PreviousEventName = string(dialect.FrameMessageStart)
	}

	var finish bool
	var reasoning, content string
	var toolCall *dialect.OpenAIStreamToolCallDelta
	var stopReason dialect.StopReason
	var usage *dialect.Usage

	if len(chunk.Choices) > 0 {
		c := chunk.Choices[0]
		finish = c.FinishReason != nil
		if finish {
			stopReason = StopReasonFromOpenAI(*c.FinishReason)
		}
		reasoning = c.Delta.ReasoningContent
		content = c.Delta.Content
		if len(c.Delta.ToolCalls) > 0 {
			toolCall = &c.Delta.ToolCalls[0]
		}
	}
	if chunk.Usage != nil {
		usage = &dialect.Usage{PromptTokens: chunk.Usage.PromptTokens, CompletionTokens: chunk.Usage.CompletionTokens, TotalTokens: chunk.Usage.TotalTokens}
	}

	hasReasoning, hasContent, hasTool := reasoning != "", content != "", toolCall != nil

	if finish {
		frames = append(frames, dialect.PivotFrame{Kind: dialect.FrameBlockStop, BlockIndex: ctx.BlockIndex})
	}

	if !hasReasoning && !hasContent && !hasTool && !finish {
		return frames
	}

	var currentKind dialect.DeltaKind
	switch {
	case hasReasoning:
		currentKind = dialect.DeltaThinking
	case hasContent:
		currentKind = dialect.DeltaText
	case hasTool:
		currentKind = dialect.DeltaToolJSON
	}

	emitDelta := func(index int) dialect.PivotFrame {
		f := dialect.PivotFrame{Kind: dialect.FrameDelta, BlockIndex: index, DeltaKind: currentKind}
		switch currentKind {
		case dialect.DeltaText:
			f.Text = content
		case dialect.DeltaThinking:
			f.Text = reasoning
		case dialect.DeltaToolJSON:
			f.PartialArg = toolCall.Function.Arguments
		}
		return f
	}

	switch {
	case finish:
		if usage == nil {
			usage = &dialect.Usage{}
		}
		frames = append(frames,
			dialect.PivotFrame{Kind: dialect.FrameMessageDelta, StopReason: stopReason, Usage: usage},
			dialect.PivotFrame{Kind: dialect.FrameMessageStop},
		)
		ctx.PreviousEventName = string(dialect.FrameMessageStop)

	case ctx.PreviousEventName == string(dialect.FrameMessageStart):
		start := dialect.PivotFrame{Kind: dialect.FrameBlockStart, BlockIndex: ctx.BlockIndex, DeltaKind: currentKind}
		if currentKind == dialect.DeltaToolJSON && toolCall != nil {
			start.ToolID, start.ToolName = toolCall.ID, toolCall.Function.Name
			ctx.toolID, ctx.toolName = toolCall.ID, toolCall.Function.Name
		}
		frames = append(frames, start, emitDelta(ctx.BlockIndex))
		ctx.PreviousDeltaKind = currentKind
		ctx.PreviousEventName = string(dialect.FrameBlockStart)

	case currentKind == ctx.PreviousDeltaKind:
		frames = append(frames, emitDelta(ctx.BlockIndex))

	default:
		frames = append(frames, dialect.PivotFrame{Kind: dialect.FrameBlockStop, BlockIndex: ctx.BlockIndex})
		ctx.BlockIndex++
		start := dialect.PivotFrame{Kind: dialect.FrameBlockStart, BlockIndex: ctx.BlockIndex, DeltaKind: currentKind}
		if currentKind == dialect.DeltaToolJSON && toolCall != nil {
			start.ToolID, start.ToolName = toolCall.ID, toolCall.Function.Name
			ctx.toolID, ctx.toolName = toolCall.ID, toolCall.Function.Name
		}
		frames = append(frames, start, emitDelta(ctx.BlockIndex))
		ctx.PreviousDeltaKind = currentKind
	}

	return frames
}

// ---- render pivot frames into a target dialect's wire frames ----

func renderFrames(tgt dialect.Name, frames []dialect.PivotFrame, ctx *StreamCtx) []Frame {
	switch tgt {
	case dialect.Anthropic:
		return renderAnthropicFrames(frames)
	case dialect.OpenAIChat:
		return renderOpenAIFrames(frames, ctx)
	case dialect.Gemini:
		return renderGeminiFrames(frames, ctx)
	case dialect.OpenAIResponses:
		return renderResponsesFrames(frames)
	default:
		return nil
	}
}

func renderAnthropicFrames(frames []dialect.PivotFrame) []Frame {
	var out []Frame
	for _, f := range frames {
		switch f.Kind {
		case dialect.FrameMessageStart:
			msg := dialect.AnthropicStreamMessage{ID: f.ID, Type: "message", Role: "assistant", Content: []dialect.AnthropicContentBlock{}, Model: f.Model}
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "message_start", Message: &msg})
			out = append(out, Frame{Event: "message_start", Data: string(payload)})
		case dialect.FrameBlockStart:
			block := blockStartFor(f)
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "content_block_start", Index: f.BlockIndex, ContentBlock: &block})
			out = append(out, Frame{Event: "content_block_start", Data: string(payload)})
		case dialect.FrameDelta:
			delta := deltaFor(f)
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "content_block_delta", Index: f.BlockIndex, Delta: &delta})
			out = append(out, Frame{Event: "content_block_delta", Data: string(payload)})
		case dialect.FrameBlockStop:
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "content_block_stop", Index: f.BlockIndex})
			out = append(out, Frame{Event: "content_block_stop", Data: string(payload)})
		case dialect.FrameMessageDelta:
			reason := StopReasonToAnthropic(f.StopReason)
			delta := dialect.AnthropicStreamDelta{StopReason: reason}
			var usage *dialect.AnthropicUsage
			if f.Usage != nil {
				usage = &dialect.AnthropicUsage{InputTokens: f.Usage.PromptTokens, OutputTokens: f.Usage.CompletionTokens}
			}
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "message_delta", Delta: &delta, Usage: usage})
			out = append(out, Frame{Event: "message_delta", Data: string(payload)})
		case dialect.FrameMessageStop:
			payload, _ := json.Marshal(dialect.AnthropicStreamEvent{Type: "message_stop"})
			out = append(out, Frame{Event: "message_stop", Data: string(payload)})
		}
	}
	return out
}

func blockStartFor(f dialect.PivotFrame) dialect.AnthropicContentBlock {
	switch f.DeltaKind {
	case dialect.DeltaThinking:
		return dialect.AnthropicContentBlock{Type: "thinking", Thinking: "", Signature: ""}
	case dialect.DeltaToolJSON:
		return dialect.AnthropicContentBlock{Type: "tool_use", ID: f.ToolID, Name: f.ToolName, Input: json.RawMessage("{}")}
	default:
		return dialect.AnthropicContentBlock{Type: "text", Text: ""}
	}
}

func deltaFor(f dialect.PivotFrame) dialect.AnthropicStreamDelta {
	switch f.DeltaKind {
	case dialect.DeltaThinking:
		return dialect.AnthropicStreamDelta{Type: "thinking_delta", Thinking: f.Text}
	case dialect.DeltaToolJSON:
		return dialect.AnthropicStreamDelta{Type: "input_json_delta", PartialJSON: f.PartialArg}
	default:
		return dialect.AnthropicStreamDelta{Type: "text_delta", Text: f.Text}
	}
}

func renderOpenAIFrames(frames []dialect.PivotFrame, ctx *StreamCtx) []Frame {
	var out []Frame
	emit := func(delta dialect.OpenAIStreamDelta, finish *string, model string, id string, usage *dialect.Usage) {
		if !ctx.roleSent {
			delta.Role = "assistant"
			ctx.roleSent = true
		}
		chunk := dialect.OpenAIStreamChunk{ID: id, Model: model, Choices: []dialect.OpenAIStreamChoice{{Index: 0, Delta: delta, FinishReason: finish}}}
		if usage != nil {
			chunk.Usage = &dialect.OpenAIUsage{PromptTokens: usage.PromptTokens, CompletionTokens: usage.CompletionTokens, TotalTokens: totalTokens(*usage)}
		}
		payload, _ := json.Marshal(chunk)
		out = append(out, Frame{Data: string(payload)})
	}

	model, id := ctx.model, ctx.messageID
	for _, f := range frames {
		switch f.Kind {
		case dialect.FrameMessageStart:
			model, id = f.Model, f.ID
			ctx.model, ctx.messageID = model, id
		case dialect.FrameDelta:
			var delta dialect.OpenAIStreamDelta
			switch f.DeltaKind {
			case dialect.DeltaText:
				delta.Content = f.Text
			case dialect.DeltaThinking:
				delta.ReasoningContent = f.Text
			case dialect.DeltaToolJSON:
				tc := dialect.OpenAIStreamToolCallDelta{Index: f.BlockIndex, Function: dialect.OpenAIStreamToolCallFunc{Arguments: f.PartialArg}}
				if f.ToolID != "" {
					tc.ID, tc.Type, tc.Function.Name = f.ToolID, "function", f.ToolName
				}
				delta.ToolCalls = []dialect.OpenAIStreamToolCallDelta{tc}
			}
			emit(delta, nil, model, id, nil)
		case dialect.FrameBlockStart:
			if f.DeltaKind == dialect.DeltaToolJSON {
				delta := dialect.OpenAIStreamDelta{ToolCalls: []dialect.OpenAIStreamToolCallDelta{{
					Index: f.BlockIndex, ID: f.ToolID, Type: "function", Function: dialect.OpenAIStreamToolCallFunc{Name: f.ToolName},
				}}}
				emit(delta, nil, model, id, nil)
			}
		case dialect.FrameMessageDelta:
			reason := StopReasonToOpenAI(f.StopReason)
			emit(dialect.OpenAIStreamDelta{}, &reason, model, id, f.Usage)
		}
	}
	return out
}

func renderGeminiFrames(frames []dialect.PivotFrame, ctx *StreamCtx) []Frame {
	var out []Frame
	for _, f := range frames {
		switch f.Kind {
		case dialect.FrameDelta:
			switch f.DeltaKind {
			case dialect.DeltaToolJSON:
				ctx.ToolArgsBuffer += f.PartialArg
				if !json.Valid([]byte(ctx.ToolArgsBuffer)) {
					continue // buffer until it parses; Gemini rejects partial JSON
				}
				args := json.RawMessage(ctx.ToolArgsBuffer)
				ctx.ToolArgsBuffer = ""
				resp := dialect.GeminiResponse{Candidates: []dialect.GeminiCandidate{{Content: dialect.GeminiContent{
					Role: "model", Parts: []dialect.GeminiPart{{FunctionCall: &dialect.GeminiFunctionCall{Name: ctx.toolName, Args: args}}},
				}}}}
				payload, _ := json.Marshal(resp)
				out = append(out, Frame{Data: string(payload)})
			default:
				part := dialect.GeminiPart{Text: f.Text, Thought: f.DeltaKind == dialect.DeltaThinking}
				resp := dialect.GeminiResponse{Candidates: []dialect.GeminiCandidate{{Content: dialect.GeminiContent{Role: "model", Parts: []dialect.GeminiPart{part}}}}}
				payload, _ := json.Marshal(resp)
				out = append(out, Frame{Data: string(payload)})
			}
		case dialect.FrameMessageDelta:
			// An unparseable trailing tool-arg buffer is dropped on finish.
			ctx.ToolArgsBuffer = ""
			var usage *dialect.GeminiUsageMetadata
			if f.Usage != nil {
				usage = &dialect.GeminiUsageMetadata{PromptTokenCount: f.Usage.PromptTokens, CandidatesTokenCount: f.Usage.CompletionTokens, TotalTokenCount: totalTokens(*f.Usage)}
			}
			resp := dialect.GeminiResponse{
				Candidates:    []dialect.GeminiCandidate{{Content: dialect.GeminiContent{Role: "model"}, FinishReason: StopReasonToGemini(f.StopReason)}},
				UsageMetadata: usage,
			}
			payload, _ := json.Marshal(resp)
			out = append(out, Frame{Data: string(payload)})
		}
	}
	return out
}

func renderResponsesFrames(frames []dialect.PivotFrame) []Frame {
	var out []Frame
	for _, f := range frames {
		switch f.Kind {
		case dialect.FrameMessageStart:
			ev := dialect.ResponsesStreamEvent{Type: "response.created", Response: &dialect.ResponsesResponse{ID: f.ID, Model: f.Model, Status: "in_progress"}}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FrameBlockStart:
			ev := dialect.ResponsesStreamEvent{Type: "response.content_part.added", OutputIndex: f.BlockIndex}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FrameDelta:
			typ := "response.content_part.delta"
			text := f.Text
			if f.DeltaKind == dialect.DeltaText {
				typ = "response.output_text.delta"
			} else if f.DeltaKind == dialect.DeltaToolJSON {
				typ = "response.function_call_arguments.delta"
				text = f.PartialArg
			}
			ev := dialect.ResponsesStreamEvent{Type: typ, OutputIndex: f.BlockIndex, Delta: text}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FrameBlockStop:
			ev := dialect.ResponsesStreamEvent{Type: "response.content_part.done", OutputIndex: f.BlockIndex}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FrameMessageDelta:
			ev := dialect.ResponsesStreamEvent{Type: "response.output_item.done", Response: &dialect.ResponsesResponse{Status: ResponsesStatusFromPivot(f.StopReason)}}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FrameMessageStop:
			ev := dialect.ResponsesStreamEvent{Type: "response.completed"}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		case dialect.FramePing:
			ev := dialect.ResponsesStreamEvent{Type: "response.heartbeat"}
			payload, _ := json.Marshal(ev)
			out = append(out, Frame{Data: string(payload)})
		}
	}
	return out
}
