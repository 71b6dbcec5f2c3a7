package translate

import (
	"encoding/json"
	"fmt"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/dialect"
)

var openAIChatRespKnownKeys = map[string]bool{"id": true, "object": true, "model": true, "choices": true, "usage": true}
var anthropicRespKnownKeys = map[string]bool{"id": true, "type": true, "role": true, "model": true, "content": true, "stop_reason": true, "usage": true}
var geminiRespKnownKeys = map[string]bool{"candidates": true, "usageMetadata": true}

// Response converts a non-streaming response body from src's wire shape to
// tgt's, routing through the pivot. logicalModel is the
// client-facing model name substituted for whatever physical id the
// backend reported, so clients always see the name they requested.
func Response(src, tgt dialect.Name, body []byte, logicalModel string) ([]byte, error) {
	p, err := ParseResponse(src, body)
	if err != nil {
		return nil, err
	}
	p.Model = logicalModel
	return RenderResponse(tgt, p)
}

// ParseResponse parses body in src's wire shape into the pivot.
func ParseResponse(src dialect.Name, body []byte) (*dialect.PivotResponse, error) {
	switch src {
	case dialect.OpenAIChat:
		var resp dialect.OpenAIChatResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, apperr.BadRequest("invalid openai chat response: %v", err)
		}
		resp.Passthrough = splitPassthrough(body, openAIChatRespKnownKeys)
		return openAIChatRespToPivot(&resp)
	case dialect.Anthropic:
		var resp dialect.AnthropicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, apperr.BadRequest("invalid anthropic response: %v", err)
		}
		resp.Passthrough = splitPassthrough(body, anthropicRespKnownKeys)
		return anthropicRespToPivot(&resp)
	case dialect.Gemini:
		var resp dialect.GeminiResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, apperr.BadRequest("invalid gemini response: %v", err)
		}
		resp.Passthrough = splitPassthrough(body, geminiRespKnownKeys)
		return geminiRespToPivot(&resp)
	case dialect.OpenAIResponses:
		var resp dialect.ResponsesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, apperr.BadRequest("invalid responses response: %v", err)
		}
		return responsesRespToPivot(&resp)
	default:
		return nil, apperr.BadRequest("unknown source dialect %q", src)
	}
}

// RenderResponse renders the pivot into tgt's wire shape.
func RenderResponse(tgt dialect.Name, p *dialect.PivotResponse) ([]byte, error) {
	switch tgt {
	case dialect.OpenAIChat:
		out, err := json.Marshal(pivotToOpenAIChatResp(p))
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "openai chat response")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.Anthropic:
		out, err := json.Marshal(pivotToAnthropicResp(p))
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "anthropic response")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.Gemini:
		out, err := json.Marshal(pivotToGeminiResp(p))
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "gemini response")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.OpenAIResponses:
		out, err := json.Marshal(pivotToResponsesResp(p))
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "responses response")
		}
		return out, nil
	default:
		return nil, apperr.BadRequest("unknown target dialect %q", tgt)
	}
}

// ---- OpenAI Chat Completions ----

func openAIChatRespToPivot(resp *dialect.OpenAIChatResponse) (*dialect.PivotResponse, error) {
	p := &dialect.PivotResponse{ID: resp.ID, Model: resp.Model, Passthrough: resp.Passthrough}
	if len(resp.Choices) > 0 {
		c := resp.Choices[0]
		p.StopReason = StopReasonFromOpenAI(c.FinishReason)
		parts, err := parseOpenAIContent(c.Message.Content)
		if err != nil {
			return nil, err
		}
		p.Parts = append(p.Parts, parts...)
		for _, tc := range c.Message.ToolCalls {
			args, err := normalizeToolArgs(tc.Function.Arguments)
			if err != nil {
				return nil, err
			}
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartToolUse, ToolCallID: tc.ID, ToolName: tc.Function.Name, ToolArgs: args})
		}
	}
	if resp.Usage != nil {
		p.Usage = dialect.Usage{PromptTokens: resp.Usage.PromptTokens, CompletionTokens: resp.Usage.CompletionTokens, TotalTokens: resp.Usage.TotalTokens}
	}
	return p, nil
}

func pivotToOpenAIChatResp(p *dialect.PivotResponse) *dialect.OpenAIChatResponse {
	msg := dialect.OpenAIChatMessage{Role: "assistant"}
	var textParts []dialect.Part
	for _, part := range p.Parts {
		if part.Kind == dialect.PartToolUse {
			msg.ToolCalls = append(msg.ToolCalls, dialect.OpenAIToolCall{
				ID: toolCallIDOrSynth(part.ToolCallID, "call"), Type: "function",
				Function: dialect.OpenAIToolCallFunc{Name: part.ToolName, Arguments: string(part.ToolArgs)},
			})
			continue
		}
		textParts = append(textParts, part)
	}
	msg.Content = renderOpenAIContent(textParts)

	return &dialect.OpenAIChatResponse{
		ID: idOrSynth(p.ID, "chatcmpl"), Object: "chat.completion", Model: p.Model,
		Choices: []dialect.OpenAIChatChoice{{Index: 0, Message: msg, FinishReason: StopReasonToOpenAI(p.StopReason)}},
		Usage: &dialect.OpenAIUsage{PromptTokens: p.Usage.PromptTokens, CompletionTokens: p.Usage.CompletionTokens, TotalTokens: totalTokens(p.Usage)},
	}
}

// ---- Anthropic ----

func anthropicRespToPivot(resp *dialect.AnthropicResponse) (*dialect.PivotResponse, error) {
	p := &dialect.PivotResponse{
		ID: resp.ID, Model: resp.Model, StopReason: StopReasonFromAnthropic(resp.StopReason),
		Usage:       dialect.Usage{PromptTokens: resp.Usage.InputTokens, CompletionTokens: resp.Usage.OutputTokens, TotalTokens: resp.Usage.InputTokens + resp.Usage.OutputTokens},
		Passthrough: resp.Passthrough,
	}
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartText, Text: b.Text})
		case "thinking":
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartThinking, Text: b.Thinking})
		case "redacted_thinking":
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartRedactedThink, Text: b.Data})
		case "tool_use":
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartToolUse, ToolCallID: b.ID, ToolName: b.Name, ToolArgs: b.Input})
		}
	}
	return p, nil
}

func pivotToAnthropicResp(p *dialect.PivotResponse) *dialect.AnthropicResponse {
	var blocks []dialect.AnthropicContentBlock
	// Content order: thinking, then text, then tool_calls.
	for _, part := range p.Parts {
		switch part.Kind {
		case dialect.PartThinking:
			blocks = append(blocks, dialect.AnthropicContentBlock{Type: "thinking", Thinking: part.Text})
		case dialect.PartRedactedThink:
			blocks = append(blocks, dialect.AnthropicContentBlock{Type: "redacted_thinking", Data: part.Text})
		}
	}
	for _, part := range p.Parts {
		if part.Kind == dialect.PartText {
			blocks = append(blocks, dialect.AnthropicContentBlock{Type: "text", Text: part.Text})
		}
	}
	for _, part := range p.Parts {
		if part.Kind == dialect.PartToolUse {
			blocks = append(blocks, dialect.AnthropicContentBlock{
				Type: "tool_use", ID: toolCallIDOrSynth(part.ToolCallID, "toolu"), Name: part.ToolName, Input: part.ToolArgs,
			})
		}
	}
	return &dialect.AnthropicResponse{
		ID: idOrSynth(p.ID, "msg"), Type: "message", Role: "assistant", Model: p.Model,
		Content: blocks, StopReason: StopReasonToAnthropic(p.StopReason),
		Usage: dialect.AnthropicUsage{InputTokens: p.Usage.PromptTokens, OutputTokens: p.Usage.CompletionTokens},
	}
}

// ---- Gemini ----

func geminiRespToPivot(resp *dialect.GeminiResponse) (*dialect.PivotResponse, error) {
	p := &dialect.PivotResponse{Passthrough: resp.Passthrough}
	if resp.UsageMetadata != nil {
		p.Usage = dialect.Usage{
			PromptTokens: resp.UsageMetadata.PromptTokenCount, CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens: resp.UsageMetadata.TotalTokenCount,
		}
	}
	if len(resp.Candidates) == 0 {
		return p, nil
	}
	cand := resp.Candidates[0]
	p.StopReason = StopReasonFromGemini(cand.FinishReason)
	seq := 0
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			seq++
			p.Parts = append(p.Parts, dialect.Part{
				Kind: dialect.PartToolUse, ToolCallID: fmt.Sprintf("gemini-call-%d", seq),
				ToolName: part.FunctionCall.Name, ToolArgs: part.FunctionCall.Args,
			})
		case part.Thought:
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartThinking, Text: part.Text})
		default:
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartText, Text: part.Text})
		}
	}
	return p, nil
}

func pivotToGeminiResp(p *dialect.PivotResponse) *dialect.GeminiResponse {
	var parts []dialect.GeminiPart
	for _, part := range p.Parts {
		switch part.Kind {
		case dialect.PartThinking, dialect.PartRedactedThink:
			parts = append(parts, dialect.GeminiPart{Text: part.Text, Thought: true})
		case dialect.PartText:
			parts = append(parts, dialect.GeminiPart{Text: part.Text})
		case dialect.PartToolUse:
			parts = append(parts, dialect.GeminiPart{FunctionCall: &dialect.GeminiFunctionCall{Name: part.ToolName, Args: part.ToolArgs}})
		}
	}
	return &dialect.GeminiResponse{
		Candidates: []dialect.GeminiCandidate{{
			Content: dialect.GeminiContent{Role: "model", Parts: parts}, FinishReason: StopReasonToGemini(p.StopReason), Index: 0,
		}},
		UsageMetadata: &dialect.GeminiUsageMetadata{
			PromptTokenCount: p.Usage.PromptTokens, CandidatesTokenCount: p.Usage.CompletionTokens, TotalTokenCount: totalTokens(p.Usage),
		},
	}
}

// ---- OpenAI Responses ----

func responsesRespToPivot(resp *dialect.ResponsesResponse) (*dialect.PivotResponse, error) {
	p := &dialect.PivotResponse{ID: resp.ID, Model: resp.Model, Passthrough: resp.Passthrough}
	if resp.Usage != nil {
		p.Usage = dialect.Usage{PromptTokens: resp.Usage.InputTokens, CompletionTokens: resp.Usage.OutputTokens, TotalTokens: resp.Usage.TotalTokens}
	}
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartText, Text: c.Text})
			}
		case "function_call":
			args, err := normalizeToolArgs(item.Arguments)
			if err != nil {
				return nil, err
			}
			p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartToolUse, ToolCallID: item.CallID, ToolName: item.Name, ToolArgs: args})
			p.StopReason = dialect.StopToolUse
		case "reasoning":
			for _, c := range item.Summary {
				p.Parts = append(p.Parts, dialect.Part{Kind: dialect.PartThinking, Text: c.Text})
			}
		}
	}
	if p.StopReason == "" {
		p.StopReason = responsesStatusToStopReason(resp.Status)
	}
	return p, nil
}

func pivotToResponsesResp(p *dialect.PivotResponse) *dialect.ResponsesResponse {
	resp := &dialect.ResponsesResponse{ID: idOrSynth(p.ID, "resp"), Model: p.Model, Status: ResponsesStatusFromPivot(p.StopReason)}

	var thinking, content []dialect.ResponsesContentPart
	for _, part := range p.Parts {
		switch part.Kind {
		case dialect.PartThinking, dialect.PartRedactedThink:
			thinking = append(thinking, dialect.ResponsesContentPart{Type: "summary_text", Text: part.Text})
		case dialect.PartText:
			content = append(content, dialect.ResponsesContentPart{Type: "output_text", Text: part.Text})
		case dialect.PartToolUse:
			resp.Output = append(resp.Output, dialect.ResponsesOutputItem{
				Type: "function_call", CallID: toolCallIDOrSynth(part.ToolCallID, "call"), Name: part.ToolName, Arguments: string(part.ToolArgs),
			})
		}
	}
	if len(thinking) > 0 {
		resp.Output = append([]dialect.ResponsesOutputItem{{Type: "reasoning", Summary: thinking}}, resp.Output...)
	}
	if len(content) > 0 {
		resp.Output = append(resp.Output, dialect.ResponsesOutputItem{Type: "message", Role: "assistant", Status: "completed", Content: content})
	}
	if p.Usage.TotalTokens > 0 || p.Usage.PromptTokens > 0 || p.Usage.CompletionTokens > 0 {
		resp.Usage = &dialect.ResponsesUsage{InputTokens: p.Usage.PromptTokens, OutputTokens: p.Usage.CompletionTokens, TotalTokens: totalTokens(p.Usage)}
	}
	return resp
}

func responsesStatusToStopReason(status string) dialect.StopReason {
	switch status {
	case "incomplete":
		return dialect.StopMaxTokens
	case "requires_action":
		return dialect.StopToolUse
	default:
		return dialect.StopEndTurn
	}
}

// ---- shared ----

// totalTokens returns the passed-through total_tokens when it is nonzero and
// otherwise recomputes it as prompt+completion.
func totalTokens(u dialect.Usage) int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

func idOrSynth(id, prefix string) string {
	if id != "" {
		return id
	}
	return prefix + "-" + randomSuffix()
}

func toolCallIDOrSynth(id, prefix string) string {
	if id != "" {
		return id
	}
	return prefix + "_" + randomSuffix()
}
