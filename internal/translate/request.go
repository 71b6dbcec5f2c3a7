package translate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relaygate/llmgateway/internal/apperr"
	"github.com/relaygate/llmgateway/internal/config"
	"github.com/relaygate/llmgateway/internal/dialect"
)

var openAIChatKnownKeys = map[string]bool{
	"model": true, "messages": true, "tools": true, "temperature": true,
	"max_tokens": true, "stream": true, "response_format": true,
}

var anthropicKnownKeys = map[string]bool{
	"model": true, "max_tokens": true, "system": true, "messages": true,
	"tools": true, "temperature": true, "stream": true,
}

var geminiKnownKeys = map[string]bool{
	"contents": true, "systemInstruction": true, "tools": true, "generationConfig": true,
}

var responsesKnownKeys = map[string]bool{
	"model": true, "input": true, "instructions": true, "tools": true,
	"max_output_tokens": true, "stream": true, "text": true,
}

// Request converts a request body from src's wire shape to tgt's, routing
// through the pivot. entry supplies the physical model id the
// rendered body addresses upstream.
func Request(src, tgt dialect.Name, body []byte, entry config.ModelEntry) ([]byte, error) {
	p, err := ParseRequest(src, body)
	if err != nil {
		return nil, err
	}
	return RenderRequest(tgt, p, entry)
}

// ParseRequest parses body in src's wire shape into the pivot.
func ParseRequest(src dialect.Name, body []byte) (*dialect.PivotRequest, error) {
	switch src {
	case dialect.OpenAIChat:
		var req dialect.OpenAIChatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.BadRequest("invalid openai chat request: %v", err)
		}
		req.Passthrough = splitPassthrough(body, openAIChatKnownKeys)
		return openAIChatToPivot(&req)
	case dialect.Anthropic:
		var req dialect.AnthropicRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.BadRequest("invalid anthropic request: %v", err)
		}
		req.Passthrough = splitPassthrough(body, anthropicKnownKeys)
		return anthropicToPivot(&req)
	case dialect.Gemini:
		var req dialect.GeminiRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.BadRequest("invalid gemini request: %v", err)
		}
		req.Passthrough = splitPassthrough(body, geminiKnownKeys)
		return geminiToPivot(&req)
	case dialect.OpenAIResponses:
		var req dialect.ResponsesRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.BadRequest("invalid responses request: %v", err)
		}
		req.Passthrough = splitPassthrough(body, responsesKnownKeys)
		return responsesToPivot(&req)
	default:
		return nil, apperr.BadRequest("unknown source dialect %q", src)
	}
}

// RenderRequest renders the pivot into tgt's wire shape, substituting the
// physical model id from entry.
func RenderRequest(tgt dialect.Name, p *dialect.PivotRequest, entry config.ModelEntry) ([]byte, error) {
	physicalModel := entry.LLMParams.Model

	switch tgt {
	case dialect.OpenAIChat:
		req := pivotToOpenAIChat(p, physicalModel)
		out, err := json.Marshal(req)
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "openai chat request")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.Anthropic:
		req := pivotToAnthropic(p, physicalModel)
		out, err := json.Marshal(req)
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "anthropic request")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.Gemini:
		req := pivotToGemini(p)
		out, err := json.Marshal(req)
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "gemini request")
		}
		return mergePassthrough(out, p.Passthrough), nil
	case dialect.OpenAIResponses:
		req := pivotToResponses(p, physicalModel)
		out, err := json.Marshal(req)
		if err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "responses request")
		}
		return mergePassthrough(out, p.Passthrough), nil
	default:
		return nil, apperr.BadRequest("unknown target dialect %q", tgt)
	}
}

// ---- OpenAI Chat Completions <-> pivot ----

func openAIChatToPivot(req *dialect.OpenAIChatRequest) (*dialect.PivotRequest, error) {
	msgs, system, err := openAIMessagesToPivot(req.Messages)
	if err != nil {
		return nil, err
	}
	p := &dialect.PivotRequest{
		Model:       req.Model,
		Messages:    msgs,
		System:      system,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
		Passthrough: req.Passthrough,
	}
	for _, t := range req.Tools {
		p.Tools = append(p.Tools, dialect.Tool{
			Name: t.Function.Name, Description: t.Function.Description, Parameters: t.Function.Parameters,
		})
	}
	if req.ResponseFormat != nil {
		p.ResponseFormat = &dialect.ResponseFormat{Type: req.ResponseFormat.Type}
		if req.ResponseFormat.JSONSchema != nil {
			p.ResponseFormat.Schema = req.ResponseFormat.JSONSchema.Schema
		}
	}
	return p, nil
}

func pivotToOpenAIChat(p *dialect.PivotRequest, physicalModel string) *dialect.OpenAIChatRequest {
	req := &dialect.OpenAIChatRequest{
		Model:       physicalModel,
		Messages:    pivotToOpenAIMessages(p),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Stream:      p.Stream,
	}
	for _, t := range p.Tools {
		req.Tools = append(req.Tools, dialect.OpenAITool{
			Type:     "function",
			Function: dialect.OpenAIToolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}
	if p.ResponseFormat != nil {
		rf := &dialect.OpenAIResponseFormat{Type: p.ResponseFormat.Type}
		if len(p.ResponseFormat.Schema) > 0 {
			rf.JSONSchema = &dialect.OpenAIResponseJSONSchema{Schema: p.ResponseFormat.Schema}
		}
		req.ResponseFormat = rf
	}
	return req
}

// openAIMessagesToPivot maps chat-completions-shaped messages into pivot
// messages, folding every "system" message into one joined string (shared
// by OpenAIChat and Responses, which both use this message shape).
func openAIMessagesToPivot(msgs []dialect.OpenAIChatMessage) ([]dialect.Message, string, error) {
	var system []string
	var out []dialect.Message
	for _, m := range msgs {
		if m.Role == "system" {
			text, err := contentAsText(m.Content)
			if err != nil {
				return nil, "", err
			}
			system = append(system, text)
			continue
		}
		if m.Role == "tool" {
			out = append(out, dialect.Message{
				Role:       dialect.RoleTool,
				ToolCallID: m.ToolCallID,
				Parts:      []dialect.Part{{Kind: dialect.PartToolResult, ToolResultContent: mustContentAsText(m.Content)}},
			})
			continue
		}

		parts, err := parseOpenAIContent(m.Content)
		if err != nil {
			return nil, "", err
		}
		for _, tc := range m.ToolCalls {
			args, err := normalizeToolArgs(tc.Function.Arguments)
			if err != nil {
				return nil, "", err
			}
			parts = append(parts, dialect.Part{
				Kind: dialect.PartToolUse, ToolCallID: tc.ID, ToolName: tc.Function.Name, ToolArgs: args,
			})
		}
		out = append(out, dialect.Message{Role: dialect.Role(m.Role), Parts: parts})
	}
	return out, strings.Join(system, "\n\n"), nil
}

func pivotToOpenAIMessages(p *dialect.PivotRequest) []dialect.OpenAIChatMessage {
	var out []dialect.OpenAIChatMessage
	if p.System != "" {
		out = append(out, dialect.OpenAIChatMessage{Role: "system", Content: jsonString(p.System)})
	}
	for _, m := range p.Messages {
		if m.Role == dialect.RoleTool {
			out = append(out, dialect.OpenAIChatMessage{
				Role: "tool", ToolCallID: m.ToolCallID, Content: jsonString(toolResultText(m.Parts)),
			})
			continue
		}

		msg := dialect.OpenAIChatMessage{Role: string(m.Role)}
		var textParts []dialect.Part
		for _, part := range m.Parts {
			if part.Kind == dialect.PartToolUse {
				msg.ToolCalls = append(msg.ToolCalls, dialect.OpenAIToolCall{
					ID: part.ToolCallID, Type: "function",
					Function: dialect.OpenAIToolCallFunc{Name: part.ToolName, Arguments: string(part.ToolArgs)},
				})
				continue
			}
			textParts = append(textParts, part)
		}
		msg.Content = renderOpenAIContent(textParts)
		out = append(out, msg)
	}
	return out
}

// ---- Anthropic <-> pivot ----

func anthropicToPivot(req *dialect.AnthropicRequest) (*dialect.PivotRequest, error) {
	p := &dialect.PivotRequest{
		Model:       req.Model,
		System:      req.System,
		MaxTokens:   intPtr(req.MaxTokens),
		Temperature: req.Temperature,
		Stream:      req.Stream,
		Passthrough: req.Passthrough,
	}
	for _, t := range req.Tools {
		p.Tools = append(p.Tools, dialect.Tool{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
	}

	for _, m := range req.Messages {
		blocks, err := parseAnthropicContent(m.Content)
		if err != nil {
			return nil, err
		}
		var bodyParts []dialect.Part
		for _, b := range blocks {
			switch b.Type {
			case "tool_result":
				p.Messages = append(p.Messages, dialect.Message{
					Role: dialect.RoleTool, ToolCallID: b.ToolUseID,
					Parts: []dialect.Part{{Kind: dialect.PartToolResult, ToolResultContent: anthropicToolResultText(b.Content)}},
				})
			case "text":
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartText, Text: b.Text})
			case "thinking":
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartThinking, Text: b.Thinking})
			case "redacted_thinking":
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartRedactedThink, Text: b.Data})
			case "tool_use":
				bodyParts = append(bodyParts, dialect.Part{
					Kind: dialect.PartToolUse, ToolCallID: b.ID, ToolName: b.Name, ToolArgs: b.Input,
				})
			case "image":
				bodyParts = append(bodyParts, anthropicImagePart(b.Source))
			}
		}
		if len(bodyParts) > 0 {
			p.Messages = append(p.Messages, dialect.Message{Role: dialect.Role(m.Role), Parts: bodyParts})
		}
	}
	return p, nil
}

func pivotToAnthropic(p *dialect.PivotRequest, physicalModel string) *dialect.AnthropicRequest {
	maxTokens := 4096 // Anthropic requires max_tokens; default when the source dialect left it unset.
	if p.MaxTokens != nil {
		maxTokens = *p.MaxTokens
	}
	req := &dialect.AnthropicRequest{
		Model: physicalModel, MaxTokens: maxTokens, System: p.System,
		Temperature: p.Temperature, Stream: p.Stream,
	}
	for _, t := range p.Tools {
		req.Tools = append(req.Tools, dialect.AnthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.Parameters})
	}

	for _, m := range p.Messages {
		if m.Role == dialect.RoleTool {
			block := dialect.AnthropicContentBlock{
				Type: "tool_result", ToolUseID: m.ToolCallID, Content: jsonString(toolResultText(m.Parts)),
			}
			blocks, _ := json.Marshal([]dialect.AnthropicContentBlock{block})
			req.Messages = append(req.Messages, dialect.AnthropicMessage{Role: "user", Content: blocks})
			continue
		}

		var blocks []dialect.AnthropicContentBlock
		for _, part := range m.Parts {
			switch part.Kind {
			case dialect.PartText:
				blocks = append(blocks, dialect.AnthropicContentBlock{Type: "text", Text: part.Text})
			case dialect.PartThinking:
				blocks = append(blocks, dialect.AnthropicContentBlock{Type: "thinking", Thinking: part.Text})
			case dialect.PartRedactedThink:
				blocks = append(blocks, dialect.AnthropicContentBlock{Type: "redacted_thinking", Data: part.Text})
			case dialect.PartToolUse:
				blocks = append(blocks, dialect.AnthropicContentBlock{
					Type: "tool_use", ID: part.ToolCallID, Name: part.ToolName, Input: part.ToolArgs,
				})
			case dialect.PartImage:
				blocks = append(blocks, dialect.AnthropicContentBlock{Type: "image", Source: pivotImageToAnthropicSource(part)})
			}
		}
		raw, _ := json.Marshal(blocks)
		req.Messages = append(req.Messages, dialect.AnthropicMessage{Role: string(m.Role), Content: raw})
	}
	return req
}

// ---- Gemini <-> pivot ----

func geminiToPivot(req *dialect.GeminiRequest) (*dialect.PivotRequest, error) {
	p := &dialect.PivotRequest{Passthrough: req.Passthrough}
	if req.SystemInstruction != nil {
		p.System = geminiPartsText(req.SystemInstruction.Parts)
	}
	for _, t := range req.Tools {
		for _, fd := range t.FunctionDeclarations {
			p.Tools = append(p.Tools, dialect.Tool{Name: fd.Name, Description: fd.Description, Parameters: fd.Parameters})
		}
	}
	if gc := req.GenerationConfig; gc != nil {
		p.Temperature = gc.Temperature
		if gc.MaxOutputTokens > 0 {
			p.MaxTokens = intPtr(gc.MaxOutputTokens)
		}
		if gc.ResponseMimeType != "" {
			p.ResponseFormat = &dialect.ResponseFormat{Type: geminiMimeToFormatType(gc.ResponseMimeType), Schema: gc.ResponseSchema}
		}
	}

	// Gemini function calls carry no call id; one is synthesized per call so
	// the pivot's tool-result messages (which address a call by id) have
	// something to reference, and the matching functionResponse is paired by
	// name against the earliest unmatched call with that name.
	pending := map[string][]string{}
	seq := 0
	for _, c := range req.Contents {
		var bodyParts []dialect.Part
		for _, part := range c.Parts {
			switch {
			case part.FunctionCall != nil:
				seq++
				id := fmt.Sprintf("gemini-call-%d", seq)
				pending[part.FunctionCall.Name] = append(pending[part.FunctionCall.Name], id)
				bodyParts = append(bodyParts, dialect.Part{
					Kind: dialect.PartToolUse, ToolCallID: id, ToolName: part.FunctionCall.Name, ToolArgs: part.FunctionCall.Args,
				})
			case part.FunctionResponse != nil:
				id := part.FunctionResponse.Name
				if ids := pending[part.FunctionResponse.Name]; len(ids) > 0 {
					id = ids[0]
					pending[part.FunctionResponse.Name] = ids[1:]
				}
				p.Messages = append(p.Messages, dialect.Message{
					Role: dialect.RoleTool, ToolCallID: id,
					Parts: []dialect.Part{{Kind: dialect.PartToolResult, ToolResultContent: string(part.FunctionResponse.Response)}},
				})
			case part.InlineData != nil:
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartImage, ImageMIME: part.InlineData.MimeType, ImageBase64: part.InlineData.Data})
			case part.Thought:
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartThinking, Text: part.Text})
			default:
				bodyParts = append(bodyParts, dialect.Part{Kind: dialect.PartText, Text: part.Text})
			}
		}
		if len(bodyParts) > 0 {
			p.Messages = append(p.Messages, dialect.Message{Role: geminiRoleToPivot(c.Role), Parts: bodyParts})
		}
	}
	return p, nil
}

func pivotToGemini(p *dialect.PivotRequest) *dialect.GeminiRequest {
	req := &dialect.GeminiRequest{}
	if p.System != "" {
		req.SystemInstruction = &dialect.GeminiContent{Parts: []dialect.GeminiPart{{Text: p.System}}}
	}
	if len(p.Tools) > 0 {
		var decls []dialect.GeminiFunctionDeclaration
		for _, t := range p.Tools {
			decls = append(decls, dialect.GeminiFunctionDeclaration{
				Name: t.Name, Description: t.Description, Parameters: stripSchemaNoise(t.Parameters),
			})
		}
		req.Tools = []dialect.GeminiTool{{FunctionDeclarations: decls}}
	}
	if p.Temperature != nil || p.MaxTokens != nil || p.ResponseFormat != nil {
		gc := &dialect.GeminiGenerationConfig{Temperature: p.Temperature}
		if p.MaxTokens != nil {
			gc.MaxOutputTokens = *p.MaxTokens
		}
		if p.ResponseFormat != nil {
			gc.ResponseMimeType = formatTypeToGeminiMime(p.ResponseFormat.Type)
			gc.ResponseSchema = p.ResponseFormat.Schema
		}
		req.GenerationConfig = gc
	}

	toolNameByID := map[string]string{}
	for _, m := range p.Messages {
		for _, part := range m.Parts {
			if part.Kind == dialect.PartToolUse {
				toolNameByID[part.ToolCallID] = part.ToolName
			}
		}
	}

	for _, m := range p.Messages {
		if m.Role == dialect.RoleTool {
			name := toolNameByID[m.ToolCallID]
			if name == "" {
				name = m.ToolCallID
			}
			resp := json.RawMessage(jsonString(toolResultText(m.Parts)))
			req.Contents = append(req.Contents, dialect.GeminiContent{
				Role:  "user",
				Parts: []dialect.GeminiPart{{FunctionResponse: &dialect.GeminiFunctionResponse{Name: name, Response: resp}}},
			})
			continue
		}

		var parts []dialect.GeminiPart
		for _, part := range m.Parts {
			switch part.Kind {
			case dialect.PartText:
				parts = append(parts, dialect.GeminiPart{Text: part.Text})
			case dialect.PartThinking:
				parts = append(parts, dialect.GeminiPart{Text: part.Text, Thought: true})
			case dialect.PartRedactedThink:
				parts = append(parts, dialect.GeminiPart{Text: part.Text, Thought: true})
			case dialect.PartToolUse:
				parts = append(parts, dialect.GeminiPart{FunctionCall: &dialect.GeminiFunctionCall{Name: part.ToolName, Args: part.ToolArgs}})
			case dialect.PartImage:
				parts = append(parts, dialect.GeminiPart{InlineData: &dialect.GeminiInlineData{MimeType: part.ImageMIME, Data: part.ImageBase64}})
			}
		}
		req.Contents = append(req.Contents, dialect.GeminiContent{Role: pivotRoleToGemini(m.Role), Parts: parts})
	}
	return req
}

// ---- OpenAI Responses <-> pivot ----

func responsesToPivot(req *dialect.ResponsesRequest) (*dialect.PivotRequest, error) {
	msgs, innerSystem, err := openAIMessagesToPivot(req.Input)
	if err != nil {
		return nil, err
	}
	system := req.Instructions
	if innerSystem != "" {
		if system != "" {
			system += "\n\n"
		}
		system += innerSystem
	}
	p := &dialect.PivotRequest{
		Model: req.Model, Messages: msgs, System: system,
		MaxTokens: req.MaxOutputTokens, Stream: req.Stream, Passthrough: req.Passthrough,
	}
	for _, t := range req.Tools {
		p.Tools = append(p.Tools, dialect.Tool{Name: t.Function.Name, Description: t.Function.Description, Parameters: t.Function.Parameters})
	}
	if req.Text != nil && req.Text.Format != nil {
		p.ResponseFormat = &dialect.ResponseFormat{Type: req.Text.Format.Type, Schema: req.Text.Format.Schema}
	}
	return p, nil
}

func pivotToResponses(p *dialect.PivotRequest, physicalModel string) *dialect.ResponsesRequest {
	req := &dialect.ResponsesRequest{
		Model: physicalModel, Instructions: p.System,
		Input: pivotToOpenAIMessages(&dialect.PivotRequest{Messages: p.Messages}), // no System: Instructions carries it
		MaxOutputTokens: p.MaxTokens, Stream: p.Stream,
	}
	for _, t := range p.Tools {
		req.Tools = append(req.Tools, dialect.OpenAITool{Type: "function", Function: dialect.OpenAIToolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters}})
	}
	if p.ResponseFormat != nil {
		req.Text = &dialect.ResponsesTextConfig{Format: &dialect.ResponsesTextFormat{Type: p.ResponseFormat.Type, Schema: p.ResponseFormat.Schema}}
	}
	return req
}

// ---- shared content helpers ----

func parseOpenAIContent(raw json.RawMessage) ([]dialect.Part, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "message content string")
		}
		if s == "" {
			return nil, nil
		}
		return []dialect.Part{{Kind: dialect.PartText, Text: s}}, nil
	}

	var items []dialect.OpenAIContentPart
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Conversion(apperr.ConversionBadShape, "message content array")
	}
	var out []dialect.Part
	for _, it := range items {
		switch it.Type {
		case "text":
			out = append(out, dialect.Part{Kind: dialect.PartText, Text: it.Text})
		case "image_url":
			if it.ImageURL == nil {
				continue
			}
			if mime, b64, ok := parseDataURL(it.ImageURL.URL); ok {
				out = append(out, dialect.Part{Kind: dialect.PartImage, ImageMIME: mime, ImageBase64: b64})
			} else {
				out = append(out, dialect.Part{Kind: dialect.PartImage, ImageURL: it.ImageURL.URL})
			}
		}
	}
	return out, nil
}

func renderOpenAIContent(parts []dialect.Part) json.RawMessage {
	if len(parts) == 1 && parts[0].Kind == dialect.PartText {
		return jsonString(parts[0].Text)
	}
	if len(parts) == 0 {
		return jsonString("")
	}
	var items []dialect.OpenAIContentPart
	for _, part := range parts {
		switch part.Kind {
		case dialect.PartText, dialect.PartThinking, dialect.PartRedactedThink:
			items = append(items, dialect.OpenAIContentPart{Type: "text", Text: part.Text})
		case dialect.PartImage:
			url := part.ImageURL
			if url == "" {
				url = fmt.Sprintf("data:%s;base64,%s", part.ImageMIME, part.ImageBase64)
			}
			items = append(items, dialect.OpenAIContentPart{Type: "image_url", ImageURL: &dialect.OpenAIImageURL{URL: url}})
		}
	}
	raw, _ := json.Marshal(items)
	return raw
}

func contentAsText(raw json.RawMessage) (string, error) {
	parts, err := parseOpenAIContent(raw)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func mustContentAsText(raw json.RawMessage) string {
	s, _ := contentAsText(raw)
	return s
}

func parseAnthropicContent(raw json.RawMessage) ([]dialect.AnthropicContentBlock, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Conversion(apperr.ConversionBadShape, "anthropic content string")
		}
		return []dialect.AnthropicContentBlock{{Type: "text", Text: s}}, nil
	}
	var blocks []dialect.AnthropicContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, apperr.Conversion(apperr.ConversionBadShape, "anthropic content array")
	}
	return blocks, nil
}

func anthropicToolResultText(raw json.RawMessage) string {
	blocks, err := parseAnthropicContent(raw)
	if err != nil {
		return string(raw)
	}
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(b.Text)
	}
	return sb.String()
}

func anthropicImagePart(src *dialect.AnthropicImageSource) dialect.Part {
	if src == nil {
		return dialect.Part{Kind: dialect.PartImage}
	}
	if src.Type == "url" {
		return dialect.Part{Kind: dialect.PartImage, ImageURL: src.URL}
	}
	return dialect.Part{Kind: dialect.PartImage, ImageMIME: src.MediaType, ImageBase64: src.Data}
}

func pivotImageToAnthropicSource(part dialect.Part) *dialect.AnthropicImageSource {
	if part.ImageURL != "" {
		return &dialect.AnthropicImageSource{Type: "url", URL: part.ImageURL}
	}
	return &dialect.AnthropicImageSource{Type: "base64", MediaType: part.ImageMIME, Data: part.ImageBase64}
}

func geminiPartsText(parts []dialect.GeminiPart) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func geminiRoleToPivot(role string) dialect.Role {
	if role == "model" {
		return dialect.RoleAssistant
	}
	return dialect.RoleUser
}

func pivotRoleToGemini(role dialect.Role) string {
	if role == dialect.RoleAssistant {
		return "model"
	}
	return "user"
}

func geminiMimeToFormatType(mime string) string {
	if mime == "application/json" {
		return "json_object"
	}
	return "text"
}

func formatTypeToGeminiMime(formatType string) string {
	switch formatType {
	case "json_object", "json_schema":
		return "application/json"
	default:
		return "text/plain"
	}
}

// toolResultText renders a tool-role pivot message's parts back to plain text.
func toolResultText(parts []dialect.Part) string {
	var sb strings.Builder
	for _, p := range parts {
		if p.Kind == dialect.PartToolResult {
			sb.WriteString(p.ToolResultContent)
		}
	}
	return sb.String()
}

// normalizeToolArgs parses an OpenAI tool call's string-encoded arguments
// into a JSON object, the pivot's ToolArgs representation.
func normalizeToolArgs(args string) (json.RawMessage, error) {
	if strings.TrimSpace(args) == "" {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid([]byte(args)) {
		return nil, apperr.Conversion(apperr.ConversionBadJSONArgs, "tool_calls[].function.arguments")
	}
	return json.RawMessage(args), nil
}

func jsonString(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}

func intPtr(v int) *int { return &v }

// parseDataURL splits a "data:<mime>;base64,<data>" URL. ok is false for
// any other scheme (http(s) URLs pass through as references instead).
func parseDataURL(url string) (mime, data string, ok bool) {
	const prefix = "data:"
	if !strings.HasPrefix(url, prefix) {
		return "", "", false
	}
	rest := url[len(prefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", "", false
	}
	meta, payload := rest[:comma], rest[comma+1:]
	meta = strings.TrimSuffix(meta, ";base64")
	return meta, payload, true
}
