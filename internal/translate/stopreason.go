package translate

import "github.com/relaygate/llmgateway/internal/dialect"

// Stop/finish-reason mapping:
//
//	OpenAI          Anthropic        Gemini                  Responses (status)
//	stop            end_turn         STOP                    completed
//	length           max_tokens       MAX_TOKENS              incomplete
//	tool_calls       tool_use         (unspecified)           requires_action
//	content_filter   stop_sequence    SAFETY/BLOCKLIST/...    (content_filter only when target=OpenAI)

// StopReasonFromOpenAI maps an OpenAI finish_reason string to the pivot.
func StopReasonFromOpenAI(s string) dialect.StopReason {
	switch s {
	case "stop":
		return dialect.StopEndTurn
	case "length":
		return dialect.StopMaxTokens
	case "tool_calls", "function_call":
		return dialect.StopToolUse
	case "content_filter":
		return dialect.StopContentFilter
	default:
		return dialect.StopUnspecified
	}
}

// StopReasonToOpenAI renders the pivot stop reason as an OpenAI finish_reason.
func StopReasonToOpenAI(r dialect.StopReason) string {
	switch r {
	case dialect.StopEndTurn:
		return "stop"
	case dialect.StopMaxTokens:
		return "length"
	case dialect.StopToolUse:
		return "tool_calls"
	case dialect.StopContentFilter:
		return "content_filter"
	default:
		return "stop"
	}
}

// StopReasonFromAnthropic maps an Anthropic stop_reason to the pivot.
func StopReasonFromAnthropic(s string) dialect.StopReason {
	switch s {
	case "end_turn", "stop_sequence", "":
		return dialect.StopEndTurn
	case "max_tokens":
		return dialect.StopMaxTokens
	case "tool_use":
		return dialect.StopToolUse
	default:
		return dialect.StopEndTurn
	}
}

// StopReasonToAnthropic renders the pivot stop reason as an Anthropic stop_reason.
//
// A content_filter reason that originated on the OpenAI side and round-trips
// OpenAI -> Anthropic -> OpenAI becomes stop_sequence then stop: the
// original content_filter signal is lost on that round trip. Preserving it
// would need an out-of-band annotation this gateway does not add — the
// lossy mapping is the documented, accepted behavior.
func StopReasonToAnthropic(r dialect.StopReason) string {
	switch r {
	case dialect.StopEndTurn:
		return "end_turn"
	case dialect.StopMaxTokens:
		return "max_tokens"
	case dialect.StopToolUse:
		return "tool_use"
	case dialect.StopContentFilter:
		return "stop_sequence"
	default:
		return "end_turn"
	}
}

// StopReasonFromGemini maps a Gemini finishReason to the pivot.
func StopReasonFromGemini(s string) dialect.StopReason {
	switch s {
	case "STOP", "":
		return dialect.StopEndTurn
	case "MAX_TOKENS":
		return dialect.StopMaxTokens
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "RECITATION":
		return dialect.StopContentFilter
	default:
		return dialect.StopEndTurn
	}
}

// StopReasonToGemini renders the pivot stop reason as a Gemini finishReason.
// tool_use has no Gemini peer ("(unspecified)" in the mapping table); Gemini
// naturally signals a function call via the functionCall part instead of a
// distinct finish reason, so STOP is used.
func StopReasonToGemini(r dialect.StopReason) string {
	switch r {
	case dialect.StopEndTurn, dialect.StopToolUse:
		return "STOP"
	case dialect.StopMaxTokens:
		return "MAX_TOKENS"
	case dialect.StopContentFilter:
		return "SAFETY"
	default:
		return "STOP"
	}
}

// ResponsesStatusFromPivot maps the pivot stop reason to a Responses dialect status.
func ResponsesStatusFromPivot(r dialect.StopReason) string {
	switch r {
	case dialect.StopEndTurn:
		return "completed"
	case dialect.StopMaxTokens:
		return "incomplete"
	case dialect.StopToolUse:
		return "requires_action"
	case dialect.StopContentFilter:
		return "completed"
	default:
		return "completed"
	}
}
