package translate

import "github.com/google/uuid"

// randomSuffix backs idOrSynth/toolCallIDOrSynth when a backend response
// omits an id the target dialect requires (e.g. Gemini never assigns one).
func randomSuffix() string {
	return uuid.NewString()
}
