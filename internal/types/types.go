package types

import "time"

// GenerationRequest is the body of POST /generate.
// An empty Prompt asks the composer to pick a random topic.
type GenerationRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

// PromptSpec is everything the completion API needs for one generation.
type PromptSpec struct {
	SystemInstruction string
	UserInstruction   string
	Temperature       float32
	MaxTokens         int
}

// GenerationResult is returned to the caller on success.
type GenerationResult struct {
	HTML      string  `json:"html"`
	Remaining int     `json:"remaining"`
	ResetTime float64 `json:"reset_time"` // epoch seconds
}

// EpochSeconds converts t into fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
