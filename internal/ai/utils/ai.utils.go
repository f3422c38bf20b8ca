package utils

import "strings"

const (
	fence     = "```"
	htmlFence = "```html"
)

// Outcome says which extraction rule produced the HTML.
type Outcome string

const (
	OutcomeHTMLFence    Outcome = "html_fence"
	OutcomeGenericFence Outcome = "generic_fence"
	OutcomePlain        Outcome = "plain"
	// OutcomeUnterminated means an opening fence had no closing fence; the
	// raw text is returned unchanged.
	OutcomeUnterminated Outcome = "unterminated"
)

// Normalized is the result of stripping markdown fences from model output.
type Normalized struct {
	HTML    string
	Outcome Outcome
}

// Normalize extracts the page markup from raw model output. A block tagged
// html wins over any earlier generic block. Without fences the input is
// returned untouched.
func Normalize(raw string) Normalized {
	if _, after, ok := strings.Cut(raw, htmlFence); ok {
		body, _, closed := strings.Cut(after, fence)
		if !closed {
			return Normalized{HTML: raw, Outcome: OutcomeUnterminated}
		}
		return Normalized{HTML: strings.TrimSpace(body), Outcome: OutcomeHTMLFence}
	}

	if _, after, ok := strings.Cut(raw, fence); ok {
		body, _, closed := strings.Cut(after, fence)
		if !closed {
			return Normalized{HTML: raw, Outcome: OutcomeUnterminated}
		}
		return Normalized{HTML: strings.TrimSpace(body), Outcome: OutcomeGenericFence}
	}

	return Normalized{HTML: raw, Outcome: OutcomePlain}
}

// ExtractHTML is Normalize without the outcome.
func ExtractHTML(raw string) string {
	return Normalize(raw).HTML
}
