package prompts

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"sitegen_server/internal/types"
)

const (
	SystemInstruction = "You are a professional web designer. Generate clean, responsive HTML/CSS websites."

	// High temperature favors novel layouts over repeatable ones.
	Temperature float32 = 0.9
	MaxTokens           = 2000
)

// Topics are drawn when the caller leaves the prompt empty.
var Topics = []string{
	"a personal portfolio for a freelance photographer",
	"a family-run Italian restaurant",
	"a travel blog about hidden mountain villages",
	"a landing page for a productivity mobile app",
	"a local bakery and coffee shop",
	"a nonprofit animal shelter",
	"a yoga and meditation studio",
	"an independent bookstore",
	"a music festival",
	"a boutique architecture firm",
	"a science museum exhibit about the deep ocean",
	"a vintage bicycle repair shop",
}

// Styles are drawn alongside a random topic.
var Styles = []string{
	"modern",
	"minimal",
	"corporate",
	"creative",
	"elegant",
	"retro",
	"brutalist",
	"playful",
	"futuristic",
	"art deco",
	"neon cyberpunk",
	"hand-drawn",
}

// ContentHints are secondary directives mixed into the instruction.
var ContentHints = []string{
	"Include a section with interesting facts and statistics about the topic.",
	"Include a section covering the historical background of the topic.",
	"Include a section of practical tips for visitors or customers.",
	"Include an FAQ section with at least four questions and answers.",
	"Include a section linking the topic to related topics a reader might explore next.",
}

// RandomSource is satisfied by *rand.Rand.
type RandomSource interface {
	Intn(n int) int
}

// Composer builds prompts. It is safe for concurrent use; draws from the
// random source are serialized.
type Composer struct {
	mu      sync.Mutex
	rng     RandomSource
	augment bool
}

type Option func(*Composer)

// WithRandomSource replaces the time-seeded default source.
func WithRandomSource(rng RandomSource) Option {
	return func(c *Composer) {
		c.rng = rng
	}
}

// WithAugmentation toggles the randomly sampled content hints.
func WithAugmentation(enabled bool) Option {
	return func(c *Composer) {
		c.augment = enabled
	}
}

func NewComposer(opts ...Option) *Composer {
	c := &Composer{augment: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Randomize fills an empty prompt with a catalog topic. The style is drawn
// too unless the caller already picked one. Requests with a prompt are
// returned as-is.
func (c *Composer) Randomize(req types.GenerationRequest) types.GenerationRequest {
	req.Prompt = strings.TrimSpace(req.Prompt)
	req.Style = strings.TrimSpace(req.Style)
	if req.Prompt != "" {
		return req
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req.Prompt = Topics[c.rng.Intn(len(Topics))]
	if req.Style == "" {
		req.Style = Styles[c.rng.Intn(len(Styles))]
	}
	return req
}

// Compose turns a request into the instruction pair sent to the model.
func (c *Composer) Compose(req types.GenerationRequest) types.PromptSpec {
	req = c.Randomize(req)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a unique, modern, and responsive HTML/CSS website about: %s\n\n", req.Prompt)
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. A complete single HTML document with all CSS in one <style> block in the <head>.\n")
	sb.WriteString("2. At least 3 content sections, each presenting a different kind of content (for example a hero, a feature grid, a timeline, testimonials, a gallery of CSS shapes).\n")
	sb.WriteString("3. Use semantic elements: <header>, <nav>, <main>, <section>, <article>, <footer>.\n")
	sb.WriteString("4. A <nav> that links to every section by anchor.\n")
	sb.WriteString("5. A <footer> closing the page.\n")
	sb.WriteString("6. Fully responsive layout that works on phones, tablets and desktops.\n")
	sb.WriteString("7. Real, topic-specific copy. No placeholder or lorem ipsum text.\n")
	sb.WriteString("8. No external images, fonts, scripts or other resources. Build every visual with CSS only.\n")
	sb.WriteString("9. A coherent color palette and typography scheme used consistently across the page.\n")

	if req.Style != "" {
		fmt.Fprintf(&sb, "\nDesign aesthetic: use a %s style for the whole page.\n", req.Style)
	}

	if c.augment {
		hints := c.sampleHints()
		sb.WriteString("\nAdditional content:\n")
		for _, h := range hints {
			fmt.Fprintf(&sb, "- %s\n", h)
		}
	}

	sb.WriteString("\nReturn only the HTML document inside a ```html code block.")

	return types.PromptSpec{
		SystemInstruction: SystemInstruction,
		UserInstruction:   sb.String(),
		Temperature:       Temperature,
		MaxTokens:         MaxTokens,
	}
}

// sampleHints picks 2 or 3 distinct hints with a partial Fisher-Yates shuffle.
func (c *Composer) sampleHints() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 2 + c.rng.Intn(2)
	pool := append([]string(nil), ContentHints...)
	for i := 0; i < n; i++ {
		j := i + c.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
