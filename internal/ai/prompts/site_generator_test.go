package prompts

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegen_server/internal/types"
)

// countingSource records every draw.
type countingSource struct {
	rng   *rand.Rand
	calls int
}

func newCountingSource(seed int64) *countingSource {
	return &countingSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *countingSource) Intn(n int) int {
	s.calls++
	return s.rng.Intn(n)
}

// sequenceSource replays fixed values modulo n.
type sequenceSource struct {
	values []int
	pos    int
}

func (s *sequenceSource) Intn(n int) int {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

func TestCatalogSizes(t *testing.T) {
	assert.GreaterOrEqual(t, len(Topics), 10)
	assert.GreaterOrEqual(t, len(Styles), 10)
	assert.Len(t, ContentHints, 5)
}

func TestRandomize(t *testing.T) {
	t.Run("empty prompt draws topic and style from the catalogs", func(t *testing.T) {
		for seed := int64(0); seed < 50; seed++ {
			c := NewComposer(WithRandomSource(rand.New(rand.NewSource(seed))))
			got := c.Randomize(types.GenerationRequest{})
			assert.Contains(t, Topics, got.Prompt)
			assert.Contains(t, Styles, got.Style)
		}
	})

	t.Run("fixed source yields a fixed pick", func(t *testing.T) {
		c := NewComposer(WithRandomSource(&sequenceSource{values: []int{3, 5}}))
		got := c.Randomize(types.GenerationRequest{Prompt: "   "})
		assert.Equal(t, Topics[3], got.Prompt)
		assert.Equal(t, Styles[5], got.Style)
	})

	t.Run("caller style is kept on a random topic", func(t *testing.T) {
		src := newCountingSource(1)
		c := NewComposer(WithRandomSource(src))
		got := c.Randomize(types.GenerationRequest{Style: "retro"})
		assert.Contains(t, Topics, got.Prompt)
		assert.Equal(t, "retro", got.Style)
		assert.Equal(t, 1, src.calls)
	})

	t.Run("supplied prompt never touches the random source", func(t *testing.T) {
		src := newCountingSource(1)
		c := NewComposer(WithRandomSource(src))
		got := c.Randomize(types.GenerationRequest{Prompt: "a coffee shop"})
		assert.Equal(t, "a coffee shop", got.Prompt)
		assert.Empty(t, got.Style)
		assert.Zero(t, src.calls)
	})
}

func TestCompose(t *testing.T) {
	t.Run("fixed generation parameters", func(t *testing.T) {
		c := NewComposer(WithRandomSource(newCountingSource(7)))
		spec := c.Compose(types.GenerationRequest{Prompt: "a coffee shop", Style: "retro"})

		assert.Equal(t, SystemInstruction, spec.SystemInstruction)
		assert.InDelta(t, 0.9, spec.Temperature, 1e-6)
		assert.Equal(t, 2000, spec.MaxTokens)
	})

	t.Run("instruction carries topic, style and structural requirements", func(t *testing.T) {
		c := NewComposer(WithAugmentation(false))
		spec := c.Compose(types.GenerationRequest{Prompt: "a coffee shop", Style: "retro"})
		u := spec.UserInstruction

		assert.Contains(t, u, "about: a coffee shop")
		assert.Contains(t, u, "use a retro style")
		for _, want := range []string{"At least 3 content sections", "<nav>", "<footer>", "responsive", "lorem ipsum", "No external images", "color palette"} {
			assert.Contains(t, u, want)
		}
		assert.NotContains(t, u, "Additional content")
	})

	t.Run("no style directive without a style", func(t *testing.T) {
		c := NewComposer(WithAugmentation(false))
		spec := c.Compose(types.GenerationRequest{Prompt: "a coffee shop"})
		assert.NotContains(t, spec.UserInstruction, "Design aesthetic")
	})

	t.Run("supplied topic with augmentation off makes no random draws", func(t *testing.T) {
		src := newCountingSource(3)
		c := NewComposer(WithRandomSource(src), WithAugmentation(false))
		c.Compose(types.GenerationRequest{Prompt: "a coffee shop"})
		assert.Zero(t, src.calls)
	})

	t.Run("empty topic composes around a catalog topic", func(t *testing.T) {
		c := NewComposer(WithRandomSource(&sequenceSource{values: []int{0, 1}}), WithAugmentation(false))
		spec := c.Compose(types.GenerationRequest{})
		assert.Contains(t, spec.UserInstruction, "about: "+Topics[0])
		assert.Contains(t, spec.UserInstruction, "use a "+Styles[1]+" style")
	})
}

func TestSampleHints(t *testing.T) {
	for seed := int64(0); seed < 100; seed++ {
		c := NewComposer(WithRandomSource(rand.New(rand.NewSource(seed))))
		hints := c.sampleHints()

		require.GreaterOrEqual(t, len(hints), 2)
		require.LessOrEqual(t, len(hints), 3)

		seen := make(map[string]bool)
		for _, h := range hints {
			assert.Contains(t, ContentHints, h)
			assert.False(t, seen[h], "hint sampled twice: %s", h)
			seen[h] = true
		}
	}

	t.Run("augmented instruction lists the sampled hints", func(t *testing.T) {
		c := NewComposer(WithRandomSource(&sequenceSource{values: []int{1, 0, 0, 0}}))
		spec := c.Compose(types.GenerationRequest{Prompt: "a coffee shop"})

		listed := 0
		for _, h := range ContentHints {
			if strings.Contains(spec.UserInstruction, h) {
				listed++
			}
		}
		assert.Equal(t, 3, listed)
	})

	t.Run("pool is not mutated", func(t *testing.T) {
		before := append([]string(nil), ContentHints...)
		c := NewComposer(WithRandomSource(newCountingSource(9)))
		for i := 0; i < 10; i++ {
			c.sampleHints()
		}
		assert.Equal(t, before, ContentHints)
	})
}
