package prompt

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// truncatingSummarizer deterministically clips content to the target length.
type truncatingSummarizer struct {
	calls int
}

func (s *truncatingSummarizer) Summarize(_ context.Context, content string, targetLength int) (string, error) {
	s.calls++
	if len(content) <= targetLength {
		return content, nil
	}
	return content[:targetLength], nil
}

// failingSummarizer always errors.
type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, string, int) (string, error) {
	return "", fmt.Errorf("summarizer offline")
}

func contentsOf(weighted ...ResolvedContent) []ResolvedContent {
	return weighted
}

func point(strategy AggregationStrategy, maxLength int) *InjectionPoint {
	return &InjectionPoint{Placeholder: "DOCS", Strategy: strategy, MaxLength: maxLength}
}

func TestAggregateConcatenate(t *testing.T) {
	agg := NewAggregator(nil)
	ctx := context.Background()

	t.Run("joins in declaration order", func(t *testing.T) {
		segment, warnings, err := agg.Aggregate(ctx, point(StrategyConcatenate, 100),
			contentsOf(
				ResolvedContent{Key: "a", Content: "first"},
				ResolvedContent{Key: "b", Content: "second"},
			))
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "first\n\nsecond", segment)
	})

	t.Run("drops whole units from the end first", func(t *testing.T) {
		segment, _, err := agg.Aggregate(ctx, point(StrategyConcatenate, 12),
			contentsOf(
				ResolvedContent{Key: "a", Content: "0123456789"},
				ResolvedContent{Key: "b", Content: "dropped"},
			))
		require.NoError(t, err)
		assert.Equal(t, "0123456789", segment)
	})

	t.Run("character-truncates a single oversized unit", func(t *testing.T) {
		segment, _, err := agg.Aggregate(ctx, point(StrategyConcatenate, 4),
			contentsOf(ResolvedContent{Key: "a", Content: "0123456789"}))
		require.NoError(t, err)
		assert.Equal(t, "0123", segment)
	})

	t.Run("empty contents yield empty segment", func(t *testing.T) {
		segment, warnings, err := agg.Aggregate(ctx, point(StrategyConcatenate, 100), nil)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "", segment)
	})
}

func TestAggregatePrioritize(t *testing.T) {
	agg := NewAggregator(nil)
	ctx := context.Background()

	t.Run("higher weight survives truncation", func(t *testing.T) {
		// Both units are 10 chars; budget fits exactly one.
		segment, _, err := agg.Aggregate(ctx, point(StrategyPrioritize, 10),
			contentsOf(
				ResolvedContent{Key: "low", Content: "low-weight", Weight: 0.2},
				ResolvedContent{Key: "high", Content: "big-weight", Weight: 0.9},
			))
		require.NoError(t, err)
		assert.Equal(t, "big-weight", segment)
	})

	t.Run("equal weights preserve declaration order", func(t *testing.T) {
		segment, _, err := agg.Aggregate(ctx, point(StrategyPrioritize, 100),
			contentsOf(
				ResolvedContent{Key: "a", Content: "first", Weight: 0.5},
				ResolvedContent{Key: "b", Content: "second", Weight: 0.5},
			))
		require.NoError(t, err)
		assert.Equal(t, "first\n\nsecond", segment)
	})
}

func TestAggregateSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to summarizer with weighted shares", func(t *testing.T) {
		summarizer := &truncatingSummarizer{}
		agg := NewAggregator(summarizer)

		long := strings.Repeat("x", 500)
		segment, warnings, err := agg.Aggregate(ctx, point(StrategySummarize, 100),
			contentsOf(
				ResolvedContent{Key: "a", Content: long, Weight: 0.8},
				ResolvedContent{Key: "b", Content: long, Weight: 0.2},
			))
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.LessOrEqual(t, len(segment), 100)
		assert.Equal(t, 2, summarizer.calls)
	})

	t.Run("short units pass through unsummarized", func(t *testing.T) {
		summarizer := &truncatingSummarizer{}
		agg := NewAggregator(summarizer)

		segment, _, err := agg.Aggregate(ctx, point(StrategySummarize, 200),
			contentsOf(ResolvedContent{Key: "a", Content: "tiny", Weight: 1.0}))
		require.NoError(t, err)
		assert.Equal(t, "tiny", segment)
		assert.Zero(t, summarizer.calls)
	})

	t.Run("no summarizer falls back to concatenate with warning", func(t *testing.T) {
		agg := NewAggregator(nil)
		segment, warnings, err := agg.Aggregate(ctx, point(StrategySummarize, 50),
			contentsOf(ResolvedContent{Key: "a", Content: "hello", Weight: 1.0}))
		require.NoError(t, err)
		assert.Equal(t, "hello", segment)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "falling back to concatenate")
	})

	t.Run("failing summarizer falls back to concatenate with warning", func(t *testing.T) {
		agg := NewAggregator(failingSummarizer{})
		long := strings.Repeat("y", 300)
		segment, warnings, err := agg.Aggregate(ctx, point(StrategySummarize, 100),
			contentsOf(ResolvedContent{Key: "a", Content: long, Weight: 1.0}))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(segment), 100)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "summarizer offline")
	})
}

func TestAggregateTemplate(t *testing.T) {
	agg := NewAggregator(nil)
	ctx := context.Background()

	ip := &InjectionPoint{
		Placeholder:  "DOCS",
		Strategy:     StrategyTemplate,
		MaxLength:    200,
		SlotTemplate: "Charter:\n{{charter}}\n\nRisks:\n{{risks}}",
	}

	t.Run("fills slots in structural order", func(t *testing.T) {
		segment, _, err := agg.Aggregate(ctx, ip, contentsOf(
			ResolvedContent{Key: "risks", Content: "late delivery"},
			ResolvedContent{Key: "charter", Content: "build the portal"},
		))
		require.NoError(t, err)
		assert.Equal(t, "Charter:\nbuild the portal\n\nRisks:\nlate delivery", segment)
	})

	t.Run("missing optional slot is omitted, not left as placeholder", func(t *testing.T) {
		segment, _, err := agg.Aggregate(ctx, ip, contentsOf(
			ResolvedContent{Key: "charter", Content: "build the portal"},
		))
		require.NoError(t, err)
		assert.NotContains(t, segment, "{{")
		assert.Contains(t, segment, "build the portal")
	})
}

// TestAggregateBound checks the core invariant for every strategy over a
// spread of content and budget sizes: output length never exceeds MaxLength.
func TestAggregateBound(t *testing.T) {
	summarizer := &truncatingSummarizer{}

	for _, strategy := range AllStrategies() {
		for _, maxLength := range []int{1, 7, 64, 512} {
			for _, n := range []int{1, 2, 5} {
				name := fmt.Sprintf("%s/max%d/units%d", strategy, maxLength, n)
				t.Run(name, func(t *testing.T) {
					var contents []ResolvedContent
					var slots []string
					for i := 0; i < n; i++ {
						key := fmt.Sprintf("doc%d", i)
						contents = append(contents, ResolvedContent{
							Key:     key,
							Content: strings.Repeat("z", 30*(i+1)),
							Weight:  float64(i) / float64(n),
						})
						slots = append(slots, marker(key))
					}

					ip := &InjectionPoint{
						Placeholder:  "DOCS",
						Strategy:     strategy,
						MaxLength:    maxLength,
						SlotTemplate: strings.Join(slots, "\n"),
					}

					agg := NewAggregator(summarizer)
					segment, _, err := agg.Aggregate(context.Background(), ip, contents)
					require.NoError(t, err)
					assert.LessOrEqual(t, len(segment), maxLength)
				})
			}
		}
	}
}
