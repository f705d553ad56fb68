package prompt

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docforge/internal/logging"
)

// segmentSeparator joins dependency contents inside one aggregated segment.
const segmentSeparator = "\n\n"

// Aggregator merges resolved dependency contents into a single bounded text
// segment per injection point. It is pure except for the summarize strategy,
// whose external summarizer call is the only suspension point.
type Aggregator struct {
	summarizer Summarizer
}

// NewAggregator creates an aggregator. summarizer may be nil, in which case
// the summarize strategy degrades to concatenation with a warning.
func NewAggregator(summarizer Summarizer) *Aggregator {
	return &Aggregator{summarizer: summarizer}
}

// Aggregate merges contents per the point's strategy. The result never
// exceeds point.MaxLength, for any strategy and any input lengths.
func (a *Aggregator) Aggregate(ctx context.Context, point *InjectionPoint, contents []ResolvedContent) (string, []string, error) {
	if len(contents) == 0 {
		return "", nil, nil
	}

	strategy := point.Strategy
	if strategy == "" {
		strategy = StrategyConcatenate
	}

	var segment string
	var warnings []string
	var err error

	switch strategy {
	case StrategyConcatenate:
		segment = concatenate(contents, point.MaxLength)
	case StrategyPrioritize:
		segment = prioritize(contents, point.MaxLength)
	case StrategySummarize:
		segment, warnings, err = a.summarize(ctx, point, contents)
	case StrategyTemplate:
		segment = slotFill(point.SlotTemplate, contents, point.MaxLength)
	default:
		return "", nil, fmt.Errorf("unknown aggregation strategy %q", strategy)
	}
	if err != nil {
		return "", warnings, err
	}

	logging.Get(logging.CategoryRender).Debug(
		"Aggregated %d contents for %s via %s: %d/%d chars",
		len(contents), point.Placeholder, strategy, len(segment), point.MaxLength)

	return segment, warnings, nil
}

// concatenate joins contents in order and truncates to maxLength: whole
// units are dropped from the end first, then the last retained unit is
// character-truncated.
func concatenate(contents []ResolvedContent, maxLength int) string {
	units := make([]string, len(contents))
	for i, c := range contents {
		units[i] = c.Content
	}
	return joinBounded(units, maxLength)
}

// prioritize sorts contents descending by weight (stable, so declaration
// order breaks ties), then applies concatenate's truncation rule. The
// highest-weight content is guaranteed to survive truncation before any
// lower-weight content.
func prioritize(contents []ResolvedContent, maxLength int) string {
	sorted := make([]ResolvedContent, len(contents))
	copy(sorted, contents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	return concatenate(sorted, maxLength)
}

// summarize delegates each content unit to the external summarizer, bounded
// by a per-unit share of MaxLength proportional to weight. An unavailable or
// failing summarizer falls back to concatenate with a warning.
func (a *Aggregator) summarize(ctx context.Context, point *InjectionPoint, contents []ResolvedContent) (string, []string, error) {
	if a.summarizer == nil {
		warn := fmt.Sprintf("injection point %s: no summarizer configured, falling back to concatenate",
			point.Placeholder)
		return concatenate(contents, point.MaxLength), []string{warn}, nil
	}

	totalWeight := 0.0
	for _, c := range contents {
		totalWeight += c.Weight
	}

	// Separator overhead comes out of the shared budget before splitting.
	budget := point.MaxLength - len(segmentSeparator)*(len(contents)-1)
	if budget < len(contents) {
		budget = point.MaxLength
	}

	summaries := make([]string, 0, len(contents))
	var warnings []string
	for _, c := range contents {
		share := budget / len(contents)
		if totalWeight > 0 {
			share = int(float64(budget) * (c.Weight / totalWeight))
		}
		if share <= 0 {
			share = 1
		}
		if len(c.Content) <= share {
			summaries = append(summaries, c.Content)
			continue
		}

		summary, err := a.summarizer.Summarize(ctx, c.Content, share)
		if err != nil {
			if ctx.Err() != nil {
				return "", warnings, ctx.Err()
			}
			warn := fmt.Sprintf("injection point %s: summarizing %s failed (%v), falling back to concatenate",
				point.Placeholder, c.Key, err)
			logging.Get(logging.CategoryRender).Warn("%s", warn)
			return concatenate(contents, point.MaxLength), append(warnings, warn), nil
		}
		if len(summary) > share {
			summary = summary[:share]
		}
		summaries = append(summaries, summary)
	}

	return joinBounded(summaries, point.MaxLength), warnings, nil
}

// slotFill substitutes each resolved content into its {{documentKey}} slot
// of the sub-template, in the sub-template's structural order. Slots without
// resolved content collapse to the empty string, never raw placeholder text.
func slotFill(slotTemplate string, contents []ResolvedContent, maxLength int) string {
	byKey := make(map[string]string, len(contents))
	for _, c := range contents {
		byKey[c.Key] = c.Content
	}

	filled := placeholderPattern.ReplaceAllStringFunc(slotTemplate, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return byKey[name]
	})
	filled = strings.TrimSpace(filled)

	if len(filled) > maxLength {
		filled = filled[:maxLength]
	}
	return filled
}

// joinBounded joins units with the segment separator and enforces maxLength:
// drop whole units from the end first, then character-truncate the last
// retained unit.
func joinBounded(units []string, maxLength int) string {
	kept := make([]string, len(units))
	copy(kept, units)

	for len(kept) > 1 && joinedLen(kept) > maxLength {
		kept = kept[:len(kept)-1]
	}

	joined := strings.Join(kept, segmentSeparator)
	if len(joined) > maxLength {
		joined = joined[:maxLength]
	}
	return joined
}

func joinedLen(units []string) int {
	n := len(segmentSeparator) * (len(units) - 1)
	for _, u := range units {
		n += len(u)
	}
	return n
}
