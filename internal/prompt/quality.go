package prompt

import (
	"fmt"
	"strings"
)

// Quality scoring penalties. Deductions are additive from 100 and the score
// floors at 0; identical (content, criteria) pairs always yield identical
// results.
const (
	penaltyMissingSection    = 15
	penaltyShortfallMax      = 30
	penaltyForbiddenPhrase   = 10
	penaltyForbiddenCapTotal = 30
)

// Score checks generated content against the declared criteria and returns
// a 0-100 score with one human-readable warning per deduction. Quality
// issues are never errors: callers may accept low-quality output with
// visibility rather than being blocked.
func Score(content string, criteria QualityCriteria) (int, []string) {
	score := 100
	var warnings []string

	lower := strings.ToLower(content)

	for _, section := range criteria.RequiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			score -= penaltyMissingSection
			warnings = append(warnings, fmt.Sprintf("missing required section: %s", section))
		}
	}

	if criteria.MinLength > 0 && len(content) < criteria.MinLength {
		shortfall := criteria.MinLength - len(content)
		penalty := penaltyShortfallMax * shortfall / criteria.MinLength
		if penalty < 1 {
			penalty = 1
		}
		score -= penalty
		warnings = append(warnings, fmt.Sprintf(
			"content length %d below minimum %d", len(content), criteria.MinLength))
	}

	forbiddenPenalty := 0
	for _, phrase := range criteria.ForbiddenPhrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(phrase)) {
			forbiddenPenalty += penaltyForbiddenPhrase
			warnings = append(warnings, fmt.Sprintf("forbidden phrase present: %q", phrase))
		}
	}
	if forbiddenPenalty > penaltyForbiddenCapTotal {
		forbiddenPenalty = penaltyForbiddenCapTotal
	}
	score -= forbiddenPenalty

	if score < 0 {
		score = 0
	}
	return score, warnings
}
