package prompt

import (
	"strings"

	"docforge/internal/logging"
)

// Render substitutes resolved segments, conditional fragments, and project
// variables into the template body. segments maps injection-point
// placeholders to their aggregated text; a missing or empty segment renders
// as the empty string (all its dependencies were optional misses — required
// misses never reach the renderer).
//
// Substitution order: fragments first, then variables (fragment content may
// reference declared variables), then injection segments last so dependency
// content is never re-expanded.
func Render(tpl *Template, segments map[string]string, vars map[string]string) (*RenderedPrompt, error) {
	timer := logging.StartTimer(logging.CategoryRender, "Render")
	defer timer.Stop()

	for _, name := range tpl.RequiredVariables {
		if _, ok := vars[name]; !ok {
			return nil, &MissingVariableError{TemplateID: tpl.ID, Variable: name}
		}
	}

	body := tpl.Body

	for _, fr := range tpl.Fragments {
		// Conditions were parsed at validation time; a parse failure here
		// means the template bypassed Upsert and is a configuration bug.
		cond, err := ParseCondition(fr.Condition)
		if err != nil {
			return nil, &ValidationError{TemplateID: tpl.ID, Field: "fragments", Reason: err.Error()}
		}
		replacement := ""
		if cond.Eval(vars) {
			replacement = fr.Content
		}
		body = strings.ReplaceAll(body, marker(fr.Placeholder), replacement)
	}

	injected := make(map[string]string, len(tpl.InjectionPoints))
	for _, ip := range tpl.InjectionPoints {
		injected[ip.Placeholder] = segments[ip.Placeholder]
	}

	// Single pass: substituted values are never re-scanned, so variable or
	// dependency content containing {{...}} text passes through literally.
	body = placeholderPattern.ReplaceAllStringFunc(body, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		if segment, ok := injected[name]; ok {
			return segment
		}
		return m
	})

	rendered := &RenderedPrompt{
		TemplateID: tpl.ID,
		System:     tpl.SystemPersona,
		Prompt:     body,
	}

	logging.Get(logging.CategoryRender).Debug(
		"Rendered template %s: %d chars", tpl.ID, len(rendered.Prompt))

	return rendered, nil
}

// marker wraps a placeholder name in braces.
func marker(name string) string {
	return "{{" + name + "}}"
}
