package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition is a parsed comparison over project variables. Conditions are
// parsed once at template validation time; evaluation never fails.
type Condition struct {
	variable string
	op       string
	literal  string
}

var conditionOps = []string{"==", "!=", "<=", ">=", "<", ">"}

// ParseCondition parses expressions of the form "VAR op literal" where op is
// one of == != < <= > >= and literal is a number, a quoted string, or a bare
// word. Malformed expressions are a configuration error surfaced here, not
// at evaluation time.
func ParseCondition(expr string) (*Condition, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, fmt.Errorf("condition must not be empty")
	}

	var op string
	var opIdx int = -1
	for _, candidate := range conditionOps {
		if idx := strings.Index(trimmed, candidate); idx > 0 {
			op = candidate
			opIdx = idx
			break
		}
	}
	if opIdx < 0 {
		return nil, fmt.Errorf("condition %q: no comparison operator found", expr)
	}

	variable := strings.TrimSpace(trimmed[:opIdx])
	literal := strings.TrimSpace(trimmed[opIdx+len(op):])
	if variable == "" {
		return nil, fmt.Errorf("condition %q: missing variable name", expr)
	}
	if strings.ContainsAny(variable, " \t") {
		return nil, fmt.Errorf("condition %q: variable name must be a single identifier", expr)
	}
	if literal == "" {
		return nil, fmt.Errorf("condition %q: missing comparison value", expr)
	}

	// Strip matched quotes from string literals
	if len(literal) >= 2 {
		if (literal[0] == '"' && literal[len(literal)-1] == '"') ||
			(literal[0] == '\'' && literal[len(literal)-1] == '\'') {
			literal = literal[1 : len(literal)-1]
		}
	}

	return &Condition{variable: variable, op: op, literal: literal}, nil
}

// Eval evaluates the condition against the supplied project variables.
// Unknown variables evaluate to false: optional content is excluded rather
// than included on ambiguous state.
func (c *Condition) Eval(vars map[string]string) bool {
	value, ok := vars[c.variable]
	if !ok {
		return false
	}

	// Numeric comparison when both sides parse as numbers, lexicographic
	// string comparison otherwise.
	lv, lerr := strconv.ParseFloat(value, 64)
	rv, rerr := strconv.ParseFloat(c.literal, 64)
	if lerr == nil && rerr == nil {
		return compareFloat(lv, rv, c.op)
	}
	return compareString(value, c.literal, c.op)
}

func compareFloat(a, b float64, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func compareString(a, b, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}
