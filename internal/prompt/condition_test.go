package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	t.Run("rejects malformed expressions", func(t *testing.T) {
		for _, expr := range []string{
			"",
			"   ",
			"TEAM_SIZE",
			">= 5",
			"TEAM_SIZE >=",
			"TEAM SIZE >= 5",
		} {
			_, err := ParseCondition(expr)
			assert.Error(t, err, "expression %q", expr)
		}
	})

	t.Run("parses all operators", func(t *testing.T) {
		for _, op := range []string{"==", "!=", "<", "<=", ">", ">="} {
			cond, err := ParseCondition("COUNT " + op + " 3")
			require.NoError(t, err, "operator %s", op)
			require.NotNil(t, cond)
		}
	})

	t.Run("strips quotes from string literals", func(t *testing.T) {
		cond, err := ParseCondition(`ENV == "production"`)
		require.NoError(t, err)
		assert.True(t, cond.Eval(map[string]string{"ENV": "production"}))
	})
}

func TestConditionEval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		vars map[string]string
		want bool
	}{
		{"numeric gte true", "TEAM_SIZE >= 5", map[string]string{"TEAM_SIZE": "7"}, true},
		{"numeric gte boundary", "TEAM_SIZE >= 5", map[string]string{"TEAM_SIZE": "5"}, true},
		{"numeric gte false", "TEAM_SIZE >= 5", map[string]string{"TEAM_SIZE": "4"}, false},
		{"numeric lt", "BUDGET < 1000", map[string]string{"BUDGET": "999.5"}, true},
		{"numeric eq", "PHASE == 2", map[string]string{"PHASE": "2"}, true},
		{"numeric neq", "PHASE != 2", map[string]string{"PHASE": "3"}, true},
		{"string eq", "ENV == production", map[string]string{"ENV": "production"}, true},
		{"string neq", "ENV != production", map[string]string{"ENV": "staging"}, true},
		{"string ordering is lexicographic", "NAME < beta", map[string]string{"NAME": "alpha"}, true},
		{"mixed falls back to string compare", "TEAM_SIZE == seven", map[string]string{"TEAM_SIZE": "seven"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cond.Eval(tt.vars))
		})
	}

	t.Run("unknown variable fails closed", func(t *testing.T) {
		cond, err := ParseCondition("TEAM_SIZE >= 0")
		require.NoError(t, err)
		assert.False(t, cond.Eval(map[string]string{}))
		assert.False(t, cond.Eval(nil))
	})
}
