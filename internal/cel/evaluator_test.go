package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndMatch(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		rec  map[string]any
		want bool
	}{
		{"field equality", `_.kind == "fruit"`, map[string]any{"kind": "fruit"}, true},
		{"numeric compare", `_.year > 2000`, map[string]any{"year": 2009}, true},
		{"string extension", `_.name.lowerAscii().startsWith("go")`, map[string]any{"name": "GoLang"}, true},
		{"has macro", `has(_.tags) && "web" in _.tags`, map[string]any{"tags": []any{"web"}}, true},
		{"has macro missing", `has(_.tags)`, map[string]any{}, false},
		{"boolean field", `_.active`, map[string]any{"active": false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := eval.Compile(tt.expr)
			require.NoError(t, err)
			got, err := p.Match(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expr, p.String())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.Compile("  ")
	require.Error(t, err)

	_, err = eval.Compile(`_.name ==`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")

	_, err = eval.Compile(`"text"`)
	require.ErrorIs(t, err, ErrNotBoolean)
}

func TestMatchErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	p, err := eval.Compile(`_.missing == 1`)
	require.NoError(t, err)
	_, err = p.Match(map[string]any{})
	require.Error(t, err)

	p, err = eval.Compile(`_.name`)
	require.NoError(t, err)
	_, err = p.Match(map[string]any{"name": "go"})
	require.ErrorIs(t, err, ErrNotBoolean)
}
