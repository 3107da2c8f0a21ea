package typeahead

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

func TestStringify(t *testing.T) {
	var nilPtr *int
	seven := 7
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "react", "react"},
		{"bytes", []byte("go"), "go"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int8", int8(-3), "-3"},
		{"uint", uint(9), "9"},
		{"float integral", 3.0, "3"},
		{"float fraction", 1.5, "1.5"},
		{"float large", 1e21, "1e+21"},
		{"float small", 1e-7, "1e-7"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"slice", []any{1, "two", nil}, "1,two,"},
		{"nested slice", []any{[]int{1, 2}, 3}, "1,2,3"},
		{"array", [2]string{"a", "b"}, "a,b"},
		{"map", map[string]any{"a": 1}, "[object Object]"},
		{"struct", point{1, 2}, "[object Object]"},
		{"nil pointer", nilPtr, ""},
		{"pointer", &seven, "7"},
		{"error", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}
