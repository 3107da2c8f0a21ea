package typeahead

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDirection(t *testing.T) {
	assert.Equal(t, LTR, DetectDirection("hello"))
	assert.Equal(t, RTL, DetectDirection("שלום"))
	assert.Equal(t, RTL, DetectDirection("مرحبا"))
	assert.Equal(t, LTR, DetectDirection("123 ?!"), "neutral text falls back to ltr")
	assert.Equal(t, RTL, DetectDirection("", "  שלום"), "placeholder decides when value is empty")
	assert.Equal(t, LTR, DetectDirection("abc", "שלום"), "value wins over placeholder")
	assert.Equal(t, LTR, DetectDirection())
}

func TestStyleSourceOverridesDetection(t *testing.T) {
	m := newTestModel(t, func(p *Props) {
		p.Hint = true
		p.StyleSource = StaticDirection(RTL)
	})
	assert.Equal(t, RTL, m.State().Direction)
	assert.False(t, m.State().HintEnabled)
}

func TestStyleSourceErrorFallsBackToLTR(t *testing.T) {
	m := newTestModel(t, func(p *Props) {
		p.Hint = true
		p.StyleSource = StyleSourceFunc(func() (Direction, error) {
			return "", errors.New("no layout yet")
		})
	})
	assert.Equal(t, LTR, m.State().Direction)
	assert.True(t, m.State().HintEnabled)
}
