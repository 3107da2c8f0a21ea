package typeahead

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

// Direction is the writing direction of the input.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// IsValid reports whether d is LTR or RTL.
func (d Direction) IsValid() bool {
	return d == LTR || d == RTL
}

// StyleSource supplies the computed direction of the input element.
type StyleSource interface {
	ComputedDirection() (Direction, error)
}

// StyleSourceFunc adapts a function to StyleSource.
type StyleSourceFunc func() (Direction, error)

func (f StyleSourceFunc) ComputedDirection() (Direction, error) { return f() }

// StaticDirection always reports d.
func StaticDirection(d Direction) StyleSource {
	return StyleSourceFunc(func() (Direction, error) { return d, nil })
}

// DetectDirection returns the direction of the first strong character found
// across texts, scanning them in order. Text without strong characters is LTR.
func DetectDirection(texts ...string) Direction {
	for _, s := range texts {
		for len(s) > 0 {
			props, size := bidi.LookupString(s)
			if size == 0 {
				_, size = utf8.DecodeRuneInString(s)
			}
			switch props.Class() {
			case bidi.L:
				return LTR
			case bidi.R, bidi.AL:
				return RTL
			}
			s = s[size:]
		}
	}
	return LTR
}
