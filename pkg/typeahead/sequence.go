package typeahead

import (
	"reflect"
	"strings"

	"github.com/emirpasic/gods/v2/lists/arraylist"
)

// Option is one suggestion record. Any value works; its display field is
// looked up with DisplayValue.
type Option = any

// Fielder lets an option expose named fields without reflection.
type Fielder interface {
	Field(key string) (any, bool)
}

// Sequence is a read-only ordered collection of options.
type Sequence interface {
	Len() int
	At(i int) (Option, bool)
}

// Slice adapts a plain slice.
type Slice []Option

func (s Slice) Len() int { return len(s) }

func (s Slice) At(i int) (Option, bool) {
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return s[i], true
}

// Records adapts decoded JSON or YAML rows.
type Records []map[string]any

func (r Records) Len() int { return len(r) }

func (r Records) At(i int) (Option, bool) {
	if i < 0 || i >= len(r) {
		return nil, false
	}
	return r[i], true
}

// List is an immutable view over an array list. Hosts keep their own list
// and hand the widget a fresh List on each sync.
type List struct {
	l *arraylist.List[Option]
}

// NewList copies values into a new list.
func NewList(values ...Option) List {
	return List{l: arraylist.New[Option](values...)}
}

// ListOf wraps an existing array list without copying.
func ListOf(l *arraylist.List[Option]) List {
	return List{l: l}
}

func (l List) Len() int {
	if l.l == nil {
		return 0
	}
	return l.l.Size()
}

func (l List) At(i int) (Option, bool) {
	if l.l == nil {
		return nil, false
	}
	return l.l.Get(i)
}

// SequenceOf adapts common collection shapes. Unsupported values yield an
// empty sequence.
func SequenceOf(v any) Sequence {
	switch t := v.(type) {
	case nil:
		return Slice(nil)
	case Sequence:
		return t
	case []any:
		return Slice(t)
	case []map[string]any:
		return Records(t)
	case *arraylist.List[Option]:
		return ListOf(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Slice(nil)
	}
	out := make(Slice, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func seqLen(s Sequence) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

func seqAt(s Sequence, i int) (Option, bool) {
	if s == nil {
		return nil, false
	}
	return s.At(i)
}

// DisplayValue returns the text shown for opt under key. A missing or
// empty field reports false.
func DisplayValue(opt Option, key string) (string, bool) {
	v, ok := lookupField(opt, key)
	if !ok {
		return "", false
	}
	s := Stringify(v)
	return s, s != ""
}

func lookupField(opt Option, key string) (any, bool) {
	switch o := opt.(type) {
	case nil:
		return nil, false
	case Fielder:
		return o.Field(key)
	case map[string]any:
		v, ok := o[key]
		return v, ok
	case map[string]string:
		v, ok := o[key]
		return v, ok
	}

	rv := reflect.ValueOf(opt)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() { //nolint:exhaustive // only keyed shapes carry fields
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Name == key || tagName(f, "json") == key || tagName(f, "yaml") == key {
				return rv.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

func tagName(f reflect.StructField, tag string) string {
	name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
	return name
}
