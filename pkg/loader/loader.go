// Package loader reads option records for the typeahead demo from JSON,
// NDJSON, YAML (single or multi-document), TOML or plain text, detecting
// the format from the content.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a detected input format.
type Format string

const (
	FormatJSON      Format = "json"
	FormatNDJSON    Format = "ndjson"
	FormatYAML      Format = "yaml"
	FormatMultiYAML Format = "yaml-multi"
	FormatTOML      Format = "toml"
	FormatText      Format = "text"
)

// ErrEmptyInput is returned when there is nothing to load.
var ErrEmptyInput = errors.New("empty input")

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// Detect guesses the format of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	lines := strings.Split(input, "\n")
	switch {
	case strings.HasPrefix(input, "---") || strings.Contains(input, "\n---"):
		return FormatMultiYAML
	case isLikelyNDJSON(lines):
		return FormatNDJSON
	case isLikelyTOML(lines):
		return FormatTOML
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		return FormatJSON
	case isLikelyText(lines):
		return FormatText
	default:
		return FormatYAML
	}
}

// Load parses input and flattens it into records. Scalars and plain text
// lines become records with a single displayKey field.
func Load(input, displayKey string) ([]map[string]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	format := Detect(input)
	docs, err := decode(format, input)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for _, d := range docs {
		out = appendRecords(out, d, displayKey)
	}
	return out, nil
}

// LoadReader reads r fully and loads it.
func LoadReader(r io.Reader, displayKey string) ([]map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Load(string(data), displayKey)
}

// LoadFile loads records from path.
func LoadFile(path, displayKey string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	recs, err := Load(string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), displayKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func decode(format Format, input string) ([]any, error) {
	switch format {
	case FormatMultiYAML:
		return decodeMultiYAML(input)
	case FormatNDJSON:
		return decodeNDJSON(input), nil
	case FormatTOML:
		var data map[string]any
		if err := toml.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{data}, nil
	case FormatJSON:
		var data any
		if err := json.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{data}, nil
	case FormatText:
		var docs []any
		for _, line := range strings.Split(input, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				docs = append(docs, line)
			}
		}
		return docs, nil
	default:
		var data any
		if err := yaml.Unmarshal([]byte(input), &data); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return []any{data}, nil
	}
}

func decodeMultiYAML(input string) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return docs, nil
}

// decodeNDJSON keeps lines that are not valid JSON as plain strings.
func decodeNDJSON(input string) []any {
	var docs []any
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, obj)
	}
	return docs
}

// appendRecords flattens doc. Arrays contribute each element; a map whose
// only value is an array of maps (TOML [[options]] tables, {"items": [...]}
// wrappers) contributes that array; other maps are one record.
func appendRecords(out []map[string]any, doc any, displayKey string) []map[string]any {
	switch v := doc.(type) {
	case nil:
		return out
	case []any:
		for _, el := range v {
			out = appendRecords(out, el, displayKey)
		}
		return out
	case []map[string]any:
		return append(out, v...)
	case map[string]any:
		if inner, ok := soleList(v); ok {
			return appendRecords(out, inner, displayKey)
		}
		return append(out, v)
	default:
		return append(out, map[string]any{displayKey: v})
	}
}

func soleList(m map[string]any) (any, bool) {
	if len(m) != 1 {
		return nil, false
	}
	for _, v := range m {
		switch v.(type) {
		case []any, []map[string]any:
			return v, true
		}
	}
	return nil, false
}

// isLikelyNDJSON requires several lines with a majority starting like JSON.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

// isLikelyTOML looks for section headers or a majority of key = value lines.
func isLikelyTOML(lines []string) bool {
	sections, pairs, nonEmpty := 0, 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (nonEmpty > 0 && pairs > nonEmpty/2)
}

// isLikelyText matches one entry per line with no structural markers.
func isLikelyText(lines []string) bool {
	nonEmpty := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.ContainsAny(trimmed[:1], "-#{[\"'&*!|>%@`") || strings.Contains(trimmed, ": ") || strings.HasSuffix(trimmed, ":") {
			return false
		}
	}
	return nonEmpty > 1
}
