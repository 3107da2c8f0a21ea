package typeahead

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/rtex/internal/limiter"
)

// RateLimit selects how text changes reach OnFetchData.
type RateLimit = limiter.Mode

const (
	RateLimitNone     = limiter.ModeNone
	RateLimitThrottle = limiter.ModeThrottle
	RateLimitDebounce = limiter.ModeDebounce
)

// DefaultRateLimitWait is the wait in milliseconds when none is given.
const DefaultRateLimitWait = 100

var (
	ErrMissingOptionTemplate = errors.New("typeahead: option template is required")
	ErrMissingDisplayKey     = errors.New("typeahead: display key is required")
	ErrInvalidRateLimit      = errors.New("typeahead: invalid rate limit mode")
	ErrInvalidRateLimitWait  = errors.New("typeahead: invalid rate limit wait")
	ErrInvalidMinLength      = errors.New("typeahead: min length must be non-negative")
)

// ChangeEvent reports a text change that did not trigger a fetch.
type ChangeEvent struct {
	ID       int
	Value    string
	Previous string
}

// BlurEvent reports that the input lost focus.
type BlurEvent struct {
	ID    int
	Value string
}

// Props is the host-supplied configuration. The widget re-derives its state
// from Props on every SetProps.
type Props struct {
	// Value is coerced to text with Stringify.
	Value   any
	Options Sequence
	// DisplayKey names the option field shown in the input and the hint.
	DisplayKey string

	OptionTemplate  Renderer
	LoadingTemplate Renderer
	EmptyTemplate   Renderer

	Hint        bool
	MinLength   int
	ShowLoading bool
	ShowEmpty   bool
	Placeholder string
	ClassName   string

	RateLimitBy RateLimit
	// RateLimitWait is in milliseconds.
	RateLimitWait int

	// Width is the widget width in cells, 0 to size to content.
	Width int
	// MaxVisible caps the number of option rows painted, 0 for no cap.
	MaxVisible int
	Prompt     string

	// StyleSource overrides direction detection.
	StyleSource StyleSource
	Styles      Styles
	Logger      logr.Logger
	// Clock is used for rate limiting; nil means time.Now.
	Clock func() time.Time

	OnChange       func(ChangeEvent)
	OnFetchData    func(value string)
	OnBlur         func(BlurEvent)
	OnClick        func(*ClickEvent)
	OnOptionClick  func(opt Option, index int)
	OnOptionChange func(opt Option, index int)
}

// DefaultProps returns props with every optional field at its default.
func DefaultProps() Props {
	return Props{
		Value:           "",
		Options:         Slice(nil),
		Hint:            true,
		LoadingTemplate: DefaultLoadingTemplate,
		EmptyTemplate:   DefaultEmptyTemplate,
		RateLimitBy:     RateLimitNone,
		RateLimitWait:   DefaultRateLimitWait,
		Prompt:          "❯ ",
		Styles:          DefaultStyles(),
		Logger:          logr.Discard(),
	}
}

// Validate checks required fields and value ranges. All problems are
// reported together.
func (p Props) Validate() error {
	var errs []error
	if p.OptionTemplate == nil {
		errs = append(errs, ErrMissingOptionTemplate)
	}
	if strings.TrimSpace(p.DisplayKey) == "" {
		errs = append(errs, ErrMissingDisplayKey)
	}
	if p.RateLimitBy != "" && !p.RateLimitBy.IsValid() {
		errs = append(errs, fmt.Errorf("%w %q", ErrInvalidRateLimit, string(p.RateLimitBy)))
	}
	if p.RateLimitWait < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidRateLimitWait, p.RateLimitWait))
	}
	if p.MinLength < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMinLength, p.MinLength))
	}
	return errors.Join(errs...)
}

// ParseRateLimitBy parses a mode name.
func ParseRateLimitBy(s string) (RateLimit, error) {
	m, err := limiter.ParseMode(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRateLimit, err)
	}
	return m, nil
}

// ParseRateLimitWait parses a non-negative millisecond count.
func ParseRateLimitWait(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidRateLimitWait, s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRateLimitWait, n)
	}
	return n, nil
}

func (p Props) rateLimit() limiter.Config {
	mode := p.RateLimitBy
	if mode == "" {
		mode = RateLimitNone
	}
	return limiter.Config{Mode: mode, Wait: time.Duration(p.RateLimitWait) * time.Millisecond}
}

func (p Props) withDefaults() Props {
	if p.Options == nil {
		p.Options = Slice(nil)
	}
	if p.LoadingTemplate == nil {
		p.LoadingTemplate = DefaultLoadingTemplate
	}
	if p.EmptyTemplate == nil {
		p.EmptyTemplate = DefaultEmptyTemplate
	}
	if p.Logger.GetSink() == nil {
		p.Logger = logr.Discard()
	}
	return p
}
