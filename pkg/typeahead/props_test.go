package typeahead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProps() Props {
	p := DefaultProps()
	p.DisplayKey = "title"
	p.OptionTemplate = DisplayTemplate("title")
	return p
}

func TestPropsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Props)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Props) {}},
		{name: "empty mode means none", mutate: func(p *Props) { p.RateLimitBy = "" }},
		{name: "missing template", mutate: func(p *Props) { p.OptionTemplate = nil }, wantErr: ErrMissingOptionTemplate},
		{name: "blank display key", mutate: func(p *Props) { p.DisplayKey = "  " }, wantErr: ErrMissingDisplayKey},
		{name: "bad mode", mutate: func(p *Props) { p.RateLimitBy = "often" }, wantErr: ErrInvalidRateLimit},
		{name: "negative wait", mutate: func(p *Props) { p.RateLimitWait = -1 }, wantErr: ErrInvalidRateLimitWait},
		{name: "negative min length", mutate: func(p *Props) { p.MinLength = -2 }, wantErr: ErrInvalidMinLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProps()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefaultProps(t *testing.T) {
	p := DefaultProps()
	assert.Equal(t, RateLimitNone, p.RateLimitBy)
	assert.Equal(t, 100, p.RateLimitWait)
	assert.Zero(t, p.MinLength)
	assert.True(t, p.Hint)
	assert.False(t, p.ShowEmpty)
	assert.False(t, p.ShowLoading)
	assert.Equal(t, 0, p.Options.Len())
	assert.NotNil(t, p.LoadingTemplate)
	assert.NotNil(t, p.EmptyTemplate)
}

func TestRateLimitConversion(t *testing.T) {
	p := validProps()
	p.RateLimitBy = ""
	p.RateLimitWait = 250
	cfg := p.rateLimit()
	assert.Equal(t, RateLimitNone, cfg.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.Wait)
}

func TestParseRateLimitBy(t *testing.T) {
	m, err := ParseRateLimitBy("trottle")
	require.NoError(t, err)
	assert.Equal(t, RateLimitThrottle, m)

	_, err = ParseRateLimitBy("sometimes")
	require.ErrorIs(t, err, ErrInvalidRateLimit)
}

func TestParseRateLimitWait(t *testing.T) {
	n, err := ParseRateLimitWait(" 300 ")
	require.NoError(t, err)
	assert.Equal(t, 300, n)

	_, err = ParseRateLimitWait("-1")
	require.ErrorIs(t, err, ErrInvalidRateLimitWait)
	_, err = ParseRateLimitWait("soon")
	require.ErrorIs(t, err, ErrInvalidRateLimitWait)
}
