package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePriceBracket(t *testing.T) {
	cases := map[string]struct {
		want PriceBracket
		ok   bool
	}{
		"0-1000":    {BracketUpTo1000, true},
		"1000-5000": {Bracket1000To5000, true},
		"5000+":     {Bracket5000Plus, true},
		" 5000+ ":   {Bracket5000Plus, true},
		"":          {0, false},
		"cheap":     {0, false},
		"5000-":     {0, false},
	}
	for in, tc := range cases {
		got, ok := ParsePriceBracket(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestPriceBracketContainsInclusiveBounds(t *testing.T) {
	assert.True(t, BracketUpTo1000.Contains(1000))
	assert.False(t, BracketUpTo1000.Contains(1000.01))
	assert.True(t, Bracket1000To5000.Contains(1000))
	assert.True(t, Bracket1000To5000.Contains(5000))
	assert.False(t, Bracket1000To5000.Contains(999.99))
	assert.True(t, Bracket5000Plus.Contains(5000))
	assert.False(t, PriceBracket(0).Contains(10))
}

func TestBracketStringRoundTrip(t *testing.T) {
	for _, b := range PriceBrackets() {
		got, ok := ParsePriceBracket(b.String())
		assert.True(t, ok)
		assert.Equal(t, b, got)
	}
}

func TestIsMarketplace(t *testing.T) {
	p := Post{Section: "marketplace"}
	assert.True(t, p.IsListing())
	p.Section = "Marketplace"
	assert.False(t, p.IsListing())
	assert.False(t, p.HasPrice())
	assert.Zero(t, p.PriceValue())
}
