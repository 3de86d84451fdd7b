package filter

import (
	"strings"

	"github.com/osa030/musiclib/internal/domain/track"
)

// Chain shows tracks matched by every filter in it.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	return &Chain{
		filters: append(make([]Filter, 0, len(filters)), filters...),
	}
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

func (c *Chain) Name() string {
	return "chain"
}

func (c *Chain) Description() string {
	return "Shows tracks matched by all filters in the chain"
}

func (c *Chain) ValidateConfig(settings map[string]any) error {
	return nil
}

// Match stops at the first filter that hides the track.
func (c *Chain) Match(t track.Track) bool {
	for _, f := range c.filters {
		if !f.Match(t) {
			return false
		}
	}
	return true
}

func (c *Chain) String() string {
	values := make([]string, len(c.filters))
	for i, f := range c.filters {
		values[i] = f.String()
	}
	return strings.Join(values, ",")
}
