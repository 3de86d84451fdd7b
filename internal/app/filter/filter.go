// Package filter provides the browse filters that decide which catalog
// tracks are visible.
package filter

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/osa030/musiclib/internal/domain/track"
)

// ErrUnknownFilter is returned when a filter value or kind cannot be resolved.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter is the interface for browse filters.
type Filter interface {
	// Name returns the filter kind (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ValidateConfig validates and applies the filter settings.
	ValidateConfig(settings map[string]any) error
	// Match returns true if t is visible under this filter.
	Match(t track.Track) bool
	// String returns the value that selects this filter (e.g. "short", "tag:piano").
	String() string
}

// registry holds registered filter factories keyed by kind.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(kind string, factory func() Filter) {
	registry[kind] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New creates a filter of the given kind and applies settings.
func New(kind string, settings map[string]any) (Filter, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFilter, "kind %q", kind)
	}
	f := factory()
	if err := f.ValidateConfig(settings); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for filter kind %s", kind)
	}
	return f, nil
}

// Apply returns the tracks visible under f, keeping their order.
// A nil filter shows everything.
func Apply(tracks []track.Track, f Filter) []track.Track {
	result := make([]track.Track, 0, len(tracks))
	for _, t := range tracks {
		if f == nil || f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}
