package filter

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/musiclib/internal/domain/track"
)

// preset is a configured filter selected by its preset name.
type preset struct {
	Filter
	name string
}

func (p *preset) String() string {
	return p.name
}

// NewPreset creates a named filter from a registered kind and its settings.
func NewPreset(name, kind string, settings map[string]any) (Filter, error) {
	f, err := New(kind, settings)
	if err != nil {
		return nil, errors.Wrapf(err, "preset %s", name)
	}
	return &preset{Filter: f, name: name}, nil
}

// Parse resolves a filter value.
//
// Accepted values are "all" (or empty), a track type ("short", "long",
// "english", "inst"), "tag:<name>", a preset name, or a comma-separated
// combination of those.
func Parse(value string, presets map[string]Filter) (Filter, error) {
	value = strings.TrimSpace(value)

	if strings.Contains(value, ",") {
		chain := NewChain()
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := Parse(part, presets)
			if err != nil {
				return nil, err
			}
			chain.Add(f)
		}
		if len(chain.Filters()) == 0 {
			return &AllFilter{}, nil
		}
		if len(chain.Filters()) == 1 {
			return chain.Filters()[0], nil
		}
		return chain, nil
	}

	if value == "" || strings.EqualFold(value, "all") {
		return &AllFilter{}, nil
	}

	if typ, ok := track.ParseType(value); ok {
		return NewTypeFilter(typ), nil
	}

	if len(value) >= len(TagPrefix) && strings.EqualFold(value[:len(TagPrefix)], TagPrefix) {
		tag := strings.TrimSpace(value[len(TagPrefix):])
		if tag == "" {
			return nil, errors.Wrapf(ErrUnknownFilter, "empty tag in %q", value)
		}
		return NewTagFilter(tag), nil
	}

	if f, ok := presets[value]; ok {
		return f, nil
	}

	return nil, errors.Wrapf(ErrUnknownFilter, "%q", value)
}
