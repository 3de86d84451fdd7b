package filter

import (
	"github.com/osa030/musiclib/internal/domain/track"
)

// TypeConfig represents the configuration for TypeFilter.
type TypeConfig struct {
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=short long english inst"`
}

// TypeFilter shows tracks of a single type.
type TypeFilter struct {
	typ track.Type
}

// NewTypeFilter creates a filter for typ.
func NewTypeFilter(typ track.Type) *TypeFilter {
	return &TypeFilter{typ: typ}
}

func (f *TypeFilter) Name() string {
	return "type"
}

func (f *TypeFilter) Description() string {
	return "Shows tracks of one type (short, long, english, inst)"
}

func (f *TypeFilter) ValidateConfig(settings map[string]any) error {
	var config TypeConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	typ, _ := track.ParseType(config.Type)
	f.typ = typ
	return nil
}

func (f *TypeFilter) Match(t track.Track) bool {
	return t.Type == f.typ
}

func (f *TypeFilter) String() string {
	return f.typ.String()
}

func init() {
	Register("type", func() Filter {
		return &TypeFilter{}
	})
}
