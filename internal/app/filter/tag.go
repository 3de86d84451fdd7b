package filter

import (
	"strings"

	"github.com/osa030/musiclib/internal/domain/track"
)

// TagPrefix introduces a tag filter value, as in "tag:piano".
const TagPrefix = "tag:"

// TagConfig represents the configuration for TagFilter.
type TagConfig struct {
	Tag string `yaml:"tag" mapstructure:"tag" validate:"required"`
}

// TagFilter shows tracks carrying a tag.
type TagFilter struct {
	tag string
}

// NewTagFilter creates a filter for tag.
func NewTagFilter(tag string) *TagFilter {
	return &TagFilter{tag: strings.TrimSpace(tag)}
}

func (f *TagFilter) Name() string {
	return "tag"
}

func (f *TagFilter) Description() string {
	return "Shows tracks carrying a tag (case-insensitive)"
}

func (f *TagFilter) ValidateConfig(settings map[string]any) error {
	var config TagConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	f.tag = strings.TrimSpace(config.Tag)
	return nil
}

func (f *TagFilter) Match(t track.Track) bool {
	return t.HasTag(f.tag)
}

func (f *TagFilter) String() string {
	return TagPrefix + f.tag
}

func init() {
	Register("tag", func() Filter {
		return &TagFilter{}
	})
}
