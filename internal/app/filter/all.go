package filter

import "github.com/osa030/musiclib/internal/domain/track"

// AllFilter shows every track.
type AllFilter struct{}

func (f *AllFilter) Name() string {
	return "all"
}

func (f *AllFilter) Description() string {
	return "Shows every catalog track"
}

func (f *AllFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *AllFilter) Match(t track.Track) bool {
	return true
}

func (f *AllFilter) String() string {
	return "all"
}

func init() {
	Register("all", func() Filter {
		return &AllFilter{}
	})
}
