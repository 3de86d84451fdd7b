package filter

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/musiclib/internal/domain/track"
)

// DurationLimitConfig represents the configuration for DurationLimitFilter.
type DurationLimitConfig struct {
	MinSeconds float64 `yaml:"min_seconds" mapstructure:"min_seconds" validate:"gte=0"`
	MaxSeconds float64 `yaml:"max_seconds" mapstructure:"max_seconds" validate:"gte=0"`
}

// DurationLimitFilter shows tracks whose display duration is within limits.
// Tracks without a parseable duration are hidden once any limit is set.
type DurationLimitFilter struct {
	config *DurationLimitConfig
}

// NewDurationLimitFilter creates a new duration limit filter.
func NewDurationLimitFilter() *DurationLimitFilter {
	return &DurationLimitFilter{}
}

func (f *DurationLimitFilter) Name() string {
	return "duration_limit"
}

func (f *DurationLimitFilter) Description() string {
	return "Shows tracks whose duration is within min_seconds and max_seconds"
}

func (f *DurationLimitFilter) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}

	// max_seconds of 0 means no upper limit
	if config.MaxSeconds > 0 && config.MinSeconds > config.MaxSeconds {
		return errors.New("min_seconds cannot be greater than max_seconds")
	}
	f.config = &config
	zlog.Debug().Msgf("filter: duration limit config: %+v", config)
	return nil
}

func (f *DurationLimitFilter) Match(t track.Track) bool {
	if f.config == nil || (f.config.MinSeconds == 0 && f.config.MaxSeconds == 0) {
		return true
	}

	length, ok := t.Length()
	if !ok {
		return false
	}

	seconds := length.Seconds()
	if seconds < f.config.MinSeconds {
		return false
	}
	if f.config.MaxSeconds > 0 && seconds > f.config.MaxSeconds {
		return false
	}
	return true
}

func (f *DurationLimitFilter) String() string {
	if f.config == nil {
		return "duration_limit"
	}
	lo := time.Duration(f.config.MinSeconds * float64(time.Second))
	if f.config.MaxSeconds == 0 {
		return fmt.Sprintf("duration_limit(%s-)", track.FormatClock(lo))
	}
	hi := time.Duration(f.config.MaxSeconds * float64(time.Second))
	return fmt.Sprintf("duration_limit(%s-%s)", track.FormatClock(lo), track.FormatClock(hi))
}

func init() {
	Register("duration_limit", func() Filter {
		return &DurationLimitFilter{}
	})
}
