package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/musiclib/internal/domain/track"
)

func TestDurationLimitFilter_Match(t *testing.T) {
	tests := []struct {
		name        string
		minSeconds  float64
		maxSeconds  float64
		duration    string
		shouldMatch bool
	}{
		{name: "Within limits", minSeconds: 60, maxSeconds: 300, duration: "3:00", shouldMatch: true},
		{name: "Too short", minSeconds: 60, duration: "0:30", shouldMatch: false},
		{name: "Too long", minSeconds: 0, maxSeconds: 120, duration: "2:01", shouldMatch: false},
		{name: "Exact min", minSeconds: 90, duration: "1:30", shouldMatch: true},
		{name: "Exact max", maxSeconds: 90, duration: "1:30", shouldMatch: true},
		{name: "Unknown duration with limits", minSeconds: 10, duration: "", shouldMatch: false},
		{name: "No limits", duration: "", shouldMatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			f.config = &DurationLimitConfig{
				MinSeconds: tt.minSeconds,
				MaxSeconds: tt.maxSeconds,
			}

			assert.Equal(t, tt.shouldMatch, f.Match(track.Track{Duration: tt.duration}))
		})
	}
}

func TestDurationLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{
			name:     "Valid config",
			settings: map[string]any{"min_seconds": 30.5, "max_seconds": 300.0},
		},
		{
			name:     "Valid integers",
			settings: map[string]any{"min_seconds": 30, "max_seconds": 300},
		},
		{
			name:     "Invalid min > max",
			settings: map[string]any{"min_seconds": 600, "max_seconds": 300},
			wantErr:  true,
		},
		{
			name:     "Invalid negative min",
			settings: map[string]any{"min_seconds": -1},
			wantErr:  true,
		},
		{
			name:     "Zero max (no limit)",
			settings: map[string]any{"min_seconds": 600, "max_seconds": 0},
		},
		{
			name:     "Invalid negative max",
			settings: map[string]any{"max_seconds": -1.0},
			wantErr:  true,
		},
		{
			name:     "Empty settings",
			settings: map[string]any{},
		},
		{
			name:     "Wrong type",
			settings: map[string]any{"min_seconds": "long"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDurationLimitFilter()
			err := f.ValidateConfig(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurationLimitFilter_String(t *testing.T) {
	f := NewDurationLimitFilter()
	assert.Equal(t, "duration_limit", f.String())

	assert.NoError(t, f.ValidateConfig(map[string]any{"min_seconds": 60, "max_seconds": 150}))
	assert.Equal(t, "duration_limit(1:00-2:30)", f.String())

	assert.NoError(t, f.ValidateConfig(map[string]any{"min_seconds": 60}))
	assert.Equal(t, "duration_limit(1:00-)", f.String())
}
