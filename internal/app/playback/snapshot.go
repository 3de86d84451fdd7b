package playback

import (
	"time"

	"github.com/osa030/musiclib/internal/app/selection"
	"github.com/osa030/musiclib/internal/domain/track"
)

// Snapshot is a read-only copy of the controller's observable state.
type Snapshot struct {
	CurrentTrack    *track.Track   // Last started track; kept after Stop (nil before the first play)
	State           State          // Playback state
	ProgressPercent float64        // 0..100; 0 when the total is unknown
	CurrentTime     time.Duration  // Position in the current track
	TotalTime       time.Duration  // Length of the current track; 0 when unknown
	Mode            selection.Mode // Mode flags
	PlaylistIDs     []int          // Playlist in insertion order
	Filter          string         // Active browse filter value
	Generation      uint64         // Session generation
	LastError       string         // Last playback failure; cleared by the next successful start
}

// IsPlaying returns true if the state is Playing.
func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}

// PlaylistSize returns the number of playlist entries.
func (s Snapshot) PlaylistSize() int {
	return len(s.PlaylistIDs)
}
