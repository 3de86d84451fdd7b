package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted    EventType = iota // A new session started playing
	EventTrackEnded                       // Track finished playing naturally
	EventTrackRepeated                    // Track restarted by repeat-one
	EventStateChanged                     // Playback state changed (pause/resume/stop/idle)
	EventProgress                         // Position or total time changed
	EventModeChanged                      // A mode flag changed
	EventPlaylistChanged                  // Playlist membership changed
	EventFilterChanged                    // Browse filter changed
	EventPlaybackFailed                   // Backend failed to load, start or continue a track
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackRepeated:
		return "track_repeated"
	case EventStateChanged:
		return "state_changed"
	case EventProgress:
		return "progress"
	case EventModeChanged:
		return "mode_changed"
	case EventPlaylistChanged:
		return "playlist_changed"
	case EventFilterChanged:
		return "filter_changed"
	case EventPlaybackFailed:
		return "playback_failed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Snapshot Snapshot // Observable state right after the transition
}
