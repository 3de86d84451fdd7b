// Package playback provides the player state machine owning the single
// active audio session.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No session (never started, stopped or nothing to continue with)
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
