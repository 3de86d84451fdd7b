package selection

import "strings"

// Mode holds the four independent playback-continuation toggles.
// All combinations are legal; the rule chain defines precedence.
type Mode struct {
	RepeatOne      bool // Restart the current track on completion
	PlaylistLoop   bool // Continue through the playlist
	TypeContinuous bool // Continue through tracks of the same type
	Shuffle        bool // Random instead of sequential succession
}

// Flag names a single mode toggle.
type Flag int

const (
	FlagRepeatOne Flag = iota
	FlagPlaylistLoop
	FlagTypeContinuous
	FlagShuffle
)

// Flags returns all flags in display order.
func Flags() []Flag {
	return []Flag{FlagRepeatOne, FlagPlaylistLoop, FlagTypeContinuous, FlagShuffle}
}

// String returns the flag name used in config and on the wire.
func (f Flag) String() string {
	switch f {
	case FlagRepeatOne:
		return "repeat_one"
	case FlagPlaylistLoop:
		return "playlist_loop"
	case FlagTypeContinuous:
		return "type_continuous"
	case FlagShuffle:
		return "shuffle"
	default:
		return "unknown"
	}
}

// ParseFlag converts a flag name to a Flag. Hyphens are accepted in place
// of underscores.
func ParseFlag(s string) (Flag, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, f := range Flags() {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Get returns the value of flag f.
func (m Mode) Get(f Flag) bool {
	switch f {
	case FlagRepeatOne:
		return m.RepeatOne
	case FlagPlaylistLoop:
		return m.PlaylistLoop
	case FlagTypeContinuous:
		return m.TypeContinuous
	case FlagShuffle:
		return m.Shuffle
	default:
		return false
	}
}

// With returns a copy of m with flag f set to v.
func (m Mode) With(f Flag, v bool) Mode {
	switch f {
	case FlagRepeatOne:
		m.RepeatOne = v
	case FlagPlaylistLoop:
		m.PlaylistLoop = v
	case FlagTypeContinuous:
		m.TypeContinuous = v
	case FlagShuffle:
		m.Shuffle = v
	}
	return m
}
