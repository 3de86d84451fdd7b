package selection

import "github.com/osa030/musiclib/internal/domain/track"

// PlaylistLoopRule continues through the playlist in insertion order.
type PlaylistLoopRule struct{}

func (PlaylistLoopRule) Name() string { return "playlist_loop" }

func (PlaylistLoopRule) Applies(m Mode) bool { return m.PlaylistLoop }

func (PlaylistLoopRule) Candidates(in Input) []track.Track {
	if in.Catalog == nil || len(in.Playlist) == 0 {
		return nil
	}
	return in.Catalog.Resolve(in.Playlist)
}

func (PlaylistLoopRule) AlwaysRandom() bool { return false }

// TypeContinuousRule continues through catalog tracks sharing the current
// track's type, in catalog order.
type TypeContinuousRule struct{}

func (TypeContinuousRule) Name() string { return "type_continuous" }

func (TypeContinuousRule) Applies(m Mode) bool { return m.TypeContinuous }

func (TypeContinuousRule) Candidates(in Input) []track.Track {
	if in.Catalog == nil {
		return nil
	}
	return in.Catalog.ByType(in.Current.Type)
}

func (TypeContinuousRule) AlwaysRandom() bool { return false }

// ShuffleRule draws from the visible (filtered) list.
type ShuffleRule struct{}

func (ShuffleRule) Name() string { return "shuffle" }

func (ShuffleRule) Applies(m Mode) bool { return m.Shuffle }

func (ShuffleRule) Candidates(in Input) []track.Track {
	return in.Visible
}

func (ShuffleRule) AlwaysRandom() bool { return true }
