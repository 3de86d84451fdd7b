package session

import (
	"slices"

	controlv1 "github.com/osa030/musiclib/internal/api/controlv1"
	"github.com/osa030/musiclib/internal/app/playback"
	"github.com/osa030/musiclib/internal/domain/track"
)

// StatusFromSnapshot converts a controller snapshot to its wire form.
func StatusFromSnapshot(s playback.Snapshot) *controlv1.Status {
	status := &controlv1.Status{
		State:           s.State.String(),
		IsPlaying:       s.IsPlaying(),
		ProgressPercent: s.ProgressPercent,
		CurrentTimeMs:   s.CurrentTime.Milliseconds(),
		TotalTimeMs:     s.TotalTime.Milliseconds(),
		Mode: controlv1.Mode{
			RepeatOne:      s.Mode.RepeatOne,
			PlaylistLoop:   s.Mode.PlaylistLoop,
			TypeContinuous: s.Mode.TypeContinuous,
			Shuffle:        s.Mode.Shuffle,
		},
		PlaylistIDs: append([]int{}, s.PlaylistIDs...),
		Filter:      s.Filter,
		Generation:  s.Generation,
		LastError:   s.LastError,
	}
	if s.CurrentTrack != nil {
		status.CurrentTrack = TrackInfo(*s.CurrentTrack, slices.Contains(s.PlaylistIDs, s.CurrentTrack.ID))
	}
	return status
}

// TrackInfo converts a catalog track to its wire form.
func TrackInfo(t track.Track, inPlaylist bool) *controlv1.TrackInfo {
	return &controlv1.TrackInfo{
		ID:         t.ID,
		Title:      t.Title,
		Type:       t.Type.String(),
		Tags:       append([]string(nil), t.Tags...),
		Duration:   t.DisplayDuration(),
		InPlaylist: inPlaylist,
	}
}
