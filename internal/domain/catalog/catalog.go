// Package catalog provides the immutable, ordered track catalog.
package catalog

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/musiclib/internal/domain/track"
)

// ErrDuplicateID is returned when two catalog entries share an ID.
var ErrDuplicateID = errors.New("duplicate track id")

// Catalog is an ordered, read-only list of tracks.
// It is built once at startup and never mutated afterwards, so it is safe
// for concurrent reads.
type Catalog struct {
	tracks []track.Track
	index  map[int]int // track ID -> position in tracks
}

// New creates a catalog from tracks in the given order.
func New(tracks []track.Track) (*Catalog, error) {
	c := &Catalog{
		tracks: make([]track.Track, len(tracks)),
		index:  make(map[int]int, len(tracks)),
	}
	for i, t := range tracks {
		if _, exists := c.index[t.ID]; exists {
			return nil, errors.Wrapf(ErrDuplicateID, "id %d", t.ID)
		}
		c.index[t.ID] = i
		c.tracks[i] = t
	}
	return c, nil
}

// Tracks returns a copy of all tracks in catalog order.
func (c *Catalog) Tracks() []track.Track {
	result := make([]track.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Get returns the track with the given ID.
func (c *Catalog) Get(id int) (track.Track, bool) {
	i, ok := c.index[id]
	if !ok {
		return track.Track{}, false
	}
	return c.tracks[i], true
}

// Resolve maps ids to tracks, keeping the order of ids.
// IDs missing from the catalog are skipped.
func (c *Catalog) Resolve(ids []int) []track.Track {
	result := make([]track.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := c.Get(id); ok {
			result = append(result, t)
		}
	}
	return result
}

// ByType returns all tracks of the given type in catalog order.
func (c *Catalog) ByType(typ track.Type) []track.Track {
	return c.Select(func(t track.Track) bool { return t.Type == typ })
}

// Select returns the tracks matching fn in catalog order.
func (c *Catalog) Select(fn func(track.Track) bool) []track.Track {
	result := make([]track.Track, 0)
	for _, t := range c.tracks {
		if fn(t) {
			result = append(result, t)
		}
	}
	return result
}
