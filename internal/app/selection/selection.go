// Package selection decides which track plays after a natural completion.
package selection

import (
	"math/rand/v2"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/musiclib/internal/domain/catalog"
	"github.com/osa030/musiclib/internal/domain/track"
)

// Random is the source of random draws.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
}

// globalRandom draws from the math/rand/v2 global source.
type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Input is everything a selection decision depends on.
type Input struct {
	Catalog  *catalog.Catalog
	Playlist []int         // Playlist IDs in insertion order
	Current  track.Track   // Track that just completed
	Mode     Mode          // Mode flags at completion time
	Visible  []track.Track // Tracks shown under the active browse filter
}

// Rule produces a candidate pool for one precedence level.
type Rule interface {
	// Name returns the rule name (used in logs).
	Name() string
	// Applies returns true if the rule is enabled under m.
	Applies(m Mode) bool
	// Candidates returns the pool, in rule order. An empty pool falls
	// through to the next rule.
	Candidates(in Input) []track.Track
	// AlwaysRandom returns true if the rule ignores the shuffle flag and
	// always draws randomly.
	AlwaysRandom() bool
}

// Chain tries rules in order until one yields a track.
type Chain struct {
	rules []Rule
}

// NewChain creates a chain trying rules in the given order.
func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: rules}
}

// DefaultChain returns the standard precedence:
// playlist loop, then type continuous, then standalone shuffle.
// Repeat-one is resolved by the caller before consulting the chain.
func DefaultChain() *Chain {
	return NewChain(PlaylistLoopRule{}, TypeContinuousRule{}, ShuffleRule{})
}

var defaultChain = DefaultChain()

// SelectNext runs the default chain. rng may be nil, in which case the
// global random source is used.
func SelectNext(in Input, rng Random) (track.Track, bool) {
	return defaultChain.Next(in, rng)
}

// Next returns the next track, or false when no rule yields one.
func (c *Chain) Next(in Input, rng Random) (track.Track, bool) {
	if rng == nil {
		rng = globalRandom{}
	}

	for i, r := range c.rules {
		if !r.Applies(in.Mode) {
			continue
		}

		pool := r.Candidates(in)
		zlog.Debug().Msgf("selection: trying rule: index=%d total=%d name=%s pool=%d current=%d",
			i+1, len(c.rules), r.Name(), len(pool), in.Current.ID)
		if len(pool) == 0 {
			continue
		}

		var next track.Track
		if r.AlwaysRandom() || in.Mode.Shuffle {
			next = pickRandom(pool, in.Current.ID, rng)
		} else {
			next = pickSequential(pool, in.Current.ID)
		}

		zlog.Debug().Msgf("selection: rule selected track: name=%s track_id=%d", r.Name(), next.ID)
		return next, true
	}

	return track.Track{}, false
}

// pickSequential returns the track after currentID in pool, wrapping
// around. A current track absent from pool yields the first entry.
func pickSequential(pool []track.Track, currentID int) track.Track {
	idx := indexOf(pool, currentID)
	return pool[(idx+1)%len(pool)]
}

// pickRandom draws uniformly from pool excluding currentID. If the
// exclusion leaves nothing, the full pool is used so that a non-empty pool
// always yields a track.
func pickRandom(pool []track.Track, currentID int, rng Random) track.Track {
	candidates := make([]track.Track, 0, len(pool))
	for _, t := range pool {
		if t.ID != currentID {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = pool
	}
	return candidates[rng.IntN(len(candidates))]
}

func indexOf(pool []track.Track, id int) int {
	for i, t := range pool {
		if t.ID == id {
			return i
		}
	}
	return -1
}
