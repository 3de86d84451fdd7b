package playback

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/musiclib/internal/app/filter"
	"github.com/osa030/musiclib/internal/app/selection"
	"github.com/osa030/musiclib/internal/domain/catalog"
	"github.com/osa030/musiclib/internal/domain/playlist"
	"github.com/osa030/musiclib/internal/domain/track"
	"github.com/osa030/musiclib/internal/infra/audio"
)

// Errors
var (
	ErrTrackNotFound  = errors.New("track not found")
	ErrPlaybackFailed = errors.New("playback failed")
	ErrClosed         = errors.New("controller closed")
)

const (
	defaultInboxSize   = 64
	defaultEventBuffer = 64
	maxEventBacklog    = 1024
)

// Config holds controller configuration.
type Config struct {
	Mode        selection.Mode   // Initial mode flags
	Filter      filter.Filter    // Initial browse filter (nil shows every track)
	Playlist    []int            // Initial playlist IDs
	Random      selection.Random // Random source for shuffle (nil uses the global source)
	Chain       *selection.Chain // Succession rules (nil uses selection.DefaultChain)
	InboxSize   int              // Pending operation capacity
	EventBuffer int              // Event channel capacity
}

// Controller owns the playback session and all player state.
//
// Every operation and every session callback runs on the goroutine that
// calls Run, one at a time, in arrival order. Public methods enqueue work
// and wait for it to finish.
type Controller struct {
	catalog *catalog.Catalog
	backend audio.Backend
	chain   *selection.Chain
	rng     selection.Random

	inbox     chan func()
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Events
	eventCh chan Event
	backlog []Event // transitions waiting for room in eventCh

	// Loop-owned state
	session     audio.Session
	generation  uint64
	current     *track.Track
	state       State
	currentTime time.Duration
	totalTime   time.Duration
	progress    float64
	mode        selection.Mode
	playlist    *playlist.Set
	filter      filter.Filter
	lastErr     error
}

// NewController creates a new playback controller. Call Run to start it.
func NewController(cat *catalog.Catalog, backend audio.Backend, config Config) *Controller {
	if config.Chain == nil {
		config.Chain = selection.DefaultChain()
	}
	if config.Filter == nil {
		config.Filter = &filter.AllFilter{}
	}
	if config.InboxSize <= 0 {
		config.InboxSize = defaultInboxSize
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = defaultEventBuffer
	}

	return &Controller{
		catalog:  cat,
		backend:  backend,
		chain:    config.Chain,
		rng:      config.Random,
		inbox:    make(chan func(), config.InboxSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		eventCh:  make(chan Event, config.EventBuffer),
		state:    StateIdle,
		mode:     config.Mode,
		playlist: playlist.NewSet(config.Playlist...),
		filter:   config.Filter,
	}
}

// Events returns the event channel. It is closed when Run returns.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Done returns a channel closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run services operations and session callbacks until ctx is cancelled or
// Close is called. It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()

	zlog.Debug().Msgf("playback: controller loop started: catalog=%d backend=%s", c.catalog.Len(), c.backend.Name())
	for {
		var out chan<- Event
		var next Event
		if len(c.backlog) > 0 {
			out = c.eventCh
			next = c.backlog[0]
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return nil
		case fn := <-c.inbox:
			fn()
		case out <- next:
			c.backlog = c.backlog[1:]
		}
	}
}

// Close stops the loop started by Run.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Controller) shutdown() {
	c.disposeSession()
	c.state = StateIdle
	close(c.done)
	close(c.eventCh)
	zlog.Debug().Msg("playback: controller loop stopped")
}

// PlayTrack starts the catalog track id from the beginning, replacing any
// live session.
func (c *Controller) PlayTrack(ctx context.Context, id int) error {
	return c.do(ctx, func() error {
		t, ok := c.catalog.Get(id)
		if !ok {
			return errors.Wrapf(ErrTrackNotFound, "id %d", id)
		}
		return c.startTrack(t)
	})
}

// Pause pauses a playing track. It is a no-op in any other state.
func (c *Controller) Pause(ctx context.Context) error {
	return c.do(ctx, func() error {
		if c.state != StatePlaying || c.session == nil {
			return nil
		}
		c.session.Pause()
		c.state = StatePaused
		zlog.Debug().Msgf("playback: paused: track_id=%d position=%v", c.current.ID, c.currentTime)
		c.emit(EventStateChanged)
		return nil
	})
}

// Resume continues a paused track. When idle with a retained track, that
// track restarts from the beginning. It is a no-op otherwise.
func (c *Controller) Resume(ctx context.Context) error {
	return c.do(ctx, func() error {
		switch {
		case c.state == StatePaused && c.session != nil:
			if err := c.session.Play(); err != nil {
				id := c.current.ID
				c.fail(err)
				return errors.Wrapf(ErrPlaybackFailed, "track %d: %v", id, err)
			}
			c.state = StatePlaying
			zlog.Debug().Msgf("playback: resumed: track_id=%d position=%v", c.current.ID, c.currentTime)
			c.emit(EventStateChanged)
			return nil
		case c.state == StateIdle && c.current != nil:
			return c.startTrack(*c.current)
		default:
			return nil
		}
	})
}

// Stop disposes the live session and resets position and progress.
// The current track is retained. Stop is idempotent.
func (c *Controller) Stop(ctx context.Context) error {
	return c.do(ctx, func() error {
		hadSession := c.session != nil
		prev := c.state

		if hadSession {
			c.disposeSession()
			c.generation++
		}
		c.resetPosition()
		c.state = StateIdle

		if hadSession || prev != StateIdle {
			zlog.Debug().Msgf("playback: stopped: generation=%d", c.generation)
			c.emit(EventStateChanged)
		}
		return nil
	})
}

// Seek moves to percent (0..100, clamped) of the current track.
// It is ignored without a session, with an unknown total, or for NaN.
func (c *Controller) Seek(ctx context.Context, percent float64) error {
	return c.do(ctx, func() error {
		if c.session == nil || math.IsNaN(percent) {
			return nil
		}
		total := c.totalTime
		if total <= 0 {
			total = c.session.Duration()
		}
		if total <= 0 {
			zlog.Debug().Msg("playback: seek ignored: total time unknown")
			return nil
		}

		percent = clampPercent(percent)
		target := time.Duration(float64(total) * percent / 100)
		if err := c.session.SeekTo(target); err != nil {
			return errors.Wrapf(err, "failed to seek to %v", target)
		}

		c.totalTime = total
		c.currentTime = target
		c.progress = percent
		c.emit(EventProgress)
		return nil
	})
}

// SetMode sets one mode flag. It only affects the next completion.
func (c *Controller) SetMode(ctx context.Context, flag selection.Flag, value bool) error {
	return c.do(ctx, func() error {
		next := c.mode.With(flag, value)
		if next == c.mode {
			return nil
		}
		c.mode = next
		zlog.Debug().Msgf("playback: mode changed: flag=%s value=%t", flag, value)
		c.emit(EventModeChanged)
		return nil
	})
}

// TogglePlaylist flips playlist membership of id and reports whether id is
// in the playlist afterwards.
func (c *Controller) TogglePlaylist(ctx context.Context, id int) (bool, error) {
	var member bool
	err := c.do(ctx, func() error {
		member = c.playlist.Toggle(id)
		zlog.Debug().Msgf("playback: playlist toggled: track_id=%d member=%t size=%d", id, member, c.playlist.Len())
		c.emit(EventPlaylistChanged)
		return nil
	})
	return member, err
}

// SetFilter changes the browse filter. A nil filter shows every track.
func (c *Controller) SetFilter(ctx context.Context, f filter.Filter) error {
	if f == nil {
		f = &filter.AllFilter{}
	}
	return c.do(ctx, func() error {
		c.filter = f
		zlog.Debug().Msgf("playback: filter changed: filter=%s", f)
		c.emit(EventFilterChanged)
		return nil
	})
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := c.do(ctx, func() error {
		s = c.snapshot()
		return nil
	})
	return s, err
}

// Visible returns the catalog tracks shown under the active filter.
func (c *Controller) Visible(ctx context.Context) ([]track.Track, error) {
	var tracks []track.Track
	err := c.do(ctx, func() error {
		tracks = c.visible()
		return nil
	})
	return tracks, err
}

// do runs fn on the loop and waits for its result.
func (c *Controller) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() { result <- fn() }

	select {
	case c.inbox <- task:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-c.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post queues fn without waiting. It never blocks the caller; when the
// inbox is full the send is retried from a goroutine.
func (c *Controller) post(fn func()) {
	select {
	case c.inbox <- fn:
	case <-c.done:
	default:
		go func() {
			select {
			case c.inbox <- fn:
			case <-c.done:
			}
		}()
	}
}

// startTrack disposes the live session and plays t from the beginning.
// Must be called on the loop.
func (c *Controller) startTrack(t track.Track) error {
	c.disposeSession()
	c.generation++
	gen := c.generation

	c.current = &t
	c.resetPosition()

	sess, err := c.backend.NewSession(t.Source)
	if err != nil {
		c.fail(err)
		return errors.Wrapf(ErrPlaybackFailed, "track %d: %v", t.ID, err)
	}
	c.session = sess

	sess.OnProgress(func(cur, total time.Duration) {
		c.post(func() { c.onProgress(gen, cur, total) })
	})
	sess.OnEnded(func() {
		c.post(func() { c.onEnded(gen) })
	})
	sess.OnError(func(err error) {
		c.post(func() { c.onError(gen, err) })
	})

	if err := sess.Play(); err != nil {
		c.fail(err)
		return errors.Wrapf(ErrPlaybackFailed, "track %d: %v", t.ID, err)
	}

	c.totalTime = sess.Duration()
	c.lastErr = nil
	c.state = StatePlaying

	zlog.Info().Msgf("playback: track started: track_id=%d title=%s type=%s generation=%d",
		t.ID, t.Title, t.Type, gen)
	c.emit(EventTrackStarted)
	return nil
}

// live reports whether gen belongs to the live session.
func (c *Controller) live(gen uint64) bool {
	return c.session != nil && gen == c.generation
}

func (c *Controller) onProgress(gen uint64, cur, total time.Duration) {
	// a paused position only moves through Seek
	if !c.live(gen) || c.state != StatePlaying {
		return
	}
	c.totalTime = total
	c.currentTime = cur
	c.progress = progressPercent(cur, total)
	c.emit(EventProgress)
}

func (c *Controller) onEnded(gen uint64) {
	if !c.live(gen) {
		zlog.Debug().Msgf("playback: discarding stale completion: generation=%d current=%d", gen, c.generation)
		return
	}

	ended := *c.current
	zlog.Debug().Msgf("playback: track ended: track_id=%d elapsed=%v total=%v", ended.ID, c.currentTime, c.totalTime)
	c.resetPosition()
	c.emit(EventTrackEnded)

	if c.mode.RepeatOne {
		if err := c.session.SeekTo(0); err != nil {
			c.fail(err)
			return
		}
		if err := c.session.Play(); err != nil {
			c.fail(err)
			return
		}
		c.state = StatePlaying
		zlog.Debug().Msgf("playback: repeating track: track_id=%d", ended.ID)
		c.emit(EventTrackRepeated)
		return
	}

	next, ok := c.chain.Next(selection.Input{
		Catalog:  c.catalog,
		Playlist: c.playlist.IDs(),
		Current:  ended,
		Mode:     c.mode,
		Visible:  c.visible(),
	}, c.rng)
	if !ok {
		c.disposeSession()
		c.state = StateIdle
		zlog.Info().Msgf("playback: no next track, going idle: track_id=%d", ended.ID)
		c.emit(EventStateChanged)
		return
	}

	if err := c.startTrack(next); err != nil {
		zlog.Warn().Msgf("playback: failed to continue with next track: track_id=%d error=%v", next.ID, err)
	}
}

func (c *Controller) onError(gen uint64, err error) {
	if !c.live(gen) {
		return
	}
	c.fail(err)
}

// fail disposes the session after a backend failure and goes idle.
func (c *Controller) fail(err error) {
	trackID := 0
	if c.current != nil {
		trackID = c.current.ID
	}
	zlog.Error().Msgf("playback: playback failed: track_id=%d generation=%d error=%v", trackID, c.generation, err)

	c.disposeSession()
	c.resetPosition()
	c.state = StateIdle
	c.lastErr = err
	c.emit(EventPlaybackFailed)
}

func (c *Controller) disposeSession() {
	if c.session == nil {
		return
	}
	c.session.Dispose()
	c.session = nil
}

func (c *Controller) resetPosition() {
	c.currentTime = 0
	c.totalTime = 0
	c.progress = 0
}

func (c *Controller) visible() []track.Track {
	return c.catalog.Select(c.filter.Match)
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:           c.state,
		ProgressPercent: c.progress,
		CurrentTime:     c.currentTime,
		TotalTime:       c.totalTime,
		Mode:            c.mode,
		PlaylistIDs:     c.playlist.IDs(),
		Filter:          c.filter.String(),
		Generation:      c.generation,
	}
	if c.current != nil {
		t := *c.current
		s.CurrentTrack = &t
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// emit sends an event without blocking. When the channel is full, progress
// events are dropped and every other event is queued on the backlog, which
// the loop flushes in order.
// Must be called on the loop.
func (c *Controller) emit(t EventType) {
	e := Event{Type: t, Snapshot: c.snapshot()}
	if len(c.backlog) == 0 {
		select {
		case c.eventCh <- e:
			return
		default:
		}
	}

	if t == EventProgress {
		zlog.Debug().Msgf("playback: progress event dropped, channel full: backlog=%d", len(c.backlog))
		return
	}
	if len(c.backlog) >= maxEventBacklog {
		zlog.Warn().Msgf("playback: event backlog full, dropping oldest: type=%s", c.backlog[0].Type)
		c.backlog = c.backlog[1:]
	}
	c.backlog = append(c.backlog, e)
}

// progressPercent returns cur/total as a percentage in [0, 100].
// An unknown or zero total yields 0.
func progressPercent(cur, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(cur) / float64(total) * 100
	if math.IsNaN(p) {
		return 0
	}
	return clampPercent(p)
}

func clampPercent(p float64) float64 {
	return math.Max(0, math.Min(100, p))
}
