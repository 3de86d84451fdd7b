package playback

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/musiclib/internal/app/filter"
	"github.com/osa030/musiclib/internal/app/selection"
	"github.com/osa030/musiclib/internal/domain/catalog"
	"github.com/osa030/musiclib/internal/domain/track"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]track.Track{
		{ID: 1, Title: "A", Type: track.TypeShort, Source: "a.mp3"},
		{ID: 2, Title: "B", Type: track.TypeShort, Source: "b.mp3"},
		{ID: 3, Title: "C", Type: track.TypeLong, Source: "c.mp3"},
		{ID: 4, Title: "D", Type: track.TypeInst, Source: "d.mp3", Tags: []string{"calm"}},
	})
	require.NoError(t, err)
	return c
}

// startController runs a controller until the test ends.
func startController(t *testing.T, config Config) (*Controller, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{duration: 200 * time.Second}
	c := NewController(testCatalog(t), backend, config)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})
	return c, backend
}

func snapshot(t *testing.T, c *Controller) Snapshot {
	t.Helper()
	s, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	return s
}

// drainEvents returns the types of all buffered events.
func drainEvents(c *Controller) []EventType {
	var types []EventType
	for {
		select {
		case e, ok := <-c.Events():
			if !ok {
				return types
			}
			types = append(types, e.Type)
		default:
			return types
		}
	}
}

func currentID(s Snapshot) int {
	if s.CurrentTrack == nil {
		return 0
	}
	return s.CurrentTrack.ID
}

func TestController_InitialState(t *testing.T) {
	c, _ := startController(t, Config{
		Mode:     selection.Mode{Shuffle: true},
		Playlist: []int{3, 1, 3},
	})

	s := snapshot(t, c)
	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.CurrentTrack)
	assert.False(t, s.IsPlaying())
	assert.Equal(t, selection.Mode{Shuffle: true}, s.Mode)
	assert.Equal(t, []int{3, 1}, s.PlaylistIDs)
	assert.Equal(t, "all", s.Filter)
	assert.Equal(t, uint64(0), s.Generation)
}

func TestController_PlayTrack(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 3))

	s := snapshot(t, c)
	assert.Equal(t, StatePlaying, s.State)
	assert.True(t, s.IsPlaying())
	assert.Equal(t, 3, currentID(s))
	assert.Equal(t, 200*time.Second, s.TotalTime)
	assert.Equal(t, time.Duration(0), s.CurrentTime)
	assert.Equal(t, float64(0), s.ProgressPercent)
	assert.Equal(t, uint64(1), s.Generation)

	assert.Equal(t, []string{"c.mp3"}, backend.sources())
	plays, _, _, disposed := backend.last().stats()
	assert.Equal(t, 1, plays)
	assert.False(t, disposed)
	assert.Equal(t, []EventType{EventTrackStarted}, drainEvents(c))
}

func TestController_PlayTrackUnknownID(t *testing.T) {
	c, backend := startController(t, Config{})

	err := c.PlayTrack(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrTrackNotFound))

	s := snapshot(t, c)
	assert.Equal(t, StateIdle, s.State)
	assert.Nil(t, s.CurrentTrack)
	assert.Equal(t, 0, backend.count())
}

func TestController_PlayTrackReplacesSession(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 1))
	first := backend.last()
	require.NoError(t, c.PlayTrack(ctx, 2))

	_, _, _, disposed := first.stats()
	assert.True(t, disposed, "previous session must be disposed")

	s := snapshot(t, c)
	assert.Equal(t, 2, currentID(s))
	assert.Equal(t, uint64(2), s.Generation)
	assert.Equal(t, 2, backend.count())
}

func TestController_PauseResume(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	// nothing to pause or resume yet
	require.NoError(t, c.Pause(ctx))
	require.NoError(t, c.Resume(ctx))
	assert.Equal(t, StateIdle, snapshot(t, c).State)
	assert.Equal(t, 0, backend.count())

	require.NoError(t, c.PlayTrack(ctx, 1))
	sess := backend.last()

	require.NoError(t, c.Pause(ctx))
	assert.Equal(t, StatePaused, snapshot(t, c).State)
	require.NoError(t, c.Pause(ctx))

	require.NoError(t, c.Resume(ctx))
	assert.Equal(t, StatePlaying, snapshot(t, c).State)
	require.NoError(t, c.Resume(ctx))

	plays, pauses, _, _ := sess.stats()
	assert.Equal(t, 2, plays)
	assert.Equal(t, 1, pauses)
	assert.Equal(t, 1, backend.count())
	assert.Equal(t, []EventType{EventTrackStarted, EventStateChanged, EventStateChanged}, drainEvents(c))
}

func TestController_Stop(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 3))
	backend.last().fireProgress(50*time.Second, 200*time.Second)
	require.NoError(t, c.Stop(ctx))

	s := snapshot(t, c)
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, 3, currentID(s), "current track is retained")
	assert.Equal(t, time.Duration(0), s.CurrentTime)
	assert.Equal(t, time.Duration(0), s.TotalTime)
	assert.Equal(t, float64(0), s.ProgressPercent)
	assert.Equal(t, uint64(2), s.Generation)

	_, _, _, disposed := backend.last().stats()
	assert.True(t, disposed)

	// idempotent
	require.NoError(t, c.Stop(ctx))
	assert.Equal(t, s, snapshot(t, c))
}

func TestController_StopWhenIdle(t *testing.T) {
	c, _ := startController(t, Config{})

	require.NoError(t, c.Stop(context.Background()))

	s := snapshot(t, c)
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, uint64(0), s.Generation)
	assert.Empty(t, drainEvents(c))
}

func TestController_ResumeAfterStopRestartsTrack(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 2))
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Resume(ctx))

	s := snapshot(t, c)
	assert.Equal(t, StatePlaying, s.State)
	assert.Equal(t, 2, currentID(s))
	assert.Equal(t, uint64(3), s.Generation)
	assert.Equal(t, []string{"b.mp3", "b.mp3"}, backend.sources())
}

func TestController_Seek(t *testing.T) {
	tests := []struct {
		name         string
		percent      float64
		wantSeek     time.Duration
		wantProgress float64
	}{
		{name: "half", percent: 50, wantSeek: 100 * time.Second, wantProgress: 50},
		{name: "above range is clamped", percent: 150, wantSeek: 200 * time.Second, wantProgress: 100},
		{name: "below range is clamped", percent: -5, wantSeek: 0, wantProgress: 0},
		{name: "start", percent: 0, wantSeek: 0, wantProgress: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, backend := startController(t, Config{})
			require.NoError(t, c.PlayTrack(ctx, 1))

			require.NoError(t, c.Seek(ctx, tt.percent))

			_, _, seeks, _ := backend.last().stats()
			assert.Equal(t, []time.Duration{tt.wantSeek}, seeks)

			s := snapshot(t, c)
			assert.Equal(t, tt.wantSeek, s.CurrentTime)
			assert.InDelta(t, tt.wantProgress, s.ProgressPercent, 1e-9)
		})
	}
}

func TestController_SeekIgnored(t *testing.T) {
	ctx := context.Background()

	t.Run("without a track", func(t *testing.T) {
		c, backend := startController(t, Config{})
		before := snapshot(t, c)

		require.NoError(t, c.Seek(ctx, 50))

		assert.Equal(t, before, snapshot(t, c))
		assert.Equal(t, 0, backend.count())
	})

	t.Run("NaN", func(t *testing.T) {
		c, backend := startController(t, Config{})
		require.NoError(t, c.PlayTrack(ctx, 1))

		require.NoError(t, c.Seek(ctx, math.NaN()))

		_, _, seeks, _ := backend.last().stats()
		assert.Empty(t, seeks)
	})

	t.Run("unknown total", func(t *testing.T) {
		c, backend := startController(t, Config{})
		backend.duration = 0
		require.NoError(t, c.PlayTrack(ctx, 1))

		require.NoError(t, c.Seek(ctx, 50))

		_, _, seeks, _ := backend.last().stats()
		assert.Empty(t, seeks)
		assert.Equal(t, float64(0), snapshot(t, c).ProgressPercent)
	})

	t.Run("after stop", func(t *testing.T) {
		c, backend := startController(t, Config{})
		require.NoError(t, c.PlayTrack(ctx, 1))
		require.NoError(t, c.Stop(ctx))

		require.NoError(t, c.Seek(ctx, 50))

		_, _, seeks, _ := backend.last().stats()
		assert.Empty(t, seeks)
	})
}

func TestController_Progress(t *testing.T) {
	tests := []struct {
		name         string
		duration     time.Duration
		cur          time.Duration
		total        time.Duration
		wantProgress float64
		wantTotal    time.Duration
	}{
		{name: "quarter", duration: 120 * time.Second, cur: 30 * time.Second, total: 120 * time.Second, wantProgress: 25, wantTotal: 120 * time.Second},
		{name: "total learned from progress", duration: 0, cur: 10 * time.Second, total: 40 * time.Second, wantProgress: 25, wantTotal: 40 * time.Second},
		{name: "unknown total", duration: 0, cur: 10 * time.Second, total: 0, wantProgress: 0, wantTotal: 0},
		{name: "position past total is clamped", duration: 60 * time.Second, cur: 61 * time.Second, total: 60 * time.Second, wantProgress: 100, wantTotal: 60 * time.Second},
		{name: "negative position is clamped", duration: 60 * time.Second, cur: -time.Second, total: 60 * time.Second, wantProgress: 0, wantTotal: 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, backend := startController(t, Config{})
			backend.duration = tt.duration
			require.NoError(t, c.PlayTrack(ctx, 1))

			backend.last().fireProgress(tt.cur, tt.total)

			s := snapshot(t, c)
			assert.Equal(t, tt.cur, s.CurrentTime)
			assert.Equal(t, tt.wantTotal, s.TotalTime)
			assert.InDelta(t, tt.wantProgress, s.ProgressPercent, 1e-9)
			assert.GreaterOrEqual(t, s.ProgressPercent, float64(0))
			assert.LessOrEqual(t, s.ProgressPercent, float64(100))
		})
	}
}

func TestController_ProgressTotalBecomesUnknown(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})
	require.NoError(t, c.PlayTrack(ctx, 1))
	sess := backend.last()

	sess.fireProgress(50*time.Second, 100*time.Second)
	s := snapshot(t, c)
	assert.InDelta(t, 50, s.ProgressPercent, 1e-9)
	assert.Equal(t, 100*time.Second, s.TotalTime)

	sess.fireProgress(60*time.Second, 0)
	s = snapshot(t, c)
	assert.Equal(t, 60*time.Second, s.CurrentTime)
	assert.Equal(t, time.Duration(0), s.TotalTime)
	assert.Equal(t, float64(0), s.ProgressPercent)
}

func TestController_EventsKeptWhenChannelFull(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{EventBuffer: 1})

	require.NoError(t, c.PlayTrack(ctx, 1))
	backend.last().fireProgress(10*time.Second, 200*time.Second)
	snapshot(t, c)
	require.NoError(t, c.Pause(ctx))
	require.NoError(t, c.Resume(ctx))
	require.NoError(t, c.Stop(ctx))

	var got []EventType
	for range 4 {
		select {
		case e := <-c.Events():
			got = append(got, e.Type)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	assert.Equal(t, []EventType{EventTrackStarted, EventStateChanged, EventStateChanged, EventStateChanged}, got)

	snapshot(t, c)
	assert.Empty(t, drainEvents(c), "progress is dropped while the channel is full")
}

func TestController_RepeatOne(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{
		Mode:     selection.Mode{RepeatOne: true, PlaylistLoop: true, Shuffle: true},
		Playlist: []int{1, 2, 3},
	})

	require.NoError(t, c.PlayTrack(ctx, 2))
	sess := backend.last()
	sess.fireProgress(199*time.Second, 200*time.Second)
	snapshot(t, c)
	drainEvents(c)

	sess.fireEnded()

	s := snapshot(t, c)
	assert.Equal(t, StatePlaying, s.State)
	assert.Equal(t, 2, currentID(s))
	assert.Equal(t, time.Duration(0), s.CurrentTime)
	assert.Equal(t, float64(0), s.ProgressPercent)
	assert.Equal(t, uint64(1), s.Generation, "repeat reuses the session")

	plays, _, seeks, disposed := sess.stats()
	assert.Equal(t, 2, plays)
	assert.Equal(t, []time.Duration{0}, seeks)
	assert.False(t, disposed)
	assert.Equal(t, 1, backend.count())
	assert.Equal(t, []EventType{EventTrackEnded, EventTrackRepeated}, drainEvents(c))
}

func TestController_PlaylistLoopScenario(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{
		Mode:     selection.Mode{PlaylistLoop: true},
		Playlist: []int{1, 3},
	})

	require.NoError(t, c.PlayTrack(ctx, 1))

	var played []int
	for range 2 {
		backend.last().fireEnded()
		played = append(played, currentID(snapshot(t, c)))
	}

	assert.Equal(t, []int{3, 1}, played)
	assert.Equal(t, []string{"a.mp3", "c.mp3", "a.mp3"}, backend.sources())
	assert.Equal(t, StatePlaying, snapshot(t, c).State)
}

func TestController_PrecedenceOverTypeContinuous(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{
		Mode:     selection.Mode{PlaylistLoop: true, TypeContinuous: true},
		Playlist: []int{1, 3},
	})

	require.NoError(t, c.PlayTrack(ctx, 1))
	backend.last().fireEnded()

	assert.Equal(t, 3, currentID(snapshot(t, c)))
}

func TestController_CompletionWithoutModeGoesIdle(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 1))
	sess := backend.last()
	drainEvents(c)

	sess.fireEnded()

	s := snapshot(t, c)
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, 1, currentID(s))
	_, _, _, disposed := sess.stats()
	assert.True(t, disposed)
	assert.Equal(t, 1, backend.count())
	assert.Equal(t, []EventType{EventTrackEnded, EventStateChanged}, drainEvents(c))

	// a later completion from the disposed session is ignored
	sess.fireEnded()
	assert.Equal(t, s, snapshot(t, c))
}

func TestController_ModeReadAtCompletion(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 1))
	require.NoError(t, c.SetMode(ctx, selection.FlagTypeContinuous, true))
	backend.last().fireEnded()

	s := snapshot(t, c)
	assert.Equal(t, 2, currentID(s))
	assert.True(t, s.Mode.TypeContinuous)
}

func TestController_StandaloneShuffleUsesVisibleList(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{
		Mode:   selection.Mode{Shuffle: true},
		Random: &scriptedRandom{values: []int{1}},
	})

	require.NoError(t, c.SetFilter(ctx, filter.NewTypeFilter(track.TypeShort)))
	require.NoError(t, c.PlayTrack(ctx, 3))
	backend.last().fireEnded()

	// visible list is [1, 2]; track 3 is outside it so nothing is excluded
	assert.Equal(t, 2, currentID(snapshot(t, c)))

	// from 2 the only other visible track is 1
	backend.last().fireEnded()
	assert.Equal(t, 1, currentID(snapshot(t, c)))
}

func TestController_StaleCallbacksIgnored(t *testing.T) {
	ctx := context.Background()

	t.Run("superseded by PlayTrack", func(t *testing.T) {
		c, backend := startController(t, Config{Mode: selection.Mode{TypeContinuous: true}})
		require.NoError(t, c.PlayTrack(ctx, 1))
		old := backend.last()
		require.NoError(t, c.PlayTrack(ctx, 3))
		before := snapshot(t, c)

		old.fireProgress(10*time.Second, 20*time.Second)
		old.fireEnded()
		old.fireError(errors.New("late failure"))

		assert.Equal(t, before, snapshot(t, c))
		assert.Equal(t, 2, backend.count())
	})

	t.Run("superseded by Stop", func(t *testing.T) {
		c, backend := startController(t, Config{Mode: selection.Mode{TypeContinuous: true}})
		require.NoError(t, c.PlayTrack(ctx, 1))
		old := backend.last()
		require.NoError(t, c.Stop(ctx))
		before := snapshot(t, c)

		old.fireEnded()

		assert.Equal(t, before, snapshot(t, c))
		assert.Equal(t, StateIdle, before.State)
		assert.Equal(t, 1, backend.count())
	})
}

func TestController_PlaybackFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("session cannot be created", func(t *testing.T) {
		c, backend := startController(t, Config{})
		backend.setErrors(errors.New("no such file"), nil)

		err := c.PlayTrack(ctx, 1)
		assert.True(t, errors.Is(err, ErrPlaybackFailed))

		s := snapshot(t, c)
		assert.Equal(t, StateIdle, s.State)
		assert.Contains(t, s.LastError, "no such file")
		assert.Equal(t, []EventType{EventPlaybackFailed}, drainEvents(c))

		backend.setErrors(nil, nil)
		require.NoError(t, c.PlayTrack(ctx, 1))
		assert.Empty(t, snapshot(t, c).LastError)
	})

	t.Run("play rejected", func(t *testing.T) {
		c, backend := startController(t, Config{})
		backend.setErrors(nil, errors.New("device busy"))

		err := c.PlayTrack(ctx, 2)
		assert.True(t, errors.Is(err, ErrPlaybackFailed))

		_, _, _, disposed := backend.last().stats()
		assert.True(t, disposed)
		s := snapshot(t, c)
		assert.Equal(t, StateIdle, s.State)
		assert.Equal(t, 2, currentID(s))
		assert.Contains(t, s.LastError, "device busy")
	})

	t.Run("error during playback", func(t *testing.T) {
		c, backend := startController(t, Config{Mode: selection.Mode{TypeContinuous: true}})
		require.NoError(t, c.PlayTrack(ctx, 1))
		sess := backend.last()
		drainEvents(c)

		sess.fireError(errors.New("decode error"))

		s := snapshot(t, c)
		assert.Equal(t, StateIdle, s.State)
		assert.Contains(t, s.LastError, "decode error")
		_, _, _, disposed := sess.stats()
		assert.True(t, disposed)
		assert.Equal(t, []EventType{EventPlaybackFailed}, drainEvents(c))

		// the failed session cannot trigger a continuation
		sess.fireEnded()
		assert.Equal(t, 1, backend.count())
	})
}

func TestController_SetMode(t *testing.T) {
	ctx := context.Background()
	c, _ := startController(t, Config{})

	for _, f := range selection.Flags() {
		require.NoError(t, c.SetMode(ctx, f, true))
	}
	assert.Equal(t, selection.Mode{RepeatOne: true, PlaylistLoop: true, TypeContinuous: true, Shuffle: true}, snapshot(t, c).Mode)
	assert.Len(t, drainEvents(c), 4)

	// unchanged value emits nothing
	require.NoError(t, c.SetMode(ctx, selection.FlagShuffle, true))
	assert.Empty(t, drainEvents(c))

	require.NoError(t, c.SetMode(ctx, selection.FlagShuffle, false))
	assert.False(t, snapshot(t, c).Mode.Shuffle)
}

func TestController_TogglePlaylist(t *testing.T) {
	ctx := context.Background()
	c, _ := startController(t, Config{})

	tests := []struct {
		id         int
		wantMember bool
		wantIDs    []int
	}{
		{id: 3, wantMember: true, wantIDs: []int{3}},
		{id: 1, wantMember: true, wantIDs: []int{3, 1}},
		{id: 3, wantMember: false, wantIDs: []int{1}},
		{id: 3, wantMember: true, wantIDs: []int{1, 3}},
		{id: 42, wantMember: true, wantIDs: []int{1, 3, 42}},
	}

	for _, tt := range tests {
		member, err := c.TogglePlaylist(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.wantMember, member)

		s := snapshot(t, c)
		assert.Equal(t, tt.wantIDs, s.PlaylistIDs)
		assert.Equal(t, len(tt.wantIDs), s.PlaylistSize())
	}
}

func TestController_StalePlaylistIDIsInert(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{
		Mode:     selection.Mode{PlaylistLoop: true},
		Playlist: []int{42, 4},
	})

	require.NoError(t, c.PlayTrack(ctx, 4))
	backend.last().fireEnded()

	assert.Equal(t, 4, currentID(snapshot(t, c)))
	assert.Equal(t, []string{"d.mp3", "d.mp3"}, backend.sources())
}

func TestController_FilterAndVisible(t *testing.T) {
	ctx := context.Background()
	c, _ := startController(t, Config{})

	visible, err := c.Visible(ctx)
	require.NoError(t, err)
	assert.Len(t, visible, 4)

	require.NoError(t, c.SetFilter(ctx, filter.NewTagFilter("calm")))
	visible, err = c.Visible(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, 4, visible[0].ID)
	assert.Equal(t, "tag:calm", snapshot(t, c).Filter)

	require.NoError(t, c.SetFilter(ctx, nil))
	assert.Equal(t, "all", snapshot(t, c).Filter)
}

func TestController_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	c, _ := startController(t, Config{Playlist: []int{1}})
	require.NoError(t, c.PlayTrack(ctx, 1))

	s := snapshot(t, c)
	s.PlaylistIDs[0] = 99
	s.CurrentTrack.Title = "changed"

	fresh := snapshot(t, c)
	assert.Equal(t, []int{1}, fresh.PlaylistIDs)
	assert.Equal(t, "A", fresh.CurrentTrack.Title)
}

func TestController_Closed(t *testing.T) {
	backend := &fakeBackend{duration: time.Minute}
	c := NewController(testCatalog(t), backend, Config{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(context.Background())
	}()

	ctx := context.Background()
	require.NoError(t, c.PlayTrack(ctx, 1))
	sess := backend.last()

	c.Close()
	c.Close()
	require.NoError(t, <-errCh)

	assert.True(t, errors.Is(c.PlayTrack(ctx, 1), ErrClosed))
	_, err := c.Snapshot(ctx)
	assert.True(t, errors.Is(err, ErrClosed))

	_, _, _, disposed := sess.stats()
	assert.True(t, disposed)

	// callbacks after shutdown are dropped
	sess.fireEnded()

	// the event channel is closed once drained
	for range c.Events() {
	}
}

func TestController_ContextCancelled(t *testing.T) {
	// Run is never started, so operations can only end through ctx.
	c := NewController(testCatalog(t), &fakeBackend{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Pause(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestController_RunStopsOnContextCancel(t *testing.T) {
	c := NewController(testCatalog(t), &fakeBackend{}, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := c.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	<-c.Done()
}

func TestController_ProgressIgnoredWhilePaused(t *testing.T) {
	ctx := context.Background()
	c, backend := startController(t, Config{})

	require.NoError(t, c.PlayTrack(ctx, 1))
	require.NoError(t, c.Pause(ctx))
	require.NoError(t, c.Seek(ctx, 50))

	backend.last().fireProgress(20*time.Second, 200*time.Second)

	s := snapshot(t, c)
	assert.Equal(t, 100*time.Second, s.CurrentTime)
	assert.InDelta(t, 50, s.ProgressPercent, 1e-9)
}
