// Package session wires the playback controller to its observers.
package session

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	controlv1 "github.com/osa030/musiclib/internal/api/controlv1"
	"github.com/osa030/musiclib/internal/app/filter"
	"github.com/osa030/musiclib/internal/app/notification"
	"github.com/osa030/musiclib/internal/app/playback"
	"github.com/osa030/musiclib/internal/app/selection"
	"github.com/osa030/musiclib/internal/domain/catalog"
	"github.com/osa030/musiclib/internal/infra/audio"
	"github.com/osa030/musiclib/internal/infra/config"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("session already started")

// Manager owns the playback controller and the notification manager.
type Manager struct {
	catalog      *catalog.Catalog
	playback     *playback.Controller
	notification *notification.Manager
	presets      map[string]filter.Filter

	startOnce sync.Once
	done      chan struct{}
}

// NewManager creates a session manager from the loaded configuration.
func NewManager(cfg *config.Config, cat *catalog.Catalog, backend audio.Backend) (*Manager, error) {
	presets, err := BuildPresets(cfg.Filters)
	if err != nil {
		return nil, err
	}

	initial, err := filter.Parse(cfg.Playback.InitialFilter, presets)
	if err != nil {
		return nil, errors.Wrap(err, "initial filter")
	}

	var rng selection.Random
	if cfg.Playback.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Playback.Seed, cfg.Playback.Seed))
	}

	mode := selection.Mode{
		RepeatOne:      cfg.Playback.RepeatOne,
		PlaylistLoop:   cfg.Playback.PlaylistLoop,
		TypeContinuous: cfg.Playback.TypeContinuous,
		Shuffle:        cfg.Playback.Shuffle,
	}

	zlog.Info().Msgf("session: created: tracks=%d backend=%s filter=%s presets=%d",
		cat.Len(), backend.Name(), initial.String(), len(presets))

	return &Manager{
		catalog: cat,
		playback: playback.NewController(cat, backend, playback.Config{
			Mode:   mode,
			Filter: initial,
			Random: rng,
		}),
		notification: notification.NewManager(),
		presets:      presets,
		done:         make(chan struct{}),
	}, nil
}

// BuildPresets creates the configured filter presets.
func BuildPresets(filters map[string]config.FilterConfig) (map[string]filter.Filter, error) {
	presets := make(map[string]filter.Filter, len(filters))
	for name, fc := range filters {
		f, err := filter.NewPreset(name, fc.Kind, fc.Settings)
		if err != nil {
			return nil, err
		}
		presets[name] = f
	}
	return presets, nil
}

// Start runs the controller loop and broadcasts its events until ctx is
// cancelled or Close is called. It blocks until both have finished.
func (m *Manager) Start(ctx context.Context) error {
	started := false
	m.startOnce.Do(func() { started = true })
	if !started {
		return ErrAlreadyStarted
	}
	defer close(m.done)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.forwardEvents()
	}()

	zlog.Info().Msg("session: started")
	err := m.playback.Run(ctx)
	wg.Wait()
	zlog.Info().Msg("session: stopped")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// forwardEvents turns controller events into notifications until the
// event channel is closed.
func (m *Manager) forwardEvents() {
	for ev := range m.playback.Events() {
		if ev.Type != playback.EventProgress {
			zlog.Debug().Msgf("session: event type=%s generation=%d", ev.Type, ev.Snapshot.Generation)
		}
		m.notification.Broadcast(&controlv1.Notification{
			Type:   ev.Type.String(),
			Status: StatusFromSnapshot(ev.Snapshot),
		})
	}
}

// Close stops the controller and drops all subscribers.
func (m *Manager) Close() {
	m.playback.Close()
	m.notification.Close()
}

// Done returns a channel closed when Start returns.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Controller returns the playback controller.
func (m *Manager) Controller() *playback.Controller {
	return m.playback
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// Catalog returns the track catalog.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// ParseFilter resolves a filter value against the configured presets.
func (m *Manager) ParseFilter(value string) (filter.Filter, error) {
	return filter.Parse(value, m.presets)
}

// PresetNames returns the configured preset names in sorted order.
func (m *Manager) PresetNames() []string {
	names := make([]string, 0, len(m.presets))
	for name := range m.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a configured preset by name.
func (m *Manager) Preset(name string) (filter.Filter, bool) {
	f, ok := m.presets[name]
	return f, ok
}

// GetStatus returns the current player status.
func (m *Manager) GetStatus(ctx context.Context) (*controlv1.Status, error) {
	snap, err := m.playback.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return StatusFromSnapshot(snap), nil
}

// ListTracks returns the tracks visible under value, or under the active
// filter when value is empty, with their playlist membership.
func (m *Manager) ListTracks(ctx context.Context, value string) (string, []*controlv1.TrackInfo, error) {
	snap, err := m.playback.Snapshot(ctx)
	if err != nil {
		return "", nil, err
	}

	label := snap.Filter
	visible := m.catalog.Tracks()
	if value == "" {
		visible, err = m.playback.Visible(ctx)
		if err != nil {
			return "", nil, err
		}
	} else {
		f, err := m.ParseFilter(value)
		if err != nil {
			return "", nil, err
		}
		label = f.String()
		visible = filter.Apply(visible, f)
	}

	inPlaylist := make(map[int]bool, len(snap.PlaylistIDs))
	for _, id := range snap.PlaylistIDs {
		inPlaylist[id] = true
	}

	infos := make([]*controlv1.TrackInfo, 0, len(visible))
	for _, t := range visible {
		infos = append(infos, TrackInfo(t, inPlaylist[t.ID]))
	}
	return label, infos, nil
}
