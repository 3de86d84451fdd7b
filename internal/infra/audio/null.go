package audio

import (
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// NullConfig represents the settings of the null backend.
type NullConfig struct {
	DurationSec float64  `yaml:"duration_sec" mapstructure:"duration_sec" default:"30" validate:"gt=0"`
	Speed       float64  `yaml:"speed" mapstructure:"speed" default:"1" validate:"gt=0,lte=1000"`
	FailSources []string `yaml:"fail_sources" mapstructure:"fail_sources"`
}

// NullBackend simulates playback on a wall clock without producing sound.
// Every source plays for DurationSec, advanced Speed times faster than real time.
type NullBackend struct {
	config           NullConfig
	progressInterval time.Duration
}

// NewNullBackend creates a null backend.
func NewNullBackend(progressInterval time.Duration, settings map[string]any) (*NullBackend, error) {
	var config NullConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, errors.Wrap(err, "invalid null settings")
	}
	zlog.Debug().Msgf("audio: null backend config: %+v", config)

	return &NullBackend{
		config:           config,
		progressInterval: progressInterval,
	}, nil
}

func (b *NullBackend) Name() string {
	return "null"
}

// NewSession creates a simulated session. Sources listed in FailSources
// fail to load.
func (b *NullBackend) NewSession(source string) (Session, error) {
	if slices.Contains(b.config.FailSources, source) {
		return nil, errors.Newf("failed to load %s", source)
	}
	return &nullSession{
		duration: time.Duration(b.config.DurationSec * float64(time.Second)),
		speed:    b.config.Speed,
		interval: b.progressInterval,
	}, nil
}

type nullSession struct {
	mu       sync.Mutex
	duration time.Duration
	speed    float64
	interval time.Duration

	position time.Duration
	lastTick time.Time
	playing  bool
	disposed bool
	stop     chan struct{}

	onProgress func(cur, total time.Duration)
	onEnded    func()
	onError    func(err error)
}

func (s *nullSession) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	if s.playing {
		return nil
	}
	s.playing = true
	s.lastTick = time.Now()
	s.stop = make(chan struct{})
	go s.run(s.stop)
	return nil
}

func (s *nullSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || !s.playing {
		return
	}
	s.advanceLocked(time.Now())
	s.playing = false
	s.stopLocked()
}

func (s *nullSession) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	s.position = max(0, min(pos, s.duration))
	s.lastTick = time.Now()
	return nil
}

func (s *nullSession) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		s.advanceLocked(time.Now())
	}
	return s.position
}

func (s *nullSession) Duration() time.Duration {
	return s.duration
}

func (s *nullSession) OnProgress(fn func(cur, total time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *nullSession) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

func (s *nullSession) OnError(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *nullSession) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposed = true
	s.playing = false
	s.stopLocked()
}

func (s *nullSession) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *nullSession) advanceLocked(now time.Time) {
	elapsed := max(0, now.Sub(s.lastTick))
	s.lastTick = now
	s.position = min(s.duration, s.position+time.Duration(float64(elapsed)*s.speed))
}

func (s *nullSession) run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if s.tick(now) {
				return
			}
		}
	}
}

// tick advances the clock and fires callbacks. Returns true once the
// session stopped playing.
func (s *nullSession) tick(now time.Time) bool {
	s.mu.Lock()
	if s.disposed || !s.playing {
		s.mu.Unlock()
		return true
	}
	s.advanceLocked(now)
	cur, total := s.position, s.duration
	ended := cur >= total
	if ended {
		s.playing = false
		s.stopLocked()
	}
	progress, onEnded := s.onProgress, s.onEnded
	s.mu.Unlock()

	if progress != nil {
		progress(cur, total)
	}
	if ended && onEnded != nil {
		onEnded()
	}
	return ended
}
