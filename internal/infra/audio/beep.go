package audio

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"
)

// BeepConfig represents the settings of the beep backend.
type BeepConfig struct {
	SampleRate      int `yaml:"sample_rate" mapstructure:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs        int `yaml:"buffer_ms" mapstructure:"buffer_ms" default:"100" validate:"gte=10,lte=1000"`
	ResampleQuality int `yaml:"resample_quality" mapstructure:"resample_quality" default:"4" validate:"gte=1,lte=64"`
}

// BeepBackend plays local mp3, flac and wav files through the system speaker.
type BeepBackend struct {
	config           BeepConfig
	progressInterval time.Duration
	sampleRate       beep.SampleRate

	initOnce sync.Once
	initErr  error
}

// NewBeepBackend creates a beep backend. The speaker is initialized on the
// first session.
func NewBeepBackend(progressInterval time.Duration, settings map[string]any) (*BeepBackend, error) {
	var config BeepConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, errors.Wrap(err, "invalid beep settings")
	}
	zlog.Debug().Msgf("audio: beep backend config: %+v", config)

	return &BeepBackend{
		config:           config,
		progressInterval: progressInterval,
		sampleRate:       beep.SampleRate(config.SampleRate),
	}, nil
}

func (b *BeepBackend) Name() string {
	return "beep"
}

// NewSession opens and decodes source.
func (b *BeepBackend) NewSession(source string) (Session, error) {
	decode, err := decoderFor(source)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", source)
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to decode %s", source)
	}

	if err := b.initSpeaker(); err != nil {
		streamer.Close()
		f.Close()
		return nil, err
	}

	// Resample if the track's sample rate differs from the speaker's
	var playStreamer beep.Streamer = streamer
	if format.SampleRate != b.sampleRate {
		playStreamer = beep.Resample(b.config.ResampleQuality, format.SampleRate, b.sampleRate, streamer)
	}

	zlog.Debug().Msgf("audio: opened source: path=%s sample_rate=%d duration=%v",
		source, format.SampleRate, format.SampleRate.D(streamer.Len()))

	return &beepSession{
		backend:  b,
		file:     f,
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: playStreamer, Paused: false},
	}, nil
}

func (b *BeepBackend) initSpeaker() error {
	b.initOnce.Do(func() {
		bufferSize := b.sampleRate.N(time.Duration(b.config.BufferMs) * time.Millisecond)
		if err := speaker.Init(b.sampleRate, bufferSize); err != nil {
			b.initErr = errors.Wrap(err, "failed to initialize speaker")
		}
	})
	return b.initErr
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(source string) (decodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }, nil
	case ".flac":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }, nil
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", ext)
	}
}

// beepSession is one decoded file queued on the shared speaker.
//
// Lock order is s.mu before the speaker lock. The end-of-stream callback
// runs under the speaker lock, so it hands off to a goroutine.
type beepSession struct {
	backend  *BeepBackend
	mu       sync.Mutex
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl

	queued   bool // on the speaker
	playing  bool
	disposed bool
	stopTick chan struct{}

	onProgress func(cur, total time.Duration)
	onEnded    func()
	onError    func(err error)
}

func (s *beepSession) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	if s.playing {
		return nil
	}

	if !s.queued {
		speaker.Play(beep.Seq(s.ctrl, beep.Callback(func() {
			go s.finished()
		})))
		s.queued = true
	}

	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()

	s.playing = true
	s.stopTick = make(chan struct{})
	go s.runProgress(s.stopTick)
	return nil
}

func (s *beepSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || !s.playing {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.playing = false
	s.stopTickerLocked()
}

func (s *beepSession) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	n := s.format.SampleRate.N(pos)
	n = max(0, min(n, s.streamer.Len()))

	speaker.Lock()
	err := s.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		return errors.Wrapf(err, "failed to seek to %v", pos)
	}
	return nil
}

func (s *beepSession) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return 0
	}
	speaker.Lock()
	pos := s.format.SampleRate.D(s.streamer.Position())
	speaker.Unlock()
	return pos
}

func (s *beepSession) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Len())
}

func (s *beepSession) OnProgress(fn func(cur, total time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *beepSession) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

func (s *beepSession) OnError(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *beepSession) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.playing = false
	s.stopTickerLocked()

	if s.queued {
		speaker.Clear()
		s.queued = false
	}
	if err := s.streamer.Close(); err != nil {
		zlog.Debug().Msgf("audio: failed to close streamer: %v", err)
	}
	if err := s.file.Close(); err != nil {
		zlog.Debug().Msgf("audio: failed to close file: %v", err)
	}
}

func (s *beepSession) stopTickerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

// finished runs after the speaker drained the stream.
func (s *beepSession) finished() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.queued = false
	s.playing = false
	s.stopTickerLocked()
	total := s.format.SampleRate.D(s.streamer.Len())
	progress, ended := s.onProgress, s.onEnded
	s.mu.Unlock()

	if progress != nil {
		progress(total, total)
	}
	if ended != nil {
		ended()
	}
}

// runProgress reports the position until stop is closed. A decoder error
// stops playback and is reported through the error callback.
func (s *beepSession) runProgress(stop <-chan struct{}) {
	ticker := time.NewTicker(s.backend.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.disposed || !s.playing {
				s.mu.Unlock()
				return
			}
			speaker.Lock()
			cur := s.format.SampleRate.D(s.streamer.Position())
			streamErr := s.streamer.Err()
			speaker.Unlock()
			total := s.format.SampleRate.D(s.streamer.Len())
			progress, onError := s.onProgress, s.onError
			if streamErr != nil {
				s.playing = false
				s.stopTickerLocked()
			}
			s.mu.Unlock()

			if streamErr != nil {
				if onError != nil {
					onError(errors.Wrap(streamErr, "stream error"))
				}
				return
			}
			if progress != nil {
				progress(cur, total)
			}
		}
	}
}
