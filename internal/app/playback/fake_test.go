package playback

import (
	"sync"
	"time"

	"github.com/osa030/musiclib/internal/infra/audio"
)

// fakeSession records calls and lets tests fire callbacks by hand.
type fakeSession struct {
	mu       sync.Mutex
	source   string
	duration time.Duration
	playErr  error
	seekErr  error

	plays    int
	pauses   int
	seeks    []time.Duration
	disposed bool

	onProgress func(cur, total time.Duration)
	onEnded    func()
	onError    func(err error)
}

func (s *fakeSession) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return audio.ErrDisposed
	}
	s.plays++
	return s.playErr
}

func (s *fakeSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
}

func (s *fakeSession) SeekTo(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seekErr != nil {
		return s.seekErr
	}
	s.seeks = append(s.seeks, pos)
	return nil
}

func (s *fakeSession) Position() time.Duration { return 0 }

func (s *fakeSession) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *fakeSession) OnProgress(fn func(cur, total time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *fakeSession) OnEnded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = fn
}

func (s *fakeSession) OnError(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

func (s *fakeSession) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

// Callbacks fire even after Dispose to model notifications already in flight.

func (s *fakeSession) fireProgress(cur, total time.Duration) {
	s.mu.Lock()
	fn := s.onProgress
	s.mu.Unlock()
	fn(cur, total)
}

func (s *fakeSession) fireEnded() {
	s.mu.Lock()
	fn := s.onEnded
	s.mu.Unlock()
	fn()
}

func (s *fakeSession) fireError(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	fn(err)
}

func (s *fakeSession) stats() (plays, pauses int, seeks []time.Duration, disposed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays, s.pauses, append([]time.Duration(nil), s.seeks...), s.disposed
}

// fakeBackend hands out fakeSessions.
type fakeBackend struct {
	mu       sync.Mutex
	duration time.Duration
	newErr   error
	playErr  error
	sessions []*fakeSession
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) NewSession(source string) (audio.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.newErr != nil {
		return nil, b.newErr
	}
	s := &fakeSession{source: source, duration: b.duration, playErr: b.playErr}
	b.sessions = append(b.sessions, s)
	return s, nil
}

func (b *fakeBackend) setErrors(newErr, playErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.newErr = newErr
	b.playErr = playErr
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *fakeBackend) last() *fakeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sessions) == 0 {
		return nil
	}
	return b.sessions[len(b.sessions)-1]
}

func (b *fakeBackend) sources() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]string, len(b.sessions))
	for i, s := range b.sessions {
		result[i] = s.source
	}
	return result
}

// scriptedRandom returns preset values in order, then 0.
type scriptedRandom struct {
	mu     sync.Mutex
	values []int
}

func (r *scriptedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}
