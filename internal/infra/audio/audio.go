// Package audio provides the audio playback primitives driven by the
// playback controller.
package audio

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrDisposed          = errors.New("session disposed")
)

// Session is one loaded audio source.
//
// Callbacks may be invoked from any goroutine and must not block.
// After Dispose no callback fires and every method is a no-op
// (Play and SeekTo return ErrDisposed).
type Session interface {
	// Play starts or resumes playback. Calling Play after the source ended
	// restarts it from the current position.
	Play() error
	// Pause pauses playback.
	Pause()
	// SeekTo moves to an absolute position.
	SeekTo(pos time.Duration) error
	// Position returns the current position.
	Position() time.Duration
	// Duration returns the total length, or 0 when unknown.
	Duration() time.Duration

	OnProgress(fn func(cur, total time.Duration))
	OnEnded(fn func())
	OnError(fn func(err error))

	// Dispose stops playback and releases resources.
	Dispose()
}

// Backend creates sessions.
type Backend interface {
	// Name returns the backend name (used in config).
	Name() string
	// NewSession loads source. Playback does not start until Play.
	NewSession(source string) (Session, error)
}
