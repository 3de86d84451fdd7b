package audio

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/musiclib/internal/infra/config"
)

// NewBackendFromConfig creates the configured audio backend.
func NewBackendFromConfig(cfg *config.Config) (Backend, error) {
	interval := cfg.ProgressInterval()

	var backend Backend
	var err error
	zlog.Debug().Msgf("creating audio backend: type=%s settings=%+v", cfg.Audio.Backend, cfg.Audio.Settings)
	switch cfg.Audio.Backend {
	case "beep":
		backend, err = NewBeepBackend(interval, cfg.Audio.Settings)

	case "null":
		backend, err = NewNullBackend(interval, cfg.Audio.Settings)

	default:
		return nil, errors.Newf("unsupported audio backend: %s", cfg.Audio.Backend)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to create audio backend %s", cfg.Audio.Backend)
	}

	zlog.Info().Msgf("registered audio backend: type=%s progress_interval=%v", backend.Name(), interval)
	return backend, nil
}
