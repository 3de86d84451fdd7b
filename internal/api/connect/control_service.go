// Package connect provides the Connect RPC control service and its client.
package connect

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	controlv1 "github.com/osa030/musiclib/internal/api/controlv1"
	"github.com/osa030/musiclib/internal/app/filter"
	"github.com/osa030/musiclib/internal/app/playback"
	"github.com/osa030/musiclib/internal/app/selection"
	"github.com/osa030/musiclib/internal/app/session"
	"github.com/osa030/musiclib/internal/domain/track"
)

// ErrUnknownFlag is returned by SetMode for an unrecognised flag name.
var ErrUnknownFlag = errors.New("unknown mode flag")

// ControlService implements the player control RPCs.
type ControlService struct {
	session *session.Manager
}

// NewControlService creates a new ControlService.
func NewControlService(session *session.Manager) *ControlService {
	return &ControlService{session: session}
}

// NewControlServiceHandler builds an HTTP handler serving every control
// procedure and returns the path prefix to mount it on.
func NewControlServiceHandler(svc *ControlService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(controlv1.Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(controlv1.GetStatusProcedure, connect.NewUnaryHandler(controlv1.GetStatusProcedure, svc.GetStatus, opts...))
	mux.Handle(controlv1.ListTracksProcedure, connect.NewUnaryHandler(controlv1.ListTracksProcedure, svc.ListTracks, opts...))
	mux.Handle(controlv1.ListFiltersProcedure, connect.NewUnaryHandler(controlv1.ListFiltersProcedure, svc.ListFilters, opts...))
	mux.Handle(controlv1.PlayTrackProcedure, connect.NewUnaryHandler(controlv1.PlayTrackProcedure, svc.PlayTrack, opts...))
	mux.Handle(controlv1.PauseProcedure, connect.NewUnaryHandler(controlv1.PauseProcedure, svc.Pause, opts...))
	mux.Handle(controlv1.ResumeProcedure, connect.NewUnaryHandler(controlv1.ResumeProcedure, svc.Resume, opts...))
	mux.Handle(controlv1.StopProcedure, connect.NewUnaryHandler(controlv1.StopProcedure, svc.Stop, opts...))
	mux.Handle(controlv1.SeekProcedure, connect.NewUnaryHandler(controlv1.SeekProcedure, svc.Seek, opts...))
	mux.Handle(controlv1.SetModeProcedure, connect.NewUnaryHandler(controlv1.SetModeProcedure, svc.SetMode, opts...))
	mux.Handle(controlv1.TogglePlaylistProcedure, connect.NewUnaryHandler(controlv1.TogglePlaylistProcedure, svc.TogglePlaylist, opts...))
	mux.Handle(controlv1.SetFilterProcedure, connect.NewUnaryHandler(controlv1.SetFilterProcedure, svc.SetFilter, opts...))
	mux.Handle(controlv1.SubscribeProcedure, connect.NewServerStreamHandler(controlv1.SubscribeProcedure, svc.Subscribe, opts...))

	return "/" + controlv1.ServiceName + "/", mux
}

// GetStatus returns the current player status.
func (s *ControlService) GetStatus(
	ctx context.Context,
	req *connect.Request[controlv1.GetStatusRequest],
) (*connect.Response[controlv1.GetStatusResponse], error) {
	status, err := s.session.GetStatus(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&controlv1.GetStatusResponse{Status: status}), nil
}

// ListTracks returns the tracks visible under the requested filter.
func (s *ControlService) ListTracks(
	ctx context.Context,
	req *connect.Request[controlv1.ListTracksRequest],
) (*connect.Response[controlv1.ListTracksResponse], error) {
	label, tracks, err := s.session.ListTracks(ctx, req.Msg.Filter)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&controlv1.ListTracksResponse{Filter: label, Tracks: tracks}), nil
}

// ListFilters returns the built-in filter values and the configured presets.
func (s *ControlService) ListFilters(
	ctx context.Context,
	req *connect.Request[controlv1.ListFiltersRequest],
) (*connect.Response[controlv1.ListFiltersResponse], error) {
	filters := []*controlv1.FilterInfo{
		{Value: "all", Kind: "all", Description: (&filter.AllFilter{}).Description()},
	}
	for _, typ := range track.Types() {
		f := filter.NewTypeFilter(typ)
		filters = append(filters, &controlv1.FilterInfo{Value: f.String(), Kind: f.Name(), Description: f.Description()})
	}
	filters = append(filters, &controlv1.FilterInfo{
		Value:       filter.TagPrefix + "<name>",
		Kind:        "tag",
		Description: filter.NewTagFilter("").Description(),
	})
	for _, name := range s.session.PresetNames() {
		f, _ := s.session.Preset(name)
		filters = append(filters, &controlv1.FilterInfo{Value: name, Kind: f.Name(), Description: f.Description()})
	}
	return connect.NewResponse(&controlv1.ListFiltersResponse{Filters: filters}), nil
}

// PlayTrack starts a catalog track.
func (s *ControlService) PlayTrack(
	ctx context.Context,
	req *connect.Request[controlv1.PlayTrackRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	zlog.Info().Msgf("control: play track: id=%d", req.Msg.TrackID)
	return s.control(ctx, func(c *playback.Controller) error {
		return c.PlayTrack(ctx, req.Msg.TrackID)
	})
}

// Pause pauses playback.
func (s *ControlService) Pause(
	ctx context.Context,
	req *connect.Request[controlv1.PauseRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	return s.control(ctx, func(c *playback.Controller) error {
		return c.Pause(ctx)
	})
}

// Resume resumes playback.
func (s *ControlService) Resume(
	ctx context.Context,
	req *connect.Request[controlv1.ResumeRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	return s.control(ctx, func(c *playback.Controller) error {
		return c.Resume(ctx)
	})
}

// Stop stops playback.
func (s *ControlService) Stop(
	ctx context.Context,
	req *connect.Request[controlv1.StopRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	return s.control(ctx, func(c *playback.Controller) error {
		return c.Stop(ctx)
	})
}

// Seek moves playback to a percentage of the current track.
func (s *ControlService) Seek(
	ctx context.Context,
	req *connect.Request[controlv1.SeekRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	return s.control(ctx, func(c *playback.Controller) error {
		return c.Seek(ctx, req.Msg.Percent)
	})
}

// SetMode sets a single mode flag.
func (s *ControlService) SetMode(
	ctx context.Context,
	req *connect.Request[controlv1.SetModeRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	flag, ok := selection.ParseFlag(req.Msg.Flag)
	if !ok {
		return nil, toConnectError(errors.Wrapf(ErrUnknownFlag, "%q", req.Msg.Flag))
	}
	zlog.Info().Msgf("control: set mode: flag=%s enabled=%v", flag, req.Msg.Enabled)
	return s.control(ctx, func(c *playback.Controller) error {
		return c.SetMode(ctx, flag, req.Msg.Enabled)
	})
}

// TogglePlaylist adds or removes a track from the playlist.
func (s *ControlService) TogglePlaylist(
	ctx context.Context,
	req *connect.Request[controlv1.TogglePlaylistRequest],
) (*connect.Response[controlv1.TogglePlaylistResponse], error) {
	in, err := s.session.Controller().TogglePlaylist(ctx, req.Msg.TrackID)
	if err != nil {
		return nil, toConnectError(err)
	}
	status, err := s.session.GetStatus(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&controlv1.TogglePlaylistResponse{
		InPlaylist:   in,
		PlaylistSize: len(status.PlaylistIDs),
		Status:       status,
	}), nil
}

// SetFilter replaces the browse filter.
func (s *ControlService) SetFilter(
	ctx context.Context,
	req *connect.Request[controlv1.SetFilterRequest],
) (*connect.Response[controlv1.ControlResponse], error) {
	f, err := s.session.ParseFilter(req.Msg.Filter)
	if err != nil {
		return nil, toConnectError(err)
	}
	return s.control(ctx, func(c *playback.Controller) error {
		return c.SetFilter(ctx, f)
	})
}

// Subscribe streams the current status followed by every player event
// until the client disconnects or the session ends.
func (s *ControlService) Subscribe(
	ctx context.Context,
	req *connect.Request[controlv1.SubscribeRequest],
	stream *connect.ServerStream[controlv1.Notification],
) error {
	notifManager := s.session.GetNotificationManager()
	sequenceNo := notifManager.NextSequenceNo()

	status, err := s.session.GetStatus(ctx)
	if err != nil {
		return toConnectError(err)
	}

	adapter := &notificationStreamAdapter{stream: stream}
	if err := adapter.Send(&controlv1.Notification{
		SequenceNo: sequenceNo,
		Type:       controlv1.NotificationInitial,
		Status:     status,
	}); err != nil {
		return err
	}

	subscriptionID := notifManager.Subscribe(adapter)
	defer notifManager.Unsubscribe(subscriptionID)

	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}
	return nil
}

// control runs op and replies with the resulting status.
func (s *ControlService) control(
	ctx context.Context,
	op func(c *playback.Controller) error,
) (*connect.Response[controlv1.ControlResponse], error) {
	if err := op(s.session.Controller()); err != nil {
		return nil, toConnectError(err)
	}
	status, err := s.session.GetStatus(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&controlv1.ControlResponse{Status: status}), nil
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialised since a timed-out broadcast may still be in flight.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[controlv1.Notification]
}

func (a *notificationStreamAdapter) Send(n *controlv1.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(n)
}

// toConnectError maps domain errors to connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, playback.ErrTrackNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, filter.ErrUnknownFilter), errors.Is(err, ErrUnknownFlag):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, playback.ErrPlaybackFailed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, playback.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
