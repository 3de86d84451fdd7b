package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	controlv1 "github.com/osa030/musiclib/internal/api/controlv1"
)

// Client calls the control service.
type Client struct {
	getStatus      *connect.Client[controlv1.GetStatusRequest, controlv1.GetStatusResponse]
	listTracks     *connect.Client[controlv1.ListTracksRequest, controlv1.ListTracksResponse]
	listFilters    *connect.Client[controlv1.ListFiltersRequest, controlv1.ListFiltersResponse]
	playTrack      *connect.Client[controlv1.PlayTrackRequest, controlv1.ControlResponse]
	pause          *connect.Client[controlv1.PauseRequest, controlv1.ControlResponse]
	resume         *connect.Client[controlv1.ResumeRequest, controlv1.ControlResponse]
	stop           *connect.Client[controlv1.StopRequest, controlv1.ControlResponse]
	seek           *connect.Client[controlv1.SeekRequest, controlv1.ControlResponse]
	setMode        *connect.Client[controlv1.SetModeRequest, controlv1.ControlResponse]
	togglePlaylist *connect.Client[controlv1.TogglePlaylistRequest, controlv1.TogglePlaylistResponse]
	setFilter      *connect.Client[controlv1.SetFilterRequest, controlv1.ControlResponse]
	subscribe      *connect.Client[controlv1.SubscribeRequest, controlv1.Notification]
}

// NewClient creates a control client for the server at baseURL. A non-empty
// token is sent in the X-Control-Token header of every call.
func NewClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(controlv1.Codec{}),
		connect.WithInterceptors(&tokenInterceptor{token: token}),
	}, opts...)

	return &Client{
		getStatus:      connect.NewClient[controlv1.GetStatusRequest, controlv1.GetStatusResponse](httpClient, baseURL+controlv1.GetStatusProcedure, opts...),
		listTracks:     connect.NewClient[controlv1.ListTracksRequest, controlv1.ListTracksResponse](httpClient, baseURL+controlv1.ListTracksProcedure, opts...),
		listFilters:    connect.NewClient[controlv1.ListFiltersRequest, controlv1.ListFiltersResponse](httpClient, baseURL+controlv1.ListFiltersProcedure, opts...),
		playTrack:      connect.NewClient[controlv1.PlayTrackRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.PlayTrackProcedure, opts...),
		pause:          connect.NewClient[controlv1.PauseRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.PauseProcedure, opts...),
		resume:         connect.NewClient[controlv1.ResumeRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.ResumeProcedure, opts...),
		stop:           connect.NewClient[controlv1.StopRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.StopProcedure, opts...),
		seek:           connect.NewClient[controlv1.SeekRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.SeekProcedure, opts...),
		setMode:        connect.NewClient[controlv1.SetModeRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.SetModeProcedure, opts...),
		togglePlaylist: connect.NewClient[controlv1.TogglePlaylistRequest, controlv1.TogglePlaylistResponse](httpClient, baseURL+controlv1.TogglePlaylistProcedure, opts...),
		setFilter:      connect.NewClient[controlv1.SetFilterRequest, controlv1.ControlResponse](httpClient, baseURL+controlv1.SetFilterProcedure, opts...),
		subscribe:      connect.NewClient[controlv1.SubscribeRequest, controlv1.Notification](httpClient, baseURL+controlv1.SubscribeProcedure, opts...),
	}
}

func (c *Client) GetStatus(ctx context.Context) (*controlv1.Status, error) {
	resp, err := c.getStatus.CallUnary(ctx, connect.NewRequest(&controlv1.GetStatusRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Status, nil
}

func (c *Client) ListTracks(ctx context.Context, filterValue string) (*controlv1.ListTracksResponse, error) {
	resp, err := c.listTracks.CallUnary(ctx, connect.NewRequest(&controlv1.ListTracksRequest{Filter: filterValue}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) ListFilters(ctx context.Context) ([]*controlv1.FilterInfo, error) {
	resp, err := c.listFilters.CallUnary(ctx, connect.NewRequest(&controlv1.ListFiltersRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Filters, nil
}

func (c *Client) PlayTrack(ctx context.Context, id int) (*controlv1.Status, error) {
	return status(c.playTrack.CallUnary(ctx, connect.NewRequest(&controlv1.PlayTrackRequest{TrackID: id})))
}

func (c *Client) Pause(ctx context.Context) (*controlv1.Status, error) {
	return status(c.pause.CallUnary(ctx, connect.NewRequest(&controlv1.PauseRequest{})))
}

func (c *Client) Resume(ctx context.Context) (*controlv1.Status, error) {
	return status(c.resume.CallUnary(ctx, connect.NewRequest(&controlv1.ResumeRequest{})))
}

func (c *Client) Stop(ctx context.Context) (*controlv1.Status, error) {
	return status(c.stop.CallUnary(ctx, connect.NewRequest(&controlv1.StopRequest{})))
}

func (c *Client) Seek(ctx context.Context, percent float64) (*controlv1.Status, error) {
	return status(c.seek.CallUnary(ctx, connect.NewRequest(&controlv1.SeekRequest{Percent: percent})))
}

func (c *Client) SetMode(ctx context.Context, flag string, enabled bool) (*controlv1.Status, error) {
	return status(c.setMode.CallUnary(ctx, connect.NewRequest(&controlv1.SetModeRequest{Flag: flag, Enabled: enabled})))
}

func (c *Client) TogglePlaylist(ctx context.Context, id int) (*controlv1.TogglePlaylistResponse, error) {
	resp, err := c.togglePlaylist.CallUnary(ctx, connect.NewRequest(&controlv1.TogglePlaylistRequest{TrackID: id}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) SetFilter(ctx context.Context, value string) (*controlv1.Status, error) {
	return status(c.setFilter.CallUnary(ctx, connect.NewRequest(&controlv1.SetFilterRequest{Filter: value})))
}

// Subscribe opens a notification stream. The caller must Close it.
func (c *Client) Subscribe(ctx context.Context) (*connect.ServerStreamForClient[controlv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, connect.NewRequest(&controlv1.SubscribeRequest{}))
}

func status(resp *connect.Response[controlv1.ControlResponse], err error) (*controlv1.Status, error) {
	if err != nil {
		return nil, err
	}
	return resp.Msg.Status, nil
}
