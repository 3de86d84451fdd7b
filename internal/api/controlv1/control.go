// Package controlv1 defines the messages of the musiclib control API.
package controlv1

// ServiceName is the fully-qualified name of the control service.
const ServiceName = "musiclib.control.v1.ControlService"

// Procedure paths.
const (
	GetStatusProcedure      = "/" + ServiceName + "/GetStatus"
	ListTracksProcedure     = "/" + ServiceName + "/ListTracks"
	ListFiltersProcedure    = "/" + ServiceName + "/ListFilters"
	PlayTrackProcedure      = "/" + ServiceName + "/PlayTrack"
	PauseProcedure          = "/" + ServiceName + "/Pause"
	ResumeProcedure         = "/" + ServiceName + "/Resume"
	StopProcedure           = "/" + ServiceName + "/Stop"
	SeekProcedure           = "/" + ServiceName + "/Seek"
	SetModeProcedure        = "/" + ServiceName + "/SetMode"
	TogglePlaylistProcedure = "/" + ServiceName + "/TogglePlaylist"
	SetFilterProcedure      = "/" + ServiceName + "/SetFilter"
	SubscribeProcedure      = "/" + ServiceName + "/Subscribe"
)

// TrackInfo describes a catalog track.
type TrackInfo struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Tags       []string `json:"tags,omitempty"`
	Duration   string   `json:"duration,omitempty"`
	InPlaylist bool     `json:"in_playlist"`
}

// Mode mirrors the four continuation toggles.
type Mode struct {
	RepeatOne      bool `json:"repeat_one"`
	PlaylistLoop   bool `json:"playlist_loop"`
	TypeContinuous bool `json:"type_continuous"`
	Shuffle        bool `json:"shuffle"`
}

// Status is the observable player state.
type Status struct {
	CurrentTrack    *TrackInfo `json:"current_track,omitempty"`
	State           string     `json:"state"`
	IsPlaying       bool       `json:"is_playing"`
	ProgressPercent float64    `json:"progress_percent"`
	CurrentTimeMs   int64      `json:"current_time_ms"`
	TotalTimeMs     int64      `json:"total_time_ms"`
	Mode            Mode       `json:"mode"`
	PlaylistIDs     []int      `json:"playlist_ids"`
	Filter          string     `json:"filter"`
	Generation      uint64     `json:"generation"`
	LastError       string     `json:"last_error,omitempty"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Status *Status `json:"status"`
}

// ListTracksRequest lists tracks under Filter, or under the active
// filter when Filter is empty.
type ListTracksRequest struct {
	Filter string `json:"filter,omitempty"`
}

type ListTracksResponse struct {
	Filter string       `json:"filter"`
	Tracks []*TrackInfo `json:"tracks"`
}

type ListFiltersRequest struct{}

// FilterInfo describes a filter value accepted by SetFilter.
type FilterInfo struct {
	Value       string `json:"value"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type ListFiltersResponse struct {
	Filters []*FilterInfo `json:"filters"`
}

type PlayTrackRequest struct {
	TrackID int `json:"track_id"`
}

type PauseRequest struct{}

type ResumeRequest struct{}

type StopRequest struct{}

type SeekRequest struct {
	Percent float64 `json:"percent"`
}

type SetModeRequest struct {
	Flag    string `json:"flag"`
	Enabled bool   `json:"enabled"`
}

type TogglePlaylistRequest struct {
	TrackID int `json:"track_id"`
}

type TogglePlaylistResponse struct {
	InPlaylist   bool    `json:"in_playlist"`
	PlaylistSize int     `json:"playlist_size"`
	Status       *Status `json:"status"`
}

type SetFilterRequest struct {
	Filter string `json:"filter"`
}

// ControlResponse is returned by every state-changing call.
type ControlResponse struct {
	Status *Status `json:"status"`
}

type SubscribeRequest struct{}

// Notification is pushed to subscribers. Type is the event name, or
// "initial" for the first message of a stream.
type Notification struct {
	SequenceNo uint64  `json:"sequence_no"`
	Type       string  `json:"type"`
	Status     *Status `json:"status"`
}

// NotificationInitial is the type of the first message on a stream.
const NotificationInitial = "initial"
