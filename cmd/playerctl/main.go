// Package main provides the player control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/musiclib/internal/api/connect"
	controlv1 "github.com/osa030/musiclib/internal/api/controlv1"
	"github.com/osa030/musiclib/internal/domain/track"
)

var (
	app    = kingpin.New("musiclib-playerctl", "musiclib player control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set MUSICLIB_CONTROL_TOKEN env)").Envar("MUSICLIB_CONTROL_TOKEN").String()

	// status command
	statusCmd = app.Command("status", "Show player status")

	// tracks command
	tracksCmd    = app.Command("tracks", "List tracks under a filter").Alias("ls")
	tracksFilter = tracksCmd.Arg("filter", "Filter value (default: active filter)").String()

	// filters command
	filtersCmd = app.Command("filters", "List accepted filter values")

	// play command
	playCmd   = app.Command("play", "Play a track")
	playTrack = playCmd.Arg("track-id", "Track ID").Required().Int()

	// pause command
	pauseCmd = app.Command("pause", "Pause playback")

	// resume command
	resumeCmd = app.Command("resume", "Resume playback")

	// stop command
	stopCmd = app.Command("stop", "Stop playback")

	// seek command
	seekCmd     = app.Command("seek", "Seek to a percentage of the current track")
	seekPercent = seekCmd.Arg("percent", "Position in percent (0-100)").Required().Float64()

	// mode command
	modeCmd   = app.Command("mode", "Set a mode flag")
	modeFlag  = modeCmd.Arg("flag", "repeat_one, playlist_loop, type_continuous or shuffle").Required().String()
	modeValue = modeCmd.Arg("value", "on or off").Required().Enum("on", "off")

	// toggle command
	toggleCmd   = app.Command("toggle", "Add or remove a track from the playlist")
	toggleTrack = toggleCmd.Arg("track-id", "Track ID").Required().Int()

	// filter command
	filterCmd   = app.Command("filter", "Set the browse filter")
	filterValue = filterCmd.Arg("value", "Filter value").Required().String()

	// watch command
	watchCmd      = app.Command("watch", "Stream player notifications")
	watchProgress = watchCmd.Flag("progress", "Include progress notifications").Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewClient(http.DefaultClient, *server, *token)
	ctx := context.Background()

	switch command {
	case statusCmd.FullCommand():
		status, err := client.GetStatus(ctx)
		exitOnError(err)
		printStatus(status)
	case tracksCmd.FullCommand():
		listTracks(ctx, client, *tracksFilter)
	case filtersCmd.FullCommand():
		listFilters(ctx, client)
	case playCmd.FullCommand():
		printResult(client.PlayTrack(ctx, *playTrack))
	case pauseCmd.FullCommand():
		printResult(client.Pause(ctx))
	case resumeCmd.FullCommand():
		printResult(client.Resume(ctx))
	case stopCmd.FullCommand():
		printResult(client.Stop(ctx))
	case seekCmd.FullCommand():
		printResult(client.Seek(ctx, *seekPercent))
	case modeCmd.FullCommand():
		printResult(client.SetMode(ctx, *modeFlag, *modeValue == "on"))
	case toggleCmd.FullCommand():
		resp, err := client.TogglePlaylist(ctx, *toggleTrack)
		exitOnError(err)
		if resp.InPlaylist {
			fmt.Printf("Track %d added to playlist (PL: %d)\n", *toggleTrack, resp.PlaylistSize)
		} else {
			fmt.Printf("Track %d removed from playlist (PL: %d)\n", *toggleTrack, resp.PlaylistSize)
		}
	case filterCmd.FullCommand():
		printResult(client.SetFilter(ctx, *filterValue))
	case watchCmd.FullCommand():
		watch(ctx, client, *watchProgress)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printResult(status *controlv1.Status, err error) {
	exitOnError(err)
	printStatus(status)
}

func printStatus(s *controlv1.Status) {
	fmt.Println("\n=== PLAYER STATUS ===")
	fmt.Printf("State: %s\n", formatState(s.State))

	if s.CurrentTrack != nil {
		t := s.CurrentTrack
		fmt.Printf("\nCurrent Track:\n")
		fmt.Printf("  %s\n", formatTrack(t))
		fmt.Printf("  Position: %s / %s (%.1f%%)\n",
			track.FormatClock(time.Duration(s.CurrentTimeMs)*time.Millisecond),
			track.FormatClock(time.Duration(s.TotalTimeMs)*time.Millisecond),
			s.ProgressPercent)
	} else {
		fmt.Println("\nNo track selected")
	}

	fmt.Printf("\nMode: %s\n", formatMode(s.Mode))
	fmt.Printf("Filter: %s\n", s.Filter)
	fmt.Printf("PL: %d %v\n", len(s.PlaylistIDs), s.PlaylistIDs)
	if s.LastError != "" {
		fmt.Printf("Last Error: %s\n", s.LastError)
	}
	fmt.Println()
}

func listTracks(ctx context.Context, client *apiconnect.Client, filterValue string) {
	resp, err := client.ListTracks(ctx, filterValue)
	exitOnError(err)

	fmt.Printf("Tracks (%d, filter: %s):\n", len(resp.Tracks), resp.Filter)
	for _, t := range resp.Tracks {
		fmt.Printf("  %s\n", formatTrack(t))
	}
}

func listFilters(ctx context.Context, client *apiconnect.Client) {
	filters, err := client.ListFilters(ctx)
	exitOnError(err)

	fmt.Println("Filters:")
	for _, f := range filters {
		fmt.Printf("  %-16s [%s] %s\n", f.Value, f.Kind, f.Description)
	}
}

func watch(ctx context.Context, client *apiconnect.Client, progress bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := client.Subscribe(ctx)
	exitOnError(err)
	defer stream.Close()

	fmt.Println("Watching player notifications. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		cancel()
	}()

	for stream.Receive() {
		n := stream.Msg()
		if n.Type == "progress" && !progress {
			continue
		}
		printNotification(n)
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		fmt.Printf("Stream error: %v\n", err)
		os.Exit(1)
	}
}

func printNotification(n *controlv1.Notification) {
	fmt.Printf("[%d] %-16s ", n.SequenceNo, n.Type)
	if n.Status == nil {
		fmt.Println()
		return
	}

	s := n.Status
	current := "-"
	if s.CurrentTrack != nil {
		current = fmt.Sprintf("#%d %s", s.CurrentTrack.ID, s.CurrentTrack.Title)
	}
	fmt.Printf("%s %s %s/%s mode=%s filter=%s PL=%d\n",
		formatState(s.State),
		current,
		track.FormatClock(time.Duration(s.CurrentTimeMs)*time.Millisecond),
		track.FormatClock(time.Duration(s.TotalTimeMs)*time.Millisecond),
		formatMode(s.Mode),
		s.Filter,
		len(s.PlaylistIDs))
	if s.LastError != "" {
		fmt.Printf("    error: %s\n", s.LastError)
	}
}

func formatTrack(t *controlv1.TrackInfo) string {
	marker := " "
	if t.InPlaylist {
		marker = "*"
	}
	line := fmt.Sprintf("%s %3d  %-32s %-8s %6s", marker, t.ID, t.Title, t.Type, t.Duration)
	if len(t.Tags) > 0 {
		line += "  [" + strings.Join(t.Tags, ", ") + "]"
	}
	return line
}

func formatMode(m controlv1.Mode) string {
	var on []string
	if m.RepeatOne {
		on = append(on, "repeat_one")
	}
	if m.PlaylistLoop {
		on = append(on, "playlist_loop")
	}
	if m.TypeContinuous {
		on = append(on, "type_continuous")
	}
	if m.Shuffle {
		on = append(on, "shuffle")
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

func formatState(state string) string {
	switch state {
	case "playing":
		return "▶ Playing"
	case "paused":
		return "⏸ Paused"
	case "idle":
		return "⏹ Idle"
	default:
		return "? " + state
	}
}
