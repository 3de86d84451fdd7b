// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/musiclib/internal/api/connect"
	"github.com/osa030/musiclib/internal/app/filter"
	"github.com/osa030/musiclib/internal/app/session"
	"github.com/osa030/musiclib/internal/infra/audio"
	"github.com/osa030/musiclib/internal/infra/catalogfile"
	"github.com/osa030/musiclib/internal/infra/config"
	"github.com/osa030/musiclib/internal/infra/logger"
)

var (
	app        = kingpin.New("musiclib-server", "musiclib track browser and player")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filter kinds and exit")
)

func init() {
	// start command (default)
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	closeLog, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run server (defer ensures the shutdown hook runs)
	err = run(cfg)
	_ = closeLog()
	if err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	catalogPath := cfg.ResolveCatalogPath(*configPath)
	zlog.Info().Msgf("Loading catalog from %s", catalogPath)
	cat, err := catalogfile.Load(catalogPath, catalogfile.Options{
		MediaDir: cfg.ResolveMediaDir(*configPath),
		ReadTags: cfg.Catalog.ReadTags,
	})
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}
	zlog.Info().Msgf("Catalog loaded: tracks=%d", cat.Len())

	backend, err := audio.NewBackendFromConfig(cfg)
	if err != nil {
		return err
	}

	sessionMgr, err := session.NewManager(cfg, cat, backend)
	if err != nil {
		return errors.Wrap(err, "failed to create session manager")
	}

	mux := http.NewServeMux()
	controlPath, controlHandler := apiconnect.NewControlServiceHandler(
		apiconnect.NewControlService(sessionMgr),
		connect.WithInterceptors(apiconnect.NewControlAuthInterceptor(cfg.Control.Token)),
	)
	mux.Handle(controlPath, controlHandler)
	if cfg.Control.Token == "" {
		zlog.Warn().Msg("Control token not set, control API is unauthenticated")
	}

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sessionMgr.Start(ctx); err != nil {
			zlog.Error().Msgf("Session stopped with error: %v", err)
		}
	}()

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-sessionMgr.Done():
		zlog.Info().Msg("Session ended, shutting down...")
	case err := <-serverErrCh:
		sessionMgr.Close()
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Close the session first so subscription streams return
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printFilters prints the registered filter kinds.
func printFilters() {
	registry := filter.GetRegistered()
	fmt.Println("Available Filters:")
	for _, kind := range filter.Kinds() {
		f := registry[kind]()
		fmt.Printf("  %-16s - %s\n", kind, f.Description())
	}
	fmt.Println()
	fmt.Println("Filter values: all, short, long, english, inst, tag:<name>, <preset>, or a comma-separated combination")
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
