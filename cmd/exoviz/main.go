package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/api"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/auth"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/lightcurve"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/session"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/stream"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/tui"
)

var (
	scenePath string
	addr      string
	speed     float64
	trails    bool
	samples   int
	days      float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "exoviz",
		Short: "exoplanet transit visualizer",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().StringVar(&scenePath, "scene", "", "scene fixture path (yaml/json); demo scene when empty")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server (web frontend, SSE stream, API)",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides EXOVIZ_HTTP_ADDR)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "view the simulation live in the terminal",
		RunE:  runWatch,
	}
	watchCmd.Flags().Float64Var(&speed, "speed", 1.0, "initial playback speed")
	watchCmd.Flags().BoolVar(&trails, "trails", true, "record motion trails")

	validateCmd := &cobra.Command{
		Use:   "validate [scene.yaml]",
		Short: "validate a scene fixture",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}

	lightcurveCmd := &cobra.Command{
		Use:   "lightcurve",
		Short: "synthesize a light curve and chart it",
		RunE:  runLightcurve,
	}
	lightcurveCmd.Flags().IntVar(&samples, "samples", 2000, "sample count")
	lightcurveCmd.Flags().Float64Var(&days, "days", 0, "window length in days (0 = full scene range)")

	rootCmd.AddCommand(serveCmd, watchCmd, validateCmd, lightcurveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("EXOVIZ_LOG_LEVEL"); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			level = l
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func loadScene(logger *slog.Logger) (*scene.Scene, string, error) {
	if scenePath == "" {
		return scene.Demo(), "demo", nil
	}
	sc, err := scene.Load(scenePath)
	if err != nil {
		return nil, "", fmt.Errorf("load scene %s: %w", scenePath, err)
	}
	if logger != nil {
		logger.Info("scene loaded", "path", scenePath, "star", sc.Star.Name, "planets", len(sc.Planets))
	}
	return sc, scenePath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	if addr == "" {
		addr = os.Getenv("EXOVIZ_HTTP_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		return err
	}
	streamCfg := loadStreamConfig(logger)

	sc, source, err := loadScene(logger)
	if err != nil {
		return err
	}
	store := scene.NewStore(sc, source)
	metrics.SetSceneBodies(len(sc.Planets))

	srv := api.NewServer(addr, store, streamCfg, logger, authCfg)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "scene_source", source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Terminal UI owns stdout; keep logs quiet unless something breaks.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	sc, _, err := loadScene(nil)
	if err != nil {
		return err
	}

	cfg := session.DefaultConfig()
	cfg.Trails = trails
	cfg.Clock.InitialSpeed = speed
	sess := session.New(sc, cfg, logger)
	defer sess.Close()

	p := tea.NewProgram(tui.NewModel(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal viewer: %w", err)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	sc, err := scene.Load(args[0])
	if err != nil {
		return err
	}
	start, end := sc.TimeRange()
	fmt.Printf("ok: %s with %d planets, range %s .. %s\n",
		sc.Star.Name, len(sc.Planets),
		time.Unix(int64(start), 0).UTC().Format("2006-01-02"),
		time.Unix(int64(end), 0).UTC().Format("2006-01-02"))
	return nil
}

func runLightcurve(cmd *cobra.Command, args []string) error {
	sc, _, err := loadScene(nil)
	if err != nil {
		return err
	}

	start, end := sc.TimeRange()
	if days > 0 {
		end = start + days*86400
	}
	series := lightcurve.Synthesize(context.Background(), sc, start, end, samples, 0)
	stats := lightcurve.Summarize(series)

	fmt.Println(asciigraph.Plot(series.Flux,
		asciigraph.Height(12),
		asciigraph.Width(100),
		asciigraph.Caption(fmt.Sprintf("%s relative flux", sc.Star.Name)),
	))
	fmt.Printf("\nsamples=%d transits=%d mean=%.6f stddev=%.6f min=%.6f max_depth=%.6f\n",
		len(series.Flux), stats.Transits, stats.MeanFlux, stats.StdDevFlux, stats.MinFlux, stats.MaxDepth)
	return nil
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("EXOVIZ_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("EXOVIZ_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("EXOVIZ_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("EXOVIZ_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  30 * time.Second,
		FrameInterval:      33 * time.Millisecond,
	}

	if v := os.Getenv("EXOVIZ_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid EXOVIZ_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", 10)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("EXOVIZ_STREAM_KEEPALIVE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid EXOVIZ_STREAM_KEEPALIVE_INTERVAL value, using default", "value", v, "default", 30)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("EXOVIZ_STREAM_FRAME_INTERVAL_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > 1000 {
			logger.Warn("invalid EXOVIZ_STREAM_FRAME_INTERVAL_MS value, using default", "value", v, "default", 33)
		} else {
			cfg.FrameInterval = time.Duration(n) * time.Millisecond
		}
	}

	if v := os.Getenv("EXOVIZ_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid EXOVIZ_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = b
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
		"frame_interval_ms", cfg.FrameInterval.Milliseconds(),
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}
