package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ayusman/tactipad/internal/app"
	"github.com/ayusman/tactipad/internal/capture"
	"github.com/ayusman/tactipad/internal/config"
	"github.com/ayusman/tactipad/internal/detector"
	"github.com/ayusman/tactipad/internal/inject"
	"github.com/ayusman/tactipad/internal/logging"
	"github.com/ayusman/tactipad/internal/sensor"
	"github.com/ayusman/tactipad/internal/server"
	"github.com/ayusman/tactipad/internal/store"
	"github.com/ayusman/tactipad/internal/tray"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tactipad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default "+config.DefaultPath+" if present)")
	logLevel := flag.String("log-level", "", "log level: error, warn, info, debug")
	sensorBackend := flag.String("sensor", "", "sensor backend: camera or mock")
	injectBackend := flag.String("inject", "", "inject backend: robotgo, plugin or log")
	serverAddr := flag.String("addr", "", "serve the live API on this address")
	trayOn := flag.Bool("tray", false, "show a system tray menu")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("tactipad", version)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Only flags given on the command line override the file.
	var overrides config.FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			overrides.LogLevel = logLevel
		case "sensor":
			overrides.SensorBackend = sensorBackend
		case "inject":
			overrides.InjectBackend = injectBackend
		case "addr":
			overrides.ServerAddr = serverAddr
		case "tray":
			overrides.Tray = trayOn
		}
	})
	overrides.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger := logging.Setup(level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	device := buildSensor(cfg, logger)

	injectOpts := cfg.InjectOptions()
	injectOpts.Logger = logger
	injector, err := inject.New(injectOpts)
	if err != nil {
		return fmt.Errorf("inject backend: %w", err)
	}

	mapping, err := cfg.ActionMapping()
	if err != nil {
		return err
	}

	var (
		st      *store.Store
		session *store.SessionRecorder
		// a nil *SessionRecorder must not become a non-nil app.Recorder
		recorder app.Recorder
		enabled  = true
	)
	if cfg.Store.Enabled {
		st, err = store.New(config.ExpandPath(cfg.Store.Path))
		if err != nil {
			return err
		}
		defer st.Close()

		raw, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		session, err = st.StartSession(&store.Session{
			Sensor:   cfg.Sensor.Backend,
			Injector: cfg.Inject.Backend,
			Config:   raw,
		}, cfg.Store.RecordSamples)
		if err != nil {
			return err
		}
		recorder = session
		logger.Info("recording session", "session_id", session.SessionID(), "db", st.Path())

		if enabled, err = st.Settings().Bool(store.SettingEnabled, true); err != nil {
			logger.Warn("ignoring stored enabled setting", "error", err)
			enabled = true
		}
	}

	opts := app.Options{
		Device:            device,
		Injector:          injector,
		Mapping:           mapping,
		Supervisor:        cfg.Supervisor(),
		Thresholds:        cfg.Thresholds(),
		DebounceThreshold: cfg.Pipeline.DebounceThreshold,
		Period:            cfg.SamplePeriod(),
		Recorder:          recorder,
		Logger:            logger,
	}
	if cfg.Pipeline.StatusLines {
		opts.StatusOutput = os.Stdout
	}
	a, err := app.New(opts)
	if err != nil {
		return err
	}
	a.SetEnabled(enabled)
	ctrl := &controller{App: a, store: st, logger: logger}

	if cfg.Server.Enabled {
		live := server.NewLiveHandler(logger)
		a.OnCycle(live.Publish)
		preview, _ := device.(sensor.Previewer)
		srv := server.New(server.Config{
			Store:   st,
			App:     ctrl,
			Live:    live,
			Preview: preview,
			Logger:  logger,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				logger.Error("api server failed", "error", err)
			}
		}()
	}

	runApp := func() error {
		err := a.Run(ctx)
		if session != nil {
			reason := "interrupted"
			if err != nil {
				reason = err.Error()
			}
			if endErr := session.End(reason); endErr != nil {
				logger.Warn("failed to close session", "error", endErr)
			}
		}
		return err
	}

	if !cfg.Tray.Enabled {
		return runApp()
	}

	t := tray.New(a.Enabled())
	t.OnToggle(ctrl.SetEnabled)
	t.OnQuit(stop)
	if cfg.Server.Enabled {
		url := "http://" + cfg.Server.Addr + "/api/status"
		t.OnOpen(func() {
			if err := openBrowser(url); err != nil {
				logger.Warn("failed to open browser", "error", err)
			}
		})
	}
	a.OnCycle(t.Update)

	errCh := make(chan error, 1)
	t.Run(func() {
		errCh <- runApp()
		t.Quit()
	})
	return <-errCh
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(config.ExpandPath(config.DefaultPath))
}

func buildSensor(cfg config.Config, logger *slog.Logger) sensor.Device {
	if cfg.Sensor.Backend == config.SensorMock {
		logger.Info("using scripted demo sensor")
		return sensor.DemoDevice()
	}
	return sensor.NewCameraDevice(sensor.CameraOptions{
		CameraIDs:         cfg.Sensor.CameraIDs,
		CalibrationFrames: cfg.Sensor.CalibrationFrames,
		TrackRadius:       cfg.Sensor.TrackRadius,
		Detector: detector.Config{
			MinArea:     cfg.Sensor.MinMarkerArea,
			MaxArea:     cfg.Sensor.MaxMarkerArea,
			DarkMarkers: true,
		},
		Capture: capture.DefaultOptions(),
		Logger:  logger,
	})
}

// controller persists the enabled flag across restarts.
type controller struct {
	*app.App
	store  *store.Store
	logger *slog.Logger
}

func (c *controller) SetEnabled(on bool) {
	c.App.SetEnabled(on)
	if c.store == nil {
		return
	}
	if err := c.store.Settings().SetBool(store.SettingEnabled, on); err != nil {
		c.logger.Warn("failed to persist enabled setting", "error", err)
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("don't know how to open a browser on " + runtime.GOOS)
	}
	return cmd.Start()
}
