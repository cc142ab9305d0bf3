// Package config loads the YAML configuration for tactipad.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/gesture"
	"github.com/ayusman/tactipad/internal/inject"
	"github.com/ayusman/tactipad/internal/logging"
)

// Sensor backends.
const (
	SensorCamera = "camera"
	SensorMock   = "mock"
)

// DefaultPath is where the config file is looked for when -config is not given.
const DefaultPath = "~/.tactipad/config.yaml"

// Config is the top-level YAML configuration. Every field has a default, so
// an empty or missing file yields a runnable configuration.
type Config struct {
	Sensor     SensorConfig     `yaml:"sensor"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Mapping    MappingConfig    `yaml:"mapping"`
	Inject     InjectConfig     `yaml:"inject"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
	Tray       TrayConfig       `yaml:"tray"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type SensorConfig struct {
	Backend           string  `yaml:"backend"`
	CameraIDs         []int   `yaml:"camera_ids"`
	CalibrationFrames int     `yaml:"calibration_frames"`
	TrackRadius       float64 `yaml:"track_radius"`
	MinMarkerArea     float64 `yaml:"min_marker_area"`
	MaxMarkerArea     float64 `yaml:"max_marker_area"`
}

type PipelineConfig struct {
	SampleHz          float64 `yaml:"sample_hz"`
	DebounceThreshold float64 `yaml:"debounce_threshold"`
	StatusLines       bool    `yaml:"status_lines"`
}

type ClassifierConfig struct {
	HorizontalThreshold float64   `yaml:"horizontal_threshold"`
	VerticalThreshold   float64   `yaml:"vertical_threshold"`
	PressThresholds     []float64 `yaml:"press_thresholds"`
}

// TimeoutsConfig is in milliseconds; 0 disables a timeout.
type TimeoutsConfig struct {
	MaxHoldMS int `yaml:"max_hold_ms"`
	IdleMS    int `yaml:"idle_ms"`
}

// MappingConfig binds label names to keys or mouse buttons. File entries
// are merged over the defaults; set a label to "" to unbind it.
type MappingConfig struct {
	Keys    map[string]string `yaml:"keys"`
	Buttons map[string]string `yaml:"buttons"`
}

type InjectConfig struct {
	Backend    string `yaml:"backend"`
	DelayMS    int    `yaml:"delay_ms"`
	PluginDir  string `yaml:"plugin_dir"`
	PluginName string `yaml:"plugin_name"`
	TimeoutMS  int    `yaml:"timeout_ms"`
}

type StoreConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RecordSamples bool   `yaml:"record_samples"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a fully populated Config.
func Default() Config {
	press := gesture.DefaultPressThresholds
	m := action.DefaultMapping()

	keys := make(map[string]string)
	for l := gesture.Label(0); l < gesture.NumLabels; l++ {
		if m.Keys[l] != "" {
			keys[l.String()] = m.Keys[l]
		}
	}

	return Config{
		Sensor: SensorConfig{
			Backend:           SensorCamera,
			CameraIDs:         []int{0, 1, 2},
			CalibrationFrames: 10,
			TrackRadius:       25,
			MinMarkerArea:     10,
			MaxMarkerArea:     2000,
		},
		Pipeline: PipelineConfig{
			SampleHz:          1,
			DebounceThreshold: gesture.DefaultDebounceThreshold,
			StatusLines:       true,
		},
		Classifier: ClassifierConfig{
			HorizontalThreshold: gesture.DefaultHorizontalThreshold,
			VerticalThreshold:   gesture.DefaultVerticalThreshold,
			PressThresholds:     press[:],
		},
		Timeouts: TimeoutsConfig{
			MaxHoldMS: int(action.DefaultMaxHold / time.Millisecond),
			IdleMS:    int(action.DefaultIdleTimeout / time.Millisecond),
		},
		Mapping: MappingConfig{
			Keys:    keys,
			Buttons: map[string]string{},
		},
		Inject: InjectConfig{
			Backend:    inject.BackendRobot,
			DelayMS:    50,
			PluginDir:  "~/.tactipad/plugins",
			PluginName: "keyboard",
			TimeoutMS:  2000,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "~/.tactipad/tactipad.db",
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8765",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown fields and trailing
// documents are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes over the defaults.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(b)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// LoadOrDefault loads path if it exists and returns the defaults otherwise.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(ExpandPath(path)); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the configuration after defaults, file and flags have
// been applied.
func (c *Config) Validate() error {
	switch c.Sensor.Backend {
	case SensorCamera:
		if len(c.Sensor.CameraIDs) == 0 {
			return errors.New("sensor.camera_ids must not be empty")
		}
	case SensorMock:
	default:
		return fmt.Errorf("sensor.backend must be %q or %q", SensorCamera, SensorMock)
	}
	if c.Sensor.CalibrationFrames <= 0 {
		return errors.New("sensor.calibration_frames must be > 0")
	}
	if c.Sensor.TrackRadius <= 0 {
		return errors.New("sensor.track_radius must be > 0")
	}
	if c.Sensor.MinMarkerArea < 0 || c.Sensor.MaxMarkerArea <= c.Sensor.MinMarkerArea {
		return errors.New("sensor.max_marker_area must be > sensor.min_marker_area >= 0")
	}

	if c.Pipeline.SampleHz <= 0 || c.Pipeline.SampleHz > 1000 {
		return errors.New("pipeline.sample_hz must be in (0, 1000]")
	}
	if c.Pipeline.DebounceThreshold < 0 {
		return errors.New("pipeline.debounce_threshold must be >= 0")
	}

	if len(c.Classifier.PressThresholds) != 3 {
		return errors.New("classifier.press_thresholds must have exactly 3 values")
	}
	if err := c.Thresholds().Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	if c.Timeouts.MaxHoldMS < 0 || c.Timeouts.IdleMS < 0 {
		return errors.New("timeouts must be >= 0")
	}

	m, err := c.ActionMapping()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("mapping: %w", err)
	}

	switch c.Inject.Backend {
	case inject.BackendRobot, inject.BackendLog:
	case inject.BackendPlugin:
		if c.Inject.PluginDir == "" {
			return errors.New("inject.plugin_dir is required for the plugin backend")
		}
	default:
		return fmt.Errorf("inject.backend must be %q, %q or %q", inject.BackendRobot, inject.BackendPlugin, inject.BackendLog)
	}
	if c.Inject.DelayMS < 0 || c.Inject.TimeoutMS < 0 {
		return errors.New("inject.delay_ms and inject.timeout_ms must be >= 0")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path must not be empty when the store is enabled")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.addr must not be empty when the server is enabled")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// Thresholds converts the classifier section.
func (c *Config) Thresholds() gesture.Thresholds {
	th := gesture.Thresholds{
		Horizontal: c.Classifier.HorizontalThreshold,
		Vertical:   c.Classifier.VerticalThreshold,
	}
	copy(th.Press[:], c.Classifier.PressThresholds)
	return th
}

// Supervisor converts the timeouts section.
func (c *Config) Supervisor() action.Supervisor {
	return action.Supervisor{
		MaxHold: time.Duration(c.Timeouts.MaxHoldMS) * time.Millisecond,
		Idle:    time.Duration(c.Timeouts.IdleMS) * time.Millisecond,
	}
}

// SamplePeriod is the producer and consumer cycle length.
func (c *Config) SamplePeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.Pipeline.SampleHz)
}

// ActionMapping converts the mapping section into label-indexed tables.
func (c *Config) ActionMapping() (action.Mapping, error) {
	var m action.Mapping
	for name, key := range c.Mapping.Keys {
		l, err := gesture.ParseLabel(name)
		if err != nil {
			return m, fmt.Errorf("mapping.keys: %w", err)
		}
		m.Keys[l] = key
	}
	for name, button := range c.Mapping.Buttons {
		l, err := gesture.ParseLabel(name)
		if err != nil {
			return m, fmt.Errorf("mapping.buttons: %w", err)
		}
		m.Buttons[l] = button
	}
	return m, nil
}

// InjectOptions converts the inject section.
func (c *Config) InjectOptions() inject.Options {
	return inject.Options{
		Backend:    c.Inject.Backend,
		Delay:      time.Duration(c.Inject.DelayMS) * time.Millisecond,
		PluginDir:  ExpandPath(c.Inject.PluginDir),
		PluginName: c.Inject.PluginName,
		Timeout:    time.Duration(c.Inject.TimeoutMS) * time.Millisecond,
	}
}

// FlagOverrides holds command-line overrides. Nil pointers are ignored.
type FlagOverrides struct {
	LogLevel      *string
	SensorBackend *string
	InjectBackend *string
	ServerAddr    *string
	Tray          *bool
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.SensorBackend != nil {
		cfg.Sensor.Backend = *o.SensorBackend
	}
	if o.InjectBackend != nil {
		cfg.Inject.Backend = *o.InjectBackend
	}
	if o.ServerAddr != nil {
		cfg.Server.Enabled = *o.ServerAddr != ""
		cfg.Server.Addr = *o.ServerAddr
	}
	if o.Tray != nil {
		cfg.Tray.Enabled = *o.Tray
	}
}

// ExpandPath expands a leading "~" using $HOME.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
