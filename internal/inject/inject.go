// Package inject provides the OS-level key and mouse-button backends used by
// the action state machine.
package inject

import (
	"fmt"
	"log/slog"
	"time"
)

// Backend names accepted by New.
const (
	BackendRobot  = "robotgo"
	BackendPlugin = "plugin"
	BackendLog    = "log"
)

// Injector matches action.Injector.
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	MouseDown(button string) error
	MouseUp(button string) error
}

// Paced waits a fixed delay after every action, giving the OS time to
// observe each transition.
type Paced struct {
	next  Injector
	delay time.Duration
	sleep func(time.Duration)
}

// NewPaced wraps next. A non-positive delay disables pacing.
func NewPaced(next Injector, delay time.Duration) *Paced {
	return &Paced{next: next, delay: delay, sleep: time.Sleep}
}

func (p *Paced) pace(err error) error {
	if p.delay > 0 {
		p.sleep(p.delay)
	}
	return err
}

func (p *Paced) KeyDown(key string) error      { return p.pace(p.next.KeyDown(key)) }
func (p *Paced) KeyUp(key string) error        { return p.pace(p.next.KeyUp(key)) }
func (p *Paced) MouseDown(button string) error { return p.pace(p.next.MouseDown(button)) }
func (p *Paced) MouseUp(button string) error   { return p.pace(p.next.MouseUp(button)) }

// Log only records actions. It is the dry-run backend.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging-only injector.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) KeyDown(key string) error {
	l.logger.Info("key down", "key", key)
	return nil
}

func (l *Log) KeyUp(key string) error {
	l.logger.Info("key up", "key", key)
	return nil
}

func (l *Log) MouseDown(button string) error {
	l.logger.Info("mouse down", "button", button)
	return nil
}

func (l *Log) MouseUp(button string) error {
	l.logger.Info("mouse up", "button", button)
	return nil
}

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Delay      time.Duration
	PluginDir  string
	PluginName string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// New builds the configured backend wrapped in Paced.
func New(opts Options) (Injector, error) {
	var (
		inj Injector
		err error
	)

	switch opts.Backend {
	case BackendRobot, "":
		inj = NewRobot()
	case BackendPlugin:
		inj, err = NewPluginInjector(opts.PluginDir, opts.PluginName, opts.Timeout, opts.Logger)
		if err != nil {
			return nil, err
		}
	case BackendLog:
		inj = NewLog(opts.Logger)
	default:
		return nil, fmt.Errorf("unknown inject backend %q", opts.Backend)
	}

	return NewPaced(inj, opts.Delay), nil
}
