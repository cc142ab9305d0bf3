package inject

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayusman/tactipad/internal/plugin"
)

// PluginInjector forwards every action to an external plugin executable.
type PluginInjector struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
	logger   *slog.Logger
}

// InputActions are the plugin actions an injector plugin must support.
var InputActions = []string{plugin.ActionKeyDown, plugin.ActionKeyUp, plugin.ActionMouseDown, plugin.ActionMouseUp}

// NewPluginInjector discovers plugins in dir and binds to the one called
// name, or to the first one supporting every input action when name is
// empty.
func NewPluginInjector(dir, name string, timeout time.Duration, logger *slog.Logger) (*PluginInjector, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mgr := plugin.NewManager(dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("discover plugins in %s: %w", dir, err)
	}
	for d, err := range mgr.Skipped() {
		logger.Warn("skipping plugin", "dir", d, "error", err)
	}

	var (
		p   *plugin.Plugin
		err error
	)
	if name == "" {
		p, err = mgr.Find(InputActions...)
	} else {
		p, err = mgr.Get(name)
	}
	if err != nil {
		return nil, err
	}
	if !p.Manifest.SupportsAll(InputActions...) {
		return nil, fmt.Errorf("plugin %s does not support %v", p.Manifest.Name, InputActions)
	}

	logger.Info("using injector plugin", "name", p.Manifest.Name, "version", p.Manifest.Version)
	return &PluginInjector{
		plugin:   p,
		executor: plugin.NewExecutor(timeout),
		logger:   logger,
	}, nil
}

func (i *PluginInjector) run(action string, params plugin.Params) error {
	_, err := i.executor.Execute(context.Background(), i.plugin, &plugin.Request{
		Action: action,
		Params: params,
	})
	return err
}

func (i *PluginInjector) KeyDown(key string) error {
	return i.run(plugin.ActionKeyDown, plugin.Params{Key: key})
}

func (i *PluginInjector) KeyUp(key string) error {
	return i.run(plugin.ActionKeyUp, plugin.Params{Key: key})
}

func (i *PluginInjector) MouseDown(button string) error {
	return i.run(plugin.ActionMouseDown, plugin.Params{Button: button})
}

func (i *PluginInjector) MouseUp(button string) error {
	return i.run(plugin.ActionMouseUp, plugin.Params{Button: button})
}
