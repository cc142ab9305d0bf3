package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, root string, m Manifest) string {
	t.Helper()

	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return dir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, Manifest{
		Name:        "keyboard",
		Version:     "1.0.0",
		Description: "Holds keys",
		Executable:  "keyboard",
		Actions:     []string{ActionKeyDown, ActionKeyUp},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "keyboard" {
		t.Errorf("name = %q, want 'keyboard'", plugin.Manifest.Name)
	}
	if plugin.Path != pluginDir {
		t.Errorf("path = %q, want %q", plugin.Path, pluginDir)
	}
	if plugin.Executable != filepath.Join(pluginDir, "keyboard") {
		t.Errorf("executable = %q", plugin.Executable)
	}
	if !plugin.Manifest.Supports(ActionKeyUp) || plugin.Manifest.Supports(ActionMouseDown) {
		t.Errorf("Supports() mismatch for actions %v", plugin.Manifest.Actions)
	}
}

func TestManager_Discover_MultiplePlugins(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"plugin-a", "plugin-b"} {
		writeManifest(t, tmpDir, Manifest{Name: name, Version: "1.0.0", Executable: name})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := len(manager.List()); got != 2 {
		t.Fatalf("expected 2 plugins, got %d", got)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	badDir := filepath.Join(tmpDir, "bad-plugin")
	if err := os.MkdirAll(badDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "plugin.json"), []byte("not valid json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	writeManifest(t, tmpDir, Manifest{Name: "no-exec", Version: "1.0.0"})
	if err := os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := len(manager.List()); got != 0 {
		t.Fatalf("expected 0 plugins, got %d", got)
	}

	skipped := manager.Skipped()
	if len(skipped) != 2 || skipped["bad-plugin"] == nil || skipped["no-exec"] == nil {
		t.Errorf("Skipped() = %v, want bad-plugin and no-exec", skipped)
	}
}

func TestManager_Find(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, Manifest{Name: "b-keys", Executable: "b", Actions: []string{ActionKeyDown, ActionKeyUp}})
	writeManifest(t, tmpDir, Manifest{Name: "c-full", Executable: "c", Actions: []string{ActionKeyDown, ActionKeyUp, ActionMouseDown, ActionMouseUp}})
	writeManifest(t, tmpDir, Manifest{Name: "a-full", Executable: "/usr/bin/a", Actions: []string{ActionKeyDown, ActionKeyUp, ActionMouseDown, ActionMouseUp}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	names := []string{}
	for _, p := range manager.List() {
		names = append(names, p.Manifest.Name)
	}
	if strings.Join(names, ",") != "a-full,b-keys,c-full" {
		t.Errorf("List() order = %v", names)
	}

	tests := []struct {
		name    string
		actions []string
		want    string
	}{
		{"keys only", []string{ActionKeyDown}, "a-full"},
		{"all input", []string{ActionKeyDown, ActionKeyUp, ActionMouseDown, ActionMouseUp}, "a-full"},
		{"unknown action", []string{"volume_up"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := manager.Find(tt.actions...)
			if tt.want == "" {
				if !errors.Is(err, ErrPluginNotFound) {
					t.Errorf("Find() error = %v, want ErrPluginNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if p.Manifest.Name != tt.want {
				t.Errorf("Find() = %s, want %s", p.Manifest.Name, tt.want)
			}
		})
	}

	p, _ := manager.Get("a-full")
	if p.Executable != "/usr/bin/a" {
		t.Errorf("absolute executable rewritten to %q", p.Executable)
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if got := len(manager.List()); got != 0 {
		t.Fatalf("expected 0 plugins, got %d", got)
	}
}

func TestManager_Get(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, Manifest{Name: "my-plugin", Version: "2.0.0", Executable: "bin"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("version = %q, want '2.0.0'", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	if got := NewManager("/path/to/plugins").PluginDir(); got != "/path/to/plugins" {
		t.Errorf("PluginDir() = %q", got)
	}
}
