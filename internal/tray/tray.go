// Package tray provides a system tray menu for a running tactipad.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/tactipad/internal/app"
	"github.com/ayusman/tactipad/internal/gesture"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuDirection *systray.MenuItem
	menuHeld      *systray.MenuItem
	lastDirection string
	lastHeld      string
}

// New creates a new Tray instance reflecting the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled:       enabled,
		lastDirection: directionTitle(gesture.Uninitialized),
		lastHeld:      heldTitle(app.Status{}),
	}
}

// OnToggle sets the callback function to be called when injection is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback for the "Open status page" item. Without it the
// item is not shown.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit. start, if set, runs in its own goroutine
// once the menu exists, so it may call Quit.
func (t *Tray) Run(start func()) {
	systray.Run(func() {
		t.onReady()
		if start != nil {
			go start()
		}
	}, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("tactipad")
	systray.SetTooltip("tactipad tactile controller")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle key injection")
	systray.AddSeparator()

	t.menuDirection = systray.AddMenuItem(t.lastDirection, "Last classified direction")
	t.menuDirection.Disable()
	t.menuHeld = systray.AddMenuItem(t.lastHeld, "Key or button being held")
	t.menuHeld.Disable()
	systray.AddSeparator()

	var openCh <-chan struct{}
	if t.onOpen != nil {
		openCh = systray.AddMenuItem("Open status page...", "Open the live API in a browser").ClickedCh
		systray.AddSeparator()
	}
	menuQuit := systray.AddMenuItem("Quit", "Release all input and quit")
	toggleCh := t.menuToggle.ClickedCh
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-toggleCh:
				t.handleToggle()
			case <-openCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Update shows the cycle's direction and held input. It is an app observer
// and only touches the menu when a title changes.
func (t *Tray) Update(st app.Status) {
	direction := directionTitle(st.Classified)
	held := heldTitle(st)

	t.mu.Lock()
	defer t.mu.Unlock()

	if st.Enabled != t.enabled {
		t.enabled = st.Enabled
		if t.menuToggle != nil {
			t.menuToggle.SetTitle(toggleTitle(t.enabled))
		}
	}
	if direction != t.lastDirection {
		t.lastDirection = direction
		if t.menuDirection != nil {
			t.menuDirection.SetTitle(direction)
		}
	}
	if held != t.lastHeld {
		t.lastHeld = held
		if t.menuHeld != nil {
			t.menuHeld.SetTitle(held)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func directionTitle(l gesture.Label) string {
	if l == gesture.Uninitialized {
		return "Direction: -"
	}
	return "Direction: " + l.String()
}

func heldTitle(st app.Status) string {
	switch {
	case st.Held.HeldKey != "":
		return "Holding: " + st.Held.HeldKey
	case st.Held.HeldButton != "":
		return "Holding: mouse " + st.Held.HeldButton
	}
	return "Holding: nothing"
}
