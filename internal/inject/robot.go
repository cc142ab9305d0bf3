package inject

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Robot injects input through robotgo.
type Robot struct{}

// NewRobot creates a robotgo-backed injector.
func NewRobot() *Robot {
	return &Robot{}
}

func (r *Robot) KeyDown(key string) error {
	if err := robotgo.KeyToggle(key, "down"); err != nil {
		return fmt.Errorf("robotgo key down %q: %w", key, err)
	}
	return nil
}

func (r *Robot) KeyUp(key string) error {
	if err := robotgo.KeyToggle(key, "up"); err != nil {
		return fmt.Errorf("robotgo key up %q: %w", key, err)
	}
	return nil
}

func (r *Robot) MouseDown(button string) error {
	if err := robotgo.Toggle(robotButton(button)); err != nil {
		return fmt.Errorf("robotgo mouse down %q: %w", button, err)
	}
	return nil
}

func (r *Robot) MouseUp(button string) error {
	if err := robotgo.Toggle(robotButton(button), "up"); err != nil {
		return fmt.Errorf("robotgo mouse up %q: %w", button, err)
	}
	return nil
}

// robotgo calls the middle button "center".
func robotButton(button string) string {
	if button == "middle" {
		return "center"
	}
	return button
}
