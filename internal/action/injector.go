package action

// Injector presses and releases keys and mouse buttons at the OS level.
// Releasing something that is not held must be a no-op.
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	MouseDown(button string) error
	MouseUp(button string) error
}
