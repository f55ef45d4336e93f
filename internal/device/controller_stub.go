//go:build !windows

package device

// Stub implementation for platforms without input injection support.

// SendController is a stub input controller.
type SendController struct{}

// NewController creates a stub controller.
func NewController() *SendController {
	return &SendController{}
}

// ScreenSize reports the display dimensions (stub).
func (c *SendController) ScreenSize() (int, int, error) {
	return 0, 0, ErrNotSupported
}

// MoveMouse moves the pointer (stub).
func (c *SendController) MoveMouse(x, y int) error {
	return ErrNotSupported
}

// ToggleButton presses or releases a button (stub).
func (c *SendController) ToggleButton(b Button, pressed bool) error {
	return ErrNotSupported
}

// Scroll moves the wheel (stub).
func (c *SendController) Scroll(dx, dy int) error {
	return ErrNotSupported
}

// ToggleKey presses or releases a key (stub).
func (c *SendController) ToggleKey(k Key, pressed bool) error {
	return ErrNotSupported
}
