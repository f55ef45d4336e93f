// Package device provides the input-device capability boundary: typed key
// and button identifiers, passive capture of global input events, and
// injection of synthetic input.
package device

import (
	"errors"
	"time"
)

// ErrNotSupported is returned by platform stubs when capture or injection is
// unavailable on the current platform.
var ErrNotSupported = errors.New("input device access not supported on this platform")

// KeyEvent represents a key press or release observed by a Listener.
type KeyEvent struct {
	Key     Key
	Pressed bool
	Time    time.Time
}

// MouseEventType identifies the kind of mouse transition a Listener observed.
type MouseEventType int

const (
	// MouseClick is a button press or release.
	MouseClick MouseEventType = iota

	// MouseScroll is a wheel movement on either axis.
	MouseScroll
)

// MouseEvent represents a mouse button or scroll transition observed by a
// Listener. Button and Pressed are meaningful for MouseClick; ScrollX and
// ScrollY for MouseScroll.
type MouseEvent struct {
	Type    MouseEventType
	Button  Button
	Pressed bool
	ScrollX int
	ScrollY int
}

// Listener captures global keyboard and mouse activity without consuming it.
type Listener interface {
	// Start begins delivering events on the channels below.
	Start() error

	// Stop tears down the capture hooks and closes the event channels.
	Stop() error

	// KeyEvents returns the channel of observed key transitions.
	KeyEvents() <-chan KeyEvent

	// MouseEvents returns the channel of observed mouse transitions.
	MouseEvents() <-chan MouseEvent

	// CursorPosition reports the current pointer position in screen
	// coordinates.
	CursorPosition() (x, y int, err error)
}

// Controller injects synthetic input and answers screen geometry queries.
type Controller interface {
	// ScreenSize reports the primary display dimensions in pixels.
	ScreenSize() (width, height int, err error)

	// MoveMouse warps the pointer to the absolute screen position (x, y).
	MoveMouse(x, y int) error

	// ToggleButton presses or releases a mouse button.
	ToggleButton(b Button, pressed bool) error

	// Scroll moves the wheel by dx horizontal and dy vertical clicks.
	Scroll(dx, dy int) error

	// ToggleKey presses or releases a keyboard key.
	ToggleKey(k Key, pressed bool) error
}
