//go:build !windows

package device

// Stub implementation for platforms without input capture support.

// HookListener is a stub input listener.
type HookListener struct{}

// NewListener creates a stub listener.
func NewListener() *HookListener {
	return &HookListener{}
}

// Start begins capturing input (stub).
func (l *HookListener) Start() error {
	return ErrNotSupported
}

// Stop stops capturing input (stub).
func (l *HookListener) Stop() error {
	return nil
}

// KeyEvents returns the key event channel (stub).
func (l *HookListener) KeyEvents() <-chan KeyEvent {
	return nil
}

// MouseEvents returns the mouse event channel (stub).
func (l *HookListener) MouseEvents() <-chan MouseEvent {
	return nil
}

// CursorPosition reports the pointer position (stub).
func (l *HookListener) CursorPosition() (int, int, error) {
	return 0, 0, ErrNotSupported
}
