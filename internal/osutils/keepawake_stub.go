//go:build !windows

package osutils

// PreventSleep is a no-op stub for unsupported platforms
func PreventSleep() error {
	return nil
}

// AllowSleep is a no-op stub for unsupported platforms
func AllowSleep() error {
	return nil
}
