//go:build windows

package osutils

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

// PreventSleep keeps the system and display awake until AllowSleep is
// called. Long recordings and playbacks would otherwise be cut short by
// power management.
func PreventSleep() error {
	ret, _, _ := procSetThreadExecutionState.Call(
		esContinuous | esSystemRequired | esDisplayRequired,
	)
	if ret == 0 {
		return fmt.Errorf("SetThreadExecutionState failed")
	}
	return nil
}

// AllowSleep restores normal power management.
func AllowSleep() error {
	ret, _, _ := procSetThreadExecutionState.Call(esContinuous)
	if ret == 0 {
		return fmt.Errorf("SetThreadExecutionState failed")
	}
	return nil
}
