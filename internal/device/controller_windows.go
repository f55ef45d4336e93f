//go:build windows

package device

import (
	"fmt"
	"unsafe"
)

// Windows implementation of input injection using SendInput.

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventfMove       = 0x0001
	mouseEventfLeftDown   = 0x0002
	mouseEventfLeftUp     = 0x0004
	mouseEventfRightDown  = 0x0008
	mouseEventfRightUp    = 0x0010
	mouseEventfMiddleDown = 0x0020
	mouseEventfMiddleUp   = 0x0040
	mouseEventfAbsolute   = 0x8000
	mouseEventfWheel      = 0x0800
	mouseEventfHWheel     = 0x1000

	keyEventfKeyUp = 0x0002

	smCxScreen = 0
	smCyScreen = 1

	absoluteRange = 65535
)

var (
	procSendInput        = user32.NewProc("SendInput")
	procGetSystemMetrics = user32.NewProc("GetSystemMetrics")
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
	// Padding so the union member matches MOUSEINPUT's size.
	_ [8]byte
}

type mouseInputUnion struct {
	Type uint32
	_    [4]byte // alignment padding before the union on amd64
	Mi   mouseInput
}

type keybdInputUnion struct {
	Type uint32
	_    [4]byte
	Ki   keybdInput
}

// SendController injects synthetic input through the SendInput API.
type SendController struct{}

// NewController creates a Windows input controller.
func NewController() *SendController {
	return &SendController{}
}

// ScreenSize reports the primary display dimensions.
func (c *SendController) ScreenSize() (int, int, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("GetSystemMetrics failed")
	}
	return int(w), int(h), nil
}

func sendMouse(mi mouseInput) error {
	input := mouseInputUnion{Type: inputMouse, Mi: mi}
	ret, _, _ := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&input)),
		unsafe.Sizeof(input),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed")
	}
	return nil
}

func sendKey(ki keybdInput) error {
	input := keybdInputUnion{Type: inputKeyboard, Ki: ki}
	ret, _, _ := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&input)),
		unsafe.Sizeof(input),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed")
	}
	return nil
}

// MoveMouse warps the pointer to the absolute screen position (x, y).
func (c *SendController) MoveMouse(x, y int) error {
	w, h, err := c.ScreenSize()
	if err != nil {
		return err
	}

	// SendInput absolute coordinates are normalized to a 0..65535 grid.
	return sendMouse(mouseInput{
		Dx:      int32(x * absoluteRange / (w - 1)),
		Dy:      int32(y * absoluteRange / (h - 1)),
		DwFlags: mouseEventfMove | mouseEventfAbsolute,
	})
}

// ToggleButton presses or releases a mouse button.
func (c *SendController) ToggleButton(b Button, pressed bool) error {
	var flags uint32
	switch b {
	case ButtonLeft:
		flags = mouseEventfLeftDown
		if !pressed {
			flags = mouseEventfLeftUp
		}
	case ButtonRight:
		flags = mouseEventfRightDown
		if !pressed {
			flags = mouseEventfRightUp
		}
	case ButtonMiddle:
		flags = mouseEventfMiddleDown
		if !pressed {
			flags = mouseEventfMiddleUp
		}
	default:
		return fmt.Errorf("unknown mouse button %q", b)
	}
	return sendMouse(mouseInput{DwFlags: flags})
}

// Scroll moves the wheel by dx horizontal and dy vertical clicks.
func (c *SendController) Scroll(dx, dy int) error {
	if dy != 0 {
		err := sendMouse(mouseInput{
			DwFlags:   mouseEventfWheel,
			MouseData: uint32(int32(dy * wheelDelta)),
		})
		if err != nil {
			return err
		}
	}
	if dx != 0 {
		err := sendMouse(mouseInput{
			DwFlags:   mouseEventfHWheel,
			MouseData: uint32(int32(dx * wheelDelta)),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ToggleKey presses or releases a keyboard key.
func (c *SendController) ToggleKey(k Key, pressed bool) error {
	vk, ok := vkFromKey(k)
	if !ok {
		return fmt.Errorf("unknown key %q", k)
	}

	var flags uint32
	if !pressed {
		flags = keyEventfKeyUp
	}
	return sendKey(keybdInput{WVk: vk, DwFlags: flags})
}
