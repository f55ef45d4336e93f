//go:build windows

package device

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"
)

// Windows implementation of passive input capture using low-level hooks.

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E

	wmQuit = 0x0012

	wheelDelta = 120
)

var (
	user32             = syscall.NewLazyDLL("user32.dll")
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	setWindowsHookEx   = user32.NewProc("SetWindowsHookExW")
	unhookWindowsHook  = user32.NewProc("UnhookWindowsHookEx")
	callNextHookEx     = user32.NewProc("CallNextHookEx")
	getMessage         = user32.NewProc("GetMessageW")
	postThreadMessage  = user32.NewProc("PostThreadMessageW")
	getCursorPos       = user32.NewProc("GetCursorPos")
	getCurrentThreadID = kernel32.NewProc("GetCurrentThreadId")
)

type point struct {
	X int32
	Y int32
}

type msg struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// HookListener captures global input through WH_KEYBOARD_LL/WH_MOUSE_LL
// hooks running on a dedicated OS thread.
type HookListener struct {
	mu       sync.Mutex
	running  bool
	threadID uint32
	keyCh    chan KeyEvent
	mouseCh  chan MouseEvent
	done     chan struct{}
	keyHook  uintptr
	mouse    uintptr
}

// NewListener creates a Windows input listener.
func NewListener() *HookListener {
	return &HookListener{}
}

// Start installs the hooks and begins delivering events.
func (l *HookListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return fmt.Errorf("listener already started")
	}

	l.keyCh = make(chan KeyEvent, 256)
	l.mouseCh = make(chan MouseEvent, 256)
	l.done = make(chan struct{})

	ready := make(chan error, 1)
	go l.messageLoop(ready)
	if err := <-ready; err != nil {
		return err
	}

	l.running = true
	return nil
}

// Stop removes the hooks and closes the event channels.
func (l *HookListener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return nil
	}
	l.running = false

	postThreadMessage.Call(uintptr(l.threadID), wmQuit, 0, 0)
	<-l.done

	close(l.keyCh)
	close(l.mouseCh)
	return nil
}

// KeyEvents returns the key event channel.
func (l *HookListener) KeyEvents() <-chan KeyEvent {
	return l.keyCh
}

// MouseEvents returns the mouse event channel.
func (l *HookListener) MouseEvents() <-chan MouseEvent {
	return l.mouseCh
}

// CursorPosition reports the current pointer position.
func (l *HookListener) CursorPosition() (int, int, error) {
	var pt point
	ret, _, _ := getCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos failed")
	}
	return int(pt.X), int(pt.Y), nil
}

// messageLoop installs the hooks and pumps messages until WM_QUIT. Hook
// callbacks fire on this thread, so it must stay locked to the OS thread.
func (l *HookListener) messageLoop(ready chan<- error) {
	// Hook callbacks must run on the thread that installed the hook.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)

	tid, _, _ := getCurrentThreadID.Call()
	l.threadID = uint32(tid)

	keyHook, _, _ := setWindowsHookEx.Call(
		whKeyboardLL,
		syscall.NewCallback(l.keyboardHookProc),
		0,
		0,
	)
	if keyHook == 0 {
		ready <- fmt.Errorf("SetWindowsHookEx for keyboard failed")
		return
	}
	l.keyHook = keyHook

	mouseHook, _, _ := setWindowsHookEx.Call(
		whMouseLL,
		syscall.NewCallback(l.mouseHookProc),
		0,
		0,
	)
	if mouseHook == 0 {
		unhookWindowsHook.Call(keyHook)
		ready <- fmt.Errorf("SetWindowsHookEx for mouse failed")
		return
	}
	l.mouse = mouseHook

	ready <- nil

	var m msg
	for {
		ret, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
	}

	unhookWindowsHook.Call(l.keyHook)
	unhookWindowsHook.Call(l.mouse)
}

// keyboardHookProc handles keyboard hook events.
func (l *HookListener) keyboardHookProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		hookStruct := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		pressed := wParam == wmKeyDown || wParam == wmSysKeyDown

		ev := KeyEvent{
			Key:     keyFromVK(uint16(hookStruct.VkCode)),
			Pressed: pressed,
			Time:    time.Now(),
		}

		select {
		case l.keyCh <- ev:
		default:
			// Channel full, drop the event rather than stall the hook.
		}
	}

	ret, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// mouseHookProc handles mouse hook events. Pointer movement is not captured
// here; position is polled by the sampler.
func (l *HookListener) mouseHookProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		hookStruct := (*msllHookStruct)(unsafe.Pointer(lParam))

		var ev MouseEvent
		deliver := true

		switch wParam {
		case wmLButtonDown:
			ev = MouseEvent{Type: MouseClick, Button: ButtonLeft, Pressed: true}
		case wmLButtonUp:
			ev = MouseEvent{Type: MouseClick, Button: ButtonLeft, Pressed: false}
		case wmRButtonDown:
			ev = MouseEvent{Type: MouseClick, Button: ButtonRight, Pressed: true}
		case wmRButtonUp:
			ev = MouseEvent{Type: MouseClick, Button: ButtonRight, Pressed: false}
		case wmMButtonDown:
			ev = MouseEvent{Type: MouseClick, Button: ButtonMiddle, Pressed: true}
		case wmMButtonUp:
			ev = MouseEvent{Type: MouseClick, Button: ButtonMiddle, Pressed: false}
		case wmMouseWheel:
			delta := int(int16(hookStruct.MouseData >> 16))
			ev = MouseEvent{Type: MouseScroll, ScrollY: delta / wheelDelta}
		case wmMouseHWheel:
			delta := int(int16(hookStruct.MouseData >> 16))
			ev = MouseEvent{Type: MouseScroll, ScrollX: delta / wheelDelta}
		default:
			deliver = false
		}

		if deliver {
			select {
			case l.mouseCh <- ev:
			default:
			}
		}
	}

	ret, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}
