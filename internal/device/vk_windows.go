//go:build windows

package device

// Virtual-key code mapping between Windows and the Key enum. Left/right
// variants of the modifier keys collapse onto the generic modifier.

const (
	vkBack     = 0x08
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkCapital  = 0x14
	vkEscape   = 0x1B
	vkSpace    = 0x20
	vkPrior    = 0x21
	vkNext     = 0x22
	vkEnd      = 0x23
	vkHome     = 0x24
	vkLeft     = 0x25
	vkUp       = 0x26
	vkRight    = 0x27
	vkDown     = 0x28
	vkDelete   = 0x2E
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkF1       = 0x70
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

var vkSpecial = map[uint16]Key{
	vkBack:     KeyBackspace,
	vkTab:      KeyTab,
	vkReturn:   KeyEnter,
	vkShift:    KeyShift,
	vkControl:  KeyCtrl,
	vkMenu:     KeyAlt,
	vkCapital:  KeyCapsLock,
	vkEscape:   KeyEsc,
	vkSpace:    KeySpace,
	vkPrior:    KeyPageUp,
	vkNext:     KeyPageDown,
	vkEnd:      KeyEnd,
	vkHome:     KeyHome,
	vkLeft:     KeyLeft,
	vkUp:       KeyUp,
	vkRight:    KeyRight,
	vkDown:     KeyDown,
	vkDelete:   KeyDelete,
	vkLWin:     KeyCmd,
	vkRWin:     KeyCmd,
	vkLShift:   KeyShift,
	vkRShift:   KeyShift,
	vkLControl: KeyCtrl,
	vkRControl: KeyCtrl,
	vkLMenu:    KeyAlt,
	vkRMenu:    KeyAlt,
}

// keyFromVK maps a Windows virtual-key code to a Key.
func keyFromVK(vk uint16) Key {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return KeyA + Key(vk-'A')
	case vk >= '0' && vk <= '9':
		return Key0 + Key(vk-'0')
	case vk >= vkF1 && vk < vkF1+12:
		return KeyF1 + Key(vk-vkF1)
	}
	if k, ok := vkSpecial[vk]; ok {
		return k
	}
	return KeyUnknown
}

// vkFromKey maps a Key to the virtual-key code used for injection.
func vkFromKey(k Key) (uint16, bool) {
	switch {
	case k >= KeyA && k <= KeyZ:
		return uint16('A' + (k - KeyA)), true
	case k >= Key0 && k <= Key9:
		return uint16('0' + (k - Key0)), true
	case k >= KeyF1 && k <= KeyF12:
		return uint16(vkF1 + (k - KeyF1)), true
	}
	switch k {
	case KeyCtrl:
		return vkControl, true
	case KeyAlt:
		return vkMenu, true
	case KeyShift:
		return vkShift, true
	case KeyCmd:
		return vkLWin, true
	case KeySpace:
		return vkSpace, true
	case KeyEnter:
		return vkReturn, true
	case KeyTab:
		return vkTab, true
	case KeyEsc:
		return vkEscape, true
	case KeyBackspace:
		return vkBack, true
	case KeyDelete:
		return vkDelete, true
	case KeyCapsLock:
		return vkCapital, true
	case KeyUp:
		return vkUp, true
	case KeyDown:
		return vkDown, true
	case KeyLeft:
		return vkLeft, true
	case KeyRight:
		return vkRight, true
	case KeyHome:
		return vkHome, true
	case KeyEnd:
		return vkEnd, true
	case KeyPageUp:
		return vkPrior, true
	case KeyPageDown:
		return vkNext, true
	}
	return 0, false
}
