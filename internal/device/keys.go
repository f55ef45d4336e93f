package device

// Key identifies a keyboard key. The set is closed; identifiers that do not
// map to a known key decode to KeyUnknown at the capture/parse boundary and
// are rejected when an attempt is made to replay them.
type Key int

// Known keys.
const (
	KeyUnknown Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyCtrl
	KeyAlt
	KeyShift
	KeyCmd

	KeySpace
	KeyEnter
	KeyTab
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyCapsLock

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeyUnknown:   "unknown",
	KeyA:         "a",
	KeyB:         "b",
	KeyC:         "c",
	KeyD:         "d",
	KeyE:         "e",
	KeyF:         "f",
	KeyG:         "g",
	KeyH:         "h",
	KeyI:         "i",
	KeyJ:         "j",
	KeyK:         "k",
	KeyL:         "l",
	KeyM:         "m",
	KeyN:         "n",
	KeyO:         "o",
	KeyP:         "p",
	KeyQ:         "q",
	KeyR:         "r",
	KeyS:         "s",
	KeyT:         "t",
	KeyU:         "u",
	KeyV:         "v",
	KeyW:         "w",
	KeyX:         "x",
	KeyY:         "y",
	KeyZ:         "z",
	Key0:         "0",
	Key1:         "1",
	Key2:         "2",
	Key3:         "3",
	Key4:         "4",
	Key5:         "5",
	Key6:         "6",
	Key7:         "7",
	Key8:         "8",
	Key9:         "9",
	KeyCtrl:      "ctrl",
	KeyAlt:       "alt",
	KeyShift:     "shift",
	KeyCmd:       "cmd",
	KeySpace:     "space",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyEsc:       "esc",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyCapsLock:  "caps_lock",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "page_up",
	KeyPageDown:  "page_down",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		m[name] = k
	}
	return m
}()

// String returns the key's serialized identifier.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Modifier reports whether k is one of the four canonical modifier keys.
func (k Key) Modifier() bool {
	switch k {
	case KeyCtrl, KeyAlt, KeyShift, KeyCmd:
		return true
	}
	return false
}

// ParseKey maps a serialized identifier to a Key. Unrecognized identifiers
// map to KeyUnknown rather than failing; replaying KeyUnknown is an error.
func ParseKey(name string) Key {
	if k, ok := keysByName[name]; ok {
		return k
	}
	return KeyUnknown
}

// Button identifies a mouse button.
type Button int

// Known buttons.
const (
	ButtonUnknown Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

var buttonNames = map[Button]string{
	ButtonUnknown: "unknown",
	ButtonLeft:    "left",
	ButtonRight:   "right",
	ButtonMiddle:  "middle",
}

// String returns the button's serialized identifier.
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return "unknown"
}

// ParseButton maps a serialized identifier to a Button. Unrecognized
// identifiers map to ButtonUnknown; replaying ButtonUnknown is an error.
func ParseButton(name string) Button {
	switch name {
	case "left":
		return ButtonLeft
	case "right":
		return ButtonRight
	case "middle":
		return ButtonMiddle
	}
	return ButtonUnknown
}
