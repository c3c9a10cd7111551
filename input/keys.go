package input

// Key is one entry of the fixed set of tracked keys.
type Key uint8

const (
	KeyA Key = iota
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
	KeySpace
	KeyEnter
	KeyTab
	KeyBackspace
	KeyShift
	KeyCtrl
	KeyAlt
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
	KeyLeft
	KeyUp
	KeyRight
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyEscape
	KeyPause

	keyCount
)

var namedKeys = [...]string{
	KeySpace:      "SPACE",
	KeyEnter:      "ENTER",
	KeyTab:        "TAB",
	KeyBackspace:  "BACKSPACE",
	KeyShift:      "SHIFT",
	KeyCtrl:       "CTRL",
	KeyAlt:        "ALT",
	KeyCapsLock:   "CAPS_LOCK",
	KeyNumLock:    "NUM_LOCK",
	KeyScrollLock: "SCROLL_LOCK",
	KeyLeft:       "LEFT",
	KeyUp:         "UP",
	KeyRight:      "RIGHT",
	KeyDown:       "DOWN",
	KeyPageUp:     "PAGE_UP",
	KeyPageDown:   "PAGE_DOWN",
	KeyHome:       "HOME",
	KeyEnd:        "END",
	KeyInsert:     "INSERT",
	KeyDelete:     "DELETE",
	KeyEscape:     "ESCAPE",
	KeyPause:      "PAUSE",
}

// String returns the key name ("A".."Z" or e.g. "PAGE_UP").
func (k Key) String() string {
	if k <= KeyZ {
		return string(rune('A' + k))
	}
	if k < keyCount {
		return namedKeys[k]
	}
	return "UNKNOWN"
}

// LetterKey maps an ASCII letter (either case) to its key.
func LetterKey(r rune) (Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A'), true
	}
	return 0, false
}

// ParseKey looks a key up by its String name.
func ParseKey(name string) (Key, bool) {
	if len(name) == 1 {
		return LetterKey(rune(name[0]))
	}
	for k := KeySpace; k < keyCount; k++ {
		if namedKeys[k] == name {
			return k, true
		}
	}
	return 0, false
}
