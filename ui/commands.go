package ui

import "github.com/pthm-cable/drift/input"

// Command is a canvas action bound to a key.
type Command int

const (
	CommandNone Command = iota
	CommandClear
	CommandReset // clear and drop every live particle
	CommandExport
)

// KeyState reports held keys.
type KeyState interface {
	KeyDown(k input.Key) bool
}

// ResolveCommand maps a key pressed this frame to a command. Shift turns
// clear into reset.
func ResolveCommand(k input.Key, held KeyState) Command {
	switch k {
	case input.KeyC:
		if held.KeyDown(input.KeyShift) {
			return CommandReset
		}
		return CommandClear
	case input.KeyS:
		return CommandExport
	}
	return CommandNone
}

// CenterOffset returns the top-left position that centres a canvas on the
// screen, pinned to the origin when the screen is smaller.
func CenterOffset(screenW, screenH, canvasW, canvasH int) (x, y int) {
	return max((screenW-canvasW)/2, 0), max((screenH-canvasH)/2, 0)
}
