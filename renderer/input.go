package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/input"
)

// keyBinding pairs a tracked key with its raylib key code.
type keyBinding struct {
	key  input.Key
	code int32
}

// rlKeys lists every tracked key in input.Key order, so a frame's pressed
// keys are always reported in the same order.
var rlKeys = func() []keyBinding {
	named := []keyBinding{
		{input.KeySpace, rl.KeySpace},
		{input.KeyEnter, rl.KeyEnter},
		{input.KeyTab, rl.KeyTab},
		{input.KeyBackspace, rl.KeyBackspace},
		{input.KeyShift, rl.KeyLeftShift},
		{input.KeyCtrl, rl.KeyLeftControl},
		{input.KeyAlt, rl.KeyLeftAlt},
		{input.KeyCapsLock, rl.KeyCapsLock},
		{input.KeyNumLock, rl.KeyNumLock},
		{input.KeyScrollLock, rl.KeyScrollLock},
		{input.KeyLeft, rl.KeyLeft},
		{input.KeyUp, rl.KeyUp},
		{input.KeyRight, rl.KeyRight},
		{input.KeyDown, rl.KeyDown},
		{input.KeyPageUp, rl.KeyPageUp},
		{input.KeyPageDown, rl.KeyPageDown},
		{input.KeyHome, rl.KeyHome},
		{input.KeyEnd, rl.KeyEnd},
		{input.KeyInsert, rl.KeyInsert},
		{input.KeyDelete, rl.KeyDelete},
		{input.KeyEscape, rl.KeyEscape},
		{input.KeyPause, rl.KeyPause},
	}
	keys := make([]keyBinding, 0, int(input.KeyZ-input.KeyA)+1+len(named))
	for k := input.KeyA; k <= input.KeyZ; k++ {
		keys = append(keys, keyBinding{k, rl.KeyA + int32(k-input.KeyA)})
	}
	return append(keys, named...)
}()

// Poller feeds raylib window, mouse, touch and key events into a Handler.
type Poller struct {
	handler *input.Handler
	focused bool
	pressed []input.Key
}

// NewPoller creates a poller for h.
func NewPoller(h *input.Handler) *Poller {
	return &Poller{handler: h, focused: true}
}

// Poll reads this frame's events. blocked reports whether the pointer is over
// UI chrome, where presses must not start a spawn. Returns the keys pressed
// this frame.
func (p *Poller) Poll(blocked func(x, y float32) bool) []input.Key {
	h := p.handler

	focused := rl.IsWindowFocused()
	if focused != p.focused {
		if focused {
			h.Focus()
		} else {
			h.Blur()
		}
		p.focused = focused
	}

	pos := rl.GetMousePosition()
	if rl.GetTouchPointCount() > 0 {
		pos = rl.GetTouchPosition(0)
	}
	h.PointerMove(float64(pos.X), float64(pos.Y))

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !blocked(pos.X, pos.Y) {
		if !h.HasFocus() {
			h.ClickAt(true)
		}
		h.PointerDown()
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) && h.Pointer().Down {
		h.PointerUp()
	}

	p.pressed = p.pressed[:0]
	for _, b := range rlKeys {
		if rl.IsKeyPressed(b.code) {
			h.SetKey(b.key, true)
			p.pressed = append(p.pressed, b.key)
		} else if rl.IsKeyReleased(b.code) {
			h.SetKey(b.key, false)
		}
	}
	return p.pressed
}
