// Package input normalizes pointer, touch and key events into canvas-local
// state for the render loop.
package input

// PointerState is the pointer as seen by the simulation for one tick.
type PointerState struct {
	X, Y float64 // canvas-local, clamped to [0, width] x [0, height]
	Down bool
}

// Source supplies the pointer state once per tick.
type Source interface {
	Pointer() PointerState
}

// Handler tracks pointer, focus and key state for one canvas element.
// Presses are only honored while the handler has focus.
type Handler struct {
	offsetX, offsetY float64
	width, height    float64

	hasFocus bool
	pointer  PointerState
	keys     [keyCount]bool

	// OnClick is called with the pointer position when a press ends while focused.
	OnClick func(x, y float64)
}

// NewHandler creates a focused handler for a width x height element.
func NewHandler(width, height float64) *Handler {
	h := &Handler{width: width, height: height, hasFocus: true}
	h.reset()
	return h
}

// SetOffset sets the element's position within the page.
func (h *Handler) SetOffset(x, y float64) {
	h.offsetX, h.offsetY = x, y
}

// HasFocus reports whether presses are currently honored.
func (h *Handler) HasFocus() bool { return h.hasFocus }

// Blur drops focus and resets pointer and key state.
func (h *Handler) Blur() {
	h.hasFocus = false
	h.reset()
}

// Focus regains focus. State is reset only on the transition.
func (h *Handler) Focus() {
	if !h.hasFocus {
		h.hasFocus = true
		h.reset()
	}
}

// ClickAt handles a page-level click: inside the element focuses it,
// anywhere else blurs it.
func (h *Handler) ClickAt(inside bool) {
	if inside {
		h.Focus()
	} else {
		h.Blur()
	}
}

// PointerDown starts a press and reports whether it was honored.
func (h *Handler) PointerDown() bool {
	if h.hasFocus {
		h.pointer.Down = true
	}
	return h.hasFocus
}

// PointerUp ends a press, firing OnClick while focused.
func (h *Handler) PointerUp() {
	h.pointer.Down = false
	if h.hasFocus && h.OnClick != nil {
		h.OnClick(h.pointer.X, h.pointer.Y)
	}
}

// PointerMove records a page-space position as clamped element coordinates.
func (h *Handler) PointerMove(pageX, pageY float64) {
	h.pointer.X = clamp(pageX-h.offsetX, 0, h.width)
	h.pointer.Y = clamp(pageY-h.offsetY, 0, h.height)
}

// Pointer returns the current pointer state.
func (h *Handler) Pointer() PointerState { return h.pointer }

// SetKey records a key press or release. Ignored while unfocused.
func (h *Handler) SetKey(k Key, down bool) {
	if k >= keyCount || (down && !h.hasFocus) {
		return
	}
	h.keys[k] = down
}

// KeyDown reports whether k is held.
func (h *Handler) KeyDown(k Key) bool {
	return k < keyCount && h.keys[k]
}

func (h *Handler) reset() {
	h.keys = [keyCount]bool{}
	h.pointer = PointerState{}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
