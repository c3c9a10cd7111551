package ui

import "github.com/pthm-cable/drift/config"

// Selector is a single-select list: selecting an item deselects its
// siblings, selecting the active item deselects it.
type Selector struct {
	n      int
	active int // -1 when nothing is selected
}

// NewSelector creates a selector over n items with nothing selected.
func NewSelector(n int) *Selector {
	return &Selector{n: n, active: -1}
}

// Len returns the number of items.
func (s *Selector) Len() int { return s.n }

// Toggle applies a click on item i and reports whether the selection changed.
// Out-of-range indices are ignored.
func (s *Selector) Toggle(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	if s.active == i {
		s.active = -1
	} else {
		s.active = i
	}
	return true
}

// Active returns the selected index, if any.
func (s *Selector) Active() (int, bool) {
	return s.active, s.active >= 0
}

// IsActive reports whether item i is selected.
func (s *Selector) IsActive(i int) bool {
	return s.active >= 0 && s.active == i
}

// Clear deselects everything.
func (s *Selector) Clear() { s.active = -1 }

// Palette binds a Selector to the configured swatches.
type Palette struct {
	swatches []config.Swatch
	fallback int
	sel      *Selector
}

// NewPalette creates a palette with nothing selected; Current falls back to
// swatches[fallback].
func NewPalette(swatches []config.Swatch, fallback int) *Palette {
	if fallback < 0 || fallback >= len(swatches) {
		fallback = 0
	}
	return &Palette{
		swatches: swatches,
		fallback: fallback,
		sel:      NewSelector(len(swatches)),
	}
}

// Swatches returns the selectable entries.
func (p *Palette) Swatches() []config.Swatch { return p.swatches }

// Selector exposes the selection state.
func (p *Palette) Selector() *Selector { return p.sel }

// Toggle clicks swatch i.
func (p *Palette) Toggle(i int) bool { return p.sel.Toggle(i) }

// Current returns the selected swatch, or the fallback when nothing is selected.
func (p *Palette) Current() config.Swatch {
	if i, ok := p.sel.Active(); ok {
		return p.swatches[i]
	}
	return p.swatches[p.fallback]
}
