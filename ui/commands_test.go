package ui

import (
	"testing"

	"github.com/pthm-cable/drift/input"
)

func TestResolveCommand(t *testing.T) {
	h := input.NewHandler(10, 10)

	tests := []struct {
		key   input.Key
		shift bool
		want  Command
	}{
		{input.KeyC, false, CommandClear},
		{input.KeyC, true, CommandReset},
		{input.KeyS, false, CommandExport},
		{input.KeyS, true, CommandExport},
		{input.KeyQ, false, CommandNone},
	}
	for _, tt := range tests {
		h.SetKey(input.KeyShift, tt.shift)
		if got := ResolveCommand(tt.key, h); got != tt.want {
			t.Errorf("ResolveCommand(%v, shift=%v) = %d, want %d", tt.key, tt.shift, got, tt.want)
		}
	}

	h.SetKey(input.KeyShift, true)
	h.Blur()
	if got := ResolveCommand(input.KeyC, h); got != CommandClear {
		t.Errorf("shift held across blur resolved to %d, want clear", got)
	}
}

func TestCenterOffset(t *testing.T) {
	tests := []struct {
		sw, sh, cw, ch int
		wantX, wantY   int
	}{
		{800, 600, 800, 600, 0, 0},
		{1000, 700, 800, 600, 100, 50},
		{801, 600, 800, 600, 0, 0},
		{640, 480, 800, 600, 0, 0},
	}
	for _, tt := range tests {
		x, y := CenterOffset(tt.sw, tt.sh, tt.cw, tt.ch)
		if x != tt.wantX || y != tt.wantY {
			t.Errorf("CenterOffset(%d,%d,%d,%d) = (%d,%d), want (%d,%d)",
				tt.sw, tt.sh, tt.cw, tt.ch, x, y, tt.wantX, tt.wantY)
		}
	}
}
