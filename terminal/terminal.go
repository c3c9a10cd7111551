// Package terminal presents a session in a text terminal using half-block
// cells, two canvas rows per terminal row.
package terminal

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/ui"
)

// statusRows is the number of terminal rows reserved below the picture.
const statusRows = 1

// App drives a session from a tcell screen.
type App struct {
	screen  tcell.Screen
	session *game.Session
	signal  *game.FrameSignal
	handler *input.Handler
	palette *ui.Palette

	canvasW, canvasH int
	cols, rows       int
	frame            *image.RGBA
	frameInterval    time.Duration
}

// New creates an app over an initialized screen.
func New(screen tcell.Screen, cfg *config.Config, session *game.Session, signal *game.FrameSignal, handler *input.Handler) *App {
	fps := cfg.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	a := &App{
		screen:        screen,
		session:       session,
		signal:        signal,
		handler:       handler,
		palette:       ui.NewPalette(cfg.Derived.Swatches, cfg.Derived.DefaultIndex),
		canvasW:       cfg.Screen.Width,
		canvasH:       cfg.Screen.Height,
		frameInterval: time.Second / time.Duration(fps),
	}
	a.resize()
	return a
}

// Run presents frames until ctx is done, the user quits or maxTicks frames
// have been simulated (0 = unlimited).
func (a *App) Run(ctx context.Context, maxTicks int) error {
	a.screen.EnableMouse()
	a.screen.EnableFocus()
	a.screen.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := a.session.Loop()
	loop.Start()
	defer loop.Stop()

	ticker := time.NewTicker(a.frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go pumpEvents(ctx, a.screen.PollEvent, eventChan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			a.signal.Present()
			a.draw()
			if maxTicks > 0 && int(loop.Frame()) >= maxTicks {
				slog.Info("max ticks reached", "tick", loop.Frame())
				return nil
			}
		}
	}
}

// pumpEvents forwards polled events to out until poll returns nil or ctx is
// done.
func pumpEvents(ctx context.Context, poll func() tcell.Event, out chan<- tcell.Event) {
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// handleEvent applies one terminal event. Returns false to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			return a.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := CellToCanvas(col, row, a.cols, a.rows, a.canvasW, a.canvasH)
		a.handler.PointerMove(x, y)

		pressed := ev.Buttons()&tcell.Button1 != 0
		down := a.handler.Pointer().Down
		switch {
		case pressed && !down && row < a.rows:
			a.handler.PointerDown()
		case !pressed && down:
			a.handler.PointerUp()
		}

	case *tcell.EventFocus:
		if ev.Focused {
			a.handler.Focus()
		} else {
			a.handler.Blur()
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	}
	return true
}

// handleRune applies a key binding. Returns false to quit.
func (a *App) handleRune(r rune) bool {
	switch {
	case r == 'q':
		return false
	case r == 'c':
		a.session.Loop().Clear()
	case r == 'C':
		a.session.Loop().Particles().Reset()
		a.session.Loop().Clear()
	case r == 's':
		a.session.RequestExport()
	case r >= '1' && r <= '9':
		if a.palette.Toggle(int(r - '1')) {
			a.session.SetSwatch(a.palette.Current())
		}
	}
	return true
}

// resize recomputes the picture area from the screen size.
func (a *App) resize() {
	w, h := a.screen.Size()
	a.cols = max(w, 1)
	a.rows = max(h-statusRows, 1)
	a.frame = image.NewRGBA(image.Rect(0, 0, a.cols, a.rows*2))
}

// draw renders the canvas and the status line.
func (a *App) draw() {
	Downsample(a.frame, a.session.Loop().Canvas().Image())

	for row := 0; row < a.rows; row++ {
		for col := 0; col < a.cols; col++ {
			top, bottom := CellColors(a.frame, col, row)
			a.screen.SetContent(col, row, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}

	st := a.session.Status()
	line := fmt.Sprintf(" frame %d | particles %d | style %s | exports %d | drag draw, 1-%d style, c clear, C reset, s export, q quit",
		st.Frame, st.Particles, st.Style, st.Exports, len(a.palette.Swatches()))
	if !a.handler.HasFocus() {
		line = " click to focus |" + line
	}
	a.drawText(0, a.rows, line, tcell.StyleDefault.Foreground(tcell.ColorSilver))

	a.screen.Show()
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	col := x
	for _, r := range s {
		if col >= a.cols {
			break
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < a.cols; col++ {
		a.screen.SetContent(col, y, ' ', nil, style)
	}
}

// Downsample resamples src into dst, which holds two pixel rows per
// terminal row.
func Downsample(dst, src *image.RGBA) {
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
}

// CellColors returns the upper and lower half colors of a terminal cell.
func CellColors(frame *image.RGBA, col, row int) (top, bottom tcell.Color) {
	return pixelColor(frame, col, row*2), pixelColor(frame, col, row*2+1)
}

func pixelColor(img *image.RGBA, x, y int) tcell.Color {
	i := img.PixOffset(x, y)
	return tcell.NewRGBColor(int32(img.Pix[i]), int32(img.Pix[i+1]), int32(img.Pix[i+2]))
}

// CellToCanvas maps a terminal cell to the canvas coordinate at its centre.
func CellToCanvas(col, row, cols, rows, canvasW, canvasH int) (x, y float64) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	x = (float64(col) + 0.5) * float64(canvasW) / float64(cols)
	y = (float64(row) + 0.5) * float64(canvasH) / float64(rows)
	return x, y
}
