package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/systems"
)

// CanvasTexture mirrors a CPU canvas into a GPU texture.
type CanvasTexture struct {
	tex    rl.Texture2D
	w, h   int
	pixels []color.RGBA
}

// NewCanvasTexture allocates a w x h texture. Must be called after the
// window is created.
func NewCanvasTexture(w, h int) *CanvasTexture {
	img := rl.GenImageColor(w, h, rl.Black)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(tex, rl.FilterPoint)

	return &CanvasTexture{
		tex:    tex,
		w:      w,
		h:      h,
		pixels: make([]color.RGBA, w*h),
	}
}

// Upload copies img into the texture. Images of a different size are ignored.
func (c *CanvasTexture) Upload(img *image.RGBA) {
	if img.Rect.Dx() != c.w || img.Rect.Dy() != c.h {
		return
	}
	pix := img.Pix
	for i := range c.pixels {
		o := i * 4
		c.pixels[i] = color.RGBA{R: pix[o], G: pix[o+1], B: pix[o+2], A: pix[o+3]}
	}
	rl.UpdateTexture(c.tex, c.pixels)
}

// Draw blits the texture at (x, y) tinted by tint.
func (c *CanvasTexture) Draw(x, y int32, tint rl.Color) {
	rl.DrawTexture(c.tex, x, y, tint)
}

// Unload releases the GPU texture.
func (c *CanvasTexture) Unload() {
	rl.UnloadTexture(c.tex)
}

// FieldPreview shows one noise field channel as a grayscale layer.
type FieldPreview struct {
	tex     *CanvasTexture
	channel systems.Channel
	loaded  bool
}

// NewFieldPreview creates an empty preview. The texture is built on first use.
func NewFieldPreview() *FieldPreview {
	return &FieldPreview{}
}

// Draw renders channel ch of field, rebuilding the texture when the channel changes.
func (p *FieldPreview) Draw(x, y int32, field *systems.NoiseField, ch systems.Channel) {
	if p.tex == nil {
		p.tex = NewCanvasTexture(field.Width(), field.Height())
	}
	if !p.loaded || p.channel != ch {
		p.tex.Upload(channelImage(field, ch))
		p.channel = ch
		p.loaded = true
	}
	p.tex.Draw(x, y, rl.Color{R: 255, G: 255, B: 255, A: 160})
}

// Unload releases the preview texture.
func (p *FieldPreview) Unload() {
	if p.tex != nil {
		p.tex.Unload()
	}
}

// channelImage spreads one channel across RGB.
func channelImage(field *systems.NoiseField, ch systems.Channel) *image.RGBA {
	img := field.Image()
	off := int(ch & 3)
	for i := 0; i < len(img.Pix); i += 4 {
		v := img.Pix[i+off]
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}
