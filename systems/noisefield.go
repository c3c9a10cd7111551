package systems

import (
	"fmt"
	"image"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	xdraw "golang.org/x/image/draw"
)

// Channel selects one byte of a noise field pixel.
type Channel uint8

const (
	ChannelX     Channel = iota // horizontal bias
	ChannelY                    // vertical bias
	ChannelSpare                // generated, unused by the simulation
	ChannelAlpha                // always opaque
)

// maxSample is the largest byte a generated layer may hold. Keeping it below
// 254 keeps every normalized sample strictly under 1.0.
const maxSample = 253

// EdgePolicy decides how coordinates outside the field are resolved.
type EdgePolicy uint8

const (
	EdgeClamp EdgePolicy = iota // pin to the nearest edge pixel
	EdgeWrap                    // wrap around toroidally
)

func (p EdgePolicy) String() string {
	if p == EdgeWrap {
		return "wrap"
	}
	return "clamp"
}

// ParseEdgePolicy converts a config name ("clamp", "wrap") into an EdgePolicy.
func ParseEdgePolicy(name string) (EdgePolicy, error) {
	switch name {
	case "clamp", "":
		return EdgeClamp, nil
	case "wrap":
		return EdgeWrap, nil
	}
	return EdgeClamp, fmt.Errorf("unknown edge policy %q", name)
}

// NoiseField is an immutable RGBA grid of directional bias samples.
type NoiseField struct {
	width, height int
	pix           []uint8
	edge          EdgePolicy
}

// GenerateNoiseField composites octaves layers of uniform random pixels.
// Layer i is generated at (width>>i, height>>i), upscaled with bilinear
// smoothing and added with weight 1/octaves. The sum is kept in float64 and
// rounded once, so the field mean stays centred on maxSample/2.
func GenerateNoiseField(width, height, octaves int, rng *rand.Rand) *NoiseField {
	if octaves < 1 {
		panic(fmt.Sprintf("systems: octave count must be positive, got %d", octaves))
	}
	weight := 1 / float64(octaves)
	acc := make([]float64, width*height*3)
	full := image.NewRGBA(image.Rect(0, 0, width, height))

	for i := 0; i < octaves; i++ {
		layer := randomLayer(max(width>>i, 1), max(height>>i, 1), rng)
		src := layer
		if layer.Rect != full.Rect {
			xdraw.BiLinear.Scale(full, full.Rect, layer, layer.Rect, xdraw.Src, nil)
			src = full
		}
		for p, j := 0, 0; p < len(src.Pix); p += 4 {
			acc[j] += float64(src.Pix[p]) * weight
			acc[j+1] += float64(src.Pix[p+1]) * weight
			acc[j+2] += float64(src.Pix[p+2]) * weight
			j += 3
		}
	}

	pix := make([]uint8, width*height*4)
	for p, j := 0, 0; p < len(pix); p += 4 {
		pix[p] = freezeSample(acc[j])
		pix[p+1] = freezeSample(acc[j+1])
		pix[p+2] = freezeSample(acc[j+2])
		pix[p+3] = 255
		j += 3
	}

	return &NoiseField{
		width:  width,
		height: height,
		pix:    pix,
	}
}

func freezeSample(v float64) uint8 {
	return uint8(min(math.Round(v), maxSample))
}

func randomLayer(w, h int, rng *rand.Rand) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.Intn(maxSample + 1))
		img.Pix[i+1] = uint8(rng.Intn(maxSample + 1))
		img.Pix[i+2] = uint8(rng.Intn(maxSample + 1))
		img.Pix[i+3] = 255
	}
	return img
}

// GenerateSimplexField fills a field with fractal OpenSimplex noise.
// scale is the base frequency in cycles per pixel.
func GenerateSimplexField(width, height, octaves int, scale float64, rng *rand.Rand) *NoiseField {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("systems: invalid field size %dx%d", width, height))
	}
	if octaves < 1 {
		panic(fmt.Sprintf("systems: octave count must be positive, got %d", octaves))
	}
	noise := opensimplex.New(rng.Int63())
	pix := make([]uint8, width*height*4)

	// Channels read disjoint regions of the noise plane.
	offsets := [3]float64{0, 1013.7, 2251.3}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			for ch, off := range offsets {
				v := fbm(noise, float64(x)*scale+off, float64(y)*scale+off, octaves)
				pix[i+ch] = uint8(math.Round((v + 1) / 2 * maxSample))
			}
			pix[i+3] = 255
		}
	}

	return &NoiseField{width: width, height: height, pix: pix}
}

// fbm sums octaves of noise with halving amplitude, normalized to [-1, 1].
func fbm(n opensimplex.Noise, x, y float64, octaves int) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += n.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	v := sum / norm
	return math.Max(-1, math.Min(1, v))
}

// WithEdge returns a view of the field using the given edge policy.
// The pixel data is shared.
func (f *NoiseField) WithEdge(p EdgePolicy) *NoiseField {
	cp := *f
	cp.edge = p
	return &cp
}

// Width returns the field width.
func (f *NoiseField) Width() int { return f.width }

// Height returns the field height.
func (f *NoiseField) Height() int { return f.height }

// Edge returns the active edge policy.
func (f *NoiseField) Edge() EdgePolicy { return f.edge }

// Sample returns the channel value at the truncated coordinates, normalized
// via value/127 - 1. The result lies in [-1, 1).
func (f *NoiseField) Sample(x, y float64, ch Channel) float64 {
	ix := f.resolve(x, f.width)
	iy := f.resolve(y, f.height)
	v := f.pix[(iy*f.width+ix)*4+int(ch&3)]
	return float64(v)/127 - 1
}

// SampleX is Sample on the horizontal bias channel.
func (f *NoiseField) SampleX(x, y float64) float64 { return f.Sample(x, y, ChannelX) }

// SampleY is Sample on the vertical bias channel.
func (f *NoiseField) SampleY(x, y float64) float64 { return f.Sample(x, y, ChannelY) }

// resolve truncates v toward zero and maps it into [0, n).
func (f *NoiseField) resolve(v float64, n int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	t := math.Trunc(v)
	if f.edge == EdgeWrap {
		m := math.Mod(t, float64(n))
		if m < 0 {
			m += float64(n)
		}
		return int(m)
	}
	if t < 0 {
		return 0
	}
	if t >= float64(n) {
		return n - 1
	}
	return int(t)
}

// Image returns a copy of the field as an RGBA image.
func (f *NoiseField) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	copy(img.Pix, f.pix)
	return img
}

// Histogram counts occurrences of each byte value on a channel.
func (f *NoiseField) Histogram(ch Channel) [256]int {
	var h [256]int
	for i := int(ch & 3); i < len(f.pix); i += 4 {
		h[f.pix[i]]++
	}
	return h
}
