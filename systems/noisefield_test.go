package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func channelValues(f *NoiseField, ch Channel) []float64 {
	h := f.Histogram(ch)
	vals := make([]float64, 0, f.Width()*f.Height())
	for v, n := range h {
		for i := 0; i < n; i++ {
			vals = append(vals, float64(v))
		}
	}
	return vals
}

func TestSampleRangeForGeneratedFields(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		octaves       int
	}{
		{"single octave", 64, 64, 1},
		{"three octaves", 50, 30, 3},
		{"eight octaves odd size", 37, 23, 8},
		{"more octaves than bits", 8, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := GenerateNoiseField(tt.width, tt.height, tt.octaves, rand.New(rand.NewSource(7)))
			for y := 0; y < tt.height; y++ {
				for x := 0; x < tt.width; x++ {
					for _, ch := range []Channel{ChannelX, ChannelY, ChannelSpare} {
						v := f.Sample(float64(x)+0.5, float64(y)+0.5, ch)
						if v < -1 || v >= 1 {
							t.Fatalf("sample at (%d,%d) ch %d = %v, outside [-1, 1)", x, y, ch, v)
						}
					}
				}
			}
		})
	}
}

func TestSingleOctaveIsUniform(t *testing.T) {
	f := GenerateNoiseField(64, 64, 1, rand.New(rand.NewSource(42)))

	for _, ch := range []Channel{ChannelX, ChannelY, ChannelSpare} {
		h := f.Histogram(ch)

		// Eight bins over [0, 253]; the last bin is two values narrower.
		obs := make([]float64, 8)
		exp := make([]float64, 8)
		for v := 0; v <= maxSample; v++ {
			b := v / 32
			obs[b] += float64(h[v])
			exp[b]++
		}
		total := float64(64 * 64)
		for i := range exp {
			exp[i] = exp[i] / float64(maxSample+1) * total
		}

		chi := stat.ChiSquare(obs, exp)
		p := 1 - distuv.ChiSquared{K: float64(len(obs) - 1)}.CDF(chi)
		if p < 1e-4 {
			t.Errorf("channel %d: chi-square %.2f (p=%.6f), not uniform", ch, chi, p)
		}

		mean := stat.Mean(channelValues(f, ch), nil)
		if math.Abs(mean-float64(maxSample)/2) > 5 {
			t.Errorf("channel %d: mean %.2f, expected near %.1f", ch, mean, float64(maxSample)/2)
		}
	}
}

func TestOctavesSmoothTheField(t *testing.T) {
	single := GenerateNoiseField(64, 64, 1, rand.New(rand.NewSource(1)))
	layered := GenerateNoiseField(64, 64, 8, rand.New(rand.NewSource(1)))

	vs := stat.Variance(channelValues(single, ChannelX), nil)
	vl := stat.Variance(channelValues(layered, ChannelX), nil)
	if vl >= vs {
		t.Errorf("expected layered variance (%.1f) below single-octave variance (%.1f)", vl, vs)
	}
}

// A biased mean turns into a steady drift in one direction, so the layered
// field must stay centred just like a single layer.
func TestLayeredFieldMeanIsCentred(t *testing.T) {
	const size, octaves = 512, 4

	var means []float64
	for seed := int64(1); seed <= 3; seed++ {
		f := GenerateNoiseField(size, size, octaves, rand.New(rand.NewSource(seed)))
		for _, ch := range []Channel{ChannelX, ChannelY, ChannelSpare} {
			means = append(means, stat.Mean(channelValues(f, ch), nil))
		}
	}

	mean := stat.Mean(means, nil)
	if want := float64(maxSample) / 2; math.Abs(mean-want) > 0.5 {
		t.Errorf("layered mean byte = %.3f, want %.1f ± 0.5", mean, want)
	}
}

func TestAlphaChannelOpaque(t *testing.T) {
	f := GenerateNoiseField(16, 16, 4, rand.New(rand.NewSource(3)))
	h := f.Histogram(ChannelAlpha)
	if h[255] != 16*16 {
		t.Errorf("expected every alpha byte to be 255, got %d of %d", h[255], 16*16)
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	a := GenerateNoiseField(20, 20, 4, rand.New(rand.NewSource(99)))
	b := GenerateNoiseField(20, 20, 4, rand.New(rand.NewSource(99)))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if a.SampleX(float64(x), float64(y)) != b.SampleX(float64(x), float64(y)) {
				t.Fatalf("fields differ at (%d,%d)", x, y)
			}
		}
	}
}

func TestGeneratePanicsOnZeroOctaves(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero octaves")
		}
	}()
	GenerateNoiseField(8, 8, 0, rand.New(rand.NewSource(1)))
}

func TestSampleTruncatesCoordinates(t *testing.T) {
	f := GenerateNoiseField(10, 10, 2, rand.New(rand.NewSource(5)))
	if f.Sample(2.9, 3.99, ChannelX) != f.Sample(2, 3, ChannelX) {
		t.Error("fractional coordinates must truncate to the containing pixel")
	}
	if f.SampleY(4.5, 1.2) != f.Sample(4, 1, ChannelY) {
		t.Error("SampleY must read channel 1")
	}
}

func TestSampleClampEdges(t *testing.T) {
	f := GenerateNoiseField(10, 8, 2, rand.New(rand.NewSource(11)))

	tests := []struct {
		name         string
		x, y         float64
		wantX, wantY float64
	}{
		{"left", -5, 3, 0, 3},
		{"right", 25, 3, 9, 3},
		{"top", 4, -0.5, 4, 0},
		{"bottom", 4, 8, 4, 7},
		{"nan", math.NaN(), 2, 0, 2},
		{"inf", math.Inf(1), 2, 0, 2},
	}
	for _, tt := range tests {
		got := f.SampleX(tt.x, tt.y)
		want := f.SampleX(tt.wantX, tt.wantY)
		if got != want {
			t.Errorf("%s: Sample(%v,%v) = %v, want %v", tt.name, tt.x, tt.y, got, want)
		}
	}
}

func TestSampleWrapEdges(t *testing.T) {
	f := GenerateNoiseField(10, 8, 2, rand.New(rand.NewSource(11))).WithEdge(EdgeWrap)
	if f.Edge() != EdgeWrap {
		t.Fatal("expected wrap policy")
	}
	if f.SampleX(-1, 0) != f.SampleX(9, 0) {
		t.Error("x=-1 should wrap to the last column")
	}
	if f.SampleY(3, 17) != f.SampleY(3, 1) {
		t.Error("y=17 should wrap to row 1")
	}
}

func TestParseEdgePolicy(t *testing.T) {
	if p, err := ParseEdgePolicy("wrap"); err != nil || p != EdgeWrap {
		t.Errorf("wrap: got %v, %v", p, err)
	}
	if p, err := ParseEdgePolicy("clamp"); err != nil || p != EdgeClamp {
		t.Errorf("clamp: got %v, %v", p, err)
	}
	if _, err := ParseEdgePolicy("mirror"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestSimplexFieldRange(t *testing.T) {
	f := GenerateSimplexField(32, 24, 4, 0.05, rand.New(rand.NewSource(8)))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			v := f.SampleX(float64(x), float64(y))
			if v < -1 || v >= 1 {
				t.Fatalf("simplex sample %v outside [-1, 1)", v)
			}
		}
	}
	if f.Histogram(ChannelAlpha)[255] != 32*24 {
		t.Error("simplex field alpha must be opaque")
	}
}

func TestSimplexFieldIsCoherent(t *testing.T) {
	f := GenerateSimplexField(64, 64, 1, 0.02, rand.New(rand.NewSource(8)))

	// Neighbouring pixels differ far less than independent noise would.
	var diff float64
	for y := 0; y < 64; y++ {
		for x := 0; x < 63; x++ {
			diff += math.Abs(f.SampleX(float64(x), float64(y)) - f.SampleX(float64(x+1), float64(y)))
		}
	}
	mean := diff / (64 * 63)
	if mean > 0.1 {
		t.Errorf("expected smooth field, mean neighbour difference %.3f", mean)
	}
}

func TestFieldImageIsCopy(t *testing.T) {
	f := GenerateNoiseField(4, 4, 1, rand.New(rand.NewSource(2)))
	before := f.SampleX(0, 0)
	img := f.Image()
	img.Pix[0] = 0
	if f.SampleX(0, 0) != before {
		t.Error("mutating Image() must not affect the field")
	}
}
