package canvas

import (
	"fmt"
	"image/color"
)

// Blend is the composite operation used when new content is drawn over
// existing pixels.
type Blend uint8

const (
	// BlendSourceOver paints the source over the destination (normal alpha compositing).
	BlendSourceOver Blend = iota
	// BlendLighter adds the source to the destination, saturating at full intensity.
	BlendLighter
)

var blendNames = [...]string{
	BlendSourceOver: "source-over",
	BlendLighter:    "lighter",
}

// String returns the composite-operation name of the blend mode.
func (b Blend) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return fmt.Sprintf("blend(%d)", uint8(b))
}

// ParseBlend converts a composite-operation name into a Blend.
func ParseBlend(name string) (Blend, error) {
	for i, n := range blendNames {
		if n == name {
			return Blend(i), nil
		}
	}
	return BlendSourceOver, fmt.Errorf("unknown blend mode %q", name)
}

// compose writes one premultiplied source sample onto dst (4 bytes, RGBA)
// scaled by factor f in [0, 1].
//
// Additive output is truncated so repeated fractional draws never exceed
// the exact sum of their contributions.
func compose(dst []uint8, sr, sg, sb, sa, f float64, blend Blend) {
	switch blend {
	case BlendLighter:
		dst[0] = addSat(dst[0], sr*f)
		dst[1] = addSat(dst[1], sg*f)
		dst[2] = addSat(dst[2], sb*f)
		dst[3] = addSat(dst[3], sa*f)
	default:
		inv := 1 - sa*f/255
		dst[0] = round8(sr*f + float64(dst[0])*inv)
		dst[1] = round8(sg*f + float64(dst[1])*inv)
		dst[2] = round8(sb*f + float64(dst[2])*inv)
		dst[3] = round8(sa*f + float64(dst[3])*inv)
	}
}

func addSat(d uint8, v float64) uint8 {
	s := float64(d) + v
	if s >= 255 {
		return 255
	}
	if s <= 0 {
		return 0
	}
	return uint8(s)
}

func round8(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}

// Style is a fill color paired with the composite mode it is drawn with.
type Style struct {
	Color color.RGBA
	Blend Blend
}
