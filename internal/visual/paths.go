package visual

import (
	"math"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

// Path is a closed parametric petal outline in the flower's local frame.
// The frame is centered at the flower origin with the petal pointing up
// (negative Y); placement transforms rotate it into position.
type Path struct {
	StartX, StartY float64
	Segments       []Segment
}

// Segment is a cubic bezier segment continuing from the previous point.
type Segment struct {
	C1X, C1Y float64
	C2X, C2Y float64
	X, Y     float64
}

// Each style owns exactly one petal outline. Unknown styles never reach
// this table; validation rejects them at the analysis boundary.
var petalPaths = map[mood.Style]Path{
	// Sharp, angular blade.
	mood.StyleSpiky: {
		StartX: 0, StartY: 0,
		Segments: []Segment{
			{C1X: 6, C1Y: -18, C2X: 4, C2Y: -44, X: 0, Y: -60},
			{C1X: -4, C1Y: -44, C2X: -6, C2Y: -18, X: 0, Y: 0},
		},
	},
	// Heavy, downward-curving teardrop.
	mood.StyleDrooping: {
		StartX: 0, StartY: 0,
		Segments: []Segment{
			{C1X: 16, C1Y: -8, C2X: 22, C2Y: 18, X: 10, Y: 38},
			{C1X: 2, C1Y: 26, C2X: -6, C2Y: 8, X: 0, Y: 0},
		},
	},
	// Thin and short.
	mood.StyleTrembling: {
		StartX: 0, StartY: 0,
		Segments: []Segment{
			{C1X: 4, C1Y: -12, C2X: 4, C2Y: -28, X: 0, Y: -36},
			{C1X: -4, C1Y: -28, C2X: -4, C2Y: -12, X: 0, Y: 0},
		},
	},
	// Balanced, symmetric oval.
	mood.StyleCalm: {
		StartX: 0, StartY: 0,
		Segments: []Segment{
			{C1X: 14, C1Y: -16, C2X: 12, C2Y: -40, X: 0, Y: -52},
			{C1X: -12, C1Y: -40, C2X: -14, C2Y: -16, X: 0, Y: 0},
		},
	},
	// Wide, open and rounded.
	mood.StyleParticle: {
		StartX: 0, StartY: 0,
		Segments: []Segment{
			{C1X: 22, C1Y: -12, C2X: 18, C2Y: -42, X: 0, Y: -50},
			{C1X: -18, C1Y: -42, C2X: -22, C2Y: -12, X: 0, Y: 0},
		},
	},
}

// PetalPath returns the outline owned by the style.
func PetalPath(style mood.Style) Path {
	return petalPaths[style]
}

// PetalCount maps intensity to petal count: clamp(round(intensity*2.5), 6, 24).
func PetalCount(intensity int) int {
	n := int(math.Round(float64(intensity) * 2.5))
	if n < 6 {
		return 6
	}
	if n > 24 {
		return 24
	}
	return n
}

// placement controls how petals radiate from the origin. Drooping petals
// hang from a fixed offset instead of the intensity-derived one.
func placementFor(cfg mood.FlowerConfig) (offset, scale float64) {
	if cfg.Style == mood.StyleDrooping {
		return droopOffset, droopScale
	}
	offset = baseOffset + offsetPerIntensity*float64(cfg.Intensity)
	scale = baseScale + scalePerIntensity*float64(cfg.Intensity)
	return offset, scale
}

const (
	baseOffset         = 30.0
	offsetPerIntensity = 4.0
	baseScale          = 0.55
	scalePerIntensity  = 0.06

	droopOffset = 26.0
	droopScale  = 0.85
)
