package mood

import (
	"errors"
	"fmt"
	"regexp"
)

// Style selects the petal shape and animation behavior of the flower.
type Style string

const (
	StyleSpiky     Style = "spiky"
	StyleDrooping  Style = "drooping"
	StyleTrembling Style = "trembling"
	StyleCalm      Style = "calm"
	StyleParticle  Style = "particle"
)

// Styles lists every recognized style, in presentation order.
var Styles = []Style{StyleSpiky, StyleDrooping, StyleTrembling, StyleCalm, StyleParticle}

// Valid reports whether the style is one of the closed set.
func (s Style) Valid() bool {
	switch s {
	case StyleSpiky, StyleDrooping, StyleTrembling, StyleCalm, StyleParticle:
		return true
	}
	return false
}

const (
	IntensityMin  = 1
	IntensityMax  = 10
	BloomSpeedMin = 1
	BloomSpeedMax = 5

	// CrisisThreshold is the fixed distress score above which (strictly)
	// the crisis-resource affordance must be surfaced.
	CrisisThreshold = 0.8

	// CopingSteps is the required length of a coping plan.
	CopingSteps = 3
)

// FlowerConfig is the compact descriptor that fully parameterizes the
// visualization. Intensity and bloom speed are multiplier inputs to
// geometry math and must be clamped before use.
type FlowerConfig struct {
	BaseColor  string `json:"baseColor"`
	Intensity  int    `json:"intensity"`
	BloomSpeed int    `json:"bloomSpeed"`
	Style      Style  `json:"style"`
}

// AnalysisResult is the controller's single authoritative payload for a
// completed session.
type AnalysisResult struct {
	Emotion         string       `json:"emotion"`
	EmpathySummary  string       `json:"empathySummary"`
	CopingPlan      []string     `json:"copingPlan"`
	FlowerConfig    FlowerConfig `json:"flowerConfig"`
	AffirmationText string       `json:"affirmationText"`
	DistressScore   float64      `json:"distressScore"`
}

// NeedsCrisisSupport reports whether the crisis affordance must be shown.
// The boundary is strict: exactly 0.8 does not trigger it.
func (r AnalysisResult) NeedsCrisisSupport() bool {
	return r.DistressScore > CrisisThreshold
}

var affirmativeEmotions = map[string]bool{
	"joy":       true,
	"relief":    true,
	"happiness": true,
	"hope":      true,
}

// Affirmative reports whether the emotion label belongs to the
// celebration-eligible categories.
func (r AnalysisResult) Affirmative() bool {
	return affirmativeEmotions[r.Emotion]
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var (
	ErrMissingField = errors.New("missing required field")
	ErrOutOfRange   = errors.New("value out of range")
	ErrUnknownStyle = errors.New("unknown style")
)

// Validate checks an AnalysisResult against the boundary schema. A failure
// here must be treated the same as a transport failure by the caller.
func (r AnalysisResult) Validate() error {
	if r.Emotion == "" {
		return fmt.Errorf("emotion: %w", ErrMissingField)
	}
	if r.EmpathySummary == "" {
		return fmt.Errorf("empathySummary: %w", ErrMissingField)
	}
	if len(r.CopingPlan) != CopingSteps {
		return fmt.Errorf("copingPlan must have exactly %d steps, got %d: %w", CopingSteps, len(r.CopingPlan), ErrOutOfRange)
	}
	for i, step := range r.CopingPlan {
		if step == "" {
			return fmt.Errorf("copingPlan[%d]: %w", i, ErrMissingField)
		}
	}
	if r.AffirmationText == "" {
		return fmt.Errorf("affirmationText: %w", ErrMissingField)
	}
	if r.DistressScore < 0 || r.DistressScore > 1 {
		return fmt.Errorf("distressScore %v not in [0,1]: %w", r.DistressScore, ErrOutOfRange)
	}
	return r.FlowerConfig.Validate()
}

// Validate checks a FlowerConfig against the boundary schema.
func (c FlowerConfig) Validate() error {
	if !hexColor.MatchString(c.BaseColor) {
		return fmt.Errorf("baseColor %q is not a hex color: %w", c.BaseColor, ErrMissingField)
	}
	if c.Intensity < IntensityMin || c.Intensity > IntensityMax {
		return fmt.Errorf("intensity %d not in [%d,%d]: %w", c.Intensity, IntensityMin, IntensityMax, ErrOutOfRange)
	}
	if c.BloomSpeed < BloomSpeedMin || c.BloomSpeed > BloomSpeedMax {
		return fmt.Errorf("bloomSpeed %d not in [%d,%d]: %w", c.BloomSpeed, BloomSpeedMin, BloomSpeedMax, ErrOutOfRange)
	}
	if !c.Style.Valid() {
		return fmt.Errorf("style %q: %w", c.Style, ErrUnknownStyle)
	}
	return nil
}

// Clamped returns a copy with intensity and bloom speed forced into their
// legal ranges. Geometry code only ever consumes clamped configs.
func (c FlowerConfig) Clamped() FlowerConfig {
	c.Intensity = clampInt(c.Intensity, IntensityMin, IntensityMax)
	c.BloomSpeed = clampInt(c.BloomSpeed, BloomSpeedMin, BloomSpeedMax)
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
