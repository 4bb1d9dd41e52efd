package visual

import (
	"math"
	"math/rand"
	"time"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

// Scene is one rendered frame of the mood flower: a center glyph, placed
// petals and optional decorative particles. It is a pure description;
// rendering and rasterization live outside this package.
type Scene struct {
	Style     mood.Style `json:"style"`
	BaseColor string     `json:"baseColor"`

	// Rotation is the ambient whole-scene rotation in degrees. Always
	// zero for the drooping style.
	Rotation float64 `json:"rotation"`

	// Scale is the overall bloom-in scale, 0 before the bloom starts,
	// overshooting slightly above 1 and settling at 1.
	Scale float64 `json:"scale"`

	Center    CenterGlyph `json:"center"`
	Petals    []Petal     `json:"petals"`
	Particles []Particle  `json:"particles,omitempty"`
}

// CenterGlyph is the circle at the flower's origin.
type CenterGlyph struct {
	Radius float64 `json:"radius"`
}

// Petal is one placed petal shape.
type Petal struct {
	Path Path `json:"path"`

	// AngleDeg is the static placement rotation around the origin.
	AngleDeg float64 `json:"angleDeg"`
	// Offset is the outward translation applied before rotation.
	Offset float64 `json:"offset"`
	// Scale is the static placement scale.
	Scale float64 `json:"scale"`

	// BloomScale is this petal's staggered bloom-in scale.
	BloomScale float64 `json:"bloomScale"`
	// BloomDelay is how long after scene start this petal begins.
	BloomDelay time.Duration `json:"bloomDelay"`

	// JitterX is the trembling oscillation offset, zero for all styles
	// except trembling.
	JitterX float64 `json:"jitterX"`
}

// Particle is a decorative circle emitted only for the particle style.
type Particle struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Radius float64       `json:"radius"`
	Delay  time.Duration `json:"delay"`
}

const (
	// baseBloomDuration is divided by bloom speed to get the actual
	// bloom-in duration.
	baseBloomDuration = 2400 * time.Millisecond

	// staggerBudget spreads petal delays; each petal's delay is
	// i*staggerBudget/(bloomSpeed*n) so petals unfurl in sequence.
	staggerBudget = 3600 * time.Millisecond

	rotationDegPerSec = 4.0

	centerBaseRadius = 15.0
	calmPulseRange   = 5.0
	calmPulsePeriod  = 4 * time.Second

	trembleAmplitude = 2.2
	trembleHz        = 9.0

	particleCount     = 12
	particleMinRadius = 2.0
	particleMaxRadius = 6.0
	particleSpread    = 90.0
	particleMaxDelay  = 2 * time.Second
)

type petalLayout struct {
	angle        float64
	delay        time.Duration
	tremblePhase float64
}

// Engine generates frames for one flower config. Geometry is fully
// deterministic; the cosmetic randomness channel (particle jitter, tremble
// phases) is drawn once at construction from the given seed, so the same
// config and seed always replay the same bloom sequence.
type Engine struct {
	cfg           mood.FlowerConfig
	offset        float64
	scale         float64
	bloomDuration time.Duration
	petals        []petalLayout
	particles     []Particle
}

// NewEngine builds an engine for the config. The config is clamped before
// any geometry math.
func NewEngine(cfg mood.FlowerConfig, seed int64) *Engine {
	cfg = cfg.Clamped()
	rng := rand.New(rand.NewSource(seed))

	n := PetalCount(cfg.Intensity)
	step := 360.0 / float64(n)
	offset, scale := placementFor(cfg)

	e := &Engine{
		cfg:           cfg,
		offset:        offset,
		scale:         scale,
		bloomDuration: baseBloomDuration / time.Duration(cfg.BloomSpeed),
		petals:        make([]petalLayout, n),
	}

	delayUnit := staggerBudget / time.Duration(cfg.BloomSpeed*n)
	for i := range e.petals {
		e.petals[i] = petalLayout{
			angle: float64(i) * step,
			delay: time.Duration(i) * delayUnit,
		}
		if cfg.Style == mood.StyleTrembling {
			e.petals[i].tremblePhase = rng.Float64() * 2 * math.Pi
		}
	}

	if cfg.Style == mood.StyleParticle {
		e.particles = make([]Particle, particleCount)
		for i := range e.particles {
			e.particles[i] = Particle{
				X:      (rng.Float64()*2 - 1) * particleSpread,
				Y:      (rng.Float64()*2 - 1) * particleSpread,
				Radius: particleMinRadius + rng.Float64()*(particleMaxRadius-particleMinRadius),
				Delay:  time.Duration(rng.Float64() * float64(particleMaxDelay)),
			}
		}
	}

	return e
}

// Config returns the clamped config the engine was built from.
func (e *Engine) Config() mood.FlowerConfig { return e.cfg }

// BloomDuration returns the bloom-in duration after bloom speed scaling.
func (e *Engine) BloomDuration() time.Duration { return e.bloomDuration }

// Frame produces the scene at the given elapsed time since the flower
// first became visible.
func (e *Engine) Frame(elapsed time.Duration) Scene {
	if elapsed < 0 {
		elapsed = 0
	}
	t := elapsed.Seconds()

	scene := Scene{
		Style:     e.cfg.Style,
		BaseColor: e.cfg.BaseColor,
		Scale:     easeOutBack(progress(elapsed, 0, e.bloomDuration)),
		Center:    CenterGlyph{Radius: e.centerRadius(t)},
		Petals:    make([]Petal, len(e.petals)),
		Particles: e.particles,
	}

	// The whole scene rotates continuously, independent of the bloom-in,
	// except for drooping which stays gravity-bound.
	if e.cfg.Style != mood.StyleDrooping {
		scene.Rotation = math.Mod(t*rotationDegPerSec, 360)
	}

	path := PetalPath(e.cfg.Style)
	for i, layout := range e.petals {
		p := Petal{
			Path:       path,
			AngleDeg:   layout.angle,
			Offset:     e.offset,
			Scale:      e.scale,
			BloomDelay: layout.delay,
			BloomScale: easeOutBack(progress(elapsed, layout.delay, e.bloomDuration)),
		}
		if e.cfg.Style == mood.StyleTrembling {
			p.JitterX = trembleAmplitude * math.Sin(2*math.Pi*trembleHz*t+layout.tremblePhase)
		}
		scene.Petals[i] = p
	}

	return scene
}

func (e *Engine) centerRadius(t float64) float64 {
	base := centerBaseRadius + float64(e.cfg.Intensity)
	if e.cfg.Style != mood.StyleCalm {
		return base
	}
	// Looping pulse between base and base+5 on a fixed 4 second period.
	phase := 2 * math.Pi * t / calmPulsePeriod.Seconds()
	return base + calmPulseRange/2*(1-math.Cos(phase))
}

// progress maps elapsed time against a delayed window to [0,1].
func progress(elapsed, delay, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(elapsed-delay) / float64(duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// easeOutBack is the overshoot easing used for the bloom-in: it rises past
// 1 and settles back, so petals spring open rather than fade in.
func easeOutBack(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const c1 = 1.70158
	const c3 = c1 + 1
	u := t - 1
	return 1 + c3*u*u*u + c1*u*u
}
