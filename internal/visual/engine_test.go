package visual

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bloomlabs/bloom-core/internal/mood"
)

func testConfig(style mood.Style, intensity, bloomSpeed int) mood.FlowerConfig {
	return mood.FlowerConfig{
		BaseColor:  "#ffaa33",
		Intensity:  intensity,
		BloomSpeed: bloomSpeed,
		Style:      style,
	}
}

func TestPetalCountFormula(t *testing.T) {
	cases := map[int]int{
		1:  6,
		2:  6,
		3:  8,
		4:  10,
		5:  13,
		6:  15,
		7:  18,
		8:  20,
		9:  23,
		10: 24,
	}
	for intensity, want := range cases {
		if got := PetalCount(intensity); got != want {
			t.Fatalf("intensity %d: expected %d petals, got %d", intensity, want, got)
		}
	}
}

func TestEveryStyleOwnsOnePath(t *testing.T) {
	seen := map[string]bool{}
	for _, style := range mood.Styles {
		path := PetalPath(style)
		if len(path.Segments) == 0 {
			t.Fatalf("style %q has no petal path", style)
		}
		key := fmt.Sprintf("%v", path)
		if seen[key] {
			t.Fatalf("style %q shares a path with another style", style)
		}
		seen[key] = true
	}
}

func TestPetalPlacement(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleSpiky, 4, 2), 1)
	scene := e.Frame(10 * time.Second)
	n := len(scene.Petals)
	if n != PetalCount(4) {
		t.Fatalf("expected %d petals, got %d", PetalCount(4), n)
	}
	step := 360.0 / float64(n)
	for i, p := range scene.Petals {
		want := float64(i) * step
		if math.Abs(p.AngleDeg-want) > 1e-9 {
			t.Fatalf("petal %d: expected angle %v, got %v", i, want, p.AngleDeg)
		}
	}
}

func TestIntensityScalesPlacement(t *testing.T) {
	low := NewEngine(testConfig(mood.StyleSpiky, 2, 2), 1).Frame(0)
	high := NewEngine(testConfig(mood.StyleSpiky, 9, 2), 1).Frame(0)
	if high.Petals[0].Offset <= low.Petals[0].Offset {
		t.Fatal("higher intensity must push petals further out")
	}
	if high.Petals[0].Scale <= low.Petals[0].Scale {
		t.Fatal("higher intensity must scale petals up")
	}
}

func TestDroopingUsesFixedPlacement(t *testing.T) {
	a := NewEngine(testConfig(mood.StyleDrooping, 2, 2), 1).Frame(0)
	b := NewEngine(testConfig(mood.StyleDrooping, 10, 2), 1).Frame(0)
	if a.Petals[0].Offset != b.Petals[0].Offset || a.Petals[0].Scale != b.Petals[0].Scale {
		t.Fatal("drooping placement must not vary with intensity")
	}
}

func TestDroopingNeverRotates(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleDrooping, 5, 3), 7)
	for _, elapsed := range []time.Duration{0, time.Second, 13 * time.Second, 5 * time.Minute} {
		if r := e.Frame(elapsed).Rotation; r != 0 {
			t.Fatalf("drooping scene rotated by %v at %v", r, elapsed)
		}
	}
}

func TestAmbientRotationAdvances(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleCalm, 5, 3), 7)
	early := e.Frame(time.Second).Rotation
	late := e.Frame(30 * time.Second).Rotation
	if early == late {
		t.Fatal("expected ambient rotation to advance with time")
	}
}

func TestCenterGlyphRadius(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleSpiky, 7, 3), 1)
	if r := e.Frame(0).Center.Radius; r != 15+7 {
		t.Fatalf("expected center radius 22, got %v", r)
	}
}

func TestCalmPulse(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleCalm, 4, 3), 1)
	atRest := e.Frame(0).Center.Radius
	if atRest != 15+4 {
		t.Fatalf("expected resting radius 19, got %v", atRest)
	}
	// Half period is the pulse peak.
	peak := e.Frame(2 * time.Second).Center.Radius
	if math.Abs(peak-(20+4)) > 1e-9 {
		t.Fatalf("expected peak radius 24, got %v", peak)
	}
	// Full period loops back.
	loop := e.Frame(4 * time.Second).Center.Radius
	if math.Abs(loop-atRest) > 1e-9 {
		t.Fatalf("expected radius to loop to %v, got %v", atRest, loop)
	}
}

func TestParticlesOnlyForParticleStyle(t *testing.T) {
	for _, style := range mood.Styles {
		scene := NewEngine(testConfig(style, 5, 3), 42).Frame(time.Second)
		if style == mood.StyleParticle {
			if len(scene.Particles) != 12 {
				t.Fatalf("expected 12 particles, got %d", len(scene.Particles))
			}
			for i, p := range scene.Particles {
				if p.Radius < 2 || p.Radius > 6 {
					t.Fatalf("particle %d radius %v outside [2,6]", i, p.Radius)
				}
				if p.X < -90 || p.X > 90 || p.Y < -90 || p.Y > 90 {
					t.Fatalf("particle %d outside bounds: (%v, %v)", i, p.X, p.Y)
				}
			}
			continue
		}
		if len(scene.Particles) != 0 {
			t.Fatalf("style %q emitted particles", style)
		}
	}
}

func TestBloomDurationScalesWithSpeed(t *testing.T) {
	slow := NewEngine(testConfig(mood.StyleCalm, 5, 1), 1)
	fast := NewEngine(testConfig(mood.StyleCalm, 5, 4), 1)
	if slow.BloomDuration() != 4*fast.BloomDuration() {
		t.Fatalf("expected duration inverse to bloom speed: slow=%v fast=%v", slow.BloomDuration(), fast.BloomDuration())
	}
}

func TestBloomStartsAtZeroAndSettlesAtOne(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleSpiky, 5, 2), 1)
	if s := e.Frame(0).Scale; s != 0 {
		t.Fatalf("expected scale 0 at start, got %v", s)
	}
	if s := e.Frame(time.Minute).Scale; s != 1 {
		t.Fatalf("expected scale 1 after the bloom, got %v", s)
	}
}

func TestBloomOvershoots(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleSpiky, 5, 1), 1)
	overshot := false
	for ms := 0; ms <= 2400; ms += 20 {
		if e.Frame(time.Duration(ms)*time.Millisecond).Scale > 1 {
			overshot = true
			break
		}
	}
	if !overshot {
		t.Fatal("expected the bloom easing to overshoot past 1")
	}
}

func TestPetalsUnfurlInSequence(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleSpiky, 8, 2), 1)
	scene := e.Frame(0)
	var prev time.Duration = -1
	for i, p := range scene.Petals {
		if p.BloomDelay <= prev {
			t.Fatalf("petal %d delay %v not after previous %v", i, p.BloomDelay, prev)
		}
		prev = p.BloomDelay
	}
	// Mid-bloom a later petal must lag an earlier one.
	mid := e.Frame(e.BloomDuration() / 2)
	first := mid.Petals[0].BloomScale
	last := mid.Petals[len(mid.Petals)-1].BloomScale
	if last >= first {
		t.Fatalf("expected staggered unfurl, first=%v last=%v", first, last)
	}
}

func TestTrembleJitterOnlyForTrembling(t *testing.T) {
	for _, style := range mood.Styles {
		e := NewEngine(testConfig(style, 5, 3), 11)
		scene := e.Frame(137 * time.Millisecond)
		any := false
		for _, p := range scene.Petals {
			if p.JitterX != 0 {
				any = true
			}
		}
		if style == mood.StyleTrembling && !any {
			t.Fatal("expected trembling petals to jitter")
		}
		if style != mood.StyleTrembling && any {
			t.Fatalf("style %q must not jitter", style)
		}
	}
}

func TestTremblePhasesDiffer(t *testing.T) {
	e := NewEngine(testConfig(mood.StyleTrembling, 5, 3), 11)
	scene := e.Frame(50 * time.Millisecond)
	allEqual := true
	for _, p := range scene.Petals[1:] {
		if p.JitterX != scene.Petals[0].JitterX {
			allEqual = false
			break
		}
	}
	if allEqual {
		t.Fatal("expected independent per-petal tremble phases")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	cfg := testConfig(mood.StyleParticle, 6, 3)
	a := NewEngine(cfg, 99)
	b := NewEngine(cfg, 99)
	for _, elapsed := range []time.Duration{0, 250 * time.Millisecond, 3 * time.Second} {
		fa, fb := a.Frame(elapsed), b.Frame(elapsed)
		if len(fa.Particles) != len(fb.Particles) {
			t.Fatal("particle counts diverged across replays")
		}
		for i := range fa.Particles {
			if fa.Particles[i] != fb.Particles[i] {
				t.Fatalf("particle %d diverged across replays", i)
			}
		}
		if fa.Scale != fb.Scale || fa.Rotation != fb.Rotation {
			t.Fatal("frames diverged across replays")
		}
	}
}

func TestConfigIsClampedBeforeUse(t *testing.T) {
	e := NewEngine(mood.FlowerConfig{BaseColor: "#112233", Intensity: 40, BloomSpeed: 0, Style: mood.StyleSpiky}, 1)
	if got := e.Config().Intensity; got != mood.IntensityMax {
		t.Fatalf("expected clamped intensity, got %d", got)
	}
	if len(e.Frame(0).Petals) != 24 {
		t.Fatalf("expected 24 petals for clamped intensity, got %d", len(e.Frame(0).Petals))
	}
}

func TestExactlyOneCenterGlyph(t *testing.T) {
	scene := NewEngine(testConfig(mood.StyleCalm, 5, 2), 1).Frame(time.Second)
	if scene.Center.Radius <= 0 {
		t.Fatal("expected a rendered center glyph")
	}
}
