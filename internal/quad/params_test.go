package quad

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
}

func TestValidateRejectsDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero mass", func(p *Params) { p.Mass = 0 }},
		{"negative mass", func(p *Params) { p.Mass = -1 }},
		{"zero thrust factor", func(p *Params) { p.ThrustFactor = 0 }},
		{"zero max rotor speed", func(p *Params) { p.MaxRotorSpeed = 0 }},
		{"zero half time", func(p *Params) { p.RotorSpeedHalfTime = 0 }},
		{"zero frame inertia", func(p *Params) { p.FrameInertia[1] = 0 }},
		{"negative drag factor", func(p *Params) { p.DragFactor = -1e-7 }},
		{"nan mass", func(p *Params) { p.Mass = math.NaN() }},
	}

	for _, tc := range cases {
		p := DefaultParams()
		tc.mutate(p)
		if err := p.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
			t.Errorf("%s: expected parameter bounds error, got %v", tc.name, err)
		}
	}
}

func TestHoverWithinEnvelope(t *testing.T) {
	p := DefaultParams()

	w := p.HoverRotorSpeed()
	if w <= 0 || w >= p.MaxRotorSpeed {
		t.Fatalf("hover speed %v outside (0, %v)", w, p.MaxRotorSpeed)
	}

	// Thrust at hover speed balances weight.
	thrust := 4 * p.ThrustFactor * w * w
	weight := p.Mass * math.Abs(p.Gravity[2])
	if math.Abs(thrust-weight) > 1e-9 {
		t.Errorf("hover thrust %v != weight %v", thrust, weight)
	}

	a := p.HoverAction()
	if a <= 0 || a > 1 {
		t.Errorf("hover action %v outside (0, 1]", a)
	}
}

func TestParamsYAMLRoundTrip(t *testing.T) {
	p := DefaultParams()
	p.Mass = 1.5
	p.Gravity = [3]float64{0, 0, -9.80665}

	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := SaveParams(path, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadParams(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Mass != p.Mass {
		t.Errorf("mass = %v, want %v", loaded.Mass, p.Mass)
	}
	if loaded.Gravity != p.Gravity {
		t.Errorf("gravity = %v, want %v", loaded.Gravity, p.Gravity)
	}
	if loaded.FrameInertia != p.FrameInertia {
		t.Errorf("frame inertia = %v, want %v", loaded.FrameInertia, p.FrameInertia)
	}
}

func TestLoadParamsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	bad := DefaultParams()
	bad.Mass = -1
	if err := SaveParams(path, bad); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := LoadParams(path); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected parameter bounds error, got %v", err)
	}
}

func TestRotorEnumeration(t *testing.T) {
	names := map[Rotor]string{
		RotorFrontRight: "front-right",
		RotorBackLeft:   "back-left",
		RotorFrontLeft:  "front-left",
		RotorBackRight:  "back-right",
	}
	for r, want := range names {
		if r.String() != want {
			t.Errorf("rotor %d: %q, want %q", int(r), r.String(), want)
		}
	}

	// Adjacent rotors alternate spin direction.
	if RotorFrontRight.Spin() != 1 || RotorFrontLeft.Spin() != 1 {
		t.Error("front rotors should spin counter-clockwise")
	}
	if RotorBackLeft.Spin() != -1 || RotorBackRight.Spin() != -1 {
		t.Error("back rotors should spin clockwise")
	}
}
