package vec3

import (
	"math"
	"testing"
)

func TestNormalizeUnitLength(t *testing.T) {
	v := Normalize(Vec3{3, 4, 0})
	got := Length(v)
	if math.Abs(got-1) > 1e-3 {
		t.Fatalf("Length(Normalize(v)) = %v, want ~1", got)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize(Vec3{}); got != (Vec3{}) {
		t.Fatalf("Normalize(zero) = %v, want zero", got)
	}
}

func TestBasisOrthonormal(t *testing.T) {
	b := NewBasis(Vec3{0, 0, 1}, Vec3{0, 1, 0})

	const eps = 1e-9
	if d := Dot(b.Right, b.Up); math.Abs(d) > eps {
		t.Errorf("right.up = %v, want 0", d)
	}
	if d := Dot(b.Right, b.Forward); math.Abs(d) > eps {
		t.Errorf("right.forward = %v, want 0", d)
	}
	if d := Dot(b.Up, b.Forward); math.Abs(d) > eps {
		t.Errorf("up.forward = %v, want 0", d)
	}
	for _, v := range []Vec3{b.Right, b.Up, b.Forward} {
		if l := Length(v); math.Abs(l-1) > 1e-3 {
			t.Errorf("basis vector %v has length %v, want 1", v, l)
		}
	}
}

func TestBasisDegenerateForwardParallelToUp(t *testing.T) {
	b := NewBasis(Vec3{0, 1, 0}, Vec3{0, 1, 0})
	if LengthSquared(b.Right) < 1e-6 {
		t.Fatalf("degenerate basis produced near-zero right vector: %v", b.Right)
	}
}

func TestToLocalRoundTrip(t *testing.T) {
	b := NewBasis(Vec3{0, 0, 1}, Vec3{0, 1, 0})
	world := Vec3{2, 3, 5}
	local := b.ToLocal(world)

	reconstructed := Add(Add(Scale(b.Right, local.X), Scale(b.Up, local.Y)), Scale(b.Forward, local.Z))
	const eps = 1e-9
	if math.Abs(reconstructed.X-world.X) > eps || math.Abs(reconstructed.Y-world.Y) > eps || math.Abs(reconstructed.Z-world.Z) > eps {
		t.Fatalf("round trip mismatch: got %v want %v", reconstructed, world)
	}
}
