// Package vec3 provides the right-handed, metre-scaled 3D vector type
// shared by the mixer's listener and object positions.
package vec3

import (
	approx "github.com/meko-christian/algo-approx"
)

// Vec3 is a point or direction in listener space, in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns v scaled by s.
func Scale(v Vec3, s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a x b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// LengthSquared returns the squared length of v, avoiding the sqrt when
// only a comparison is needed.
func LengthSquared(v Vec3) float64 {
	return Dot(v, v)
}

// Length returns the length of v using the fast approximate square root;
// this is on the per-callback distance-attenuation path, not a precision
// boundary, so the approximation is acceptable.
func Length(v Vec3) float64 {
	return approx.FastSqrt(LengthSquared(v))
}

// Normalize returns v scaled to unit length. The zero vector normalizes to
// itself.
func Normalize(v Vec3) Vec3 {
	l := Length(v)
	if l == 0 {
		return v
	}
	return Scale(v, 1/l)
}

// Basis holds an orthonormal right, up, forward triple derived from a
// listener's facing direction and the world's up axis.
type Basis struct {
	Right, Up, Forward Vec3
}

// NewBasis builds an orthonormal Basis from a forward direction and the
// world's up vector. forward need not be normalized; worldUp need not be
// orthogonal to it. Panics-free degenerate input (forward parallel to
// worldUp) derives Right by crossing the world's +X axis with forward
// instead of worldUp.
func NewBasis(forward, worldUp Vec3) Basis {
	f := Normalize(forward)
	r := Cross(worldUp, f)
	if LengthSquared(r) < 1e-12 {
		r = Cross(Vec3{1, 0, 0}, f)
	}
	r = Normalize(r)
	u := Cross(f, r)
	return Basis{Right: r, Up: u, Forward: f}
}

// ToLocal expresses the world-space vector v in this basis's local
// coordinates, (right, up, forward).
func (b Basis) ToLocal(v Vec3) Vec3 {
	return Vec3{Dot(v, b.Right), Dot(v, b.Up), Dot(v, b.Forward)}
}
