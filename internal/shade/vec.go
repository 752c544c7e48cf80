package shade

import "github.com/chewxy/math32"

// Vec2 is a 2-component float32 vector (uv, offsets, pointer positions).
type Vec2 struct {
	X, Y float32
}

// Vec3 is a linear RGB colour or 3-vector.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 is a straight-alpha RGBA sample.
type Vec4 struct {
	X, Y, Z, W float32
}

// V2 returns Vec2{x, y}.
func V2(x, y float32) Vec2 { return Vec2{x, y} }

// V3 returns Vec3{x, y, z}.
func V3(x, y, z float32) Vec3 { return Vec3{x, y, z} }

// Splat3 returns a Vec3 with every component set to s.
func Splat3(s float32) Vec3 { return Vec3{s, s, s} }

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Mul(b Vec2) Vec2 { return Vec2{a.X * b.X, a.Y * b.Y} }
func (a Vec2) Scale(s float32) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) AddS(s float32) Vec2 { return Vec2{a.X + s, a.Y + s} }
func (a Vec2) Dot(b Vec2) float32 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Length() float32 { return math32.Sqrt(a.X*a.X + a.Y*a.Y) }
func (a Vec2) Abs() Vec2 { return Vec2{math32.Abs(a.X), math32.Abs(a.Y)} }
func (a Vec2) Floor() Vec2 { return Vec2{math32.Floor(a.X), math32.Floor(a.Y)} }
func (a Vec2) Fract() Vec2 { return Vec2{Fract(a.X), Fract(a.Y)} }
func (a Vec2) MaxS(s float32) Vec2 { return Vec2{max(a.X, s), max(a.Y, s)} }
func (a Vec2) Div(s float32) Vec2 { return Vec2{a.X / s, a.Y / s} }
func (a Vec2) Neg() Vec2 { return Vec2{-a.X, -a.Y} }
func (a Vec2) InUnit() bool { return a.X >= 0 && a.X <= 1 && a.Y >= 0 && a.Y <= 1 }
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Length() float32 { return math32.Sqrt(a.Dot(a)) }
func (a Vec4) RGB() Vec3 { return Vec3{a.X, a.Y, a.Z} }
func (a Vec4) Scale(s float32) Vec4 { return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s} }
func (a Vec4) Add(b Vec4) Vec4 { return Vec4{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W} }
func (a Vec3) WithAlpha(w float32) Vec4 { return Vec4{a.X, a.Y, a.Z, w} }

// Luminance returns the Rec.601 luma of c.
func (a Vec3) Luminance() float32 { return a.Dot(Vec3{0.299, 0.587, 0.114}) }

// Fract returns x - floor(x), always in [0,1).
func Fract(x float32) float32 {
	f := x - math32.Floor(x)
	if f >= 1 {
		return 0
	}
	return f
}

// Mix linearly interpolates a..b by t.
func Mix(a, b, t float32) float32 { return a + (b-a)*t }

// Mix3 linearly interpolates colours.
func Mix3(a, b Vec3, t float32) Vec3 {
	return Vec3{Mix(a.X, b.X, t), Mix(a.Y, b.Y, t), Mix(a.Z, b.Z, t)}
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}

// Saturate clamps to [0,1].
func Saturate(x float32) float32 { return Clamp(x, 0, 1) }

// Step returns 0 if x < edge, else 1.
func Step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// Smoothstep is the GLSL Hermite step. Reversed edges (e0 > e1) produce the
// falling ramp used throughout the effects. Equal edges degrade to Step so
// the function stays total.
func Smoothstep(e0, e1, x float32) float32 {
	if e0 == e1 {
		return Step(e0, x)
	}
	t := Saturate((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}

// Mod is GLSL mod: x - y*floor(x/y), result has the sign of y.
func Mod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

// Finite reports whether x is neither NaN nor infinite.
func Finite(x float32) bool {
	return !math32.IsNaN(x) && !math32.IsInf(x, 0)
}

// Sanitize maps non-finite and negative values to 0.
func Sanitize(x float32) float32 {
	if !Finite(x) || x < 0 {
		return 0
	}
	return x
}

// WrappedDistance is the distance between a and b on the unit circle [0,1).
func WrappedDistance(a, b float32) float32 {
	d := math32.Abs(a - b)
	return min(d, 1-d)
}
