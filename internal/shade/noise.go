package shade

import "github.com/chewxy/math32"

// Random is the classic sine hash. Output is in [0,1).
func Random(p Vec2) float32 {
	return Fract(math32.Sin(p.Dot(Vec2{12.9898, 78.233})) * 43758.5453123)
}

// Hash is the sine-free cell hash used for ember placement. Output is in [0,1).
func Hash(p Vec2) float32 {
	p = p.Mul(Vec2{123.34, 456.21}).Fract()
	d := p.Dot(p.AddS(45.32))
	p = p.AddS(d)
	return Fract(p.X * p.Y)
}

// ValueNoise interpolates hashed lattice corners with cubic Hermite weights.
// Output is in [0,1].
func ValueNoise(p Vec2) float32 {
	i := p.Floor()
	f := p.Fract()
	a := Random(i)
	b := Random(i.Add(Vec2{1, 0}))
	c := Random(i.Add(Vec2{0, 1}))
	d := Random(i.Add(Vec2{1, 1}))
	ux := f.X * f.X * (3 - 2*f.X)
	uy := f.Y * f.Y * (3 - 2*f.Y)
	return Mix(a, b, ux) + (c-a)*uy*(1-ux) + (d-b)*ux*uy
}

func permute(x float32) float32 {
	return Mod((x*34+1)*x, 289)
}

const (
	simplexF = 0.211324865405187  // (3-sqrt(3))/6
	simplexS = 0.366025403784439  // (sqrt(3)-1)/2
	simplexZ = -0.577350269189626 // -1 + 2*simplexF
	simplexW = 0.024390243902439  // 1/41
)

// Simplex is 2D simplex noise with a mod-289 permutation polynomial.
// Output is roughly in [-1,1].
func Simplex(v Vec2) float32 {
	s := (v.X + v.Y) * simplexS
	i := Vec2{math32.Floor(v.X + s), math32.Floor(v.Y + s)}
	t := (i.X + i.Y) * simplexF
	x0 := Vec2{v.X - i.X + t, v.Y - i.Y + t}

	var i1 Vec2
	if x0.X > x0.Y {
		i1 = Vec2{1, 0}
	} else {
		i1 = Vec2{0, 1}
	}
	x1 := Vec2{x0.X + simplexF - i1.X, x0.Y + simplexF - i1.Y}
	x2 := Vec2{x0.X + simplexZ, x0.Y + simplexZ}

	i = Vec2{Mod(i.X, 289), Mod(i.Y, 289)}
	p0 := permute(permute(i.Y) + i.X)
	p1 := permute(permute(i.Y+i1.Y) + i.X + i1.X)
	p2 := permute(permute(i.Y+1) + i.X + 1)

	m0 := max(0.5-x0.Dot(x0), 0)
	m1 := max(0.5-x1.Dot(x1), 0)
	m2 := max(0.5-x2.Dot(x2), 0)
	m0 *= m0
	m0 *= m0
	m1 *= m1
	m1 *= m1
	m2 *= m2
	m2 *= m2

	return 130 * (simplexCorner(p0, x0, m0) + simplexCorner(p1, x1, m1) + simplexCorner(p2, x2, m2))
}

// simplexCorner returns the normalised gradient contribution of one corner.
func simplexCorner(p float32, x Vec2, m float32) float32 {
	gx := 2*Fract(p*simplexW) - 1
	h := math32.Abs(gx) - 0.5
	a0 := gx - math32.Floor(gx+0.5)
	m *= 1.79284291400159 - 0.85373472095314*(a0*a0+h*h)
	return m * (a0*x.X + h*x.Y)
}

// FBM sums octaves of noise at geometrically increasing frequency.
type FBM struct {
	Octaves    int
	Lacunarity float32 // frequency multiplier per octave
	Gain       float32 // amplitude multiplier per octave
	Amplitude  float32 // first-octave amplitude
	Shift      Vec2    // domain offset added after each octave
}

var (
	// LightningFBM is the 5-octave value-noise stack for bolt distortion.
	LightningFBM = FBM{Octaves: 5, Lacunarity: 2, Gain: 0.5, Amplitude: 0.5}
	// AuraFBM is the cheaper 4-octave stack for the flame aura.
	AuraFBM = FBM{Octaves: 4, Lacunarity: 2, Gain: 0.5, Amplitude: 0.5}
	// CloudFBM drives mist and wind.
	CloudFBM = FBM{Octaves: 5, Lacunarity: 2, Gain: 0.5, Amplitude: 0.5, Shift: Vec2{100, 100}}
	// ElectricFBM is the high-fidelity 10-octave stack.
	ElectricFBM = FBM{Octaves: 10, Lacunarity: 1.6, Gain: 0.7, Amplitude: 0.5, Shift: Vec2{100, 100}}
)

// Value evaluates the stack over ValueNoise.
func (f FBM) Value(p Vec2) float32 {
	return f.sum(p, ValueNoise)
}

// Simplex evaluates the stack over Simplex.
func (f FBM) Simplex(p Vec2) float32 {
	return f.sum(p, Simplex)
}

func (f FBM) sum(p Vec2, noise func(Vec2) float32) float32 {
	var v float32
	a := f.Amplitude
	for range f.Octaves {
		v += a * noise(p)
		p = p.Scale(f.Lacunarity).Add(f.Shift)
		a *= f.Gain
	}
	return v
}

const (
	filamentOctaves    = 5
	filamentSharpness  = 12
	filamentLacunarity = 2.1
)

// Filament builds razor-thin crackling lines by raising the inverted
// absolute simplex value to a high power, then stacking octaves.
func Filament(p Vec2, t float32) float32 {
	var v float32
	a := float32(0.5)
	drift := Vec2{t * 0.5, -t * 2}
	for range filamentOctaves {
		n := Simplex(p.Add(drift))
		v += a * math32.Pow(1-math32.Abs(n), filamentSharpness)
		p = p.Scale(filamentLacunarity).AddS(100)
		a *= 0.5
	}
	return v
}
