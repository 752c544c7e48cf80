package effect

import (
	"errors"
	"fmt"
)

// ValueKind is the GLSL-style type of a named parameter.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindVec2
	KindVec3
)

func (k ValueKind) String() string {
	switch k {
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	default:
		return "float"
	}
}

// Value is one entry of a ParameterSet.
type Value struct {
	Kind ValueKind
	V    [3]float32
}

// Scalar returns a float value.
func Scalar(x float32) Value { return Value{Kind: KindScalar, V: [3]float32{x}} }

// Vec2Value returns a vec2 value.
func Vec2Value(x, y float32) Value { return Value{Kind: KindVec2, V: [3]float32{x, y}} }

// Vec3Value returns a vec3 value.
func Vec3Value(x, y, z float32) Value { return Value{Kind: KindVec3, V: [3]float32{x, y, z}} }

// Any converts the value to the form ebiten expects in shader uniform maps.
func (v Value) Any() any {
	switch v.Kind {
	case KindVec2:
		return []float32{v.V[0], v.V[1]}
	case KindVec3:
		return []float32{v.V[0], v.V[1], v.V[2]}
	default:
		return v.V[0]
	}
}

// UniformDecl names one parameter a program consumes.
type UniformDecl struct {
	Name string
	Kind ValueKind
}

// ParameterSet is the named form of a frame's uniforms.
type ParameterSet map[string]Value

var (
	ErrMissingParameter = errors.New("effect: missing parameter")
	ErrParameterKind    = errors.New("effect: parameter kind mismatch")
	ErrUnknownParameter = errors.New("effect: unknown parameter")
)

// Validate checks that every declared parameter is present with the
// declared kind. A partial set is an error.
func (s ParameterSet) Validate(decls []UniformDecl) error {
	var errs []error
	for _, d := range decls {
		v, ok := s[d.Name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingParameter, d.Name))
			continue
		}
		if v.Kind != d.Kind {
			errs = append(errs, fmt.Errorf("%w: %s is %s, want %s", ErrParameterKind, d.Name, v.Kind, d.Kind))
		}
	}
	return errors.Join(errs...)
}

// Ebiten returns the set as a uniform map for ebiten.DrawRectShaderOptions.
func (s ParameterSet) Ebiten() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		out[k] = v.Any()
	}
	return out
}

type uniformSource struct {
	kind ValueKind
	get  func(p *Params, f *Frame) Value
}

// uniformSources is the catalogue every Bind draws from.
var uniformSources = map[string]uniformSource{
	"Time":   {KindScalar, func(_ *Params, f *Frame) Value { return Scalar(f.Time) }},
	"Hover":  {KindScalar, func(_ *Params, f *Frame) Value { return Scalar(f.Hover) }},
	"Mouse":  {KindVec2, func(_ *Params, f *Frame) Value { return Vec2Value(f.Pointer.X, f.Pointer.Y) }},
	"Color":  {KindVec3, func(p *Params, _ *Frame) Value { return Vec3Value(p.Color.X, p.Color.Y, p.Color.Z) }},
	"Spread": {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Spread) }},
	"AuraSize": {KindVec2, func(p *Params, _ *Frame) Value {
		return Vec2Value(p.AuraScale, p.AuraScale*p.AspectRatio)
	}},
	// Intensity eases toward 1.5x while hovered.
	"Intensity":         {KindScalar, func(p *Params, f *Frame) Value { return Scalar(hoverIntensity(p.Intensity, f.Hover)) }},
	"ElectricRange":     {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().Range) }},
	"GlowFalloff":       {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().Falloff) }},
	"ElectricIntensity": {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().Intensity) }},
	"ParticleDensity":   {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().ParticleDensity) }},
	"ParticleSize":      {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().ParticleSize) }},
	"ParticleIntensity": {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().ParticleIntensity) }},
	"FrameGlow":         {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.Tier.Constants().FrameGlow) }},
	"FrameScale":        {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.FrameScale) }},
	"CharScale":         {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.CharScale) }},
	"CharOffset":        {KindVec2, func(p *Params, _ *Frame) Value { return Vec2Value(p.CharOffset.X, p.CharOffset.Y) }},
	"ShowFrame":         {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(boolf(p.ShowFrame)) }},
	"FrameBehind":       {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(boolf(p.FrameLayer == FrameBack)) }},
	"CloudDensity":      {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.CloudDensity) }},
	"CloudSpeed":        {KindScalar, func(p *Params, _ *Frame) Value { return Scalar(p.CloudSpeed) }},
}

// decls builds a declaration list from catalogue names.
func decls(names ...string) []UniformDecl {
	out := make([]UniformDecl, len(names))
	for i, n := range names {
		src, ok := uniformSources[n]
		if !ok {
			panic(fmt.Sprintf("effect: undeclared uniform %q", n))
		}
		out[i] = UniformDecl{Name: n, Kind: src.kind}
	}
	return out
}

// ownsHoverRamp is implemented by programs that scale Intensity by hover
// themselves. They are bound the configured intensity unscaled.
type ownsHoverRamp interface {
	ownsHoverRamp()
}

// Bind produces the complete, validated parameter set for prog at frame f.
func Bind(prog Program, f Frame) (ParameterSet, error) {
	_, rawIntensity := prog.(ownsHoverRamp)
	p := prog.Params()
	ds := prog.Uniforms()
	set := make(ParameterSet, len(ds))
	for _, d := range ds {
		src, ok := uniformSources[d.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, d.Name)
		}
		if rawIntensity && d.Name == "Intensity" {
			set[d.Name] = Scalar(p.Intensity)
			continue
		}
		set[d.Name] = src.get(&p, &f)
	}
	if err := set.Validate(ds); err != nil {
		return nil, err
	}
	return set, nil
}

func hoverIntensity(base, hover float32) float32 {
	return base * (1 + 0.5*hover)
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
