package gallery

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/kimcard/internal/effect"
)

// sheenKage is the untextured Sheen program as a Kage shader. It reads the
// same uniforms effect.Bind produces for the CPU program plus the target
// rectangle.
const sheenKage = `//kage:unit pixels

package main

var Time float
var Hover float
var Mouse vec2
var Intensity float
var Origin vec2
var Size vec2

const sheenWidth = 0.15

func hsl(h, s, l float) vec3 {
	rgb := clamp(abs(mod(fract(h)*6.0+vec3(0.0, 4.0, 2.0), 6.0)-3.0)-1.0, 0.0, 1.0)
	return l + s*(rgb-0.5)*(1.0-abs(2.0*l-1.0))
}

func wrapped(a, b float) float {
	d := abs(a - b)
	return min(d, 1.0-d)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	uv := (dstPos.xy - Origin) / Size
	uv.y = 1.0 - uv.y

	speed := 0.4 + Hover*0.6
	intensity := (0.3 + Hover*0.4) * Intensity

	diagonal := (uv.x + uv.y) * 0.5
	band1 := 1.0 - smoothstep(0.0, sheenWidth, wrapped(diagonal, fract(Time*speed)))
	hue := fract(diagonal*2.0 + Time*0.1)

	diagonal2 := (uv.x - uv.y + 1.0) * 0.5
	band2 := (1.0 - smoothstep(0.0, sheenWidth*0.7, wrapped(diagonal2, fract(Time*speed*0.7+0.5)))) * 0.5

	c := hsl(hue, 0.8, 0.6)*band1*intensity + hsl(hue+0.5, 0.7, 0.5)*band2*intensity
	a := clamp(length(c), 0.0, 1.0)
	return vec4(clamp(c, 0.0, 1.0)*a, a)
}
`

// sheenShader draws untextured Sheen cards on the GPU.
type sheenShader struct {
	shader *ebiten.Shader
}

func newSheenShader() (*sheenShader, error) {
	s, err := ebiten.NewShader([]byte(sheenKage))
	if err != nil {
		return nil, fmt.Errorf("gallery: compile sheen shader: %w", err)
	}
	return &sheenShader{shader: s}, nil
}

// supports reports whether prog can be drawn by the shader.
func (s *sheenShader) supports(prog effect.Program) bool {
	return s != nil && prog.Variant() == effect.VariantSheen && !prog.Params().Textures.Any()
}

// draw renders prog's current parameter set into rect of dst.
func (s *sheenShader) draw(dst *ebiten.Image, rect image.Rectangle, ps effect.ParameterSet) {
	uniforms := ps.Ebiten()
	uniforms["Origin"] = []float32{float32(rect.Min.X), float32(rect.Min.Y)}
	uniforms["Size"] = []float32{float32(rect.Dx()), float32(rect.Dy())}

	op := &ebiten.DrawRectShaderOptions{Uniforms: uniforms, Blend: ebiten.BlendLighter}
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	dst.DrawRectShader(rect.Dx(), rect.Dy(), s.shader, op)
}

func (s *sheenShader) dispose() {
	if s != nil {
		s.shader.Deallocate()
	}
}
