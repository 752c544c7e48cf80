package effect

import (
	"github.com/chewxy/math32"

	"github.com/Garsondee/kimcard/internal/shade"
)

var (
	mistColor = shade.Vec3{X: 0.95, Y: 0.98, Z: 1.0}
	lightGold = shade.Vec3{X: 1.0, Y: 0.95, Z: 0.8}
)

const (
	charFloatAmplitude = 0.025
	ghostBlur          = 0.012
	frameShadowOffset  = 0.015
	frameShadowBlur    = 0.02
)

var (
	crossTaps    = [4]shade.Vec2{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	diagonalTaps = [4]shade.Vec2{{X: 1, Y: 1}, {X: -1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: -1}}
)

type cloud struct {
	p  Params
	px Parallax
}

func newCloud(p Params) *cloud {
	return &cloud{p: p, px: ParallaxFor(VariantCloud)}
}

func (c *cloud) Variant() Variant { return VariantCloud }
func (c *cloud) Params() Params { return c.p }
func (c *cloud) Blend() BlendMode { return BlendOver }

func (c *cloud) Uniforms() []UniformDecl {
	return decls("Time", "Hover", "Mouse", "CloudDensity", "CloudSpeed",
		"FrameScale", "CharScale", "CharOffset", "ShowFrame", "FrameBehind")
}

// mistEdge weights background mist toward the card edges and the bottom:
// 0 at the centre, 1 on the edge or along the bottom band.
func mistEdge(p shade.Vec2, sdf float32) float32 {
	edge := shade.Smoothstep(-0.6, 0, sdf)
	bottom := shade.Smoothstep(0, -0.6, p.Y)
	return max(edge, bottom)
}

func (c *cloud) Eval(uv shade.Vec2, f *Frame) Sample {
	time := f.Time * c.p.CloudSpeed
	hover := f.Hover
	mouse := f.Pointer.Scale(hover)

	p := shade.CardPoint(uv)
	sdf := shade.CardSDF(p)
	cardMask := shade.CardMask(sdf)

	cloudUV := p.Scale(1.5).Add(shade.Vec2{X: time * 0.1, Y: time * 0.05})
	n1 := shade.CloudFBM.Simplex(cloudUV)
	n2 := shade.CloudFBM.Simplex(cloudUV.Scale(2.5).AddS(-time * 0.08))
	cloudNoise := shade.Mix(n1, n2, 0.5)*0.5 + 0.5
	density := cloudNoise * c.p.CloudDensity * shade.Mix(0.5, 1.2, hover)
	edgeMist := density * 0.3 * shade.Mix(0.6, 1.4, mistEdge(p, sdf))

	// Wind: noise stretched horizontally into streaks.
	var windLayer float32
	if hover > 0 {
		windUV := p.Mul(shade.Vec2{X: 0.5, Y: 8}).Sub(shade.Vec2{X: time * 1.5, Y: time * 0.2})
		wind := shade.CloudFBM.Simplex(windUV) * shade.CloudFBM.Simplex(windUV.Scale(1.5))
		windLayer = math32.Pow(max(0, wind), 3) * 1.5 * hover
	}

	angle := math32.Atan2(p.Y, p.X)
	rays := (math32.Sin(angle*6+time*0.2)*0.5 + 0.5) * (math32.Sin(angle*14-time*0.1)*0.5 + 0.5)
	rayIntensity := rays * shade.Smoothstep(0.8, 0, p.Length()) * 0.4 * hover

	uvs := cardUVs(uv, &c.p, c.px, mouse)
	tx := c.p.Textures
	bg := tx.Background.Sample(uvs.bg).RGB().Scale(shade.Mix(0.95, 0.8, hover))

	// The character floats on wall-clock time regardless of cloud speed.
	charUV := uvs.char.Add(shade.Vec2{Y: math32.Sin(f.Time*1.5) * charFloatAmplitude})
	blur := 0.0015 + 0.001*hover
	ch := tx.Character.Sample(charUV).Scale(0.6)
	for _, d := range crossTaps {
		ch = ch.Add(tx.Character.Sample(charUV.Add(d.Scale(blur))).Scale(0.1))
	}

	ghostUV := charUV.Add(mouse.Scale(c.px.Character * 0.5))
	var ghost shade.Vec4
	for _, d := range diagonalTaps {
		ghost = ghost.Add(tx.Character.Sample(ghostUV.Add(d.Scale(ghostBlur))).Scale(0.2))
	}
	ghost.W *= 0.25

	fr := tx.Frame.Sample(uvs.frame)
	shadowUV := uvs.frame.AddS(frameShadowOffset)
	shadowSum := tx.Frame.Alpha(shadowUV)
	for _, d := range crossTaps {
		shadowSum += tx.Frame.Alpha(shadowUV.Add(d.Scale(frameShadowBlur)))
	}
	var frameShadow float32
	if c.p.ShowFrame {
		frameShadow = shadowSum / 5 * 0.6 * cardMask
	}

	// Depth mist between character and frame.
	var midMist float32
	if hover > 0 {
		midUV := p.Scale(2).Sub(shade.Vec2{X: time * 0.15, Y: -time * 0.05})
		midMist = shade.CloudFBM.Simplex(midUV) * shade.CloudFBM.Simplex(midUV.Scale(1.5).AddS(10)) * 0.4 * hover
	}

	composite := bg.Scale(cardMask)
	composite = over(composite, mistColor, shade.Saturate(edgeMist*cardMask))
	composite = composite.Add(lightGold.Scale(rayIntensity * cardMask))

	// On hover the character may break out past the card edge.
	breakMask := shade.Mix(cardMask, 1, hover)

	finalFrame := fr.RGB().Add(lightGold.Scale(fr.W * (cloudNoise*0.4 + hover*0.15)))
	composite = frameStage(composite, &c.p, FrameBack, finalFrame, fr.W, cardMask)

	composite = over(composite, ghost.RGB(), ghost.W*breakMask)

	charRim := math32.Pow(1-ch.W, 3) * (0.3 + 0.4*hover)
	finalChar := ch.RGB().Add(lightGold.Scale(charRim * 0.25))
	composite = over(composite, finalChar, ch.W*breakMask)

	composite = composite.Scale(1 - frameShadow*0.8)
	composite = over(composite, mistColor, shade.Saturate(midMist*breakMask))
	composite = over(composite, mistColor, density*0.1*ch.W*hover)
	composite = composite.Add(mistColor.Scale(windLayer * cardMask))

	composite = frameStage(composite, &c.p, FrameFront, finalFrame, fr.W, cardMask)

	glow := math32.Exp(-math32.Abs(sdf)*20) * hover * 0.15
	composite = composite.Add(lightGold.Scale(glow))

	alpha := maxAlpha(cardMask, ch.W*breakMask, ghost.W*breakMask, glow, frameAlpha(&c.p, fr.W)*cardMask)
	return finish(composite, alpha, density+windLayer+glow)
}
