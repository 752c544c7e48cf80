// Package anim advances the per-card clock and eases hover and pointer state
// toward the host's interaction targets, producing one effect.Frame per step.
package anim

import (
	"math"
	"time"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/shade"
)

// Interaction is the host's raw input for one frame.
type Interaction struct {
	Hovered bool
	// Pointer is the offset from the card centre in card units. Values
	// outside [-0.5,0.5]^2 are clamped.
	Pointer shade.Vec2
}

// State is the interaction state of one card.
type State int

const (
	Idle State = iota
	Hovering
)

func (s State) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

// Smoothing selects how the per-step easing factor is derived.
type Smoothing int

const (
	// SmoothFixed eases by FixedFactor every step regardless of frame time.
	SmoothFixed Smoothing = iota
	// SmoothTimeScaled eases by 1-exp(-rate*dt), matching FixedFactor at
	// ReferenceRate.
	SmoothTimeScaled
)

const (
	FixedFactor   = 0.1
	ReferenceRate = 60 // Hz
	MaxFrameDelta = 250 * time.Millisecond
)

// timeScaledRate is -ln(1-FixedFactor)*ReferenceRate, per second.
var timeScaledRate = -math.Log(1-FixedFactor) * ReferenceRate

// TransitionFunc is called after a step that changed the state.
type TransitionFunc func(from, to State, at float64)

// Option configures an Updater.
type Option func(*Updater)

// WithSmoothing selects the easing mode.
func WithSmoothing(m Smoothing) Option {
	return func(u *Updater) { u.mode = m }
}

// OnTransition registers fn for Idle/Hovering changes.
func OnTransition(fn TransitionFunc) Option {
	return func(u *Updater) { u.onTransition = fn }
}

// Updater owns one card's clock and smoothed state. It is not safe for
// concurrent use; drive it from the host's update loop.
type Updater struct {
	mode         Smoothing
	onTransition TransitionFunc

	clock   float64
	hover   float32
	pointer shade.Vec2
	state   State
}

// NewUpdater returns an Updater at rest with the clock at zero.
func NewUpdater(opts ...Option) *Updater {
	u := &Updater{}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Step advances the clock by dt and eases toward in. Negative dt is
// treated as zero.
func (u *Updater) Step(in Interaction, dt time.Duration) effect.Frame {
	dt = max(dt, 0)
	k := float32(FixedFactor)
	if u.mode == SmoothTimeScaled {
		dt = min(dt, MaxFrameDelta)
		k = float32(1 - math.Exp(-timeScaledRate*dt.Seconds()))
	}
	u.clock += dt.Seconds()

	var targetHover float32
	var targetPointer shade.Vec2
	next := Idle
	if in.Hovered {
		targetHover = 1
		targetPointer = ClampPointer(in.Pointer)
		next = Hovering
	}
	u.hover += (targetHover - u.hover) * k
	u.pointer = u.pointer.Add(targetPointer.Sub(u.pointer).Scale(k))

	if next != u.state {
		prev := u.state
		u.state = next
		if u.onTransition != nil {
			u.onTransition(prev, next, u.clock)
		}
	}
	return u.Frame()
}

// Frame returns the current snapshot without advancing.
func (u *Updater) Frame() effect.Frame {
	return effect.Frame{Time: float32(u.clock), Hover: u.hover, Pointer: u.pointer}
}

// State returns the current interaction state.
func (u *Updater) State() State { return u.state }

// Clock returns the elapsed seconds.
func (u *Updater) Clock() float64 { return u.clock }

// Reset zeroes the clock and smoothed state. Used on teardown.
func (u *Updater) Reset() {
	u.clock = 0
	u.hover = 0
	u.pointer = shade.Vec2{}
	u.state = Idle
}

// ClampPointer limits p to [-0.5,0.5]^2. Non-finite components become 0.
func ClampPointer(p shade.Vec2) shade.Vec2 {
	return shade.Vec2{X: clampHalf(p.X), Y: clampHalf(p.Y)}
}

func clampHalf(x float32) float32 {
	if !shade.Finite(x) {
		return 0
	}
	return shade.Clamp(x, -0.5, 0.5)
}

// PointerFromUV converts a uv position over the card to a pointer offset.
func PointerFromUV(uv shade.Vec2) shade.Vec2 {
	return ClampPointer(uv.AddS(-0.5))
}
