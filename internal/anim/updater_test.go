package anim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/kimcard/internal/shade"
)

const tick = time.Second / 60

var hovered = Interaction{Hovered: true, Pointer: shade.V2(0.3, -0.2)}

func TestStep_AdvancesClock(t *testing.T) {
	u := NewUpdater()
	for range 30 {
		u.Step(Interaction{}, tick)
	}
	assert.InDelta(t, 0.5, u.Clock(), 1e-6)
	f := u.Step(Interaction{}, -time.Second)
	assert.InDelta(t, 0.5, float64(f.Time), 1e-6)
}

func TestStep_ContractsByFixedFactor(t *testing.T) {
	u := NewUpdater()
	prev := float32(1)
	for n := 1; n <= 60; n++ {
		f := u.Step(hovered, tick)
		gap := 1 - f.Hover
		// Each step removes exactly a tenth of the remaining gap.
		assert.InDelta(t, prev*0.9, gap, 1e-5, "step %d", n)
		prev = gap
	}
	assert.InDelta(t, math.Pow(0.9, 60), float64(prev), 1e-4)
}

func TestStep_ConvergesAndHolds(t *testing.T) {
	for _, start := range []bool{false, true} {
		u := NewUpdater()
		if start {
			for range 200 {
				u.Step(hovered, tick)
			}
		}
		target := Interaction{Hovered: !start, Pointer: shade.V2(-0.5, 0.5)}
		// 0.9^120 < 1e-5 over the unit hover range.
		f := u.Frame()
		for range 120 {
			f = u.Step(target, tick)
		}
		want := float32(0)
		if target.Hovered {
			want = 1
		}
		require.InDelta(t, want, f.Hover, 1e-5)

		// Fixed point: further steps stay put.
		for range 50 {
			g := u.Step(target, tick)
			assert.InDelta(t, f.Hover, g.Hover, 1e-5)
			assert.InDelta(t, f.Pointer.X, g.Pointer.X, 1e-5)
		}
	}
}

func TestStep_NoJumpOnEnterLeave(t *testing.T) {
	u := NewUpdater()
	a := u.Step(hovered, tick)
	b := u.Step(Interaction{}, tick)
	assert.LessOrEqual(t, a.Hover, float32(0.1)+1e-6)
	assert.LessOrEqual(t, float32(math.Abs(float64(b.Hover-a.Hover))), float32(0.1)+1e-6)

	for range 300 {
		u.Step(hovered, tick)
	}
	before := u.Frame().Hover
	after := u.Step(Interaction{}, tick).Hover
	assert.LessOrEqual(t, before-after, float32(0.1)+1e-6)
	assert.Greater(t, after, float32(0.85))
}

func TestStep_PointerSettlesOnLeave(t *testing.T) {
	u := NewUpdater()
	for range 200 {
		u.Step(hovered, tick)
	}
	require.InDelta(t, 0.3, u.Frame().Pointer.X, 1e-4)

	f := u.Step(Interaction{Pointer: shade.V2(0.5, 0.5)}, tick)
	// The pointer eases back, ignoring the unhovered position.
	assert.InDelta(t, 0.27, f.Pointer.X, 1e-4)
	for range 200 {
		f = u.Step(Interaction{}, tick)
	}
	assert.InDelta(t, 0, f.Pointer.X, 1e-5)
	assert.InDelta(t, 0, f.Pointer.Y, 1e-5)
}

func TestStep_ClampsPointer(t *testing.T) {
	u := NewUpdater()
	f := u.Frame()
	for range 300 {
		f = u.Step(Interaction{Hovered: true, Pointer: shade.V2(4, float32(math.NaN()))}, tick)
	}
	assert.InDelta(t, 0.5, f.Pointer.X, 1e-5)
	assert.Zero(t, f.Pointer.Y)
}

func TestStep_TimeScaledMatchesFixedAt60Hz(t *testing.T) {
	fixed := NewUpdater()
	scaled := NewUpdater(WithSmoothing(SmoothTimeScaled))
	for range 45 {
		a := fixed.Step(hovered, tick)
		b := scaled.Step(hovered, tick)
		assert.InDelta(t, a.Hover, b.Hover, 1e-4)
	}
}

func TestStep_TimeScaledIsRateIndependent(t *testing.T) {
	at30 := NewUpdater(WithSmoothing(SmoothTimeScaled))
	at120 := NewUpdater(WithSmoothing(SmoothTimeScaled))
	for range 30 {
		at30.Step(hovered, time.Second/30)
	}
	for range 120 {
		at120.Step(hovered, time.Second/120)
	}
	assert.InDelta(t, at30.Frame().Hover, at120.Frame().Hover, 1e-4)
}

func TestStep_TimeScaledClampsLongFrames(t *testing.T) {
	u := NewUpdater(WithSmoothing(SmoothTimeScaled))
	u.Step(hovered, 10*time.Second)
	assert.InDelta(t, MaxFrameDelta.Seconds(), u.Clock(), 1e-9)
}

func TestTransitions(t *testing.T) {
	type change struct{ from, to State }
	var got []change
	u := NewUpdater(OnTransition(func(from, to State, _ float64) {
		got = append(got, change{from, to})
	}))
	u.Step(Interaction{}, tick)
	u.Step(hovered, tick)
	u.Step(hovered, tick)
	u.Step(Interaction{}, tick)
	assert.Equal(t, []change{{Idle, Hovering}, {Hovering, Idle}}, got)
	assert.Equal(t, Idle, u.State())
	assert.Equal(t, "hovering", Hovering.String())
}

func TestReset(t *testing.T) {
	u := NewUpdater()
	for range 10 {
		u.Step(hovered, tick)
	}
	u.Reset()
	f := u.Frame()
	assert.Zero(t, f.Time)
	assert.Zero(t, f.Hover)
	assert.Equal(t, shade.Vec2{}, f.Pointer)
	assert.Equal(t, Idle, u.State())
}

func TestStep_DoesNotAllocate(t *testing.T) {
	u := NewUpdater()
	allocs := testing.AllocsPerRun(100, func() {
		u.Step(hovered, tick)
	})
	assert.Zero(t, allocs)
}
