package card

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Garsondee/kimcard/internal/anim"
	"github.com/Garsondee/kimcard/internal/deck"
	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/raster"
	"github.com/Garsondee/kimcard/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// dumpLog prints the frame log so it appears in `go test -v` output.
func dumpLog(t *testing.T, r *Run) {
	t.Helper()
	events := r.Log.Events()
	if len(events) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range events {
		t.Log(e.String())
	}
}

func smallRun(opts ...RunOption) *Run {
	base := []RunOption{WithSize(12, 16), WithSeed(42)}
	return NewRun(append(base, opts...)...)
}

func TestCard_StepAndBind(t *testing.T) {
	c := New("sheen", effect.New(effect.VariantSheen, effect.DefaultParams()))
	assert.Equal(t, effect.VariantSheen, c.Variant())
	assert.Equal(t, anim.Idle, c.State())

	f := c.Step(anim.Interaction{Hovered: true}, time.Second/60)
	assert.Equal(t, anim.Hovering, c.State())
	assert.InDelta(t, 0.1, f.Hover, 1e-6)

	ps, err := c.Bind()
	require.NoError(t, err)
	assert.InDelta(t, f.Time, ps["Time"].V[0], 1e-6)
	assert.InDelta(t, f.Hover, ps["Hover"].V[0], 1e-6)

	c.Close()
	assert.Equal(t, effect.Frame{}, c.Frame())
	assert.Equal(t, anim.Idle, c.State())
}

func TestCard_Render(t *testing.T) {
	c := FromResolved(deck.Resolved{Name: "b", Variant: effect.VariantBurning, Params: effect.DefaultParams()})
	c.Step(anim.Interaction{}, time.Second/60)
	dst := raster.NewCard(8, 10)
	st, err := c.Render(context.Background(), raster.NewRenderer(2, nil), dst)
	require.NoError(t, err)
	assert.Equal(t, 80, st.Pixels)
}

func TestRun_HoverWindowLogsTransitions(t *testing.T) {
	r := smallRun(
		WithHoverWindow(10, 40),
		WithCard("sheen", effect.VariantSheen, effect.DefaultParams()),
	)
	require.NoError(t, r.RunFrames(context.Background(), 60))
	dumpLog(t, r)

	changes := r.Log.Select(report.Query{Kinds: report.EventTransition})
	require.Len(t, changes, 2)
	assert.Equal(t, 10, changes[0].Frame)
	assert.Equal(t, "idle → hovering", changes[0].Detail)
	assert.Greater(t, changes[0].Time, 0.0)
	assert.Equal(t, 40, changes[1].Frame)
	assert.Equal(t, "hovering → idle", changes[1].Detail)
	assert.Equal(t, 60, r.CurrentFrame())
}

func TestRun_InteractionOutsideWindow(t *testing.T) {
	r := smallRun(
		WithHoverWindow(5, 8),
		WithCard("a", effect.VariantAura, effect.DefaultParams()),
	)
	assert.False(t, r.Interaction(0).Hovered)

	require.NoError(t, r.RunFrames(context.Background(), 5))
	in := r.Interaction(0)
	assert.True(t, in.Hovered)
	assert.LessOrEqual(t, in.Pointer.Length(), float32(0.36))
}

func TestRun_DeterministicForSeed(t *testing.T) {
	build := func() *Run {
		return smallRun(
			WithHoverWindow(3, -1),
			WithCard("burn", effect.VariantBurning, effect.DefaultParams()),
			WithCard("cloud", effect.VariantCloud, effect.DefaultParams()),
		)
	}
	a, b := build(), build()
	require.NoError(t, a.RunFrames(context.Background(), 12))
	require.NoError(t, b.RunFrames(context.Background(), 12))

	for i := range a.Cards {
		assert.Equal(t, a.Image(i).Pix, b.Image(i).Pix, "card %d", i)
	}
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestRun_ReporterCollects(t *testing.T) {
	r := smallRun(
		WithReportEvery(10),
		WithCard("lightning", effect.VariantLightning, effect.DefaultParams()),
	)
	require.NoError(t, r.RunFrames(context.Background(), 35))

	require.Len(t, r.Reporter.History(), 3)
	latest := r.Reporter.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 30, latest.Frame)
	assert.InDelta(t, 0.5, latest.Time, 1e-6)
	require.Len(t, latest.Cards, 1)
	assert.Equal(t, "lightning", latest.Cards[0].Name)
}

func TestRun_VerboseStats(t *testing.T) {
	r := smallRun(
		WithVerbose(true),
		WithCard("a", effect.VariantSheen, effect.DefaultParams()),
		WithCard("b", effect.VariantElectric, effect.DefaultParams()),
	)
	require.NoError(t, r.RunFrames(context.Background(), 4))
	assert.Equal(t, 8, r.Log.Count(report.Query{Kinds: report.EventStats}))
	assert.Equal(t, 4, r.Log.Count(report.Query{Card: "b", Kinds: report.EventStats}))
	last := r.Log.Select(report.Query{Card: "a", Kinds: report.EventStats, From: 4})
	require.Len(t, last, 1)
	assert.Equal(t, 4, last[0].Frame)
	assert.Equal(t, effect.VariantSheen, last[0].Variant)
}

func TestRun_QuietByDefault(t *testing.T) {
	r := smallRun(WithCard("a", effect.VariantSheen, effect.DefaultParams()))
	require.NoError(t, r.RunFrames(context.Background(), 4))
	assert.Zero(t, r.Log.Count(report.Query{Kinds: report.EventStats}))
}

func TestRun_Snapshot(t *testing.T) {
	r := smallRun(
		WithHoverWindow(5, -1),
		WithCard("e", effect.VariantElectric, effect.DefaultParams()),
	)
	require.NoError(t, r.RunFrames(context.Background(), 20))

	snap := r.Snapshot()
	assert.Equal(t, 20, snap.Frame)
	require.Len(t, snap.Cards, 1)
	cs := snap.Cards[0]
	assert.Equal(t, "e", cs.Name)
	assert.Equal(t, effect.VariantElectric, cs.Variant)
	assert.Equal(t, anim.Hovering, cs.State)
	assert.Greater(t, cs.Frame.Hover, float32(0.5))
	assert.InDelta(t, 20.0/60, cs.Frame.Time, 1e-4)
}

func TestRun_RunUntil(t *testing.T) {
	r := smallRun(
		WithHoverWindow(10, -1),
		WithCard("a", effect.VariantAura, effect.DefaultParams()),
	)
	hovered := func(r *Run) bool { return r.Cards[0].Frame().Hover > 0.5 }

	at, err := r.RunUntil(context.Background(), hovered, 100)
	require.NoError(t, err)
	// 0.9^6 > 0.5 > 0.9^7, so hover first exceeds 0.5 on the seventh hovered frame.
	assert.Equal(t, 16, at)

	never := func(*Run) bool { return false }
	at, err = r.RunUntil(context.Background(), never, 3)
	require.NoError(t, err)
	assert.Equal(t, -1, at)
}

func TestRun_CancelledContext(t *testing.T) {
	r := smallRun(WithCard("a", effect.VariantSheen, effect.DefaultParams()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.RunFrames(ctx, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.Log.Count(report.Query{Kinds: report.EventError, Contains: "canceled"}))
	assert.Equal(t, 1, r.CurrentFrame())
}

func TestRun_WithDeck(t *testing.T) {
	r := smallRun(WithDeck(deck.Default(), nil))
	require.Len(t, r.Cards, len(effect.Variants()))
	require.NoError(t, r.RunFrames(context.Background(), 2))

	grades := r.Grades()
	require.Len(t, grades, len(r.Cards))
	for _, g := range grades {
		assert.Equal(t, "-", g.Grade, "too few frames to grade %s", g.Name)
	}
	r.Close()
	for _, c := range r.Cards {
		assert.Equal(t, anim.Idle, c.State())
	}
}

func TestRun_SmoothingOption(t *testing.T) {
	r := smallRun(
		WithFrameRate(30),
		WithSmoothing(anim.SmoothTimeScaled),
		WithHoverWindow(1, -1),
		WithCard("a", effect.VariantSheen, effect.DefaultParams()),
	)
	require.NoError(t, r.RunFrames(context.Background(), 1))
	// One 30Hz step under time-scaled easing covers two 60Hz steps.
	assert.InDelta(t, 0.19, r.Cards[0].Frame().Hover, 1e-4)
}
