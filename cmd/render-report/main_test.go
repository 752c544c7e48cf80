package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/report"
)

func TestTopTrait(t *testing.T) {
	assert.Empty(t, topTrait(nil))
	assert.Equal(t, "strobing(3)", topTrait(map[string]int{"strobing": 3, "overexposed": 1}))
	assert.Equal(t, "a(2)", topTrait(map[string]int{"b": 2, "a": 2}), "ties break alphabetically")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "thunder", fileName("thunder"))
	assert.Equal(t, "hero_card_1", fileName("hero card/1"))
	assert.Equal(t, "card", fileName(""))
}

func TestOptionsValidate(t *testing.T) {
	ok := options{frames: 1, width: 1, height: 1, runs: 1}
	assert.NoError(t, ok.validate())

	bad := options{frames: 0, width: 1, height: 0, runs: 0, bloom: -1, logFrom: -1}
	err := bad.validate()
	require.Error(t, err)
	for _, flag := range []string{"--frames", "--height", "--runs", "--bloom", "--log-from"} {
		assert.Contains(t, err.Error(), flag)
	}

	backwards := options{frames: 1, width: 1, height: 1, runs: 1, logFrom: 20, logTo: 10}
	assert.ErrorContains(t, backwards.validate(), "--log-to must not precede")
}

func TestOptionsLogQuery(t *testing.T) {
	_, ok := options{}.logQuery()
	assert.False(t, ok, "quiet runs without filters print no log")

	q, ok := options{verbose: true}.logQuery()
	assert.True(t, ok)
	assert.Equal(t, report.Query{}, q)

	q, ok = options{logCard: "sheen", logFrom: 5, logTo: 9}.logQuery()
	assert.True(t, ok)
	assert.Equal(t, report.Query{Card: "sheen", From: 5, To: 9}, q)
}

func TestPrintAggregate(t *testing.T) {
	all := []runStats{
		{stateChanges: 2, grades: []report.Grade{{Name: "a", Variant: effect.VariantAura, Score: 80, GoodTraits: []string{"always visible"}}}},
		{stateChanges: 4, grades: []report.Grade{{Name: "a", Variant: effect.VariantAura, Score: 60, BadTraits: []string{"strobing"}}}},
	}
	var buf bytes.Buffer
	printAggregate(&buf, all)
	out := buf.String()
	assert.Contains(t, out, "runs=2 avg_state_changes=3.0")
	assert.Contains(t, out, "avg=70.0")
	assert.Contains(t, out, "good=always visible(1)")
	assert.Contains(t, out, "bad=strobing(1)")
}

func TestRootCommand_WritesReportAndImages(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	cmd := newRootCmd(&buf)
	cmd.SetArgs([]string{
		"--frames", "40", "--width", "16", "--height", "22",
		"--hover-from", "10", "--hover-to", "30", "--runs", "2",
		"--bloom", "1", "--out", dir,
	})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	t.Log(out)
	assert.Contains(t, out, "=== Card Render Report ===")
	assert.Contains(t, out, "--- Run 1 (seed=42) ---")
	assert.Contains(t, out, "--- Run 2 (seed=43) ---")
	assert.Contains(t, out, "first_hover=10 first_idle=30 last_frame=40")
	assert.Contains(t, out, "--- Card Grades ---")
	assert.Contains(t, out, "=== Aggregate ===")

	for _, v := range effect.Variants() {
		_, err := os.Stat(filepath.Join(dir, v.String()+".png"))
		assert.NoError(t, err, "missing image for %s", v)
	}
}

func TestRootCommand_DeckFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[cards]]
name = "solo"
effect = "burning"
`), 0o644))

	var buf bytes.Buffer
	cmd := newRootCmd(&buf)
	cmd.SetArgs([]string{"--deck", path, "--frames", "5", "--width", "8", "--height", "8"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "cards=1 runs=1 frames=5")
	assert.Contains(t, buf.String(), "solo")
}

func TestRootCommand_Errors(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--deck", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, cmd.Execute())

	cmd = newRootCmd(&bytes.Buffer{})
	cmd.SetArgs([]string{"--frames", "0"})
	assert.ErrorContains(t, cmd.Execute(), "--frames must be > 0")
}

func TestRootCommand_LogFilters(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd(&buf)
	cmd.SetArgs([]string{
		"--frames", "40", "--width", "8", "--height", "8",
		"--hover-from", "10", "--hover-to", "30",
		"--log-card", "sheen", "--log-from", "20",
	})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "[F=030] sheen")
	assert.Contains(t, out, "hovering → idle")
	assert.NotContains(t, out, "[F=010]", "events before --log-from are dropped")
	assert.NotContains(t, out, "] cloud ", "other cards are dropped")
	assert.Contains(t, out, "first_hover=10 first_idle=30", "phase markers ignore the log filter")
}
