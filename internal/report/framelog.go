// Package report records what happened while cards were animated and
// rendered: a typed frame log, per-card trackers with grades, and windowed
// summaries.
package report

import (
	"fmt"
	"strings"

	"github.com/Garsondee/kimcard/internal/effect"
	"github.com/Garsondee/kimcard/internal/raster"
)

// EventKind classifies frame log events. Kinds are bit flags so a Query can
// select several at once.
type EventKind uint8

const (
	EventTransition EventKind = 1 << iota // interaction state change
	EventStats                            // per-frame render statistics, verbose only
	EventError                            // render failure
)

func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "state"
	case EventStats:
		return "stats"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is one thing that happened to one card on one frame.
type Event struct {
	Frame   int
	Card    string
	Variant effect.Variant
	Kind    EventKind

	// Detail is "idle → hovering" for transitions and the error text for
	// failures.
	Detail string
	Time   float64 // card clock in seconds

	Hover         float32
	Coverage      float32
	Activation    float32
	PeakLuminance float32
}

// String formats the event as a fixed-width log line.
//
//	[F=042] thunder   lightning state  idle → hovering
func (e Event) String() string {
	prefix := fmt.Sprintf("[F=%03d] %-9s %-9s %-6s", e.Frame, e.Card, e.Variant, e.Kind)
	if e.Kind == EventStats {
		return fmt.Sprintf("%s hover=%.2f coverage=%5.1f%% activation=%.4f peak_lum=%.2f",
			prefix, e.Hover, e.Coverage*100, e.Activation, e.PeakLuminance)
	}
	return prefix + " " + e.Detail
}

// FrameLog collects events from a scripted run. Unlike the gallery's
// on-screen ring buffer it is unbounded.
type FrameLog struct {
	events  []Event
	verbose bool
}

// NewFrameLog creates a FrameLog. Per-frame statistics are only kept when
// verbose is set.
func NewFrameLog(verbose bool) *FrameLog {
	return &FrameLog{verbose: verbose}
}

// Verbose reports whether per-frame statistics are kept.
func (fl *FrameLog) Verbose() bool { return fl.verbose }

// Transition records a state change at card clock time at.
func (fl *FrameLog) Transition(frame int, card string, v effect.Variant, from, to fmt.Stringer, at float64) {
	fl.events = append(fl.events, Event{
		Frame:   frame,
		Card:    card,
		Variant: v,
		Kind:    EventTransition,
		Detail:  fmt.Sprintf("%s → %s", from, to),
		Time:    at,
	})
}

// Stats records one rendered frame. It is a no-op unless verbose.
func (fl *FrameLog) Stats(frame int, card string, v effect.Variant, f effect.Frame, st raster.Stats) {
	if !fl.verbose {
		return
	}
	fl.events = append(fl.events, Event{
		Frame:         frame,
		Card:          card,
		Variant:       v,
		Kind:          EventStats,
		Time:          float64(f.Time),
		Hover:         f.Hover,
		Coverage:      st.Coverage,
		Activation:    st.MeanActivation,
		PeakLuminance: st.PeakLuminance,
	})
}

// Error records a render failure.
func (fl *FrameLog) Error(frame int, card string, v effect.Variant, err error) {
	fl.events = append(fl.events, Event{Frame: frame, Card: card, Variant: v, Kind: EventError, Detail: err.Error()})
}

// Events returns every recorded event in order.
func (fl *FrameLog) Events() []Event {
	return fl.events
}

// Query selects events. Zero fields match everything; To <= 0 leaves the
// frame range open-ended.
type Query struct {
	Card     string
	Kinds    EventKind
	From, To int
	Contains string // substring of Detail
}

func (q Query) match(e Event) bool {
	switch {
	case q.Card != "" && e.Card != q.Card:
		return false
	case q.Kinds != 0 && e.Kind&q.Kinds == 0:
		return false
	case e.Frame < q.From, q.To > 0 && e.Frame > q.To:
		return false
	case q.Contains != "" && !strings.Contains(e.Detail, q.Contains):
		return false
	}
	return true
}

// Select returns the events matching q in order.
func (fl *FrameLog) Select(q Query) []Event {
	var out []Event
	for _, e := range fl.events {
		if q.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events match q.
func (fl *FrameLog) Count(q Query) int {
	n := 0
	for _, e := range fl.events {
		if q.match(e) {
			n++
		}
	}
	return n
}

// FirstFrame returns the frame of the first event matching q, or -1.
func (fl *FrameLog) FirstFrame(q Query) int {
	for _, e := range fl.events {
		if q.match(e) {
			return e.Frame
		}
	}
	return -1
}

// Format renders the events matching q, one per line.
func (fl *FrameLog) Format(q Query) string {
	var sb strings.Builder
	for _, e := range fl.events {
		if q.match(e) {
			sb.WriteString(e.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
