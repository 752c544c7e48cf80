package gallery

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 300
	logMaxEntries = 60
	logLineHeight = 14
)

// Event is a single line in the event log.
type Event struct {
	Frame   int
	Card    string
	Message string
}

// EventLog is a ring buffer of card events rendered on-screen.
type EventLog struct {
	entries []Event
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]Event, logMaxEntries)}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(frame int, card, msg string) {
	el.entries[el.head] = Event{Frame: frame, Card: card, Message: msg}
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Addf is Add with a format string.
func (el *EventLog) Addf(frame int, card, format string, args ...any) {
	el.Add(frame, card, fmt.Sprintf(format, args...))
}

// Len returns the number of stored entries.
func (el *EventLog) Len() int { return el.count }

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []Event {
	result := make([]Event, el.count)
	for i := range el.count {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Draw renders the log panel at panelX, newest entry at the bottom.
func (el *EventLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	px, ph := float32(panelX), float32(panelH)
	vector.FillRect(screen, px, 0, logPanelWidth, ph, color.RGBA{R: 12, G: 10, B: 18, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, ph, 1, color.RGBA{R: 60, G: 50, B: 80, A: 255}, false)

	vector.FillRect(screen, px, 0, logPanelWidth, 16, color.RGBA{R: 24, G: 20, B: 36, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", panelX+8, 0)
	vector.StrokeLine(screen, px, 16, px+logPanelWidth, 16, 1, color.RGBA{R: 70, G: 60, B: 100, A: 200}, false)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const highlighted = 3

	y := 20
	for i, e := range entries {
		if i >= len(entries)-highlighted {
			vector.FillRect(screen, px+2, float32(y), logPanelWidth-4, logLineHeight,
				color.RGBA{R: 36, G: 30, B: 54, A: 160}, false)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d [%s] %s", e.Frame, e.Card, e.Message), panelX+6, y)
		y += logLineHeight
	}
}
