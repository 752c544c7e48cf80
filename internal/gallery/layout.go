package gallery

import (
	"image"

	"github.com/Garsondee/kimcard/internal/shade"
)

// maxCols caps the grid width.
const maxCols = 3

// Layout places cards on a regular grid.
type Layout struct {
	Cols   int
	CardW  int // on-screen card size in pixels
	CardH  int
	Gap    int
	Margin int
}

// NewLayout returns a grid for n cards of the given on-screen size.
func NewLayout(n, cardW, cardH int) Layout {
	return Layout{
		Cols:   max(min(n, maxCols), 1),
		CardW:  cardW,
		CardH:  cardH,
		Gap:    16,
		Margin: 24,
	}
}

// Rows returns the number of rows needed for n cards.
func (l Layout) Rows(n int) int {
	return max((n+l.Cols-1)/l.Cols, 1)
}

// Size returns the grid's pixel size for n cards.
func (l Layout) Size(n int) (w, h int) {
	rows := l.Rows(n)
	w = 2*l.Margin + l.Cols*l.CardW + (l.Cols-1)*l.Gap
	h = 2*l.Margin + rows*l.CardH + (rows-1)*l.Gap
	return w, h
}

// Cell returns the screen rectangle of card i.
func (l Layout) Cell(i int) image.Rectangle {
	col, row := i%l.Cols, i/l.Cols
	x := l.Margin + col*(l.CardW+l.Gap)
	y := l.Margin + row*(l.CardH+l.Gap)
	return image.Rect(x, y, x+l.CardW, y+l.CardH)
}

// HitTest returns the card under screen point (x, y) among n cards and the
// point's uv inside it, with v pointing up.
func (l Layout) HitTest(x, y, n int) (int, shade.Vec2, bool) {
	pt := image.Pt(x, y)
	for i := range n {
		r := l.Cell(i)
		if !pt.In(r) {
			continue
		}
		uv := shade.Vec2{
			X: (float32(x-r.Min.X) + 0.5) / float32(r.Dx()),
			Y: 1 - (float32(y-r.Min.Y)+0.5)/float32(r.Dy()),
		}
		return i, uv, true
	}
	return -1, shade.Vec2{}, false
}
