package roll

import "math"

// axis gives the row and column logic a common view of one dimension of the
// grid.
type axis struct {
	pos, sub *uint32
	lo, hi   *uint32
	min, max uint32
	margin   uint32
}

const minVisibleCells = 5

func (g *Grid) rows() axis {
	return axis{
		pos: &g.Cursor.Row, sub: &g.Cursor.SubRow,
		lo: &g.Viewport.BottomRow, hi: &g.Viewport.TopRow,
		min: g.cfg.MinRow, max: g.cfg.MaxRow, margin: g.cfg.ScrollMarginRows,
	}
}

func (g *Grid) cols() axis {
	return axis{
		pos: &g.Cursor.Col, sub: &g.Cursor.SubCol,
		lo: &g.Viewport.LeftCol, hi: &g.Viewport.RightCol,
		min: g.cfg.MinCol, max: g.cfg.MaxCol, margin: g.cfg.ScrollMarginCols,
	}
}

// reconcile scrolls the viewport after the cursor moved from before to its
// current position. When the cursor entered the scroll margin of the edge it
// moved towards, both edges shift by the distance the cursor moved. If
// clamping the leading edge shrank the span, the trailing edge is pushed back
// to restore it.
func (g *Grid) reconcile(a axis, before uint32) {
	span := *a.hi - *a.lo
	switch pos := *a.pos; {
	case pos > before && pos > clampSub(*a.hi, a.margin, *a.lo):
		d := pos - before
		*a.lo = clampAdd(*a.lo, d, a.max)
		*a.hi = clampAdd(*a.hi, d, a.max)
		if s := *a.hi - *a.lo; s < span {
			*a.lo = clampSub(*a.lo, span-s, a.min)
		}
	case pos < before && pos < clampAdd(*a.lo, a.margin, *a.hi):
		d := before - pos
		*a.lo = clampSub(*a.lo, d, a.min)
		*a.hi = clampSub(*a.hi, d, a.min)
		if s := *a.hi - *a.lo; s < span {
			*a.hi = clampAdd(*a.hi, span-s, a.max)
		}
	}
	g.ensureVisible(a)
}

// centre places the viewport around the cursor keeping its span. Near the
// ends of the roll the viewport is pushed inwards instead of shrinking.
func (g *Grid) centre(a axis) {
	span := *a.hi - *a.lo
	dist := span / 2
	*a.lo = clampSub(*a.pos, dist, a.min)
	*a.hi = clampAdd(*a.pos, dist, a.max)
	if s := *a.hi - *a.lo; s < span {
		diff := span - s
		if sum := clampAdd(*a.hi, diff, a.max); sum-*a.hi == diff {
			*a.hi = sum
		} else {
			*a.lo = clampSub(*a.lo, diff, a.min)
		}
	}
	g.ensureVisible(a)
}

// ensureVisible shifts the viewport, keeping its span when possible, so the
// cursor is inside it and the viewport is inside the roll.
func (g *Grid) ensureVisible(a axis) {
	*a.lo = clamp(*a.lo, a.min, a.max)
	*a.hi = clamp(*a.hi, *a.lo, a.max)
	span := *a.hi - *a.lo
	if *a.pos > *a.hi {
		*a.hi = *a.pos
		*a.lo = clampSub(*a.hi, span, a.min)
	}
	if *a.pos < *a.lo {
		*a.lo = *a.pos
		*a.hi = clampAdd(*a.lo, span, a.max)
	}
}

// Zoom changes the zoom scale by one step, or by a leap, and recomputes the
// far edges of the viewport from the new number of visible cells.
func (g *Grid) Zoom(in bool, leap bool) {
	step := g.cfg.ZoomIncrement
	if leap {
		step = g.cfg.ZoomLeapIncrement
	}
	if !in {
		step = -step
	}
	z := math.Round((g.Viewport.Zoom+step)*1000) / 1000
	g.Viewport.Zoom = math.Min(math.Max(z, g.cfg.ZoomMin), g.cfg.ZoomMax)
	g.applyZoom()
}

// ZoomReset returns to zoom 1 with the viewport at the origin of the roll.
func (g *Grid) ZoomReset() {
	g.Viewport.Zoom = 1
	g.Viewport.LeftCol = g.cfg.MinCol
	g.Viewport.BottomRow = g.cfg.MinRow
	g.applyZoom()
}

// Resize sets the physical size of the screen area and recomputes the far
// edges of the viewport.
func (g *Grid) Resize(width, height float64) {
	g.cfg.PhysicalWidth = width
	g.cfg.PhysicalHeight = height
	g.applyZoom()
}

// applyZoom derives the far edges of the viewport from the near ones. At the
// end of the roll the near edge gives way instead.
func (g *Grid) applyZoom() {
	z := g.Viewport.Zoom
	v := &g.Viewport
	cols, rows := g.noteCols(z)-1, g.noteRows(z)-1
	v.RightCol = clampAdd(v.LeftCol, cols, g.cfg.MaxCol)
	v.LeftCol = clampSub(v.RightCol, cols, g.cfg.MinCol)
	v.TopRow = clampAdd(v.BottomRow, rows, g.cfg.MaxRow)
	v.BottomRow = clampSub(v.TopRow, rows, g.cfg.MinRow)
	g.ensureVisible(g.rows())
	g.ensureVisible(g.cols())
}

// visibleCols is the number of cell columns that fit on the screen,
// including the line number gutter.
func (g *Grid) visibleCols(zoom float64) uint32 {
	return cells(g.cfg.PhysicalWidth, g.cfg.CellWidth, zoom)
}

// visibleRows is the number of cell rows that fit on the screen, including
// the status bars.
func (g *Grid) visibleRows(zoom float64) uint32 {
	return cells(g.cfg.PhysicalHeight, g.cfg.CellHeight, zoom)
}

// noteCols is the number of columns left for notes. Never zero.
func (g *Grid) noteCols(zoom float64) uint32 {
	return clampSub(g.visibleCols(zoom), g.cfg.LineNumberCols, 1)
}

// noteRows is the number of rows left for notes. Never zero.
func (g *Grid) noteRows(zoom float64) uint32 {
	return clampSub(g.visibleRows(zoom), g.cfg.StatusBarRows, 1)
}

func cells(physical, cell, zoom float64) uint32 {
	if cell <= 0 || zoom <= 0 {
		return minVisibleCells
	}
	n := math.Round(physical / (cell * zoom))
	if n < minVisibleCells || math.IsNaN(n) {
		return minVisibleCells
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
