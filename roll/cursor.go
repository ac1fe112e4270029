package roll

import (
	"errors"

	"github.com/vimdaw/vimdaw"
)

type (
	// Fraction is an unsigned rational number. A zero denominator is never
	// stored; setters reject it with ErrBadFraction.
	Fraction struct {
		Num, Den uint32
	}

	// Cursor is the edit position. Row is the pitch lane, Col the time
	// column. SubRow and SubCol address sub-cells: SubCol counts in units of
	// 1/Nav.Den columns, SubRow in units of 1/RowNav.Den rows.
	Cursor struct {
		Row, SubRow uint32
		Col, SubCol uint32
		Width       Fraction // length of drawn notes, in columns
		Nav         Fraction // horizontal step, in columns
		RowNav      Fraction // vertical step, in rows
	}

	// Viewport is the visible window of the roll, in whole cells. Rows grow
	// upwards: TopRow is the highest visible pitch.
	Viewport struct {
		LeftCol, RightCol uint32
		BottomRow, TopRow uint32
		Zoom              float64
	}

	// Snapshot is the cursor and viewport at one point in time. Undo nodes
	// and saved views store snapshots.
	Snapshot struct {
		Cursor   Cursor
		Viewport Viewport
	}

	// Grid owns the cursor and the viewport and keeps them consistent:
	// after every operation the cursor is inside the viewport and the
	// viewport is inside the configured bounds.
	Grid struct {
		Cursor   Cursor
		Viewport Viewport
		cfg      vimdaw.RollConfig
	}

	Direction int

	// Bound names a jump target of GotoBound.
	Bound int

	// FractionPart selects which part of the cursor geometry SetFraction
	// changes.
	FractionPart int
)

const (
	Up Direction = iota
	Down
	Left
	Right
)

const (
	BoundLeft    Bound = iota // left edge of the viewport
	BoundRight                // right edge of the viewport
	BoundBottom               // bottom edge of the viewport
	BoundTop                  // top edge of the viewport
	BoundMinRow               // lowest row of the roll
	BoundMaxRow               // highest row of the roll
	BoundHomeRow              // the configured home row
)

const (
	WidthNum FractionPart = iota
	WidthDen
	NavNum
	NavDen
	SubColStart
	RowNavNum
	RowNavDen
)

// ErrBadFraction is returned when a fraction would get a zero denominator.
var ErrBadFraction = errors.New("fraction with a zero denominator")

var unit = Fraction{1, 1}

// NewGrid creates a grid with the cursor on the home row and the viewport
// centred on it.
func NewGrid(cfg vimdaw.RollConfig) Grid {
	g := Grid{cfg: cfg}
	g.Cursor = Cursor{Row: cfg.HomeRow, Col: cfg.MinCol, Width: unit, Nav: unit, RowNav: unit}
	rows, cols := g.noteRows(1), g.noteCols(1)
	g.Viewport = Viewport{
		Zoom:      1,
		LeftCol:   cfg.MinCol,
		RightCol:  clampAdd(cfg.MinCol, cols-1, cfg.MaxCol),
		BottomRow: clampSub(clampAdd(cfg.HomeRow, 1, cfg.MaxRow), rows/2, cfg.MinRow),
		TopRow:    clampAdd(cfg.HomeRow, rows/2, cfg.MaxRow),
	}
	g.ensureVisible(g.rows())
	g.ensureVisible(g.cols())
	return g
}

// Snapshot returns a copy of the cursor and the viewport.
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{Cursor: g.Cursor, Viewport: g.Viewport}
}

// Restore brings back the cursor, the zoom and the near edges of the
// viewport of a snapshot. The far edges follow from the current screen
// size, which may differ from the one the snapshot was taken on.
func (g *Grid) Restore(s Snapshot) {
	g.Cursor = s.Cursor
	g.Viewport.LeftCol = s.Viewport.LeftCol
	g.Viewport.BottomRow = s.Viewport.BottomRow
	g.Viewport.Zoom = s.Viewport.Zoom
	g.applyZoom()
}

// Move moves the cursor one step, or count steps when count is non-zero.
// Normal steps are scaled by the navigation fraction and may end between
// cells; leaps move whole cells.
func (g *Grid) Move(dir Direction, leap bool, count uint32) {
	a, increment, nav := g.cols(), g.cfg.ColIncrement, g.Cursor.Nav
	if leap {
		increment = g.cfg.ColLeapIncrement
	}
	if dir == Up || dir == Down {
		a, increment, nav = g.rows(), g.cfg.RowIncrement, g.Cursor.RowNav
		if leap {
			increment = g.cfg.RowLeapIncrement
		}
	}
	if count != 0 {
		increment = clampMul(increment, count, a.max)
	}
	whole, frac := increment, uint32(0)
	if !leap {
		whole, frac = scaleStep(increment, nav.Num, nav.Den)
	}
	g.step(a, dir == Up || dir == Right, whole, frac, nav.Den)
}

// MoveView moves the cursor and the viewport by a page, the number of rows
// or columns left for notes on the screen.
func (g *Grid) MoveView(dir Direction, count uint32) {
	a, increment, den := g.cols(), g.noteCols(g.Viewport.Zoom), g.Cursor.Nav.Den
	if dir == Up || dir == Down {
		a, increment, den = g.rows(), g.noteRows(g.Viewport.Zoom), g.Cursor.RowNav.Den
	}
	if count != 0 {
		increment = clampMul(increment, count, a.max)
	}
	g.step(a, dir == Up || dir == Right, increment, 0, den)
}

func (g *Grid) step(a axis, forward bool, whole, frac, den uint32) {
	before := *a.pos
	if forward {
		*a.pos = clampAdd(*a.pos, whole, a.max)
		*a.sub = clampAdd(*a.sub, frac, ^uint32(0))
		if *a.sub >= den {
			*a.pos = clampAdd(*a.pos, *a.sub/den, a.max)
			*a.sub %= den
		}
		if *a.pos == a.max {
			*a.sub = 0
		}
	} else {
		*a.pos = clampSub(*a.pos, whole, a.min)
		if *a.sub < frac {
			if *a.pos > a.min {
				*a.pos--
				*a.sub += den
			} else {
				*a.sub = frac
			}
		}
		*a.sub -= frac
	}
	g.reconcile(a, before)
}

// GotoBound jumps to a viewport edge or to a fixed row. Jumps to a fixed row
// centre the viewport on the cursor.
func (g *Grid) GotoBound(b Bound) {
	switch b {
	case BoundLeft:
		g.Cursor.Col = g.Viewport.LeftCol
		g.Cursor.SubCol = 0
	case BoundRight:
		g.Cursor.Col = g.Viewport.RightCol
		g.Cursor.SubCol = 0
	case BoundBottom:
		g.Cursor.Row = g.Viewport.BottomRow
		g.Cursor.SubRow = 0
	case BoundTop:
		g.Cursor.Row = g.Viewport.TopRow
		g.Cursor.SubRow = 0
	case BoundMinRow:
		g.GotoAbsolute(Up, g.cfg.MinRow)
	case BoundMaxRow:
		g.GotoAbsolute(Up, g.cfg.MaxRow)
	case BoundHomeRow:
		g.GotoAbsolute(Up, g.cfg.HomeRow)
	}
}

// GotoAbsolute puts the cursor on row (dir Up or Down) or column (Left or
// Right) value, clamped to the roll, and centres the viewport on it.
func (g *Grid) GotoAbsolute(dir Direction, value uint32) {
	a := g.cols()
	if dir == Up || dir == Down {
		a = g.rows()
	}
	*a.pos = clamp(value, a.min, a.max)
	*a.sub = 0
	g.centre(a)
}

// SetFraction changes one part of the cursor width or of the navigation
// step. Changing the navigation denominator rescales the sub-column so the
// cursor stays at the same relative position inside its cell.
func (g *Grid) SetFraction(part FractionPart, value uint32) error {
	if value == 0 && part != SubColStart {
		return ErrBadFraction
	}
	c := &g.Cursor
	switch part {
	case WidthNum:
		c.Width.Num = value
	case WidthDen:
		c.Width.Den = value
	case NavNum:
		c.Nav.Num = value
	case NavDen:
		if value != c.Nav.Den {
			c.SubCol = uint32(uint64(c.SubCol) * uint64(value) / uint64(c.Nav.Den))
			c.SubCol = clamp(c.SubCol, 0, value-1)
			c.Nav.Den = value
		}
	case SubColStart:
		c.SubCol = clamp(value, 0, c.Nav.Den-1)
	case RowNavNum:
		c.RowNav.Num = value
	case RowNavDen:
		if value != c.RowNav.Den {
			c.SubRow = uint32(uint64(c.SubRow) * uint64(value) / uint64(c.RowNav.Den))
			c.SubRow = clamp(c.SubRow, 0, value-1)
			c.RowNav.Den = value
		}
	}
	return nil
}

// Advance moves the cursor right by its own width, the way step entry
// places consecutive notes.
func (g *Grid) Advance() {
	c := &g.Cursor
	whole := c.Width.Num / c.Width.Den
	frac := uint64(c.Width.Num%c.Width.Den) * uint64(c.Nav.Den) / uint64(c.Width.Den)
	g.step(g.cols(), true, whole, uint32(frac), c.Nav.Den)
}

// ResetCursor returns the cursor width and the navigation step to a whole
// cell and drops the sub-cell offsets.
func (g *Grid) ResetCursor() {
	g.Cursor.Width = unit
	g.Cursor.Nav = unit
	g.Cursor.RowNav = unit
	g.Cursor.SubCol = 0
	g.Cursor.SubRow = 0
}

// X returns the cursor column including the sub-column offset.
func (c *Cursor) X() float64 {
	return float64(c.Col) + float64(c.SubCol)/float64(c.Nav.Den)
}

// WidthCols returns the cursor width in columns.
func (c *Cursor) WidthCols() float64 {
	return float64(c.Width.Num) / float64(c.Width.Den)
}

// Valid reports whether all fractions have non-zero denominators.
func (c *Cursor) Valid() bool {
	return c.Width.Den != 0 && c.Nav.Den != 0 && c.RowNav.Den != 0
}

// Contains reports whether the cursor lies inside the viewport.
func (v *Viewport) Contains(row, col uint32) bool {
	return row >= v.BottomRow && row <= v.TopRow && col >= v.LeftCol && col <= v.RightCol
}

// Config returns the configuration the grid was created with.
func (g *Grid) Config() vimdaw.RollConfig { return g.cfg }
