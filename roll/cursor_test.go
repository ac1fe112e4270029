package roll_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/roll"
)

func testGrid() roll.Grid {
	return roll.NewGrid(vimdaw.DefaultConfig().Roll)
}

func checkVisible(t *testing.T, g *roll.Grid) {
	t.Helper()
	c, v := g.Cursor, g.Viewport
	if !v.Contains(c.Row, c.Col) {
		t.Errorf("cursor %d,%d outside of viewport %+v", c.Row, c.Col, v)
	}
}

func TestNewGrid(t *testing.T) {
	g := testGrid()
	v := g.Viewport
	// 1920x1080 at 24 pixels, minus the gutter and the status bar
	if v.RightCol-v.LeftCol+1 != 77 {
		t.Errorf("viewport is %d columns wide, want 77", v.RightCol-v.LeftCol+1)
	}
	if v.TopRow-v.BottomRow+1 != 42 {
		t.Errorf("viewport is %d rows high, want 42", v.TopRow-v.BottomRow+1)
	}
	if g.Cursor.Row != 60 || g.Cursor.Col != 0 {
		t.Errorf("cursor starts at %d,%d, want 60,0", g.Cursor.Row, g.Cursor.Col)
	}
	checkVisible(t, &g)
}

func TestMoveSaturates(t *testing.T) {
	g := testGrid()
	g.Move(roll.Left, false, 0)
	if g.Cursor.Col != 0 {
		t.Errorf("moving left of column 0 gave %d", g.Cursor.Col)
	}
	g.Move(roll.Left, true, math.MaxUint32)
	if g.Cursor.Col != 0 {
		t.Errorf("leaping left of column 0 gave %d", g.Cursor.Col)
	}
	g.Move(roll.Right, false, math.MaxUint32)
	if g.Cursor.Col != 144635 || g.Viewport.RightCol != 144635 {
		t.Errorf("moving right by the largest count gave column %d, viewport %+v", g.Cursor.Col, g.Viewport)
	}
	g.Move(roll.Up, true, math.MaxUint32)
	if g.Cursor.Row != 127 || g.Viewport.TopRow != 127 {
		t.Errorf("leaping up by the largest count gave row %d, viewport %+v", g.Cursor.Row, g.Viewport)
	}
	g.MoveView(roll.Down, 1000)
	if g.Cursor.Row != 0 || g.Viewport.BottomRow != 0 {
		t.Errorf("paging down past the bottom gave row %d, viewport %+v", g.Cursor.Row, g.Viewport)
	}
	checkVisible(t, &g)
}

func TestMoveScrollsViewport(t *testing.T) {
	g := testGrid()
	for i := 0; i < 77; i++ {
		g.Move(roll.Right, false, 0)
	}
	if g.Cursor.Col != 77 || g.Viewport.LeftCol != 1 || g.Viewport.RightCol != 77 {
		t.Errorf("cursor %d, viewport %d..%d, want 77 and 1..77", g.Cursor.Col, g.Viewport.LeftCol, g.Viewport.RightCol)
	}
	g.Move(roll.Left, true, 0)
	if g.Viewport.LeftCol != 1 {
		t.Errorf("moving inside the viewport scrolled it to %d", g.Viewport.LeftCol)
	}
	g.GotoBound(roll.BoundLeft)
	g.Move(roll.Left, false, 3)
	if g.Cursor.Col != 0 || g.Viewport.LeftCol != 0 || g.Viewport.RightCol != 76 {
		t.Errorf("cursor %d, viewport %d..%d, want 0 and 0..76", g.Cursor.Col, g.Viewport.LeftCol, g.Viewport.RightCol)
	}
}

func TestFractionalNavigation(t *testing.T) {
	g := testGrid()
	if err := g.SetFraction(roll.NavDen, 2); err != nil {
		t.Fatalf("SetFraction: %v", err)
	}
	g.Move(roll.Right, false, 0)
	if g.Cursor.Col != 0 || g.Cursor.SubCol != 1 {
		t.Errorf("half step gave %d+%d/2, want 0+1/2", g.Cursor.Col, g.Cursor.SubCol)
	}
	g.Move(roll.Right, false, 0)
	if g.Cursor.Col != 1 || g.Cursor.SubCol != 0 {
		t.Errorf("two half steps gave %d+%d/2, want 1+0/2", g.Cursor.Col, g.Cursor.SubCol)
	}
	g.Move(roll.Left, false, 0)
	if g.Cursor.Col != 0 || g.Cursor.SubCol != 1 {
		t.Errorf("back a half step gave %d+%d/2, want 0+1/2", g.Cursor.Col, g.Cursor.SubCol)
	}
	g.Move(roll.Left, false, 5)
	if g.Cursor.Col != 0 || g.Cursor.SubCol != 0 {
		t.Errorf("moving left past the start gave %d+%d/2", g.Cursor.Col, g.Cursor.SubCol)
	}
	// rescaling keeps the relative position
	g.Move(roll.Right, false, 0)
	g.SetFraction(roll.NavDen, 4)
	if g.Cursor.SubCol != 2 {
		t.Errorf("1/2 rescaled to quarters gave %d/4", g.Cursor.SubCol)
	}
	g.SetFraction(roll.SubColStart, 9)
	if g.Cursor.SubCol != 3 {
		t.Errorf("sub-column start clamped to %d, want 3", g.Cursor.SubCol)
	}
	if err := g.SetFraction(roll.WidthDen, 0); !errors.Is(err, roll.ErrBadFraction) {
		t.Errorf("zero denominator: got %v, want ErrBadFraction", err)
	}
	if !g.Cursor.Valid() {
		t.Errorf("rejected fraction left an invalid cursor %+v", g.Cursor)
	}
	g.ResetCursor()
	if g.Cursor.SubCol != 0 || g.Cursor.Nav != (roll.Fraction{Num: 1, Den: 1}) {
		t.Errorf("reset left %+v", g.Cursor)
	}
}

func TestAdvance(t *testing.T) {
	g := testGrid()
	g.SetFraction(roll.NavDen, 2)
	g.SetFraction(roll.WidthNum, 3)
	g.SetFraction(roll.WidthDen, 2)
	g.Advance()
	if g.Cursor.Col != 1 || g.Cursor.SubCol != 1 {
		t.Errorf("advancing by 3/2 gave %d+%d/2, want 1+1/2", g.Cursor.Col, g.Cursor.SubCol)
	}
	g.Advance()
	if g.Cursor.Col != 3 || g.Cursor.SubCol != 0 {
		t.Errorf("advancing twice by 3/2 gave %d+%d/2, want 3+0/2", g.Cursor.Col, g.Cursor.SubCol)
	}
}

func TestZoom(t *testing.T) {
	g := testGrid()
	g.Zoom(true, false)
	if got := g.Viewport.RightCol - g.Viewport.LeftCol + 1; got != 70 {
		t.Errorf("zoomed to 1.1 the viewport is %d columns wide, want 70", got)
	}
	for i := 0; i < 100; i++ {
		g.Zoom(true, true)
	}
	if g.Viewport.Zoom != 5 {
		t.Errorf("zoom %v, want the maximum 5", g.Viewport.Zoom)
	}
	checkVisible(t, &g)
	for i := 0; i < 100; i++ {
		g.Zoom(false, false)
	}
	if g.Viewport.Zoom != 0.1 {
		t.Errorf("zoom %v, want the minimum 0.1", g.Viewport.Zoom)
	}
	if g.Viewport.TopRow != 127 {
		t.Errorf("zoomed out viewport %+v, want it to reach the top row", g.Viewport)
	}
	g.ZoomReset()
	if g.Viewport.Zoom != 1 || g.Viewport.LeftCol != 0 {
		t.Errorf("reset viewport %+v", g.Viewport)
	}
	checkVisible(t, &g)
}

func TestGotoAbsoluteCentres(t *testing.T) {
	g := testGrid()
	g.GotoAbsolute(roll.Right, 1000)
	v := g.Viewport
	if g.Cursor.Col != 1000 || v.LeftCol != 962 || v.RightCol != 1038 {
		t.Errorf("cursor %d, viewport %d..%d, want 1000 and 962..1038", g.Cursor.Col, v.LeftCol, v.RightCol)
	}
	g.GotoAbsolute(roll.Up, 500)
	if g.Cursor.Row != 127 || g.Viewport.TopRow != 127 || g.Viewport.TopRow-g.Viewport.BottomRow != 41 {
		t.Errorf("row %d, viewport %+v, want 127 at the top of 42 rows", g.Cursor.Row, g.Viewport)
	}
	g.GotoBound(roll.BoundMinRow)
	if g.Cursor.Row != 0 || g.Viewport.BottomRow != 0 {
		t.Errorf("goto min row gave %d, viewport %+v", g.Cursor.Row, g.Viewport)
	}
}

func TestResize(t *testing.T) {
	g := testGrid()
	g.Resize(24*40, 24*20)
	if got := g.Viewport.RightCol - g.Viewport.LeftCol + 1; got != 37 {
		t.Errorf("40 columns minus the gutter gave %d, want 37", got)
	}
	if got := g.Viewport.TopRow - g.Viewport.BottomRow + 1; got != 17 {
		t.Errorf("20 rows minus the status bar gave %d, want 17", got)
	}
	checkVisible(t, &g)
}

func TestRowNavigation(t *testing.T) {
	g := testGrid()
	g.SetFraction(roll.RowNavDen, 2)
	g.Move(roll.Up, false, 0)
	if g.Cursor.Row != 60 || g.Cursor.SubRow != 1 {
		t.Errorf("half row up gave %d+%d/2, want 60+1/2", g.Cursor.Row, g.Cursor.SubRow)
	}
	g.Move(roll.Up, false, 0)
	if g.Cursor.Row != 61 || g.Cursor.SubRow != 0 {
		t.Errorf("two half rows up gave %d+%d/2, want 61+0/2", g.Cursor.Row, g.Cursor.SubRow)
	}
	g.Move(roll.Down, true, 0)
	if g.Cursor.Row != 54 || g.Cursor.SubRow != 0 {
		t.Errorf("leap down gave %d+%d/2, want 54+0/2", g.Cursor.Row, g.Cursor.SubRow)
	}
	checkVisible(t, &g)
}

func TestResizeAtRollEnd(t *testing.T) {
	g := testGrid()
	g.GotoAbsolute(roll.Up, 127)
	g.Resize(24*40, 24*60)
	v := g.Viewport
	if v.TopRow != 127 || v.TopRow-v.BottomRow+1 != 57 {
		t.Errorf("viewport %+v after growing at the top row, want 57 rows ending at 127", v)
	}
	checkVisible(t, &g)
}

// insideMargin reports whether the cursor is closer than margin to an edge
// of the viewport that is not at the end of the roll.
func insideMargin(g *roll.Grid, margin uint32) bool {
	c, v, cfg := g.Cursor, g.Viewport, g.Config()
	return c.Col+margin > v.RightCol && v.RightCol != cfg.MaxCol ||
		c.Col < v.LeftCol+margin && v.LeftCol != cfg.MinCol ||
		c.Row+margin > v.TopRow && v.TopRow != cfg.MaxRow ||
		c.Row < v.BottomRow+margin && v.BottomRow != cfg.MinRow
}

func TestScrollMargins(t *testing.T) {
	cfg := vimdaw.DefaultConfig().Roll
	cfg.ScrollMarginRows, cfg.ScrollMarginCols = 3, 3
	g := roll.NewGrid(cfg)
	rows := g.Viewport.TopRow - g.Viewport.BottomRow
	cols := g.Viewport.RightCol - g.Viewport.LeftCol
	rng := rand.New(rand.NewSource(1))
	dirs := []roll.Direction{roll.Up, roll.Down, roll.Left, roll.Right}
	for i := 0; i < 20000; i++ {
		dir := dirs[rng.Intn(len(dirs))]
		// big jumps may land the cursor anywhere in the shifted viewport;
		// single steps never enter a margin
		wasOutside := !insideMargin(&g, 3)
		step := false
		switch rng.Intn(10) {
		case 0:
			g.MoveView(dir, 0)
		case 1:
			g.Move(dir, true, uint32(rng.Intn(30)))
		default:
			g.Move(dir, false, uint32(rng.Intn(3)))
			step = true
		}
		c, v := g.Cursor, g.Viewport
		if v.TopRow-v.BottomRow != rows || v.RightCol-v.LeftCol != cols {
			t.Fatalf("move %d changed the viewport span to %+v", i, v)
		}
		if !v.Contains(c.Row, c.Col) {
			t.Fatalf("move %d left cursor %d,%d outside of %+v", i, c.Row, c.Col, v)
		}
		if step && wasOutside && insideMargin(&g, 3) {
			t.Fatalf("step %d moved cursor %d,%d into the margin of %+v", i, c.Row, c.Col, v)
		}
	}
}
