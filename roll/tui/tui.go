// Package tui is the terminal front-end of the piano roll: it draws the
// viewport of the model and feeds it the key presses.
package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/roll"
)

type Tracker struct {
	model  *roll.Model
	broker *roll.Broker
	screen tcell.Screen

	styleMain       tcell.Style
	styleGrid       tcell.Style
	styleLineNumber tcell.Style
	styleStatus     tcell.Style
	styleCursor     tcell.Style
	stylePlayhead   tcell.Style
}

const tickInterval = 10 * time.Millisecond

var layerColors = []tcell.Color{
	tcell.ColorRed, tcell.ColorGreen, tcell.ColorYellow, tcell.ColorBlue,
	tcell.ColorFuchsia, tcell.ColorAqua, tcell.ColorOrange, tcell.ColorLime,
	tcell.ColorPink,
}

// NewTracker creates the front-end for model. screen may be nil, in which
// case Main opens the terminal.
func NewTracker(model *roll.Model, broker *roll.Broker, screen tcell.Screen) *Tracker {
	return &Tracker{
		model:           model,
		broker:          broker,
		screen:          screen,
		styleMain:       tcell.StyleDefault,
		styleGrid:       tcell.StyleDefault.Foreground(tcell.ColorDarkGray),
		styleLineNumber: tcell.StyleDefault.Foreground(tcell.ColorGray),
		styleStatus:     tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGray),
		styleCursor:     tcell.StyleDefault.Reverse(true),
		stylePlayhead:   tcell.StyleDefault.Background(tcell.ColorNavy),
	}
}

// Main runs the event loop until the quit command runs or the broker asks
// the GUI to close.
func (t *Tracker) Main() error {
	if t.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("could not open terminal: %w", err)
		}
		t.screen = s
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("could not initialize terminal: %w", err)
	}
	defer t.screen.Fini()
	if t.broker != nil {
		defer close(t.broker.FinishedGUI)
	}
	// terminals report neither releases nor repeat, only repeated presses
	t.model.SetPlatformRepeat(true)

	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	defer close(quit)
	go t.screen.ChannelEvents(events, quit)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var closeGUI <-chan struct{}
	if t.broker != nil {
		closeGUI = t.broker.CloseGUI
	}
	t.draw()
	for !t.model.Quitted() {
		select {
		case ev := <-events:
			t.handle(ev)
		case now := <-ticker.C:
			t.model.Tick(now)
		case <-closeGUI:
			return nil
		}
		t.draw()
	}
	return nil
}

func (t *Tracker) handle(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		cfg := t.model.Grid().Config()
		t.model.Grid().Resize(float64(w)*cfg.CellWidth, float64(h)*cfg.CellHeight)
		t.screen.Sync()
	case *tcell.EventKey:
		if k, ok := KeyFromEvent(e); ok {
			t.model.KeyPress(k, e.When())
		}
	}
}

func (t *Tracker) draw() {
	s := t.screen
	s.Clear()
	width, height := s.Size()
	g := t.model.Grid()
	cfg := g.Config()
	v := g.Viewport
	c := g.Cursor
	gutter := int(cfg.LineNumberCols)
	rows := height - 1

	cell := func(x int) (col uint32, ok bool) {
		if x < gutter {
			return 0, false
		}
		col = v.LeftCol + uint32(x-gutter)
		return col, col <= v.RightCol
	}
	rowAt := func(y int) (uint32, bool) {
		if uint32(y) > v.TopRow-v.BottomRow {
			return 0, false
		}
		return v.TopRow - uint32(y), true
	}

	for y := 0; y < rows; y++ {
		row, ok := rowAt(y)
		if !ok {
			break
		}
		lineStyle := t.styleLineNumber
		if row == c.Row {
			lineStyle = lineStyle.Bold(true)
		}
		t.text(0, y, fmt.Sprintf("%*d", gutter, row), lineStyle, gutter)
		for x := gutter; x < width; x++ {
			col, ok := cell(x)
			if !ok {
				break
			}
			r := ' '
			if col%4 == 0 {
				r = '·'
			}
			s.SetContent(x, y, r, nil, t.styleGrid)
		}
	}

	if t.model.Playing() {
		pos := uint32(t.model.Timing().Columns(t.model.Position()))
		if pos >= v.LeftCol && pos <= v.RightCol && gutter+int(pos-v.LeftCol) < width {
			x := gutter + int(pos-v.LeftCol)
			for y := 0; y < rows; y++ {
				if _, ok := rowAt(y); !ok {
					break
				}
				s.SetContent(x, y, ' ', nil, t.stylePlayhead)
			}
		}
	}

	for _, q := range t.model.Notes().Iterate {
		if q.Hidden || q.Row < v.BottomRow || q.Row > v.TopRow {
			continue
		}
		style := t.styleMain.Background(layerColors[int(q.Color)%len(layerColors)]).Foreground(tcell.ColorBlack)
		if q.Mute {
			style = style.Dim(true)
		}
		t.span(q.X(), q.WidthCols(), int(v.TopRow-q.Row), style, '█', width)
	}

	if c.Row <= v.TopRow && c.Row >= v.BottomRow {
		t.span(c.X(), c.WidthCols(), int(v.TopRow-c.Row), t.styleCursor, ' ', width)
	}

	if t.model.Mode() == keys.ModeViews {
		t.drawViews(width)
	}
	t.text(0, height-1, t.model.StatusLine(), t.styleStatus, width)
	s.Show()
}

// span fills the cells a note from x spanning w columns covers on screen row
// y.
func (t *Tracker) span(x, w float64, y int, style tcell.Style, r rune, width int) {
	v := t.model.Grid().Viewport
	gutter := int(t.model.Grid().Config().LineNumberCols)
	from := math.Max(math.Floor(x), float64(v.LeftCol))
	to := math.Min(math.Ceil(x+w), float64(v.RightCol)+1)
	if to <= from {
		to = from + 1
	}
	for col := from; col < to; col++ {
		sx := gutter + int(col-float64(v.LeftCol))
		if sx >= width || col > float64(v.RightCol) {
			break
		}
		t.screen.SetContent(sx, y, r, nil, style)
	}
}

func (t *Tracker) drawViews(width int) {
	views := t.model.Views()
	x := max(width-28, 0)
	t.text(x, 0, " views ", t.styleStatus, 28)
	for i, v := range views.Iterate {
		style := t.styleMain
		if i == views.Selected() {
			style = t.styleCursor
		}
		line := fmt.Sprintf("%2d row %3d col %6d z%.1f", i+1, v.Cursor.Row, v.Cursor.Col, v.Viewport.Zoom)
		t.text(x, i+1, line, style, 28)
	}
}

func (t *Tracker) text(x, y int, s string, style tcell.Style, maxWidth int) {
	i := 0
	for _, r := range s {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
	for ; i < maxWidth; i++ {
		t.screen.SetContent(x+i, y, ' ', nil, style)
	}
}
