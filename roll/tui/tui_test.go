package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/roll"
)

func TestDraw(t *testing.T) {
	compiled, err := keys.Compile(keys.DefaultBindings())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	model, err := roll.NewModel(nil, vimdaw.DefaultConfig(), compiled, roll.NullMIDIContext{})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Fini()
	s.SetSize(80, 24)
	tr := NewTracker(model, nil, s)
	tr.handle(tcell.NewEventResize(80, 24))
	tr.handle(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone))
	tr.handle(tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone))
	tr.draw()

	cells, w, h := s.GetContents()
	at := func(x, y int) rune {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			return ' '
		}
		return c.Runes[0]
	}
	v := model.Grid().Viewport
	if got := v.RightCol - v.LeftCol + 1; got != 77 {
		t.Errorf("resized viewport is %d columns wide, want 77", got)
	}
	gutter := int(model.Grid().Config().LineNumberCols)
	y := int(v.TopRow - 60)
	if r := at(gutter, y); r != '█' {
		t.Errorf("cell of the drawn note is %q", r)
	}
	var status strings.Builder
	for x := 0; x < w; x++ {
		status.WriteRune(at(x, h-1))
	}
	if !strings.Contains(status.String(), "Normal") {
		t.Errorf("status line %q does not name the mode", status.String())
	}
}
