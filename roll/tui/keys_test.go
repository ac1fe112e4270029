package tui_test

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/roll/tui"
)

func TestKeyFromEvent(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), "g"},
		{tcell.NewEventKey(tcell.KeyRune, 'G', tcell.ModShift), "G"},
		{tcell.NewEventKey(tcell.KeyRune, '$', tcell.ModNone), "$"},
		{tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModAlt), "<A-k>"},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "<Space>"},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "<Esc>"},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "<CR>"},
		{tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), "<Up>"},
		{tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl), "<C-r>"},
	}
	for _, tt := range tests {
		got, ok := tui.KeyFromEvent(tt.ev)
		if !ok {
			t.Errorf("%v: not a key", tt.ev.Name())
			continue
		}
		want := keys.MustParse(tt.want)[0]
		if got != want {
			t.Errorf("%v: got %v, want %v", tt.ev.Name(), got, want)
		}
	}
}
