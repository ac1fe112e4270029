package roll

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/ring"
)

type (
	moveCursor struct {
		*Model
		dir  Direction
		leap bool
	}

	movePage struct {
		*Model
		dir Direction
	}

	gotoBound struct {
		*Model
		bound Bound
	}

	digit struct {
		*Model
		d uint32
	}

	zoom struct {
		*Model
		in, leap bool
	}

	setFraction struct {
		*Model
		part FractionPart
	}

	deleteSelection struct {
		*Model
		sel Selection
	}

	hideSelection struct {
		*Model
		sel    Selection
		hidden bool
	}

	muteSelection struct {
		*Model
		sel  Selection
		mute bool
	}

	zoomReset   Model
	resetCursor Model
	drawNote    Model
	deleteNote  Model
	escape      Model
	quit        Model

	numberedCommand struct {
		min, max int
		action   func(m *Model, n int) Action
	}
)

var commands = map[string]func(m *Model) Action{
	"move_up":    func(m *Model) Action { return MakeAction(moveCursor{m, Up, false}) },
	"move_down":  func(m *Model) Action { return MakeAction(moveCursor{m, Down, false}) },
	"move_left":  func(m *Model) Action { return MakeAction(moveCursor{m, Left, false}) },
	"move_right": func(m *Model) Action { return MakeAction(moveCursor{m, Right, false}) },
	"leap_up":    func(m *Model) Action { return MakeAction(moveCursor{m, Up, true}) },
	"leap_down":  func(m *Model) Action { return MakeAction(moveCursor{m, Down, true}) },
	"leap_left":  func(m *Model) Action { return MakeAction(moveCursor{m, Left, true}) },
	"leap_right": func(m *Model) Action { return MakeAction(moveCursor{m, Right, true}) },
	"page_up":    func(m *Model) Action { return MakeAction(movePage{m, Up}) },
	"page_down":  func(m *Model) Action { return MakeAction(movePage{m, Down}) },
	"page_left":  func(m *Model) Action { return MakeAction(movePage{m, Left}) },
	"page_right": func(m *Model) Action { return MakeAction(movePage{m, Right}) },

	"goto_left":     func(m *Model) Action { return MakeAction(gotoBound{m, BoundLeft}) },
	"goto_right":    func(m *Model) Action { return MakeAction(gotoBound{m, BoundRight}) },
	"goto_bottom":   func(m *Model) Action { return MakeAction(gotoBound{m, BoundBottom}) },
	"goto_top":      func(m *Model) Action { return MakeAction(gotoBound{m, BoundTop}) },
	"goto_min_row":  func(m *Model) Action { return MakeAction(gotoBound{m, BoundMinRow}) },
	"goto_max_row":  func(m *Model) Action { return MakeAction(gotoBound{m, BoundMaxRow}) },
	"goto_home_row": func(m *Model) Action { return MakeAction(gotoBound{m, BoundHomeRow}) },

	"zoom_in":       func(m *Model) Action { return MakeAction(zoom{m, true, false}) },
	"zoom_out":      func(m *Model) Action { return MakeAction(zoom{m, false, false}) },
	"zoom_in_leap":  func(m *Model) Action { return MakeAction(zoom{m, true, true}) },
	"zoom_out_leap": func(m *Model) Action { return MakeAction(zoom{m, false, true}) },
	"zoom_reset":    func(m *Model) Action { return MakeAction((*zoomReset)(m)) },

	"cursor_width":            func(m *Model) Action { return MakeAction(setFraction{m, WidthNum}) },
	"cursor_fraction":         func(m *Model) Action { return MakeAction(setFraction{m, WidthDen}) },
	"cursor_start":            func(m *Model) Action { return MakeAction(setFraction{m, SubColStart}) },
	"navigation_width":        func(m *Model) Action { return MakeAction(setFraction{m, NavNum}) },
	"navigation_fraction":     func(m *Model) Action { return MakeAction(setFraction{m, NavDen}) },
	"row_navigation_width":    func(m *Model) Action { return MakeAction(setFraction{m, RowNavNum}) },
	"row_navigation_fraction": func(m *Model) Action { return MakeAction(setFraction{m, RowNavDen}) },
	"cursor_reset":            func(m *Model) Action { return MakeAction((*resetCursor)(m)) },

	"note_draw":           func(m *Model) Action { return MakeAction((*drawNote)(m)) },
	"note_delete":         func(m *Model) Action { return MakeAction((*deleteNote)(m)) },
	"delete_in_view":      func(m *Model) Action { return MakeAction(deleteSelection{m, SelectInView}) },
	"delete_outside_view": func(m *Model) Action { return MakeAction(deleteSelection{m, SelectOutsideView}) },
	"delete_all":          func(m *Model) Action { return MakeAction(deleteSelection{m, SelectAll}) },
	"hide_in_view":        func(m *Model) Action { return MakeAction(hideSelection{m, SelectInView, true}) },
	"hide_outside_view":   func(m *Model) Action { return MakeAction(hideSelection{m, SelectOutsideView, true}) },
	"hide_all":            func(m *Model) Action { return MakeAction(hideSelection{m, SelectAll, true}) },
	"show_in_view":        func(m *Model) Action { return MakeAction(hideSelection{m, SelectInView, false}) },
	"show_outside_view":   func(m *Model) Action { return MakeAction(hideSelection{m, SelectOutsideView, false}) },
	"show_all":            func(m *Model) Action { return MakeAction(hideSelection{m, SelectAll, false}) },
	"mute_in_view":        func(m *Model) Action { return MakeAction(muteSelection{m, SelectInView, true}) },
	"mute_outside_view":   func(m *Model) Action { return MakeAction(muteSelection{m, SelectOutsideView, true}) },
	"mute_all":            func(m *Model) Action { return MakeAction(muteSelection{m, SelectAll, true}) },
	"unmute_in_view":      func(m *Model) Action { return MakeAction(muteSelection{m, SelectInView, false}) },
	"unmute_outside_view": func(m *Model) Action { return MakeAction(muteSelection{m, SelectOutsideView, false}) },
	"unmute_all":          func(m *Model) Action { return MakeAction(muteSelection{m, SelectAll, false}) },

	"undo":           func(m *Model) Action { return m.History().Undo() },
	"redo":           func(m *Model) Action { return m.History().Redo() },
	"undo_alternate": func(m *Model) Action { return m.History().Alternate() },

	"layer_all":      func(m *Model) Action { return m.Layers().All() },
	"layer_map_row":  func(m *Model) Action { return m.Layers().MapRow() },
	"layer_from_row": func(m *Model) Action { return m.Layers().FromRow() },
	"layer_flux":     func(m *Model) Action { return m.Layers().ToggleFlux() },

	"view_save":       func(m *Model) Action { return m.Views().Save() },
	"view_clear":      func(m *Model) Action { return m.Views().Clear() },
	"views_mode":      func(m *Model) Action { return m.Views().ToggleMode() },
	"views_next":      func(m *Model) Action { return m.Views().Select(1) },
	"views_prev":      func(m *Model) Action { return m.Views().Select(-1) },
	"views_jump":      func(m *Model) Action { return m.Views().JumpSelected() },
	"views_delete":    func(m *Model) Action { return m.Views().DeleteSelected() },
	"views_move_down": func(m *Model) Action { return m.Views().MoveSelected(1) },
	"views_move_up":   func(m *Model) Action { return m.Views().MoveSelected(-1) },

	"play_pause":       func(m *Model) Action { return m.Transport().PlayPause() },
	"play_from_cursor": func(m *Model) Action { return m.Transport().PlayFromCursor() },
	"stop":             func(m *Model) Action { return m.Transport().Stop() },
	"gain_up":          func(m *Model) Action { return m.Transport().GainUp() },
	"gain_down":        func(m *Model) Action { return m.Transport().GainDown() },
	"goto_play_bar":    func(m *Model) Action { return m.Transport().GotoPlayBar() },
	"export":           func(m *Model) Action { return m.Transport().Export() },
	"midi_mode":        func(m *Model) Action { return m.MIDI().ToggleMode() },

	"escape": func(m *Model) Action { return MakeAction((*escape)(m)) },
	"quit":   func(m *Model) Action { return MakeAction((*quit)(m)) },
}

// numbered commands are bound as name_N, e.g. layer_3.
var numbered = map[string]numberedCommand{
	"digit_":        {0, 9, func(m *Model, n int) Action { return MakeAction(digit{m, uint32(n)}) }},
	"layer_":        {1, 64, func(m *Model, n int) Action { return m.Layers().Select(n) }},
	"layer_toggle_": {1, 64, func(m *Model, n int) Action { return m.Layers().Toggle(n) }},
	"view_":         {1, 64, func(m *Model, n int) Action { return m.Views().Jump(n) }},
}

// Command returns the action of the named command.
func (m *Model) Command(name string) (Action, bool) {
	if f, ok := commands[name]; ok {
		return f(m), true
	}
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return Action{}, false
	}
	c, ok := numbered[name[:i+1]]
	if !ok {
		return Action{}, false
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < c.min || n > c.max {
		return Action{}, false
	}
	return c.action(m, n), true
}

// CommandNames returns the names of all commands, numbered ones with their
// lowest and highest numbers, sorted.
func CommandNames() []string {
	ret := make([]string, 0, len(commands)+2*len(numbered))
	for name := range commands {
		ret = append(ret, name)
	}
	for prefix, c := range numbered {
		ret = append(ret, prefix+strconv.Itoa(c.min), prefix+strconv.Itoa(c.max))
	}
	sort.Strings(ret)
	return ret
}

func (m moveCursor) Do() { m.grid.Move(m.dir, m.leap, m.prefix.Count()) }

func (m movePage) Do() { m.grid.MoveView(m.dir, m.prefix.Count()) }

// With a count, the edge jumps go to that absolute row or column.
func (m gotoBound) Do() {
	if !m.prefix.Pending() {
		m.grid.GotoBound(m.bound)
		return
	}
	switch m.bound {
	case BoundLeft, BoundRight:
		m.grid.GotoAbsolute(Left, m.prefix.Count())
	case BoundBottom, BoundTop:
		m.grid.GotoAbsolute(Up, m.prefix.Count())
	default:
		m.grid.GotoBound(m.bound)
	}
}

// 0 is a digit only after another digit.
func (m digit) Do() {
	if m.d == 0 && !m.prefix.Pending() {
		m.grid.GotoBound(BoundLeft)
		return
	}
	m.prefix.Digit(m.d)
}

func (m zoom) Do() { m.grid.Zoom(m.in, m.leap) }

func (m *zoomReset) Do() { m.grid.ZoomReset() }

func (m setFraction) Do() {
	v := m.prefix.Or(1)
	if m.part == SubColStart {
		v = m.prefix.Count()
	}
	if err := m.grid.SetFraction(m.part, v); err != nil {
		m.alertError(fmt.Errorf("%w: %d", err, v))
	}
}

func (m *resetCursor) Do() { m.grid.ResetCursor() }

func (m *drawNote) Do() {
	if err := (*Model)(m).DrawNote(m.prefix.Count(), 1); err != nil {
		(*Model)(m).alertError(err)
	}
}

func (m *deleteNote) Do() {
	if err := (*Model)(m).DeleteAtCursor(m.prefix.Count()); err != nil {
		(*Model)(m).alertError(err)
	}
}

func (m deleteSelection) Do() {
	if err := m.DeleteSelection(m.sel); err != nil {
		m.alertError(err)
	}
}

func (m hideSelection) Do() { m.SetSelectionHidden(m.sel, m.hidden) }

func (m muteSelection) Do() { m.SetSelectionMute(m.sel, m.mute) }

func (m *escape) Do() {
	(*Model)(m).SetMode(keys.ModeNormal)
}

func (m *quit) Do() {
	m.quitted = true
	(*Model)(m).send(ring.CmdStop, nil)
}
